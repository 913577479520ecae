// ABOUTME: Transcription pipeline with bounded concurrency
// ABOUTME: Drains pending recordings through a backend and stores results
package pipeline

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/db"
	"github.com/harper/vox/internal/transcribe"
)

// Pipeline processes pending recordings with a concurrency cap.
type Pipeline struct {
	database *sql.DB
	cfg      *config.Config
	backend  transcribe.Backend
	logger   *slog.Logger
	sem      chan struct{}
	kick     chan struct{}
}

func New(database *sql.DB, cfg *config.Config, backend transcribe.Backend, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.MaxConcurrentTranscriptions
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		database: database,
		cfg:      cfg,
		backend:  backend,
		logger:   logger,
		sem:      make(chan struct{}, workers),
		kick:     make(chan struct{}, 1),
	}
}

// Kick asks a running pipeline loop to scan for pending work soon.
// Safe to call from any goroutine; coalesces repeated requests.
func (p *Pipeline) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run processes pending recordings until ctx is cancelled, waking on a
// timer and on Kick.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.ProcessPending(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.kick:
		}
		p.ProcessPending(ctx)
	}
}

// ProcessPending transcribes every recording currently in pending state,
// running at most MaxConcurrentTranscriptions at a time. It returns once
// all of them have finished.
func (p *Pipeline) ProcessPending(ctx context.Context) {
	pending, err := db.PendingRecordings(p.database)
	if err != nil {
		p.logger.Error("failed to list pending recordings", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	p.logger.Info("processing pending transcriptions", "count", len(pending))

	var wg sync.WaitGroup
	for _, rec := range pending {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}
		wg.Add(1)
		go func(rec db.Recording) {
			defer wg.Done()
			defer func() { <-p.sem }()
			p.processOne(ctx, rec)
		}(rec)
	}
	wg.Wait()
}

func (p *Pipeline) processOne(ctx context.Context, rec db.Recording) {
	model := p.cfg.WhisperModel
	if rec.TranscriptionModel != nil && *rec.TranscriptionModel != "" {
		model = *rec.TranscriptionModel
	}
	language := p.cfg.DefaultLanguage
	if rec.TranscriptionLanguage != nil && *rec.TranscriptionLanguage != "" {
		language = *rec.TranscriptionLanguage
	}

	audioPath := filepath.Join(p.cfg.StoragePath, rec.StoragePath)
	if _, err := os.Stat(audioPath); err != nil {
		p.logger.Error("audio file missing", "id", rec.ID, "path", audioPath)
		p.markError(rec.ID)
		return
	}

	p.logger.Info("transcribing", "id", rec.ID, "model", model, "language", language)
	result, err := p.backend.Transcribe(ctx, audioPath, model, language)
	if err != nil {
		p.logger.Error("transcription failed", "id", rec.ID, "error", err)
		p.markError(rec.ID)
		return
	}

	segments := make([]db.Segment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, db.Segment{
			Start:      s.Start,
			End:        s.End,
			Text:       s.Text,
			Confidence: s.Confidence,
		})
	}
	if err := db.SetTranscript(p.database, rec.ID, result.Text, segments, result.Language); err != nil {
		p.logger.Error("failed to store transcript", "id", rec.ID, "error", err)
		p.markError(rec.ID)
		return
	}
	p.logger.Info("transcription complete", "id", rec.ID, "segments", len(segments))
}

func (p *Pipeline) markError(id int64) {
	if err := db.MarkTranscriptError(p.database, id); err != nil {
		p.logger.Error("failed to mark transcript error", "id", id, "error", err)
	}
}
