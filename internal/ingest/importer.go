// ABOUTME: Audio file import: probe, move into dated storage, record in database
// ABOUTME: Each import is journaled and wakes the transcription pipeline
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/db"
	"github.com/harper/vox/internal/logging"
	"github.com/harper/vox/internal/media"
)

// Importer moves audio files from the monitored directory into managed
// storage and registers them for transcription.
type Importer struct {
	database *sql.DB
	cfg      *config.Config
	logger   *slog.Logger
	notify   func()
	probe    func(ctx context.Context, path string) (*media.Metadata, error)
}

// NewImporter builds an Importer. notify, if non-nil, is called after
// every successful import (typically pipeline.Kick).
func NewImporter(database *sql.DB, cfg *config.Config, logger *slog.Logger, notify func()) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		database: database,
		cfg:      cfg,
		logger:   logger,
		notify:   notify,
		probe:    media.Probe,
	}
}

// ImportFile ingests one audio file: probes its metadata, moves it into
// storage under YYYY/MM-DD/, and inserts the pending recording. The
// source file is consumed on success.
func (im *Importer) ImportFile(ctx context.Context, path string) (int64, error) {
	if !media.SupportedExtension(path) {
		return 0, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	meta, err := im.probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	now := time.Now()
	originalName := filepath.Base(path)
	internalName := media.GenerateInternalFilename(originalName)
	datePath := media.DatePath(now)

	destDir := filepath.Join(im.cfg.StoragePath, datePath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("create storage dir: %w", err)
	}
	destPath := filepath.Join(destDir, internalName)
	if err := moveFile(path, destPath); err != nil {
		return 0, fmt.Errorf("move %s into storage: %w", path, err)
	}

	storagePath := filepath.Join(datePath, internalName)
	rec := db.Recording{
		OriginalFilename: originalName,
		InternalFilename: internalName,
		StoragePath:      storagePath,
		ImportTimestamp:  now,
		FileSizeBytes:    meta.FileSizeBytes,
	}
	if meta.DurationSeconds > 0 {
		d := meta.DurationSeconds
		rec.DurationSeconds = &d
	}
	if meta.Format != "" {
		f := meta.Format
		rec.AudioFormat = &f
	}
	if meta.SampleRate > 0 {
		sr := meta.SampleRate
		rec.SampleRate = &sr
	}
	if meta.Channels > 0 {
		ch := meta.Channels
		rec.Channels = &ch
	}

	id, err := db.InsertRecording(im.database, rec)
	if err != nil {
		// Leave the file in storage; a rescan can re-register it
		return 0, fmt.Errorf("record %s: %w", originalName, err)
	}

	event := logging.ImportEvent{
		Timestamp:        now,
		OriginalFilename: originalName,
		InternalFilename: internalName,
		StoragePath:      storagePath,
		FileSizeBytes:    meta.FileSizeBytes,
		DurationSeconds:  meta.DurationSeconds,
	}
	journalDir := filepath.Join(im.cfg.StoragePath, "journal")
	if err := logging.WriteImportJournal(journalDir, im.cfg.IngestLogFormat, event); err != nil {
		im.logger.Warn("failed to write import journal", "error", err)
	}

	im.logger.Info("imported recording", "id", id, "file", originalName, "stored", storagePath)
	if im.notify != nil {
		im.notify()
	}
	return id, nil
}

// Scan imports every supported audio file sitting in the monitored
// directory, returning how many were ingested.
func (im *Importer) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(im.cfg.MonitoredDirectory)
	if err != nil {
		return 0, fmt.Errorf("read monitored directory: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !media.SupportedExtension(entry.Name()) {
			continue
		}
		path := filepath.Join(im.cfg.MonitoredDirectory, entry.Name())
		if _, err := im.ImportFile(ctx, path); err != nil {
			im.logger.Error("import failed", "file", entry.Name(), "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

// moveFile renames when possible and falls back to copy+remove for
// cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	return os.Remove(src)
}
