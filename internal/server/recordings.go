// ABOUTME: Recording API handlers: list, detail, segments, delete, upload, retranscribe
package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/harper/vox/internal/db"
	"github.com/harper/vox/internal/media"
	"github.com/harper/vox/internal/transcribe"
)

// recordingJSON is the wire shape shared by list and detail responses.
type recordingJSON struct {
	ID                    int64        `json:"id"`
	OriginalFilename      string       `json:"original_filename"`
	InternalFilename      string       `json:"internal_filename"`
	StoragePath           string       `json:"storage_path"`
	ImportTimestamp       string       `json:"import_timestamp"`
	DurationSeconds       *float64     `json:"duration_seconds"`
	AudioFormat           *string      `json:"audio_format"`
	SampleRate            *int         `json:"sample_rate"`
	Channels              *int         `json:"channels"`
	FileSizeBytes         int64        `json:"file_size_bytes"`
	TranscriptStatus      string       `json:"transcript_status"`
	TranscriptLanguage    *string      `json:"transcript_language"`
	TranscriptText        *string      `json:"transcript_text,omitempty"`
	TranscriptSegments    []db.Segment `json:"transcript_segments,omitempty"`
	TranscriptionModel    *string      `json:"transcription_model,omitempty"`
	TranscriptionLanguage *string      `json:"transcription_language,omitempty"`
	CreatedAt             string       `json:"created_at"`
	UpdatedAt             string       `json:"updated_at"`
}

func toRecordingJSON(rec *db.Recording, includeTranscript bool) recordingJSON {
	out := recordingJSON{
		ID:                 rec.ID,
		OriginalFilename:   rec.OriginalFilename,
		InternalFilename:   rec.InternalFilename,
		StoragePath:        rec.StoragePath,
		ImportTimestamp:    rec.ImportTimestamp.Format(time.RFC3339),
		DurationSeconds:    rec.DurationSeconds,
		AudioFormat:        rec.AudioFormat,
		SampleRate:         rec.SampleRate,
		Channels:           rec.Channels,
		FileSizeBytes:      rec.FileSizeBytes,
		TranscriptStatus:   rec.TranscriptStatus,
		TranscriptLanguage: rec.TranscriptLanguage,
		CreatedAt:          rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          rec.UpdatedAt.Format(time.RFC3339),
	}
	if includeTranscript {
		out.TranscriptText = rec.TranscriptText
		out.TranscriptSegments = rec.TranscriptSegments
		out.TranscriptionModel = rec.TranscriptionModel
		out.TranscriptionLanguage = rec.TranscriptionLanguage
	}
	return out
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 {
			writeError(w, http.StatusBadRequest, "page must be positive")
			return
		}
		if p > 0 {
			page = p
		}
	}

	perPage := s.cfg.ItemsPerPage
	if raw := q.Get("per_page"); raw != "" {
		pp, err := strconv.Atoi(raw)
		if err != nil || pp < 1 {
			writeError(w, http.StatusBadRequest, "per_page must be positive")
			return
		}
		if pp > s.cfg.MaxPerPage {
			writeError(w, http.StatusBadRequest, "per_page cannot exceed "+strconv.Itoa(s.cfg.MaxPerPage))
			return
		}
		perPage = pp
	}

	params := db.ListParams{Page: page, PerPage: perPage}
	if raw := q.Get("since"); raw != "" {
		ts, err := dateparse.ParseAny(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since date")
			return
		}
		params.Since = &ts
	}
	if raw := q.Get("until"); raw != "" {
		ts, err := dateparse.ParseAny(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date")
			return
		}
		params.Until = &ts
	}

	recordings, total, err := db.ListRecordings(s.database, params)
	if err != nil {
		s.logger.Error("list recordings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recordings")
		return
	}

	items := make([]recordingJSON, 0, len(recordings))
	for i := range recordings {
		items = append(items, toRecordingJSON(&recordings[i], false))
	}
	pages := (total + perPage - 1) / perPage

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recordings": items,
		"pagination": map[string]interface{}{
			"page":     page,
			"per_page": perPage,
			"total":    total,
			"pages":    pages,
			"has_prev": page > 1,
			"has_next": page < pages,
		},
	})
}

func (s *Server) recordingFromPath(w http.ResponseWriter, r *http.Request) (*db.Recording, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recording id")
		return nil, false
	}
	rec, err := db.GetRecording(s.database, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recording not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get recording failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load recording")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordingFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRecordingJSON(rec, true))
}

func (s *Server) handleGetSegments(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordingFromPath(w, r)
	if !ok {
		return
	}
	segments := rec.TranscriptSegments
	if segments == nil {
		segments = []db.Segment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recording_id":   rec.ID,
		"total_segments": len(segments),
		"segments":       segments,
	})
}

func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordingFromPath(w, r)
	if !ok {
		return
	}

	// Remove the audio file first; a failure here is logged but does not
	// block removal of the database row
	audioPath := filepath.Join(s.cfg.StoragePath, rec.StoragePath)
	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("failed to delete audio file", "path", audioPath, "error", err)
	}

	if err := db.DeleteRecording(s.database, rec.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		s.logger.Error("delete recording failed", "id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No filename provided")
		return
	}
	if !media.SupportedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "Invalid file extension. Supported: .wav, .mp3, .m4a")
		return
	}

	// Stage the upload in the temp directory before handing it to the
	// importer path
	if err := os.MkdirAll(s.cfg.UploadTempPath, 0755); err != nil {
		s.logger.Error("create upload temp dir failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	tempName := uuid.New().String() + "_" + filepath.Base(header.Filename)
	tempPath := filepath.Join(s.cfg.UploadTempPath, tempName)
	dst, err := os.Create(tempPath)
	if err != nil {
		s.logger.Error("create temp upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(tempPath)
		s.logger.Error("write temp upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tempPath)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	now := time.Now()
	internalName := media.GenerateInternalFilename(header.Filename)
	datePath := media.DatePath(now)
	destDir := filepath.Join(s.cfg.StoragePath, datePath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		_ = os.Remove(tempPath)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	destPath := filepath.Join(destDir, internalName)
	if err := os.Rename(tempPath, destPath); err != nil {
		_ = os.Remove(tempPath)
		s.logger.Error("move upload into storage failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	rec := db.Recording{
		OriginalFilename: header.Filename,
		InternalFilename: internalName,
		StoragePath:      filepath.Join(datePath, internalName),
		ImportTimestamp:  now,
	}
	if info, err := os.Stat(destPath); err == nil {
		rec.FileSizeBytes = info.Size()
	}

	// Metadata extraction is best effort for uploads
	if meta, err := media.Probe(r.Context(), destPath); err == nil {
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
	}

	id, err := db.InsertRecording(s.database, rec)
	if err != nil {
		s.logger.Error("record upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	if s.pipeline != nil {
		s.pipeline.Kick()
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     id,
		"status": db.StatusPending,
	})
}

func (s *Server) handleRetranscribe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordingFromPath(w, r)
	if !ok {
		return
	}

	var overrides struct {
		Model    *string `json:"model"`
		Language *string `json:"language"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r, &overrides); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if overrides.Model != nil && !transcribe.ValidModel(*overrides.Model) {
		writeError(w, http.StatusBadRequest, "Invalid model")
		return
	}
	if overrides.Language != nil && !transcribe.ValidLanguage(*overrides.Language) {
		writeError(w, http.StatusBadRequest, "Invalid language")
		return
	}

	previousStatus := rec.TranscriptStatus
	if err := db.ResetForRetranscription(s.database, rec.ID, overrides.Model, overrides.Language); err != nil {
		s.logger.Error("reset for retranscription failed", "id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue retranscription")
		return
	}

	if s.pipeline != nil {
		s.pipeline.Kick()
	}

	message := "Recording " + strconv.FormatInt(rec.ID, 10) + " has been queued for re-transcription"
	if previousStatus == db.StatusPending {
		message = "Recording " + strconv.FormatInt(rec.ID, 10) + " was already pending transcription, re-queued for processing"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      rec.ID,
		"status":  db.StatusPending,
		"message": message,
	})
}
