// ABOUTME: Recording creation and management
// ABOUTME: Every mutation of searchable fields syncs the search index in the same transaction
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/vox/internal/search"
)

// ErrNotFound is returned when a recording id does not exist.
var ErrNotFound = errors.New("recording not found")

// Transcript status values.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusError    = "error"
)

// Segment is one timed chunk of a transcript.
type Segment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

type Recording struct {
	ID                    int64
	OriginalFilename      string
	InternalFilename      string
	StoragePath           string
	ImportTimestamp       time.Time
	DurationSeconds       *float64
	AudioFormat           *string
	SampleRate            *int
	Channels              *int
	FileSizeBytes         int64
	TranscriptStatus      string
	TranscriptLanguage    *string
	TranscriptText        *string
	TranscriptSegments    []Segment
	TranscriptionModel    *string
	TranscriptionLanguage *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const recordingColumns = `id, original_filename, internal_filename, storage_path,
	import_timestamp, duration_seconds, audio_format, sample_rate, channels,
	file_size_bytes, transcript_status, transcript_language, transcript_text,
	transcript_segments, transcription_model, transcription_language,
	created_at, updated_at`

// InsertRecording inserts a new recording and its index entry in one
// transaction, returning the new id.
func InsertRecording(db *sql.DB, rec Recording) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if rec.TranscriptStatus == "" {
		rec.TranscriptStatus = StatusPending
	}

	result, err := tx.Exec(`
		INSERT INTO recordings (original_filename, internal_filename, storage_path,
			import_timestamp, duration_seconds, audio_format, sample_rate, channels,
			file_size_bytes, transcript_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.OriginalFilename, rec.InternalFilename, rec.StoragePath,
		rec.ImportTimestamp, rec.DurationSeconds, rec.AudioFormat, rec.SampleRate,
		rec.Channels, rec.FileSizeBytes, rec.TranscriptStatus)
	if err != nil {
		return 0, fmt.Errorf("insert recording: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	// Transcript is still empty; the filename is searchable immediately
	if err := search.UpsertTx(tx, id, rec.OriginalFilename, ""); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

// GetRecording returns the recording with the given id.
func GetRecording(db *sql.DB, id int64) (*Recording, error) {
	row := db.QueryRow("SELECT "+recordingColumns+" FROM recordings WHERE id = ?", id)
	rec, err := scanRecording(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recording %d: %w", id, err)
	}
	return rec, nil
}

// ListParams filters and paginates recording listings.
type ListParams struct {
	Since   *time.Time
	Until   *time.Time
	Page    int
	PerPage int
}

// ListRecordings returns one page of recordings ordered newest first,
// along with the total row count for the filter.
func ListRecordings(db *sql.DB, params ListParams) ([]Recording, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 20
	}

	where := ""
	var conditions []string
	var args []interface{}
	if params.Since != nil {
		conditions = append(conditions, "import_timestamp >= ?")
		args = append(args, params.Since)
	}
	if params.Until != nil {
		conditions = append(conditions, "import_timestamp <= ?")
		args = append(args, params.Until)
	}
	for i, cond := range conditions {
		if i == 0 {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM recordings"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recordings: %w", err)
	}

	offset := (params.Page - 1) * params.PerPage
	query := "SELECT " + recordingColumns + " FROM recordings" + where +
		" ORDER BY import_timestamp DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.Query(query, append(args, params.PerPage, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recordings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recordings []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, *rec)
	}

	return recordings, total, rows.Err()
}

// PendingRecordings returns all recordings awaiting transcription.
func PendingRecordings(db *sql.DB) ([]Recording, error) {
	rows, err := db.Query("SELECT "+recordingColumns+" FROM recordings WHERE transcript_status = ? ORDER BY id", StatusPending)
	if err != nil {
		return nil, fmt.Errorf("query pending recordings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recordings []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		recordings = append(recordings, *rec)
	}
	return recordings, rows.Err()
}

// SetTranscript stores a completed transcription and updates the search
// index, all in one transaction.
func SetTranscript(db *sql.DB, id int64, text string, segments []Segment, language string) error {
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var filename string
	err = tx.QueryRow("SELECT original_filename FROM recordings WHERE id = ?", id).Scan(&filename)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load recording %d: %w", id, err)
	}

	_, err = tx.Exec(`
		UPDATE recordings
		SET transcript_status = ?, transcript_text = ?, transcript_segments = ?,
			transcript_language = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, StatusComplete, text, string(segmentsJSON), language, id)
	if err != nil {
		return fmt.Errorf("update transcript for %d: %w", id, err)
	}

	if err := search.UpsertTx(tx, id, filename, text); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkTranscriptError flags a recording whose transcription failed.
func MarkTranscriptError(db *sql.DB, id int64) error {
	result, err := db.Exec(`
		UPDATE recordings SET transcript_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, StatusError, id)
	if err != nil {
		return fmt.Errorf("mark transcript error for %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetForRetranscription clears transcript data, sets the status back
// to pending, records any per-recording overrides, and re-syncs the
// index entry so stale transcript text is no longer searchable.
func ResetForRetranscription(db *sql.DB, id int64, model, language *string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var filename string
	err = tx.QueryRow("SELECT original_filename FROM recordings WHERE id = ?", id).Scan(&filename)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load recording %d: %w", id, err)
	}

	_, err = tx.Exec(`
		UPDATE recordings
		SET transcript_status = ?, transcript_text = NULL, transcript_segments = NULL,
			transcript_language = NULL,
			transcription_model = COALESCE(?, transcription_model),
			transcription_language = COALESCE(?, transcription_language),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, StatusPending, model, language, id)
	if err != nil {
		return fmt.Errorf("reset recording %d: %w", id, err)
	}

	if err := search.UpsertTx(tx, id, filename, ""); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRecording removes the recording and its index entry in one
// transaction. Callers are responsible for removing the audio file.
func DeleteRecording(db *sql.DB, id int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recording %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := search.RemoveTx(tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecording(row scanner) (*Recording, error) {
	var rec Recording
	var segmentsJSON sql.NullString
	err := row.Scan(&rec.ID, &rec.OriginalFilename, &rec.InternalFilename,
		&rec.StoragePath, &rec.ImportTimestamp, &rec.DurationSeconds,
		&rec.AudioFormat, &rec.SampleRate, &rec.Channels, &rec.FileSizeBytes,
		&rec.TranscriptStatus, &rec.TranscriptLanguage, &rec.TranscriptText,
		&segmentsJSON, &rec.TranscriptionModel, &rec.TranscriptionLanguage,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if segmentsJSON.Valid && segmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(segmentsJSON.String), &rec.TranscriptSegments); err != nil {
			return nil, fmt.Errorf("unmarshal segments for %d: %w", rec.ID, err)
		}
	}

	return &rec, nil
}
