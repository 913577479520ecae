// ABOUTME: FTS5 search index over recording filenames and transcripts
// ABOUTME: Upsert/remove sync hooks plus ranked, highlighted query execution
package search

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrIndexUnavailable is returned when the index backing store cannot
// be read or written. Callers must surface it as a service error, never
// as an empty result set.
var ErrIndexUnavailable = errors.New("search index unavailable")

// Highlight markers inserted by the index and the excerpt builder.
const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
)

// Match is one ranked index hit. Rank is the raw FTS5 bm25 value
// (negative, lower is better); highlighted fields carry the stored text
// with every matched token wrapped in MarkOpen/MarkClose.
type Match struct {
	ID                    int64
	OriginalFilename      string
	TranscriptText        string
	Rank                  float64
	HighlightedFilename   string
	HighlightedTranscript string
}

// Index is the queryable text index mirroring the searchable fields of
// the recordings table.
type Index struct {
	db *sql.DB
}

// NewIndex wraps an open database holding the recordings_fts table.
func NewIndex(db *sql.DB) *Index {
	return &Index{db: db}
}

// UpsertTx inserts or replaces the index entry for id within tx. The
// delete-then-insert pair keeps the call idempotent; rolling back the
// transaction leaves the index untouched.
func UpsertTx(tx *sql.Tx, id int64, filename, transcript string) error {
	if _, err := tx.Exec("DELETE FROM recordings_fts WHERE rowid = ?", id); err != nil {
		return fmt.Errorf("%w: clear index entry %d: %v", ErrIndexUnavailable, id, err)
	}
	_, err := tx.Exec(
		"INSERT INTO recordings_fts (rowid, original_filename, transcript_text) VALUES (?, ?, ?)",
		id, filename, transcript,
	)
	if err != nil {
		return fmt.Errorf("%w: write index entry %d: %v", ErrIndexUnavailable, id, err)
	}
	return nil
}

// RemoveTx deletes the index entry for id within tx. Removing an id
// that was never indexed is a no-op.
func RemoveTx(tx *sql.Tx, id int64) error {
	if _, err := tx.Exec("DELETE FROM recordings_fts WHERE rowid = ?", id); err != nil {
		return fmt.Errorf("%w: remove index entry %d: %v", ErrIndexUnavailable, id, err)
	}
	return nil
}

// Upsert inserts or replaces the index entry for id in its own
// transaction.
func (ix *Index) Upsert(id int64, filename, transcript string) error {
	return ix.inTx(func(tx *sql.Tx) error {
		return UpsertTx(tx, id, filename, transcript)
	})
}

// Remove deletes the index entry for id in its own transaction.
func (ix *Index) Remove(id int64) error {
	return ix.inTx(func(tx *sql.Tx) error {
		return RemoveTx(tx, id)
	})
}

func (ix *Index) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrIndexUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrIndexUnavailable, err)
	}
	return nil
}

// Query runs a relevance-ranked match over both indexed fields and
// returns every hit, best rank first. Ties break on recency, then id,
// both descending, so result order is deterministic. A term that is not
// valid FTS5 syntax yields no matches rather than an error.
func (ix *Index) Query(term string) ([]Match, error) {
	escaped := strings.ReplaceAll(term, `"`, `""`)

	rows, err := ix.db.Query(`
		SELECT
			r.id,
			r.original_filename,
			COALESCE(r.transcript_text, ''),
			fts.rank,
			highlight(recordings_fts, 0, ?, ?),
			highlight(recordings_fts, 1, ?, ?)
		FROM recordings_fts fts
		JOIN recordings r ON r.id = fts.rowid
		WHERE recordings_fts MATCH ?
		AND r.transcript_status = 'complete'
		AND r.transcript_text IS NOT NULL
		ORDER BY fts.rank, r.import_timestamp DESC, r.id DESC
	`, MarkOpen, MarkClose, MarkOpen, MarkClose, escaped)
	if err != nil {
		if isSyntaxError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var matches []Match
	for rows.Next() {
		var m Match
		var hlFilename, hlTranscript sql.NullString
		if err := rows.Scan(&m.ID, &m.OriginalFilename, &m.TranscriptText,
			&m.Rank, &hlFilename, &hlTranscript); err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", ErrIndexUnavailable, err)
		}
		m.HighlightedFilename = hlFilename.String
		m.HighlightedTranscript = hlTranscript.String
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	return matches, nil
}

// Rebuild clears the index and repopulates it from the recordings
// table in one transaction. Safe to run on a live, non-empty index.
func (ix *Index) Rebuild() error {
	return ix.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM recordings_fts"); err != nil {
			return fmt.Errorf("%w: clear index: %v", ErrIndexUnavailable, err)
		}

		// Collect rows before writing; the tx connection handles one
		// statement at a time.
		type entry struct {
			id                   int64
			filename, transcript string
		}
		rows, err := tx.Query("SELECT id, original_filename, COALESCE(transcript_text, '') FROM recordings")
		if err != nil {
			return fmt.Errorf("%w: read recordings: %v", ErrIndexUnavailable, err)
		}
		var entries []entry
		for rows.Next() {
			var e entry
			if err := rows.Scan(&e.id, &e.filename, &e.transcript); err != nil {
				_ = rows.Close()
				return fmt.Errorf("%w: scan recording: %v", ErrIndexUnavailable, err)
			}
			entries = append(entries, e)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
		_ = rows.Close()

		for _, e := range entries {
			_, err := tx.Exec(
				"INSERT INTO recordings_fts (rowid, original_filename, transcript_text) VALUES (?, ?, ?)",
				e.id, e.filename, e.transcript,
			)
			if err != nil {
				return fmt.Errorf("%w: reindex %d: %v", ErrIndexUnavailable, e.id, err)
			}
		}
		return nil
	})
}

// isSyntaxError reports whether err is FTS5 complaining about the user's
// query syntax, as opposed to a real backend failure.
func isSyntaxError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "fts5") || strings.Contains(msg, "syntax")
}
