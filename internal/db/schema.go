// ABOUTME: Database schema definitions
// ABOUTME: SQL for the recordings table, indexes, and FTS setup
package db

const schema = `
CREATE TABLE IF NOT EXISTS recordings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    original_filename TEXT NOT NULL,
    internal_filename TEXT NOT NULL UNIQUE,
    storage_path TEXT NOT NULL,
    import_timestamp DATETIME NOT NULL,
    duration_seconds REAL,
    audio_format TEXT,
    sample_rate INTEGER,
    channels INTEGER,
    file_size_bytes INTEGER,
    transcript_status TEXT NOT NULL DEFAULT 'pending',
    transcript_language TEXT,
    transcript_text TEXT,
    transcript_segments TEXT,
    transcription_model TEXT,
    transcription_language TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recordings_import ON recordings(import_timestamp);
CREATE INDEX IF NOT EXISTS idx_recordings_status ON recordings(transcript_status);

CREATE VIRTUAL TABLE IF NOT EXISTS recordings_fts USING fts5(original_filename, transcript_text);
`
