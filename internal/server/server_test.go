//go:build sqlite_fts5

// ABOUTME: HTTP API tests covering recordings, search, settings, and audio routes
package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/db"
	"github.com/harper/vox/internal/search"
)

type fakeKicker struct{ kicks int }

func (k *fakeKicker) Kick() { k.kicks++ }

type testServer struct {
	srv      *Server
	handler  http.Handler
	cfg      *config.Config
	database *sql.DB
	kicker   *fakeKicker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	defaults := config.Default()
	cfg := &defaults
	cfg.StoragePath = t.TempDir()
	cfg.UploadTempPath = filepath.Join(cfg.StoragePath, "uploads")

	database, err := db.InitDB(cfg.DBPath())
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	idx := search.NewIndex(database)
	engine := search.NewEngine(idx, cfg.ItemsPerPage, cfg.MaxPerPage, cfg.ExcerptLength)
	kicker := &fakeKicker{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	configPath := filepath.Join(t.TempDir(), "config.toml")

	srv := New(database, cfg, configPath, engine, kicker, logger)
	return &testServer{
		srv:      srv,
		handler:  srv.Handler(),
		cfg:      cfg,
		database: database,
		kicker:   kicker,
	}
}

func (ts *testServer) addRecording(t *testing.T, name, transcript string) int64 {
	t.Helper()

	storagePath := filepath.Join("2026", "08-28", name)
	full := filepath.Join(ts.cfg.StoragePath, storagePath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	id, err := db.InsertRecording(ts.database, db.Recording{
		OriginalFilename: name,
		InternalFilename: name,
		StoragePath:      storagePath,
		ImportTimestamp:  time.Now(),
		FileSizeBytes:    4,
	})
	if err != nil {
		t.Fatalf("InsertRecording failed: %v", err)
	}
	if transcript != "" {
		segments := []db.Segment{{Start: 0, End: 1, Text: transcript}}
		if err := db.SetTranscript(ts.database, id, transcript, segments, "en"); err != nil {
			t.Fatalf("SetTranscript failed: %v", err)
		}
	}
	return id
}

func (ts *testServer) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}

func TestListRecordings(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		ts.addRecording(t, string(rune('a'+i))+".wav", "")
	}

	w := ts.do(t, http.MethodGet, "/api/recordings?page=1&per_page=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Recordings []struct {
			ID               int64  `json:"id"`
			OriginalFilename string `json:"original_filename"`
			TranscriptStatus string `json:"transcript_status"`
		} `json:"recordings"`
		Pagination struct {
			Total   int  `json:"total"`
			Pages   int  `json:"pages"`
			HasNext bool `json:"has_next"`
		} `json:"pagination"`
	}
	decodeJSON(t, w, &resp)

	if len(resp.Recordings) != 2 {
		t.Errorf("got %d recordings, want 2", len(resp.Recordings))
	}
	if resp.Pagination.Total != 3 || resp.Pagination.Pages != 2 || !resp.Pagination.HasNext {
		t.Errorf("bad pagination: %+v", resp.Pagination)
	}
}

func TestListRecordingsValidation(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{
		"/api/recordings?page=-1",
		"/api/recordings?per_page=0",
		"/api/recordings?per_page=101",
		"/api/recordings?since=notadate",
	} {
		if w := ts.do(t, http.MethodGet, target, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400", target, w.Code)
		}
	}
}

func TestGetRecording(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "detail.wav", "some transcript text")

	w := ts.do(t, http.MethodGet, "/api/recordings/"+itoa(id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var resp struct {
		ID                 int64        `json:"id"`
		TranscriptText     string       `json:"transcript_text"`
		TranscriptSegments []db.Segment `json:"transcript_segments"`
	}
	decodeJSON(t, w, &resp)
	if resp.ID != id || resp.TranscriptText != "some transcript text" {
		t.Errorf("unexpected detail response: %+v", resp)
	}
	if len(resp.TranscriptSegments) != 1 {
		t.Errorf("segments missing from detail")
	}
}

func TestGetRecordingNotFound(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodGet, "/api/recordings/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/recordings/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: got status %d, want 400", w.Code)
	}
}

func TestGetSegments(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "seg.wav", "hello world")

	w := ts.do(t, http.MethodGet, "/api/recordings/"+itoa(id)+"/segments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var resp struct {
		RecordingID   int64        `json:"recording_id"`
		TotalSegments int          `json:"total_segments"`
		Segments      []db.Segment `json:"segments"`
	}
	decodeJSON(t, w, &resp)
	if resp.RecordingID != id || resp.TotalSegments != 1 {
		t.Errorf("unexpected segments response: %+v", resp)
	}
}

func TestDeleteRecording(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "gone.wav", "delete me please")

	rec, _ := db.GetRecording(ts.database, id)
	audioPath := filepath.Join(ts.cfg.StoragePath, rec.StoragePath)

	w := ts.do(t, http.MethodDelete, "/api/recordings/"+itoa(id), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204", w.Code)
	}

	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Errorf("audio file should be removed")
	}
	if _, err := db.GetRecording(ts.database, id); err == nil {
		t.Errorf("row should be removed")
	}

	if w := ts.do(t, http.MethodDelete, "/api/recordings/"+itoa(id), nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: got status %d, want 404", w.Code)
	}
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := multipartBody(t, "Voice Memo.wav", []byte("RIFFdata"))

	req := httptest.NewRequest(http.MethodPost, "/api/recordings/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, w, &resp)
	if resp.Status != "pending" {
		t.Errorf("got status %q, want pending", resp.Status)
	}

	rec, err := db.GetRecording(ts.database, resp.ID)
	if err != nil {
		t.Fatalf("uploaded recording not in database: %v", err)
	}
	if rec.OriginalFilename != "Voice Memo.wav" {
		t.Errorf("got original filename %q", rec.OriginalFilename)
	}
	if _, err := os.Stat(filepath.Join(ts.cfg.StoragePath, rec.StoragePath)); err != nil {
		t.Errorf("uploaded file not in storage: %v", err)
	}
	if ts.kicker.kicks != 1 {
		t.Errorf("pipeline kicked %d times, want 1", ts.kicker.kicks)
	}
}

func TestUploadRejectsBadExtension(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := multipartBody(t, "notes.txt", []byte("text"))

	req := httptest.NewRequest(http.MethodPost, "/api/recordings/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
}

func TestRetranscribe(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "redo.wav", "old words")

	w := ts.do(t, http.MethodPost, "/api/recordings/"+itoa(id)+"/transcribe",
		strings.NewReader(`{"model": "medium", "language": "fr"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeJSON(t, w, &resp)
	if resp.Status != "pending" {
		t.Errorf("got status %q, want pending", resp.Status)
	}

	rec, _ := db.GetRecording(ts.database, id)
	if rec.TranscriptStatus != db.StatusPending || rec.TranscriptText != nil {
		t.Errorf("transcript not reset")
	}
	if rec.TranscriptionModel == nil || *rec.TranscriptionModel != "medium" {
		t.Errorf("model override not stored")
	}
	if ts.kicker.kicks != 1 {
		t.Errorf("pipeline kicked %d times, want 1", ts.kicker.kicks)
	}
}

func TestRetranscribeAlreadyPendingMessage(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "waiting.wav", "")

	w := ts.do(t, http.MethodPost, "/api/recordings/"+itoa(id)+"/transcribe", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	decodeJSON(t, w, &resp)
	if !strings.Contains(resp.Message, "already pending") {
		t.Errorf("got message %q", resp.Message)
	}
}

func TestRetranscribeValidation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "strict.wav", "")

	for _, body := range []string{
		`{"model": "gigantic"}`,
		`{"language": "klingon"}`,
	} {
		w := ts.do(t, http.MethodPost, "/api/recordings/"+itoa(id)+"/transcribe", strings.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: got status %d, want 400", body, w.Code)
		}
	}

	if w := ts.do(t, http.MethodPost, "/api/recordings/999/transcribe", nil); w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.addRecording(t, "meeting.wav", "quarterly budget review with the finance team")
	ts.addRecording(t, "other.wav", "completely unrelated chatter")

	w := ts.do(t, http.MethodGet, "/api/search?q=budget", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	var page search.Page
	decodeJSON(t, w, &page)
	if page.Total != 1 || len(page.Results) != 1 {
		t.Fatalf("got %d results (total %d), want 1", len(page.Results), page.Total)
	}
	if !strings.Contains(page.Results[0].Excerpt, "<mark>budget</mark>") {
		t.Errorf("excerpt missing highlight: %q", page.Results[0].Excerpt)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{
		"/api/search?q=ab",
		"/api/search?q=valid&page=0",
		"/api/search?q=valid&per_page=101",
	} {
		if w := ts.do(t, http.MethodGet, target, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400", target, w.Code)
		}
	}
}

func TestSearchDisabled(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.FTSEnabled = false

	if w := ts.do(t, http.MethodGet, "/api/search?q=anything", nil); w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/settings",
		strings.NewReader(`{"default_model": "small", "default_language": "de"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("post settings: got status %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	decodeJSON(t, w, &resp)
	if resp["default_model"] != "small" || resp["default_language"] != "de" {
		t.Errorf("unexpected settings response: %v", resp)
	}

	// Persisted to disk and visible on the next GET
	saved, err := config.Load(ts.srv.configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if saved.WhisperModel != "small" || saved.DefaultLanguage != "de" {
		t.Errorf("settings not persisted: %+v", saved)
	}
}

func TestSettingsValidation(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`{"default_model": "", "default_language": "en"}`,
		`{"default_model": "bogus", "default_language": "en"}`,
		`{"default_model": "base", "default_language": "xx"}`,
		`{"default_model": "base", "default_language": "  "}`,
	} {
		w := ts.do(t, http.MethodPost, "/api/settings", strings.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: got status %d, want 400", body, w.Code)
		}
	}
}

func TestAudioServing(t *testing.T) {
	ts := newTestServer(t)
	id := ts.addRecording(t, "play.wav", "")
	rec, _ := db.GetRecording(ts.database, id)

	w := ts.do(t, http.MethodGet, "/audio/"+filepath.ToSlash(rec.StoragePath), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if w.Body.String() != "RIFF" {
		t.Errorf("wrong file contents served")
	}
}

func TestAudioTraversalBlocked(t *testing.T) {
	ts := newTestServer(t)

	// A secret outside the storage root must not be reachable
	secret := filepath.Join(filepath.Dir(ts.cfg.StoragePath), "secret.txt")
	if err := os.WriteFile(secret, []byte("topsecret"), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	w := ts.do(t, http.MethodGet, "/audio/../secret.txt", nil)
	if w.Code == http.StatusOK && w.Body.String() == "topsecret" {
		t.Fatalf("path traversal leaked a file outside storage")
	}

	if w := ts.do(t, http.MethodGet, "/audio/2026/08-28/missing.wav", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing file: got status %d, want 404", w.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
