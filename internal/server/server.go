// ABOUTME: HTTP API server for recordings, search, and settings
// ABOUTME: JSON endpoints plus range-capable audio file serving
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/search"
)

// Kicker wakes the transcription pipeline after new work is queued.
type Kicker interface {
	Kick()
}

// Server wires the storage, search, and pipeline layers behind an HTTP API.
type Server struct {
	database   *sql.DB
	cfg        *config.Config
	configPath string
	engine     *search.Engine
	pipeline   Kicker
	logger     *slog.Logger
}

func New(database *sql.DB, cfg *config.Config, configPath string, engine *search.Engine, pipeline Kicker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		database:   database,
		cfg:        cfg,
		configPath: configPath,
		engine:     engine,
		pipeline:   pipeline,
		logger:     logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/recordings", s.handleListRecordings)
	mux.HandleFunc("GET /api/recordings/{id}", s.handleGetRecording)
	mux.HandleFunc("GET /api/recordings/{id}/segments", s.handleGetSegments)
	mux.HandleFunc("DELETE /api/recordings/{id}", s.handleDeleteRecording)
	mux.HandleFunc("POST /api/recordings/upload", s.handleUpload)
	mux.HandleFunc("POST /api/recordings/{id}/transcribe", s.handleRetranscribe)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handlePostSettings)
	mux.HandleFunc("GET /audio/{path...}", s.handleAudio)

	return mux
}

func readJSON(r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
