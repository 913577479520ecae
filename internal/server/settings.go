// ABOUTME: Settings API: read and persist global transcription defaults
package server

import (
	"net/http"
	"strings"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/transcribe"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"default_model":    s.cfg.WhisperModel,
		"default_language": s.cfg.DefaultLanguage,
	})
}

func (s *Server) handlePostSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DefaultModel    string `json:"default_model"`
		DefaultLanguage string `json:"default_language"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	model := strings.TrimSpace(body.DefaultModel)
	language := strings.TrimSpace(body.DefaultLanguage)
	if model == "" || !transcribe.ValidModel(model) {
		writeError(w, http.StatusBadRequest, "Invalid default_model")
		return
	}
	if language == "" || !transcribe.ValidLanguage(language) {
		writeError(w, http.StatusBadRequest, "Invalid default_language")
		return
	}

	s.cfg.WhisperModel = model
	s.cfg.DefaultLanguage = language
	if err := config.Save(s.configPath, *s.cfg); err != nil {
		s.logger.Error("failed to save config", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"default_model":    s.cfg.WhisperModel,
		"default_language": s.cfg.DefaultLanguage,
	})
}
