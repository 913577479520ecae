// ABOUTME: Audio file serving with path traversal protection
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")

	storageRoot, err := filepath.Abs(s.cfg.StoragePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage misconfigured")
		return
	}

	// Resolve and confirm the path stays inside the storage root
	full := filepath.Join(storageRoot, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(full)
	if err != nil || (resolved != storageRoot && !strings.HasPrefix(resolved, storageRoot+string(filepath.Separator))) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}

	// ServeFile handles range requests for audio scrubbing
	http.ServeFile(w, r, resolved)
}
