// ABOUTME: Full-text search API handler
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/harper/vox/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.FTSEnabled || s.engine == nil {
		writeError(w, http.StatusNotFound, "search is disabled")
		return
	}

	q := r.URL.Query()
	query := q.Get("q")

	page := 1
	if raw := q.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Page must be 1 or greater")
			return
		}
		page = p
	}

	perPage := s.engine.DefaultPerPage()
	if raw := q.Get("per_page"); raw != "" {
		pp, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "per_page must be positive")
			return
		}
		perPage = pp
	}

	result, err := s.engine.Search(query, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrQueryTooShort), errors.Is(err, search.ErrInvalidPagination):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, search.ErrIndexUnavailable):
			s.logger.Error("search index unavailable", "error", err)
			writeError(w, http.StatusInternalServerError, "search is temporarily unavailable")
		default:
			s.logger.Error("search failed", "query", query, "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
