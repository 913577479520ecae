// ABOUTME: Query engine for recording search
// ABOUTME: Validates queries, paginates ranked matches, and assembles excerpted results
package search

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the minimum query length after trimming.
const MinQueryLength = 3

var (
	// ErrQueryTooShort rejects queries shorter than MinQueryLength.
	ErrQueryTooShort = errors.New("search query must be at least 3 characters long")
	// ErrInvalidPagination rejects non-positive or out-of-bounds paging.
	ErrInvalidPagination = errors.New("invalid pagination")
)

// Querier is the slice of Index the engine needs.
type Querier interface {
	Query(term string) ([]Match, error)
}

// Result is one search hit, ready for rendering.
// HighlightedFilename is set only when the filename itself matched.
type Result struct {
	ID                  int64   `json:"id"`
	OriginalFilename    string  `json:"original_filename"`
	HighlightedFilename string  `json:"highlighted_filename,omitempty"`
	RelevanceScore      float64 `json:"relevance_score"`
	Excerpt             string  `json:"excerpt"`
	TranscriptText      string  `json:"transcript_text"`
}

// Page is one page of search results with pagination metadata.
type Page struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	PageNum int      `json:"page"`
	PerPage int      `json:"per_page"`
	Pages   int      `json:"pages"`
	HasPrev bool     `json:"has_prev"`
	HasNext bool     `json:"has_next"`
}

// Engine executes search requests against an index. Configuration is
// passed in at construction; the engine reads no global state.
type Engine struct {
	idx            Querier
	defaultPerPage int
	maxPerPage     int
	excerptLength  int
}

// NewEngine builds an engine over idx with explicit paging and excerpt
// configuration.
func NewEngine(idx Querier, defaultPerPage, maxPerPage, excerptLength int) *Engine {
	return &Engine{
		idx:            idx,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
		excerptLength:  excerptLength,
	}
}

// DefaultPerPage returns the page size used when the caller does not
// specify one.
func (e *Engine) DefaultPerPage() int {
	return e.defaultPerPage
}

// Search validates the query and pagination, executes the index query,
// and returns the requested page. Validation failures never touch the
// index. Search is read-only and safe for concurrent use.
func (e *Engine) Search(query string, page, perPage int) (*Page, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	if page < 1 {
		return nil, fmt.Errorf("%w: page must be 1 or greater", ErrInvalidPagination)
	}
	if perPage < 1 {
		return nil, fmt.Errorf("%w: per_page must be positive", ErrInvalidPagination)
	}
	if perPage > e.maxPerPage {
		return nil, fmt.Errorf("%w: per_page cannot exceed %d", ErrInvalidPagination, e.maxPerPage)
	}

	matches, err := e.idx.Query(trimmed)
	if err != nil {
		return nil, err
	}

	total := len(matches)
	pages := (total + perPage - 1) / perPage

	offset := (page - 1) * perPage
	var pageMatches []Match
	if offset < total {
		limit := offset + perPage
		if limit > total {
			limit = total
		}
		pageMatches = matches[offset:limit]
	}

	results := make([]Result, 0, len(pageMatches))
	for _, m := range pageMatches {
		res := Result{
			ID:               m.ID,
			OriginalFilename: m.OriginalFilename,
			RelevanceScore:   math.Abs(m.Rank),
			Excerpt:          e.excerpt(m, trimmed),
			TranscriptText:   m.TranscriptText,
		}
		// highlight() returns the bare filename when only the transcript
		// matched; markers mean the filename itself carried a hit.
		if strings.Contains(m.HighlightedFilename, MarkOpen) {
			res.HighlightedFilename = BuildExcerpt(m.HighlightedFilename, trimmed, e.excerptLength)
		}
		results = append(results, res)
	}

	return &Page{
		Query:   query,
		Results: results,
		Total:   total,
		PageNum: page,
		PerPage: perPage,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}

// excerpt prefers the index's highlighted transcript; when the index
// produced no markers for this row the builder falls back to manual
// highlighting over the plain text.
func (e *Engine) excerpt(m Match, term string) string {
	if strings.TrimSpace(m.HighlightedTranscript) != "" {
		return BuildExcerpt(m.HighlightedTranscript, term, e.excerptLength)
	}
	return BuildExcerpt(m.TranscriptText, term, e.excerptLength)
}
