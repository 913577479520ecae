// ABOUTME: MCP tool implementations for vox
// ABOUTME: Search, list, and inspect recordings from an AI assistant
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/vox/internal/db"
	"github.com/harper/vox/internal/search"
)

// SearchRecordingsInput defines the input for search_recordings tool.
type SearchRecordingsInput struct {
	Query   string `json:"query" jsonschema:"Full-text search query, at least 3 characters" jsonschema_extras:"required=true"`
	Page    int    `json:"page,omitempty" jsonschema:"Page number, starting at 1"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"Results per page, at most 100"`
}

// SearchRecordingsOutput defines the output for search_recordings tool.
type SearchRecordingsOutput struct {
	Results []search.Result `json:"results" jsonschema:"Ranked matches with excerpts"`
	Total   int             `json:"total" jsonschema:"Total number of matches"`
	Page    int             `json:"page" jsonschema:"Page number returned"`
}

// ListRecordingsInput defines the input for list_recordings tool.
type ListRecordingsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of recordings to return (default 10)"`
}

// RecordingData is a compact recording summary for tool output.
type RecordingData struct {
	ID               int64   `json:"id"`
	OriginalFilename string  `json:"original_filename"`
	ImportTimestamp  string  `json:"import_timestamp"`
	DurationSeconds  float64 `json:"duration_seconds,omitempty"`
	TranscriptStatus string  `json:"transcript_status"`
}

// ListRecordingsOutput defines the output for list_recordings tool.
type ListRecordingsOutput struct {
	Recordings []RecordingData `json:"recordings"`
	Count      int             `json:"count"`
}

// GetRecordingInput defines the input for get_recording tool.
type GetRecordingInput struct {
	ID int64 `json:"id" jsonschema:"Recording id" jsonschema_extras:"required=true"`
}

// GetRecordingOutput defines the output for get_recording tool.
type GetRecordingOutput struct {
	ID               int64        `json:"id"`
	OriginalFilename string       `json:"original_filename"`
	ImportTimestamp  string       `json:"import_timestamp"`
	TranscriptStatus string       `json:"transcript_status"`
	TranscriptText   string       `json:"transcript_text,omitempty"`
	Segments         []db.Segment `json:"segments,omitempty"`
}

// registerTools adds all MCP tools to the server.
func (s *Server) registerTools() {
	searchTool := &mcp.Tool{
		Name:        "search_recordings",
		Description: "Full-text search across recording filenames and transcripts. Returns ranked matches with highlighted excerpts.",
	}
	mcp.AddTool(s.mcpServer, searchTool, s.handleSearchRecordings)

	listTool := &mcp.Tool{
		Name:        "list_recordings",
		Description: "List the most recently imported recordings with their transcription status.",
	}
	mcp.AddTool(s.mcpServer, listTool, s.handleListRecordings)

	getTool := &mcp.Tool{
		Name:        "get_recording",
		Description: "Fetch one recording's metadata, full transcript, and timed segments by id.",
	}
	mcp.AddTool(s.mcpServer, getTool, s.handleGetRecording)
}

// handleSearchRecordings implements the search_recordings tool.
func (s *Server) handleSearchRecordings(ctx context.Context, req *mcp.CallToolRequest, input SearchRecordingsInput) (*mcp.CallToolResult, SearchRecordingsOutput, error) {
	page := input.Page
	if page == 0 {
		page = 1
	}
	perPage := input.PerPage
	if perPage == 0 {
		perPage = s.engine.DefaultPerPage()
	}

	result, err := s.engine.Search(input.Query, page, perPage)
	if err != nil {
		return nil, SearchRecordingsOutput{}, fmt.Errorf("search failed: %w", err)
	}

	output := SearchRecordingsOutput{
		Results: result.Results,
		Total:   result.Total,
		Page:    result.PageNum,
	}

	toolResult := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Found %d recordings matching %q", result.Total, input.Query),
			},
		},
	}

	return toolResult, output, nil
}

// handleListRecordings implements the list_recordings tool.
func (s *Server) handleListRecordings(ctx context.Context, req *mcp.CallToolRequest, input ListRecordingsInput) (*mcp.CallToolResult, ListRecordingsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	recordings, _, err := db.ListRecordings(s.database, db.ListParams{Page: 1, PerPage: limit})
	if err != nil {
		return nil, ListRecordingsOutput{}, fmt.Errorf("failed to list recordings: %w", err)
	}

	output := ListRecordingsOutput{Count: len(recordings)}
	for _, rec := range recordings {
		data := RecordingData{
			ID:               rec.ID,
			OriginalFilename: rec.OriginalFilename,
			ImportTimestamp:  rec.ImportTimestamp.Format(time.RFC3339),
			TranscriptStatus: rec.TranscriptStatus,
		}
		if rec.DurationSeconds != nil {
			data.DurationSeconds = *rec.DurationSeconds
		}
		output.Recordings = append(output.Recordings, data)
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("%d recordings", len(recordings)),
			},
		},
	}

	return result, output, nil
}

// handleGetRecording implements the get_recording tool.
func (s *Server) handleGetRecording(ctx context.Context, req *mcp.CallToolRequest, input GetRecordingInput) (*mcp.CallToolResult, GetRecordingOutput, error) {
	rec, err := db.GetRecording(s.database, input.ID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, GetRecordingOutput{}, fmt.Errorf("recording %d not found", input.ID)
	}
	if err != nil {
		return nil, GetRecordingOutput{}, fmt.Errorf("failed to load recording: %w", err)
	}

	output := GetRecordingOutput{
		ID:               rec.ID,
		OriginalFilename: rec.OriginalFilename,
		ImportTimestamp:  rec.ImportTimestamp.Format(time.RFC3339),
		TranscriptStatus: rec.TranscriptStatus,
		Segments:         rec.TranscriptSegments,
	}
	if rec.TranscriptText != nil {
		output.TranscriptText = *rec.TranscriptText
	}

	summary := fmt.Sprintf("Recording %d: %s (%s)", rec.ID, rec.OriginalFilename, rec.TranscriptStatus)
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
		},
	}

	return result, output, nil
}
