// ABOUTME: MCP resource implementations for vox
// ABOUTME: Provides queryable context about the recording library
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/vox/internal/db"
)

// registerResources adds all MCP resources to the server.
func (s *Server) registerResources() {
	recentResource := &mcp.Resource{
		URI:         "vox://recent-recordings",
		Name:        "Recent Recordings",
		Description: "The 10 most recently imported recordings with metadata",
		MIMEType:    "application/json",
	}
	s.mcpServer.AddResource(recentResource, s.handleRecentRecordings)

	statusResource := &mcp.Resource{
		URI:         "vox://library-status",
		Name:        "Library Status",
		Description: "Recording counts grouped by transcription status",
		MIMEType:    "text/markdown",
	}
	s.mcpServer.AddResource(statusResource, s.handleLibraryStatus)
}

// handleRecentRecordings implements the recent-recordings resource.
func (s *Server) handleRecentRecordings(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	recordings, _, err := db.ListRecordings(s.database, db.ListParams{Page: 1, PerPage: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}

	summaries := make([]RecordingData, 0, len(recordings))
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
		summaries = append(summaries, data)
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, err
	}

	result := &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "vox://recent-recordings",
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}

	return result, nil
}

// handleLibraryStatus implements the library-status resource.
func (s *Server) handleLibraryStatus(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rows, err := s.database.Query("SELECT transcript_status, COUNT(*) FROM recordings GROUP BY transcript_status")
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sb strings.Builder
	sb.WriteString("# Library Status\n\n")
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		sb.WriteString(fmt.Sprintf("- **%s**: %d\n", status, count))
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sb.WriteString(fmt.Sprintf("\n%d recordings total\n", total))

	result := &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "vox://library-status",
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}

	return result, nil
}
