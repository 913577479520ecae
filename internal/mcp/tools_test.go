//go:build sqlite_fts5

// ABOUTME: Tests for MCP tools
// ABOUTME: Validates tool handlers and input/output types
package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/vox/internal/config"
	"github.com/harper/vox/internal/db"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()

	defaults := config.Default()
	cfg := &defaults
	cfg.StoragePath = t.TempDir()

	database, err := db.InitDB(filepath.Join(cfg.StoragePath, "test.db"))
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return NewServer(database, cfg)
}

func addTranscribed(t *testing.T, s *Server, name, transcript string) int64 {
	t.Helper()

	id, err := db.InsertRecording(s.database, db.Recording{
		OriginalFilename: name,
		InternalFilename: name,
		StoragePath:      "2026/08-28/" + name,
		ImportTimestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertRecording failed: %v", err)
	}
	if transcript != "" {
		if err := db.SetTranscript(s.database, id, transcript, nil, "en"); err != nil {
			t.Fatalf("SetTranscript failed: %v", err)
		}
	}
	return id
}

func TestSearchRecordingsTool(t *testing.T) {
	server := newTestMCPServer(t)
	addTranscribed(t, server, "meeting.wav", "discussing the roadmap for next quarter")
	addTranscribed(t, server, "lunch.wav", "what should we order today")

	result, output, err := server.handleSearchRecordings(context.Background(), nil, SearchRecordingsInput{
		Query: "roadmap",
	})
	if err != nil {
		t.Fatalf("handleSearchRecordings failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if output.Total != 1 || len(output.Results) != 1 {
		t.Fatalf("got %d results (total %d), want 1", len(output.Results), output.Total)
	}
	if !strings.Contains(output.Results[0].Excerpt, "roadmap") {
		t.Errorf("excerpt missing term: %q", output.Results[0].Excerpt)
	}
}

func TestSearchRecordingsToolRejectsShortQuery(t *testing.T) {
	server := newTestMCPServer(t)

	_, _, err := server.handleSearchRecordings(context.Background(), nil, SearchRecordingsInput{Query: "ab"})
	if err == nil {
		t.Fatal("expected error for short query")
	}
}

func TestListRecordingsTool(t *testing.T) {
	server := newTestMCPServer(t)
	addTranscribed(t, server, "one.wav", "")
	addTranscribed(t, server, "two.wav", "done already")

	result, output, err := server.handleListRecordings(context.Background(), nil, ListRecordingsInput{})
	if err != nil {
		t.Fatalf("handleListRecordings failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if output.Count != 2 {
		t.Errorf("got count %d, want 2", output.Count)
	}
}

func TestGetRecordingTool(t *testing.T) {
	server := newTestMCPServer(t)
	id := addTranscribed(t, server, "detail.wav", "full transcript here")

	_, output, err := server.handleGetRecording(context.Background(), nil, GetRecordingInput{ID: id})
	if err != nil {
		t.Fatalf("handleGetRecording failed: %v", err)
	}
	if output.ID != id || output.TranscriptText != "full transcript here" {
		t.Errorf("unexpected output: %+v", output)
	}

	if _, _, err := server.handleGetRecording(context.Background(), nil, GetRecordingInput{ID: 999}); err == nil {
		t.Error("expected error for unknown id")
	}
}
