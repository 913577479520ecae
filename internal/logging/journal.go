// ABOUTME: Ingest journal file writing
// ABOUTME: Formats import events as markdown or JSON and appends to daily logs
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImportEvent records one file passing through the ingest pipeline.
type ImportEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	OriginalFilename string    `json:"original_filename"`
	InternalFilename string    `json:"internal_filename"`
	StoragePath      string    `json:"storage_path"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	DurationSeconds  float64   `json:"duration_seconds"`
}

// WriteImportJournal appends event to the daily ingest journal
func WriteImportJournal(journalDir, format string, event ImportEvent) error {
	// Create journal directory if needed
	if err := os.MkdirAll(journalDir, 0755); err != nil {
		return err
	}

	// Determine journal file name (one per day)
	date := event.Timestamp.Format("2006-01-02")
	journalFile := filepath.Join(journalDir, date+".log")

	// Format event
	var content string
	switch format {
	case "json":
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		content = string(data) + "\n"
	case "markdown":
		fallthrough
	default:
		content = formatMarkdown(event)
	}

	// Append to file
	f, err := os.OpenFile(journalFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)
	return err
}

func formatMarkdown(event ImportEvent) string {
	var sb strings.Builder

	timeStr := event.Timestamp.Format("15:04:05")
	sb.WriteString(fmt.Sprintf("## %s - imported %s\n", timeStr, event.OriginalFilename))

	sb.WriteString(fmt.Sprintf("- **Stored as**: %s\n", event.StoragePath))
	sb.WriteString(fmt.Sprintf("- **Size**: %d bytes\n", event.FileSizeBytes))
	if event.DurationSeconds > 0 {
		sb.WriteString(fmt.Sprintf("- **Duration**: %.1fs\n", event.DurationSeconds))
	}
	sb.WriteString("\n")

	return sb.String()
}
