// ABOUTME: Audio file metadata extraction and internal filename generation
// ABOUTME: Shells out to ffprobe for stream info, uses timestamped UUIDs for names
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata describes the audio properties of an imported file.
type Metadata struct {
	DurationSeconds float64
	SampleRate      int
	Channels        int
	Format          string
	FileSizeBytes   int64
}

// ffprobe emits numbers as JSON strings, so every field scans from string.
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Duration   string `json:"duration"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Size     string `json:"size"`
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe extracts audio metadata from a file using ffprobe.
func Probe(ctx context.Context, path string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, stream := range probed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		meta := &Metadata{
			Format:   stream.CodecName,
			Channels: stream.Channels,
		}
		meta.DurationSeconds, _ = strconv.ParseFloat(stream.Duration, 64)
		if meta.DurationSeconds == 0 {
			// Some containers only report duration at the format level
			meta.DurationSeconds, _ = strconv.ParseFloat(probed.Format.Duration, 64)
		}
		meta.SampleRate, _ = strconv.Atoi(stream.SampleRate)
		meta.FileSizeBytes, _ = strconv.ParseInt(probed.Format.Size, 10, 64)
		return meta, nil
	}

	return nil, fmt.Errorf("no audio stream in %s", path)
}

// GenerateInternalFilename builds a collision-resistant storage name in the
// form <unix-timestamp>_<8-char-uuid><ext>, keeping the original extension.
func GenerateInternalFilename(originalFilename string) string {
	timestamp := time.Now().Unix()
	shortID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("%d_%s%s", timestamp, shortID, ext)
}

// DatePath returns the dated subdirectory a recording imported at t is
// stored under, e.g. "2026/08-28".
func DatePath(t time.Time) string {
	return filepath.Join(t.Format("2006"), t.Format("01-02"))
}

// SupportedExtension reports whether the file extension belongs to a
// format the importer accepts.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".m4a":
		return true
	}
	return false
}
