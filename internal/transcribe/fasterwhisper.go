// ABOUTME: faster-whisper transcription backend
// ABOUTME: Runs an embedded Python helper and parses its JSON output
package transcribe

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

//go:embed assets/faster_whisper.py
var helperScript []byte

type fasterWhisperBackend struct{}

// NewFasterWhisperBackend returns a Backend that shells out to a Python
// helper using the faster-whisper library. Requires python3 with
// faster-whisper installed, or VOX_PYTHON pointing at such an interpreter.
func NewFasterWhisperBackend() Backend {
	return &fasterWhisperBackend{}
}

type helperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64  `json:"start"`
		End        float64  `json:"end"`
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
	} `json:"segments"`
}

func (b *fasterWhisperBackend) Transcribe(ctx context.Context, audioPath, model, language string) (Result, error) {
	scriptPath := filepath.Join(os.TempDir(), "vox_faster_whisper.py")
	if err := os.WriteFile(scriptPath, helperScript, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	args := []string{scriptPath, "--audio", audioPath, "--model", model}
	if language != "" && !strings.EqualFold(language, "auto") {
		args = append(args, "--language", language)
	}

	python := os.Getenv("VOX_PYTHON")
	if python == "" {
		python = "python3"
	}
	cmd := exec.CommandContext(ctx, python, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("faster-whisper failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("failed to run helper: %w", err)
	}

	var parsed helperOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse helper output: %w", err)
	}

	result := Result{
		Text:     parsed.Text,
		Language: parsed.Language,
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, Segment{
			Start:      s.Start,
			End:        s.End,
			Text:       strings.TrimSpace(s.Text),
			Confidence: s.Confidence,
		})
	}
	return result, nil
}
