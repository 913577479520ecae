// ABOUTME: Unit tests for the root command
// ABOUTME: Tests Execute function, help output, and subcommand registration
package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestExecute(t *testing.T) {
	t.Run("runs without error", func(t *testing.T) {
		// Capture output
		var stdout bytes.Buffer
		rootCmd.SetOut(&stdout)
		rootCmd.SetErr(&stdout)

		// Set help flag to avoid interactive behavior
		rootCmd.SetArgs([]string{"--help"})

		err := Execute()

		if err != nil {
			t.Fatalf("expected Execute() to run without error, got: %v", err)
		}
	})
}

func TestRootCommand(t *testing.T) {
	t.Run("has correct metadata", func(t *testing.T) {
		if rootCmd.Use != "vox" {
			t.Errorf("expected Use to be 'vox', got: %s", rootCmd.Use)
		}

		if rootCmd.Short != "Audio recording manager" {
			t.Errorf("expected Short description, got: %s", rootCmd.Short)
		}

		if !strings.Contains(rootCmd.Long, "transcribes") {
			t.Errorf("expected Long description to mention transcription, got: %s", rootCmd.Long)
		}
	})

	t.Run("has expected subcommands registered", func(t *testing.T) {
		want := map[string]bool{
			"serve":   false,
			"ingest":  false,
			"list":    false,
			"search":  false,
			"reindex": false,
			"mcp":     false,
		}
		for _, cmd := range rootCmd.Commands() {
			if _, ok := want[cmd.Name()]; ok {
				want[cmd.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %q subcommand to be registered", name)
			}
		}
	})
}

func TestRenderMarks(t *testing.T) {
	// Colors are disabled in tests, Sprint passes text through
	color.NoColor = true
	highlight := color.New(color.FgYellow)

	got := renderMarks("before <mark>term</mark> after", highlight)
	if got != "before term after" {
		t.Errorf("got %q", got)
	}

	// Unterminated marker does not lose text
	got = renderMarks("start <mark>dangling", highlight)
	if got != "start dangling" {
		t.Errorf("got %q", got)
	}
}
