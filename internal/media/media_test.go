// ABOUTME: Tests for internal filename generation and storage path layout
package media

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var internalNamePattern = regexp.MustCompile(`^(\d+)_([0-9a-f]{8})(\..+)?$`)

func TestGenerateInternalFilename(t *testing.T) {
	name := GenerateInternalFilename("My Interview.wav")

	m := internalNamePattern.FindStringSubmatch(name)
	if m == nil {
		t.Fatalf("filename %q does not match <timestamp>_<8hex><ext>", name)
	}

	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		t.Fatalf("timestamp not numeric: %v", err)
	}
	if diff := time.Now().Unix() - ts; diff < 0 || diff > 5 {
		t.Errorf("timestamp %d not near now", ts)
	}
	if m[3] != ".wav" {
		t.Errorf("got extension %q, want .wav", m[3])
	}
}

func TestGenerateInternalFilenameNoExtension(t *testing.T) {
	name := GenerateInternalFilename("rawdump")
	if strings.Contains(name, ".") {
		t.Errorf("got %q, want no extension", name)
	}
	if !internalNamePattern.MatchString(name) {
		t.Errorf("filename %q malformed", name)
	}
}

func TestGenerateInternalFilenameUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name := GenerateInternalFilename("a.mp3")
		if seen[name] {
			t.Fatalf("duplicate filename %q", name)
		}
		seen[name] = true
	}
}

func TestDatePath(t *testing.T) {
	ts := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	if got := DatePath(ts); got != "2026/08-28" {
		t.Errorf("got %q, want 2026/08-28", got)
	}
}

func TestSupportedExtension(t *testing.T) {
	cases := map[string]bool{
		"a.wav":       true,
		"b.MP3":       true,
		"c.m4a":       true,
		"d.flac":      false,
		"e.txt":       false,
		"noextension": false,
	}
	for path, want := range cases {
		if got := SupportedExtension(path); got != want {
			t.Errorf("SupportedExtension(%q) = %v, want %v", path, got, want)
		}
	}
}
