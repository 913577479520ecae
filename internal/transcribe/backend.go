// ABOUTME: Transcription backend interface and result types
// ABOUTME: Backends turn an audio file into text with timed segments
package transcribe

import "context"

// Segment is a timed span of transcribed speech.
type Segment struct {
	Start      float64
	End        float64
	Text       string
	Confidence *float64
}

// Result bundles everything a backend produces for one file.
type Result struct {
	Text     string
	Segments []Segment
	Language string
}

// Backend is a pluggable transcription engine. Language "auto" or ""
// requests detection.
type Backend interface {
	Transcribe(ctx context.Context, audioPath, model, language string) (Result, error)
}
