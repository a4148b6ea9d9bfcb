// Package transcribe converts audio recordings to text, splitting long
// recordings into windows transcribed concurrently.
package transcribe

import (
	"context"
	"strings"
)

// Segment is one span of transcribed speech.
type Segment struct {
	Start float64 // seconds from window start
	End   float64
	Text  string
}

// Backend is a pluggable speech-to-text service. Implementations should
// suppress output over silence (voice activity detection) so quiet
// windows do not produce hallucinated text.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// JoinSegments concatenates segment text with single spaces, skipping
// empty segments.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
