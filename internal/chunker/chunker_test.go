package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_EmptyInput(t *testing.T) {
	if got := Split("", 10, 0.5); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := Split("   \n\t  ", 10, 0.5); got != nil {
		t.Errorf("expected nil for whitespace-only input, got %v", got)
	}
}

func TestSplit_ShortInput(t *testing.T) {
	text := "just a few words"
	got := Split(text, 10, 0.5)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != text {
		t.Errorf("expected %q, got %q", text, got[0])
	}
}

func TestSplit_ChunkCount(t *testing.T) {
	// With overlap 0.5 the step is N/2, so chunk count is ceil(W / (N/2)).
	tests := []struct {
		words, target int
		want          int
	}{
		{100, 20, 10},
		{101, 20, 11},
		{10, 20, 1},
		{30, 20, 3},
	}
	for _, tt := range tests {
		got := Split(wordText(tt.words), tt.target, 0.5)
		if len(got) != tt.want {
			t.Errorf("Split(%d words, %d) = %d chunks, want %d", tt.words, tt.target, len(got), tt.want)
		}
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	const target = 20
	text := wordText(100)
	chunks := Split(text, target, 0.5)

	for i, c := range chunks {
		words := strings.Fields(c)
		if len(words) > target {
			t.Errorf("chunk %d has %d words, exceeds target %d", i, len(words), target)
		}
		// Chunk i starts at word offset i * target/2.
		if words[0] != fmt.Sprintf("w%d", i*target/2) {
			t.Errorf("chunk %d starts at %q, want w%d", i, words[0], i*target/2)
		}
	}

	// Adjacent full-size chunks share the back half of the earlier chunk.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	shared := first[target/2:]
	for i, w := range shared {
		if second[i] != w {
			t.Fatalf("overlap mismatch at %d: %q vs %q", i, second[i], w)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := wordText(77)
	a := Split(text, 16, 0.5)
	b := Split(text, 16, 0.5)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs", i)
		}
	}
}

func TestSegment_NonOverlapping(t *testing.T) {
	text := wordText(50)
	segments := Segment(text, 20)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	// Concatenating segments reconstructs the original word sequence.
	joined := strings.Join(segments, " ")
	if joined != text {
		t.Errorf("segments do not cover text exactly:\n%q\n%q", joined, text)
	}
	last := strings.Fields(segments[2])
	if len(last) != 10 {
		t.Errorf("final segment has %d words, want 10", len(last))
	}
}

func TestSegment_Empty(t *testing.T) {
	if got := Segment("", 20); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
