// Package chunker splits transcript text into word windows for retrieval
// indexing and per-segment analysis.
package chunker

import (
	"strings"
)

const (
	// DefaultChunkSize is the target retrieval chunk size in words.
	DefaultChunkSize = 200
	// DefaultOverlap is the fraction of a chunk shared with its successor.
	DefaultOverlap = 0.5
	// DefaultSegmentWords is the analysis segment size in words.
	DefaultSegmentWords = 150
)

// Split breaks text into overlapping windows of up to targetSize words.
// Consecutive chunks start targetSize*(1-overlap) words apart, so each
// chunk shares overlap*targetSize words with the one before it and no
// topic straddling a chunk boundary is lost to retrieval. Splitting
// happens on whitespace boundaries only; the final chunk may be shorter
// than targetSize. Identical input always yields the identical sequence.
func Split(text string, targetSize int, overlap float64) []string {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= 1 {
		overlap = DefaultOverlap
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := int(float64(targetSize) * (1 - overlap))
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + targetSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// Segment breaks text into consecutive non-overlapping windows of up to
// maxWords words each. Used to size transcript segments for analysis.
func Segment(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultSegmentWords
	}

	words := strings.Fields(text)
	var segments []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		segments = append(segments, strings.Join(words[i:end], " "))
	}
	return segments
}
