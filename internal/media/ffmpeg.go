// Package media shells out to ffmpeg and ffprobe for audio probing and
// window export.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Processor is the audio toolchain the transcription coordinator consumes.
type Processor interface {
	// Duration reports the total length of the audio at path.
	Duration(ctx context.Context, path string) (time.Duration, error)

	// ExportWindow writes the [offset, offset+length) span of src to dst
	// as 16kHz mono WAV.
	ExportWindow(ctx context.Context, src, dst string, offset, length time.Duration) error
}

// FFmpeg implements Processor using the ffmpeg and ffprobe binaries.
type FFmpeg struct{}

// Duration probes the container duration via ffprobe.
func (FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return ParseProbeDuration(out.String())
}

// ExportWindow extracts one window of audio without re-reading the rest
// of the file (-ss before -i seeks on input).
func (FFmpeg) ExportWindow(ctx context.Context, src, dst string, offset, length time.Duration) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-ss", formatSeconds(offset),
		"-t", formatSeconds(length),
		"-i", src,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		dst,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg export: %w", err)
	}
	return nil
}

// ExtractAudio uses ffmpeg to extract mono 16kHz WAV from any container
// (uploads may be video). Returns the path to the extracted audio file.
func ExtractAudio(ctx context.Context, inputPath, tmpDir string) (string, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	out := filepath.Join(tmpDir, base+"_audio_16k.wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inputPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w", err)
	}
	return out, nil
}

// ParseProbeDuration parses ffprobe's decimal-seconds duration output.
func ParseProbeDuration(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(s), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
