package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/podscribe/podscribe/internal/logger"
	"github.com/podscribe/podscribe/internal/media"
)

const (
	// DefaultWindow is the duration of each independently transcribed window.
	DefaultWindow = 300 * time.Second
	// DefaultWorkers bounds concurrent window transcriptions.
	DefaultWorkers = 3
)

// Coordinator splits a long recording into fixed-duration windows,
// transcribes them concurrently through a bounded worker pool, and
// reassembles the transcript in temporal order regardless of the order
// in which workers finish. A single window failure fails the whole
// request: a transcript with silent gaps is worse than no transcript.
type Coordinator struct {
	backend Backend
	media   media.Processor
	window  time.Duration
	workers int
}

// Config tunes a Coordinator. Zero values select the defaults.
type Config struct {
	Window  time.Duration
	Workers int
}

// NewCoordinator creates a coordinator over the given backend and audio
// toolchain.
func NewCoordinator(backend Backend, proc media.Processor, cfg Config) *Coordinator {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Coordinator{
		backend: backend,
		media:   proc,
		window:  cfg.Window,
		workers: cfg.Workers,
	}
}

type windowResult struct {
	offset time.Duration
	text   string
}

// Transcribe produces the full transcript of the audio at path. Windows
// are exported to uniquely named scratch files (one per offset, so
// concurrent workers never touch the same path), transcribed, and their
// scratch files removed whether transcription succeeds or fails. The
// scratch directory itself is removed once the whole operation finishes,
// including on error.
func (c *Coordinator) Transcribe(ctx context.Context, path string) (string, error) {
	total, err := c.media.Duration(ctx, path)
	if err != nil {
		return "", fmt.Errorf("probe duration: %w", err)
	}

	scratch, err := os.MkdirTemp("", "podscribe-windows-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	var offsets []time.Duration
	for off := time.Duration(0); off < total; off += c.window {
		offsets = append(offsets, off)
	}
	if len(offsets) == 0 {
		return "", nil
	}
	logger.Info("transcribing %d windows of %s with %d workers", len(offsets), c.window, c.workers)

	var (
		mu      sync.Mutex
		results []windowResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, off := range offsets {
		off := off
		g.Go(func() error {
			length := c.window
			if off+length > total {
				length = total - off
			}

			dst := filepath.Join(scratch, fmt.Sprintf("chunk_%d.wav", int(off.Seconds())))
			if err := c.media.ExportWindow(ctx, path, dst, off, length); err != nil {
				return fmt.Errorf("export window at %s: %w", off, err)
			}
			defer os.Remove(dst)

			segments, err := c.backend.Transcribe(ctx, dst)
			if err != nil {
				return fmt.Errorf("transcribe window at %s: %w", off, err)
			}

			mu.Lock()
			results = append(results, windowResult{offset: off, text: JoinSegments(segments)})
			mu.Unlock()
			logger.Debug("window at %s done", off)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	// Workers append in completion order; temporal order is restored here.
	sort.Slice(results, func(i, j int) bool {
		return results[i].offset < results[j].offset
	})

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.text != "" {
			parts = append(parts, r.text)
		}
	}
	return strings.Join(parts, " "), nil
}
