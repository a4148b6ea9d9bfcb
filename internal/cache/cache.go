// Package cache provides a content-addressed result cache for expensive
// text operations. Each entry is one file named by the SHA-256 digest of
// the input that produced it, so identical inputs hit the same entry no
// matter which call site computed them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/podscribe/podscribe/internal/logger"
)

// Func is any single-string-in, string-out operation the cache can wrap.
type Func func(input string) (string, error)

// Store is a durable key/value store keyed by content digest.
// One Store per logical namespace (transcripts, analyses, summaries).
type Store struct {
	dir string
}

// NewStore opens a cache store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(input string) string {
	return filepath.Join(s.dir, Hash(input)+".txt")
}

// Get returns the cached result for input, if one exists. Any read
// failure is reported as a miss: an unavailable cache must never block
// recomputation.
func (s *Store) Get(input string) (string, bool) {
	p := s.path(input)
	data, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	logger.Debug("cache hit: %s", p)
	return string(data), true
}

// Put persists result keyed by input's digest. The write is synced to
// disk before Put returns. An existing entry is left untouched: the
// first value stored for a digest wins.
func (s *Store) Put(input, result string) error {
	p := s.path(input)
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	if _, err := f.WriteString(result); err != nil {
		f.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync cache entry: %w", err)
	}
	logger.Debug("cache store: %s", p)
	return f.Close()
}

// Wrap memoizes op through the store. On a hit the wrapped operation is
// skipped entirely, so any side effects inside op (progress output,
// counters) do not run on hits. Errors from op propagate uncached; a
// failed Put is logged and swallowed, and the fresh result is still
// returned.
func Wrap(op Func, s *Store) Func {
	return func(input string) (string, error) {
		if v, ok := s.Get(input); ok {
			return v, nil
		}
		result, err := op(input)
		if err != nil {
			return "", err
		}
		if err := s.Put(input, result); err != nil {
			logger.Warn("cache write failed: %v", err)
		}
		return result, nil
	}
}

// Hash returns the hex SHA-256 digest of the UTF-8 bytes of input.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex SHA-256 digest of a file's contents. Audio
// files are identified by their bytes, not their path, so re-uploading
// the same recording under a new name resolves to the same identifier.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
