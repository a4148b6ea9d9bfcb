// Package config loads pipeline settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/podscribe/podscribe/internal/chunker"
	"github.com/podscribe/podscribe/internal/retrieval"
	"github.com/podscribe/podscribe/internal/transcribe"
)

// Config holds all tunable settings. Every field has a working default;
// PODSCRIBE_* environment variables override them.
type Config struct {
	// DataDir is the root for all durable state.
	DataDir string
	// CacheDir holds the per-operation result caches.
	CacheDir string
	// DBPath is the embedding collection database.
	DBPath string

	// ChunkSize is the retrieval chunk target size in words.
	ChunkSize int
	// SegmentWords is the analysis segment size in words.
	SegmentWords int
	// TopK is how many chunks ground each chat answer.
	TopK int

	// Window is the transcription window duration.
	Window time.Duration
	// Workers bounds concurrent window transcriptions.
	Workers int

	// WhisperURL, WhisperModel, WhisperAPIKey configure the
	// transcription backend.
	WhisperURL    string
	WhisperModel  string
	WhisperAPIKey string
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() Config {
	godotenv.Load()

	dataDir := os.Getenv("PODSCRIBE_DATA")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".podscribe")
	}

	return Config{
		DataDir:       dataDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		DBPath:        filepath.Join(dataDir, "retrieval.db"),
		ChunkSize:     envInt("PODSCRIBE_CHUNK_SIZE", chunker.DefaultChunkSize),
		SegmentWords:  envInt("PODSCRIBE_SEGMENT_WORDS", chunker.DefaultSegmentWords),
		TopK:          envInt("PODSCRIBE_TOP_K", retrieval.DefaultTopK),
		Window:        time.Duration(envInt("PODSCRIBE_WINDOW_SECONDS", int(transcribe.DefaultWindow.Seconds()))) * time.Second,
		Workers:       envInt("PODSCRIBE_WORKERS", transcribe.DefaultWorkers),
		WhisperURL:    os.Getenv("PODSCRIBE_WHISPER_URL"),
		WhisperModel:  os.Getenv("PODSCRIBE_WHISPER_MODEL"),
		WhisperAPIKey: os.Getenv("OPENAI_API_KEY"),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
