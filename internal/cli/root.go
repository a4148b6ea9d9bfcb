// Package cli implements the podscribe CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/podscribe/podscribe/internal/config"
	"github.com/podscribe/podscribe/internal/embedding"
	"github.com/podscribe/podscribe/internal/generate"
	"github.com/podscribe/podscribe/internal/logger"
	"github.com/podscribe/podscribe/internal/media"
	"github.com/podscribe/podscribe/internal/model"
	"github.com/podscribe/podscribe/internal/pipeline"
	"github.com/podscribe/podscribe/internal/retrieval"
	"github.com/podscribe/podscribe/internal/transcribe"
)

var (
	dataDir     string
	formatFlag  string
	verboseFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "podscribe",
	Short: "Transcribe, analyze, and question long-form audio",
	Long: "podscribe turns a long recording into a transcript, per-segment analyses,\n" +
		"and a retrieval-grounded Q&A interface. Expensive stages are cached by\n" +
		"content, so reprocessing the same audio is cheap.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory (default: $PODSCRIBE_DATA or ~/.podscribe)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print pipeline progress to stderr")
}

func loadConfig() config.Config {
	if dataDir != "" {
		os.Setenv("PODSCRIBE_DATA", dataDir)
	}
	return config.Load()
}

func openRetrieval(cfg config.Config) (*retrieval.Store, error) {
	emb := embedding.NewFromEnv()
	if emb == nil {
		return nil, fmt.Errorf("no embedding provider configured (set PODSCRIBE_EMBED_PROVIDER)")
	}
	return retrieval.NewStore(cfg.DBPath, emb, retrieval.WithChunkSize(cfg.ChunkSize))
}

func newPipeline(cfg config.Config) (*pipeline.Pipeline, *retrieval.Store, error) {
	store, err := openRetrieval(cfg)
	if err != nil {
		return nil, nil, err
	}

	gen := generate.NewFromEnv()
	if gen == nil {
		store.Close()
		return nil, nil, fmt.Errorf("no generation provider configured (set PODSCRIBE_LLM_PROVIDER)")
	}

	backend := transcribe.NewWhisperBackend(cfg.WhisperURL, cfg.WhisperAPIKey, cfg.WhisperModel)
	coordinator := transcribe.NewCoordinator(backend, media.FFmpeg{}, transcribe.Config{
		Window:  cfg.Window,
		Workers: cfg.Workers,
	})

	p, err := pipeline.New(pipeline.Backends{
		Transcriber: coordinator,
		Generator:   gen,
		Retrieval:   store,
	}, pipeline.Config{
		CacheDir:     cfg.CacheDir,
		SegmentWords: cfg.SegmentWords,
		TopK:         cfg.TopK,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return p, store, nil
}

func logPath(cfg config.Config) string {
	return filepath.Join(cfg.DataDir, "log.json")
}

// saveLog persists the run's interaction log so the log command can
// show it later. Failure to persist is not worth failing the run over.
func saveLog(cfg config.Config, entries []model.Entry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err == nil {
		err = os.WriteFile(logPath(cfg), data, 0o644)
	}
	if err != nil {
		logger.Warn("persist interaction log: %v", err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
