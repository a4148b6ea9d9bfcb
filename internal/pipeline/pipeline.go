// Package pipeline sequences transcription, segmentation, analysis, and
// retrieval-grounded chat over a single recording, recording every stage
// in an append-only interaction log.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/podscribe/podscribe/internal/cache"
	"github.com/podscribe/podscribe/internal/chunker"
	"github.com/podscribe/podscribe/internal/generate"
	"github.com/podscribe/podscribe/internal/logger"
	"github.com/podscribe/podscribe/internal/model"
	"github.com/podscribe/podscribe/internal/retrieval"
)

// NotReadyAnswer is returned by Ask before a recording has been
// processed. Asking too early is a legitimate state, not an error.
const NotReadyAnswer = "The recording has not been processed yet. Process an audio file before asking questions."

// Transcriber turns an audio file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Backends bundles the external services the pipeline depends on. They
// are passed explicitly so tests can substitute fakes without shared
// process state.
type Backends struct {
	Transcriber Transcriber
	Generator   generate.Generator
	Retrieval   *retrieval.Store
}

// Config tunes pipeline behavior. Zero values select the defaults.
type Config struct {
	// CacheDir is the root under which per-operation cache namespaces
	// (transcripts, analyses, summaries) are created.
	CacheDir string
	// SegmentWords is the analysis segment size.
	SegmentWords int
	// TopK is how many chunks ground each chat answer.
	TopK int
}

// Result is the output of one full pipeline run.
type Result struct {
	FileID     string   `json:"file_id"`
	Transcript string   `json:"transcript"`
	Segments   []string `json:"segments"`
	Analyses   []string `json:"analyses"`
	Chunks     int      `json:"chunks"`
}

// Pipeline orchestrates the stages for one recording at a time.
type Pipeline struct {
	backends     Backends
	transcripts  *cache.Store
	analyses     *cache.Store
	summaries    *cache.Store
	segmentWords int
	topK         int

	log     *Log
	history []model.QA

	// Set once Process succeeds; chat preconditions check these.
	fileID     string
	transcript string
}

// New creates a pipeline with its cache namespaces rooted under
// cfg.CacheDir.
func New(b Backends, cfg Config) (*Pipeline, error) {
	if cfg.SegmentWords <= 0 {
		cfg.SegmentWords = chunker.DefaultSegmentWords
	}
	if cfg.TopK <= 0 {
		cfg.TopK = retrieval.DefaultTopK
	}

	transcripts, err := cache.NewStore(filepath.Join(cfg.CacheDir, "transcripts"))
	if err != nil {
		return nil, err
	}
	analyses, err := cache.NewStore(filepath.Join(cfg.CacheDir, "analyses"))
	if err != nil {
		return nil, err
	}
	summaries, err := cache.NewStore(filepath.Join(cfg.CacheDir, "summaries"))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		backends:     b,
		transcripts:  transcripts,
		analyses:     analyses,
		summaries:    summaries,
		segmentWords: cfg.SegmentWords,
		topK:         cfg.TopK,
		log:          NewLog(),
	}, nil
}

// Process runs transcribe -> segment -> analyze -> ingest for the
// recording at audioPath, appending each stage's output to the
// interaction log before the next stage begins. Re-running on an
// already-processed recording is cheap: transcription and analysis are
// memoized and ingestion is idempotent.
func (p *Pipeline) Process(ctx context.Context, audioPath string) (*Result, error) {
	p.log.Append(model.RoleUser, "Summarize this recording: "+filepath.Base(audioPath))

	fileID, err := cache.HashFile(audioPath)
	if err != nil {
		return nil, err
	}

	// Whole-file transcription is memoized on the audio content hash,
	// so the same bytes under a different path still hit the cache.
	transcript, ok := p.transcripts.Get(fileID)
	if !ok {
		transcript, err = p.backends.Transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
		if err := p.transcripts.Put(fileID, transcript); err != nil {
			logger.Warn("persist transcript: %v", err)
		}
	}
	p.log.Append(model.RoleTranscriber, transcript)

	segments := chunker.Segment(transcript, p.segmentWords)
	p.log.Append(model.RoleSegmenter, fmt.Sprintf("%d segments created", len(segments)))

	analyze := cache.Wrap(func(segment string) (string, error) {
		return p.backends.Generator.Generate(ctx, analysisPrompt(segment))
	}, p.analyses)

	analyses := make([]string, 0, len(segments))
	for i, seg := range segments {
		out, err := analyze(seg)
		if err != nil {
			// A failed analysis does not abort the run; the error text
			// stands in for the analysis.
			out = fmt.Sprintf("[Error] Failed to analyze segment %d: %v", i+1, err)
		}
		analyses = append(analyses, out)
	}
	p.log.Append(model.RoleAnalyzer, strings.Join(analyses, "\n"))

	chunks, err := p.backends.Retrieval.Ingest(ctx, fileID, transcript)
	if err != nil {
		return nil, fmt.Errorf("ingest transcript: %w", err)
	}

	p.fileID = fileID
	p.transcript = transcript

	return &Result{
		FileID:     fileID,
		Transcript: transcript,
		Segments:   segments,
		Analyses:   analyses,
		Chunks:     len(chunks),
	}, nil
}

// Ask answers a question grounded in the processed recording. Backend
// failures do not propagate: the answer is an "[Error] ..." string and
// the exchange is still logged.
func (p *Pipeline) Ask(ctx context.Context, question string) string {
	if p.transcript == "" {
		return NotReadyAnswer
	}

	var answer string
	hits, err := p.backends.Retrieval.Query(ctx, p.fileID, question, p.topK)
	if err != nil {
		answer = fmt.Sprintf("[Error] %v", err)
	} else {
		out, err := p.backends.Generator.Generate(ctx, chatPrompt(question, hits))
		if err != nil {
			answer = fmt.Sprintf("[Error] %v", err)
		} else {
			answer = strings.TrimSpace(out)
		}
	}

	p.log.Append(model.RoleChatbot, fmt.Sprintf("Q: %s\nA: %s", question, answer))
	p.history = append(p.history, model.QA{Question: question, Answer: answer})
	return answer
}

// Summarize produces a memoized summary of text.
func (p *Pipeline) Summarize(ctx context.Context, text string) (string, error) {
	summarize := cache.Wrap(func(t string) (string, error) {
		return p.backends.Generator.Generate(ctx, summaryPrompt(t))
	}, p.summaries)
	return summarize(text)
}

// History returns the chat exchanges so far, oldest first.
func (p *Pipeline) History() []model.QA {
	out := make([]model.QA, len(p.history))
	copy(out, p.history)
	return out
}

// LogEntries returns the interaction log in append order.
func (p *Pipeline) LogEntries() []model.Entry {
	return p.log.Entries()
}
