package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/podscribe/podscribe/internal/embedding"
	"github.com/podscribe/podscribe/internal/model"
	"github.com/podscribe/podscribe/internal/retrieval"
)

type fakeTranscriber struct {
	transcript string
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.transcript, nil
}

type countingGenerator struct {
	calls int
	err   error
}

func (g *countingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("generated %d words", len(strings.Fields(prompt))), nil
}

type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) (embedding.Vector, error) {
	vec := make(embedding.Vector, 8)
	for _, w := range strings.Fields(text) {
		var h uint32
		for _, r := range w {
			h = h*31 + uint32(r)
		}
		vec[h%8]++
	}
	return vec, nil
}

func (hashEmbedder) Dims() int     { return 8 }
func (hashEmbedder) Model() string { return "hash-test" }

func writeAudioFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, tr Transcriber, gen *countingGenerator) *Pipeline {
	t.Helper()
	store, err := retrieval.NewStore(filepath.Join(t.TempDir(), "retrieval.db"), hashEmbedder{}, retrieval.WithChunkSize(4))
	if err != nil {
		t.Fatalf("open retrieval store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	p, err := New(Backends{Transcriber: tr, Generator: gen, Retrieval: store}, Config{
		CacheDir:     t.TempDir(),
		SegmentWords: 5,
		TopK:         2,
	})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func TestProcess_StagesAndLogOrder(t *testing.T) {
	tr := &fakeTranscriber{transcript: "one two three four five six seven eight"}
	gen := &countingGenerator{}
	p := newTestPipeline(t, tr, gen)

	result, err := p.Process(context.Background(), writeAudioFixture(t, "audio-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Transcript != tr.transcript {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if len(result.Segments) != 2 {
		t.Errorf("expected 2 segments of 5 words from 8 words, got %d", len(result.Segments))
	}
	if len(result.Analyses) != len(result.Segments) {
		t.Errorf("analyses/segments mismatch: %d vs %d", len(result.Analyses), len(result.Segments))
	}
	if result.Chunks == 0 {
		t.Error("expected ingested chunks")
	}

	wantRoles := []model.Role{model.RoleUser, model.RoleTranscriber, model.RoleSegmenter, model.RoleAnalyzer}
	entries := p.LogEntries()
	if len(entries) != len(wantRoles) {
		t.Fatalf("expected %d log entries, got %d", len(wantRoles), len(entries))
	}
	for i, want := range wantRoles {
		if entries[i].Role != want {
			t.Errorf("entry %d role = %q, want %q", i, entries[i].Role, want)
		}
		if !model.ValidRoles[entries[i].Role] {
			t.Errorf("entry %d role %q not in closed role set", i, entries[i].Role)
		}
	}
}

func TestProcess_RerunIsMemoized(t *testing.T) {
	tr := &fakeTranscriber{transcript: "one two three four five six seven eight"}
	gen := &countingGenerator{}
	p := newTestPipeline(t, tr, gen)
	audio := writeAudioFixture(t, "audio-bytes")
	ctx := context.Background()

	if _, err := p.Process(ctx, audio); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstGenCalls := gen.calls

	if _, err := p.Process(ctx, audio); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", tr.calls)
	}
	if gen.calls != firstGenCalls {
		t.Errorf("generator re-invoked on memoized rerun: %d -> %d", firstGenCalls, gen.calls)
	}
}

func TestSummarize_GeneratesOnce(t *testing.T) {
	gen := &countingGenerator{}
	p := newTestPipeline(t, &fakeTranscriber{}, gen)
	ctx := context.Background()

	text := strings.Repeat("podcast words here ", 10)
	first, err := p.Summarize(ctx, text)
	if err != nil {
		t.Fatalf("first summarize: %v", err)
	}
	second, err := p.Summarize(ctx, text)
	if err != nil {
		t.Fatalf("second summarize: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if first != second {
		t.Errorf("summaries differ: %q vs %q", first, second)
	}
}

func TestAsk_BeforeProcess(t *testing.T) {
	p := newTestPipeline(t, &fakeTranscriber{}, &countingGenerator{})
	if got := p.Ask(context.Background(), "what was said?"); got != NotReadyAnswer {
		t.Errorf("got %q, want the not-ready sentinel", got)
	}
	if len(p.LogEntries()) != 0 {
		t.Error("not-ready ask should not be logged as an exchange")
	}
}

func TestAsk_AnswersAndLogs(t *testing.T) {
	tr := &fakeTranscriber{transcript: "alpha beta gamma delta epsilon zeta"}
	gen := &countingGenerator{}
	p := newTestPipeline(t, tr, gen)
	ctx := context.Background()

	if _, err := p.Process(ctx, writeAudioFixture(t, "bytes")); err != nil {
		t.Fatalf("process: %v", err)
	}

	answer := p.Ask(ctx, "what about beta?")
	if strings.HasPrefix(answer, "[Error]") {
		t.Fatalf("unexpected error answer: %q", answer)
	}

	history := p.History()
	if len(history) != 1 || history[0].Answer != answer {
		t.Errorf("history not recorded: %v", history)
	}

	entries := p.LogEntries()
	last := entries[len(entries)-1]
	if last.Role != model.RoleChatbot {
		t.Errorf("last log role = %q, want chatbot", last.Role)
	}
	if !strings.Contains(last.Content, "what about beta?") {
		t.Errorf("log entry missing question: %q", last.Content)
	}
}

func TestAsk_GeneratorFailureIsIsolated(t *testing.T) {
	tr := &fakeTranscriber{transcript: "alpha beta gamma delta"}
	gen := &countingGenerator{}
	p := newTestPipeline(t, tr, gen)
	ctx := context.Background()

	if _, err := p.Process(ctx, writeAudioFixture(t, "bytes")); err != nil {
		t.Fatalf("process: %v", err)
	}

	gen.err = errors.New("backend down")
	answer := p.Ask(ctx, "anything?")
	if !strings.HasPrefix(answer, "[Error]") {
		t.Errorf("expected error answer, got %q", answer)
	}

	// The failed exchange is still recorded.
	entries := p.LogEntries()
	last := entries[len(entries)-1]
	if last.Role != model.RoleChatbot || !strings.Contains(last.Content, "[Error]") {
		t.Errorf("failed exchange not logged: %+v", last)
	}

	// And the pipeline keeps working once the backend recovers.
	gen.err = nil
	if got := p.Ask(ctx, "again?"); strings.HasPrefix(got, "[Error]") {
		t.Errorf("pipeline did not recover: %q", got)
	}
}

func TestProcess_AnalysisFailureDoesNotAbort(t *testing.T) {
	tr := &fakeTranscriber{transcript: "one two three four five six"}
	gen := &countingGenerator{err: errors.New("quota exceeded")}
	p := newTestPipeline(t, tr, gen)

	result, err := p.Process(context.Background(), writeAudioFixture(t, "bytes"))
	if err != nil {
		t.Fatalf("process should survive analysis failures: %v", err)
	}
	for _, a := range result.Analyses {
		if !strings.HasPrefix(a, "[Error]") {
			t.Errorf("expected error placeholder analysis, got %q", a)
		}
	}
}
