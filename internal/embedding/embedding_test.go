package embedding

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestCosineDistance(t *testing.T) {
	// Identical vectors are zero distance; orthogonal vectors are distance 1.
	if d := CosineDistance(Vector{1, 2, 3}, Vector{1, 2, 3}); math.Abs(d) > 0.001 {
		t.Errorf("distance of identical vectors = %f, want 0", d)
	}
	if d := CosineDistance(Vector{1, 0}, Vector{0, 1}); math.Abs(d-1) > 0.001 {
		t.Errorf("distance of orthogonal vectors = %f, want 1", d)
	}
}

func TestNewFromEnv_Disabled(t *testing.T) {
	t.Setenv("PODSCRIBE_EMBED_PROVIDER", "")
	if e := NewFromEnv(); e != nil {
		t.Error("expected nil embedder when no provider configured")
	}
}

func TestNewFromEnv_Ollama(t *testing.T) {
	t.Setenv("PODSCRIBE_EMBED_PROVIDER", "ollama")
	t.Setenv("PODSCRIBE_EMBED_MODEL", "")
	e := NewFromEnv()
	if e == nil {
		t.Fatal("expected ollama embedder")
	}
	if e.Model() != "nomic-embed-text" {
		t.Errorf("default model = %q, want nomic-embed-text", e.Model())
	}
	if e.Dims() != 768 {
		t.Errorf("dims = %d, want 768", e.Dims())
	}
}
