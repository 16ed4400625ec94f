package filter

import (
	"context"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "machine learning fellowship", "machine learning fellowship", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"partial", "alpha beta gamma", "alpha beta delta", 0.5},
		{"case insensitive", "Alpha Beta", "alpha beta", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "alpha", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompare_UsesEmbeddings(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {1, 0, 0},
	}}
	sim := NewSimilarity(emb, nil)

	if got := sim.Compare(context.Background(), "a", "b"); got != 1.0 {
		t.Fatalf("Compare with identical vectors = %v, want 1.0", got)
	}
}

func TestCompare_FallsBackToJaccardOnError(t *testing.T) {
	sim := NewSimilarity(&stubEmbedder{err: errStub}, nil)

	got := sim.Compare(context.Background(), "alpha beta gamma", "alpha beta delta")
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Compare fallback = %v, want jaccard 0.5", got)
	}
}

func TestCompare_NilEmbedderUsesJaccard(t *testing.T) {
	sim := NewSimilarity(nil, nil)

	if got := sim.Compare(context.Background(), "same words", "same words"); got != 1.0 {
		t.Fatalf("Compare = %v, want 1.0", got)
	}
}

func TestCompare_NegativeCosineClampedToZero(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {-1, 0, 0},
	}}
	sim := NewSimilarity(emb, nil)

	if got := sim.Compare(context.Background(), "a", "b"); got != 0.0 {
		t.Fatalf("Compare with opposite vectors = %v, want 0.0", got)
	}
}
