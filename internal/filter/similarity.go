package filter

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"
)

// Embedder produces a semantic embedding for a piece of text. The Ollama
// client satisfies this; tests inject deterministic stubs.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Similarity computes a [0,1] similarity between two free-text strings.
// It embeds both texts and takes cosine similarity when an embedder is
// available, falling back to token-set Jaccard overlap when it is not or
// when embedding fails. Compare never returns an error: semantic similarity
// is advisory and degrades silently.
type Similarity struct {
	embedder Embedder
	log      *zap.Logger
}

// NewSimilarity builds the similarity engine. A nil embedder selects the
// Jaccard fallback unconditionally.
func NewSimilarity(embedder Embedder, log *zap.Logger) *Similarity {
	if log == nil {
		log = zap.NewNop()
	}
	return &Similarity{embedder: embedder, log: log}
}

// Compare returns the similarity of a and b in [0,1]. Symmetric, and 1.0
// for identical text.
func (s *Similarity) Compare(ctx context.Context, a, b string) float64 {
	if s.embedder != nil {
		va, errA := s.embedder.GenerateEmbedding(ctx, a)
		vb, errB := s.embedder.GenerateEmbedding(ctx, b)
		if errA == nil && errB == nil {
			return clamp01(Cosine(va, vb))
		}
		s.log.Debug("embedding failed, falling back to token overlap",
			zap.NamedError("err_a", errA),
			zap.NamedError("err_b", errB),
		)
	}
	return jaccard(a, b)
}

// Cosine computes cosine similarity between two pre-computed vectors,
// returning 0.0 when either magnitude is zero or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// jaccard is the token-set overlap fallback: intersection over union of
// lowercased whitespace-separated words. Empty union returns 0.0.
func jaccard(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
