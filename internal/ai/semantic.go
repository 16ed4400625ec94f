package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/filter"
)

// SemanticGate is a cheap embedding pre-filter that runs before LLM
// extraction: emails whose body is semantically far from the user's
// interests are skipped entirely. Any failure passes the email through,
// so an unreachable embedding model never drops mail.
type SemanticGate struct {
	embedder  Embedder
	threshold float64
	log       *zap.Logger

	profileVec []float32
}

func NewSemanticGate(embedder Embedder, threshold float64, log *zap.Logger) *SemanticGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &SemanticGate{embedder: embedder, threshold: threshold, log: log}
}

// Prepare embeds the profile interests text once per run.
func (g *SemanticGate) Prepare(ctx context.Context, interestsText string) error {
	if g.embedder == nil || interestsText == "" {
		return nil
	}
	vec, err := g.embedder.GenerateEmbedding(ctx, interestsText)
	if err != nil {
		return fmt.Errorf("failed to embed profile interests: %w", err)
	}
	g.profileVec = vec
	return nil
}

// Relevant reports whether the email text clears the similarity
// threshold against the profile. Without a prepared profile vector, or
// on any embedding error, it returns true.
func (g *SemanticGate) Relevant(ctx context.Context, text string) bool {
	if g.embedder == nil || len(g.profileVec) == 0 || text == "" {
		return true
	}
	vec, err := g.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		g.log.Debug("semantic gate embedding failed, passing email through", zap.Error(err))
		return true
	}
	sim := filter.Cosine(g.profileVec, vec)
	g.log.Debug("semantic gate", zap.Float64("similarity", sim), zap.Float64("threshold", g.threshold))
	return sim >= g.threshold
}
