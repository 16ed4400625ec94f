package filter

import (
	"time"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Deps aggregates the collaborators injected into the engine. Every field
// is optional: a nil classifier selects the keyword fallbacks, a nil
// similarity engine selects token overlap, a nil clock selects time.Now.
type Deps struct {
	Classifier RelevanceClassifier
	Similarity *Similarity
	Logger     *zap.Logger
	Now        func() time.Time
}

// Engine runs the filtering, scoring, and deduplication pipeline over a
// batch of extracted records. The profile is read-only for the engine's
// lifetime; records are annotated in place.
type Engine struct {
	profile    *models.Profile
	cfg        Config
	classifier RelevanceClassifier
	sim        *Similarity
	log        *zap.Logger
	now        func() time.Time
}

func NewEngine(profile *models.Profile, cfg Config, deps Deps) *Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sim := deps.Similarity
	if sim == nil {
		sim = NewSimilarity(nil, log)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		profile:    profile,
		cfg:        cfg,
		classifier: deps.Classifier,
		sim:        sim,
		log:        log,
		now:        now,
	}
}
