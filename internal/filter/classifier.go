package filter

import (
	"context"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// InterestAssessment is the contextual interest judgment for one record.
type InterestAssessment struct {
	Score     float64
	Reasoning string
}

// ExclusionDecision is the contextual exclusion judgment for one record:
// content genuinely *about* an avoided topic is excluded, content that only
// mentions it in a technical or analytical context is kept.
type ExclusionDecision struct {
	Exclude   bool
	Reasoning string
}

// RelevanceClassifier is the pluggable contextual judgment capability,
// normally backed by an LLM. Every caller has a deterministic fallback for
// when a classifier is absent or returns an error, so implementations may
// fail freely.
type RelevanceClassifier interface {
	EvaluateInterest(ctx context.Context, rec *models.OpportunityRecord, interests []string) (InterestAssessment, error)
	CheckExclusion(ctx context.Context, rec *models.OpportunityRecord, exclusions, avoidFields []string) (ExclusionDecision, error)
}
