package filter

import (
	"context"
	"errors"
	"time"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// fixedNow pins the clock for deadline math.
var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

type stubClassifier struct {
	score        float64
	exclude      bool
	interestErr  error
	exclusionErr error
}

func (s *stubClassifier) EvaluateInterest(_ context.Context, _ *models.OpportunityRecord, _ []string) (InterestAssessment, error) {
	if s.interestErr != nil {
		return InterestAssessment{}, s.interestErr
	}
	return InterestAssessment{Score: s.score, Reasoning: "stub"}, nil
}

func (s *stubClassifier) CheckExclusion(_ context.Context, _ *models.OpportunityRecord, _, _ []string) (ExclusionDecision, error) {
	if s.exclusionErr != nil {
		return ExclusionDecision{}, s.exclusionErr
	}
	return ExclusionDecision{Exclude: s.exclude, Reasoning: "stub"}, nil
}

var errStub = errors.New("model unreachable")

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func testProfile() *models.Profile {
	p := &models.Profile{
		Interests:      []string{"machine learning"},
		PreferredKinds: []string{"fellowship"},
	}
	p.ApplyDefaults()
	return p
}

func testEngine(profile *models.Profile, deps Deps) *Engine {
	if profile == nil {
		profile = testProfile()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return fixedNow }
	}
	return NewEngine(profile, DefaultConfig(), deps)
}
