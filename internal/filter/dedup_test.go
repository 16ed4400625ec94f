package filter

import (
	"context"
	"testing"
	"time"

	"github.com/sentinel-agent/sentinel/internal/models"
)

func TestDeduplicate_SameOrgAndKindCollapses(t *testing.T) {
	engine := testEngine(nil, Deps{})

	a := &models.OpportunityRecord{
		ID:            "a",
		Title:         "NSF Graduate Research Fellowship Program",
		Organization:  "NSF",
		Kind:          models.KindGrant,
		PriorityScore: 0.9,
		ProcessedAt:   fixedNow,
	}
	b := &models.OpportunityRecord{
		ID:            "b",
		Title:         "NSF GRFP Applications Open",
		Organization:  "nsf",
		Kind:          models.KindGrant,
		PriorityScore: 0.6,
		ProcessedAt:   fixedNow.Add(time.Minute),
	}

	kept := engine.Deduplicate(context.Background(), []*models.OpportunityRecord{b, a}, 0.8)
	if len(kept) != 1 {
		t.Fatalf("expected 1 record after dedup, got %d", len(kept))
	}
	if kept[0].ID != "a" {
		t.Fatalf("the highest scorer must survive, kept %q", kept[0].ID)
	}
}

func TestDeduplicate_DistinctRecordsSurvive(t *testing.T) {
	engine := testEngine(nil, Deps{})

	records := []*models.OpportunityRecord{
		{ID: "a", Title: "Quantum Computing Workshop", Organization: "MIT", Kind: models.KindConference, PriorityScore: 0.8, ProcessedAt: fixedNow},
		{ID: "b", Title: "Frontend Developer Role", Organization: "Stripe", Kind: models.KindJob, PriorityScore: 0.5, ProcessedAt: fixedNow.Add(time.Hour)},
	}

	kept := engine.Deduplicate(context.Background(), records, 0.8)
	if len(kept) != 2 {
		t.Fatalf("distinct records must both survive, got %d", len(kept))
	}
}

func TestDeduplicate_ExactTitleIsDuplicate(t *testing.T) {
	engine := testEngine(nil, Deps{})

	records := []*models.OpportunityRecord{
		{ID: "a", Title: "AI Fellowship", Organization: "OpenAI", Kind: models.KindFellowship, PriorityScore: 0.7, ProcessedAt: fixedNow},
		{ID: "b", Title: "ai fellowship", Organization: "Some Aggregator", Kind: models.KindNews, PriorityScore: 0.4, ProcessedAt: fixedNow},
	}

	kept := engine.Deduplicate(context.Background(), records, 0.8)
	if len(kept) != 1 || kept[0].ID != "a" {
		t.Fatalf("case-insensitive identical titles must collapse to the top scorer, got %+v", ids(kept))
	}
}

func TestDeduplicate_OutputOrderIsByProcessedAtThenID(t *testing.T) {
	engine := testEngine(nil, Deps{})

	records := []*models.OpportunityRecord{
		{ID: "late", Title: "Completely unrelated robotics grant", Organization: "DARPA", Kind: models.KindGrant, PriorityScore: 0.95, ProcessedAt: fixedNow.Add(time.Hour)},
		{ID: "early", Title: "Design systems conference", Organization: "Figma", Kind: models.KindConference, PriorityScore: 0.2, ProcessedAt: fixedNow},
		{ID: "a-same-time", Title: "Bioinformatics summer school", Organization: "EMBL", Kind: models.KindConference, PriorityScore: 0.5, ProcessedAt: fixedNow},
	}

	kept := engine.Deduplicate(context.Background(), records, 0.8)
	if len(kept) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(kept))
	}
	want := []string{"a-same-time", "early", "late"}
	for i, id := range want {
		if kept[i].ID != id {
			t.Fatalf("output order %v, want %v", ids(kept), want)
		}
	}
}

func TestDeduplicate_SingleAndEmptyPassThrough(t *testing.T) {
	engine := testEngine(nil, Deps{})

	if got := engine.Deduplicate(context.Background(), nil, 0.8); len(got) != 0 {
		t.Fatalf("empty input must stay empty")
	}
	one := []*models.OpportunityRecord{{ID: "a", ProcessedAt: fixedNow}}
	if got := engine.Deduplicate(context.Background(), one, 0.8); len(got) != 1 {
		t.Fatalf("single record must pass through")
	}
}

func TestPairwiseSimilarity(t *testing.T) {
	engine := testEngine(nil, Deps{})
	ctx := context.Background()

	t.Run("same id", func(t *testing.T) {
		a := &models.OpportunityRecord{ID: "x", Title: "one"}
		b := &models.OpportunityRecord{ID: "x", Title: "two"}
		if got := engine.pairwiseSimilarity(ctx, a, b); got != 1.0 {
			t.Fatalf("same id must be 1.0, got %.2f", got)
		}
	})

	t.Run("same org and kind floors at 0.8", func(t *testing.T) {
		a := &models.OpportunityRecord{ID: "a", Title: "Research internships now open", Organization: "  Google  ", Kind: models.KindJob}
		b := &models.OpportunityRecord{ID: "b", Title: "Hiring software engineers", Organization: "google", Kind: models.KindJob}
		if got := engine.pairwiseSimilarity(ctx, a, b); got < 0.8 {
			t.Fatalf("same org+kind must be at least 0.8, got %.2f", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := &models.OpportunityRecord{ID: "a", Title: "Machine learning fellowship", Organization: "NSF", Kind: models.KindFellowship}
		b := &models.OpportunityRecord{ID: "b", Title: "Machine learning workshop", Organization: "MIT", Kind: models.KindConference}
		ab := engine.pairwiseSimilarity(ctx, a, b)
		ba := engine.pairwiseSimilarity(ctx, b, a)
		if ab != ba {
			t.Fatalf("similarity must be symmetric: %.4f vs %.4f", ab, ba)
		}
	})

	t.Run("weighted combination for differing org and kind", func(t *testing.T) {
		a := &models.OpportunityRecord{ID: "a", Title: "alpha beta gamma", Organization: "X", Kind: models.KindJob}
		b := &models.OpportunityRecord{ID: "b", Title: "alpha beta gamma", Organization: "Y", Kind: models.KindGrant}
		// Titles differ in case only at the trim level; these are equal, so 1.0.
		if got := engine.pairwiseSimilarity(ctx, a, b); got != 1.0 {
			t.Fatalf("identical titles short-circuit to 1.0, got %.2f", got)
		}

		c := &models.OpportunityRecord{ID: "c", Title: "alpha beta delta", Organization: "Z", Kind: models.KindGrant}
		got := engine.pairwiseSimilarity(ctx, b, c)
		// jaccard(title) = 2/4; orgs differ, kinds match.
		want := dedupTitleWeight*0.5 + dedupKindWeight
		if diff := got - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("pairwiseSimilarity = %.4f, want %.4f", got, want)
		}
	})
}

func ids(records []*models.OpportunityRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
