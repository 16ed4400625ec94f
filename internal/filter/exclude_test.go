package filter

import (
	"context"
	"strings"
	"testing"

	"github.com/sentinel-agent/sentinel/internal/models"
)

func TestShouldExclude_SpamIsHardBlocked(t *testing.T) {
	// Even a classifier that wants to keep everything cannot rescue spam.
	engine := testEngine(nil, Deps{Classifier: &stubClassifier{exclude: false}})

	rec := &models.OpportunityRecord{
		ID:    "spam",
		Title: "Join our MLM and get rich quick",
	}
	if !engine.ShouldExclude(context.Background(), rec) {
		t.Fatal("spam phrases must be excluded unconditionally")
	}
}

func TestShouldExclude_NoExclusionsConfigured(t *testing.T) {
	engine := testEngine(nil, Deps{})

	rec := &models.OpportunityRecord{ID: "ok", Title: "Cryptocurrency conference"}
	if engine.ShouldExclude(context.Background(), rec) {
		t.Fatal("without configured exclusions only spam is blocked")
	}
}

func TestShouldExclude_ClassifierDecides(t *testing.T) {
	profile := testProfile()
	profile.Exclusions = []string{"cryptocurrency"}

	rec := &models.OpportunityRecord{
		ID:    "crypto",
		Title: "Cryptocurrency trading bootcamp",
	}

	excluding := testEngine(profile, Deps{Classifier: &stubClassifier{exclude: true}})
	if !excluding.ShouldExclude(context.Background(), rec) {
		t.Fatal("classifier exclusion decision must be honored")
	}

	keeping := testEngine(profile, Deps{Classifier: &stubClassifier{exclude: false}})
	if keeping.ShouldExclude(context.Background(), rec) {
		t.Fatal("classifier keep decision must be honored")
	}
}

func TestShouldExclude_KeywordFallbackIsStrict(t *testing.T) {
	profile := testProfile()
	profile.Exclusions = []string{"blockchain"}

	// Classifier errors select the keyword fallback.
	engine := testEngine(profile, Deps{Classifier: &stubClassifier{exclusionErr: errStub}})

	tests := []struct {
		name string
		rec  *models.OpportunityRecord
		want bool
	}{
		{
			name: "term in title excludes",
			rec:  &models.OpportunityRecord{ID: "a", Title: "Blockchain developer wanted"},
			want: true,
		},
		{
			name: "incidental mention in notes is kept",
			rec: &models.OpportunityRecord{
				ID:    "b",
				Title: "Distributed systems researcher",
				Notes: "Experience with blockchain is a plus.",
			},
			want: false,
		},
		{
			name: "repeated mentions in notes exclude",
			rec: &models.OpportunityRecord{
				ID:    "c",
				Title: "Engineering role",
				Notes: strings.Repeat("blockchain systems. ", 4),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ShouldExclude(context.Background(), tt.rec); got != tt.want {
				t.Fatalf("ShouldExclude = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldExclude_WordBoundaries(t *testing.T) {
	profile := testProfile()
	profile.Exclusions = []string{"ai"}
	engine := testEngine(profile, Deps{})

	rec := &models.OpportunityRecord{ID: "retail", Title: "Retail analytics position"}
	if engine.ShouldExclude(context.Background(), rec) {
		t.Fatal(`exclusion term "ai" must not match inside "retail"`)
	}
}
