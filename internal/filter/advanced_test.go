package filter

import (
	"testing"

	"github.com/sentinel-agent/sentinel/internal/models"
)

func TestApplyAdvancedFilters_LocationGate(t *testing.T) {
	profile := testProfile()
	profile.PreferredLocations = []string{"remote"}
	engine := testEngine(profile, Deps{})

	records := []*models.OpportunityRecord{
		{ID: "remote", Location: "Remote"},
		{ID: "online", Location: "virtual / online"},
		{ID: "missing"},
		{ID: "onsite", Location: "On-site in Munich"},
	}

	kept := engine.ApplyAdvancedFilters(records)
	got := ids(kept)
	want := []string{"remote", "online", "missing"}
	if len(got) != len(want) {
		t.Fatalf("kept %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kept %v, want %v", got, want)
		}
	}
}

func TestApplyAdvancedFilters_MissingLocationPasses(t *testing.T) {
	profile := testProfile()
	profile.PreferredLocations = []string{"remote"}
	engine := testEngine(profile, Deps{})

	kept := engine.ApplyAdvancedFilters([]*models.OpportunityRecord{{ID: "a", Location: ""}})
	if len(kept) != 1 {
		t.Fatal("a record without location information must pass the gate")
	}
}

func TestEligibilityGate(t *testing.T) {
	profile := testProfile()
	profile.EligibilityKeywords = []string{"graduate students"}
	engine := testEngine(profile, Deps{})

	tests := []struct {
		name string
		rec  *models.OpportunityRecord
		want bool
	}{
		{
			name: "keyword present passes",
			rec:  &models.OpportunityRecord{Eligibility: "Open to graduate students worldwide"},
			want: true,
		},
		{
			name: "no restrictive language passes",
			rec:  &models.OpportunityRecord{Eligibility: "Everyone welcome"},
			want: true,
		},
		{
			name: "restrictive language without keyword fails",
			rec:  &models.OpportunityRecord{Eligibility: "US citizens only, enrollment required"},
			want: false,
		},
		{
			name: "empty eligibility passes",
			rec:  &models.OpportunityRecord{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.eligibilityGate(tt.rec); got != tt.want {
				t.Fatalf("eligibilityGate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeadlineGate(t *testing.T) {
	engine := testEngine(nil, Deps{})

	tests := []struct {
		name     string
		deadline string
		want     bool
	}{
		{"no deadline text", "", true},
		{"rolling basis", "Applications accepted on a rolling basis", true},
		{"future within window", "March 15, 2024", true},
		{"recently expired within grace", "January 28, 2024", true},
		{"expired beyond grace", "December 1, 2023", false},
		{"beyond exploratory window", "September 1, 2024", false},
		{"candidate that cannot parse never excludes", "13/45/2024", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.OpportunityRecord{Deadline: tt.deadline}
			if got := engine.deadlineGate(rec); got != tt.want {
				t.Fatalf("deadlineGate(%q) = %v, want %v", tt.deadline, got, tt.want)
			}
		})
	}
}
