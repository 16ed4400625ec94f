package models

// ScoringWeights are the per-signal weights applied by the scoring engine.
// Each lives in [0,1]; they are independent and need not sum to 1.
type ScoringWeights struct {
	InterestMatch   float64 `yaml:"interest_match" json:"interest_match"`
	OpportunityType float64 `yaml:"opportunity_type" json:"opportunity_type"`
	LocationMatch   float64 `yaml:"location_match" json:"location_match"`
	Urgency         float64 `yaml:"urgency" json:"urgency"`
}

// TimeSensitivity defines the deadline windows, in days, that bucket the
// urgency sub-score and bound the advanced deadline gate.
type TimeSensitivity struct {
	UrgentDays      int `yaml:"urgent_days" json:"urgent_days"`
	ImportantDays   int `yaml:"important_days" json:"important_days"`
	ExploratoryDays int `yaml:"exploratory_days" json:"exploratory_days"`
}

// Profile is the user's declared interests and preferences. It is loaded
// once per run and treated as read-only by every pipeline stage.
type Profile struct {
	Interests           []string `yaml:"interests" json:"interests"`
	PreferredKinds      []string `yaml:"preferred_opportunities" json:"preferred_opportunities"`
	PreferredLocations  []string `yaml:"preferred_locations" json:"preferred_locations"`
	EligibilityKeywords []string `yaml:"eligibility_keywords" json:"eligibility_keywords"`
	Exclusions          []string `yaml:"exclusions" json:"exclusions"`
	AvoidFields         []string `yaml:"avoid_fields" json:"avoid_fields"`

	ScoringWeights  ScoringWeights  `yaml:"scoring_weights" json:"scoring_weights"`
	TimeSensitivity TimeSensitivity `yaml:"time_sensitivity" json:"time_sensitivity"`
}

// DefaultWeights mirrors the tuned defaults applied when a profile omits
// scoring_weights.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		InterestMatch:   0.4,
		OpportunityType: 0.3,
		LocationMatch:   0.2,
		Urgency:         0.1,
	}
}

// DefaultTimeSensitivity is used when a profile omits time_sensitivity.
func DefaultTimeSensitivity() TimeSensitivity {
	return TimeSensitivity{
		UrgentDays:      7,
		ImportantDays:   30,
		ExploratoryDays: 90,
	}
}

// ApplyDefaults fills zero-valued weight and window fields.
func (p *Profile) ApplyDefaults() {
	if p.ScoringWeights == (ScoringWeights{}) {
		p.ScoringWeights = DefaultWeights()
	}
	if p.TimeSensitivity == (TimeSensitivity{}) {
		p.TimeSensitivity = DefaultTimeSensitivity()
	}
}

// InterestsText joins the stated interests into a single string for
// similarity comparisons. Empty when no interests are configured.
func (p *Profile) InterestsText() string {
	out := ""
	for i, interest := range p.Interests {
		if i > 0 {
			out += " "
		}
		out += interest
	}
	return out
}
