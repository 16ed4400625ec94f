package filter

// Config carries the pipeline thresholds. The defaults were tuned
// empirically against real inbox traffic; treat them as configuration, not
// constants to re-derive.
type Config struct {
	// HighPriorityThreshold is the score at or above which a record is
	// categorized high_priority. Inclusive on the high side.
	HighPriorityThreshold float64
	// ExploratoryThreshold is the floor for the exploratory bucket.
	ExploratoryThreshold float64
	// ContentFloor is the lower exploratory floor applied to news/content
	// kinds, trading precision for recall on low-cost content.
	ContentFloor float64
	// DedupThreshold is the pairwise similarity at or above which two
	// records are considered near-duplicates.
	DedupThreshold float64
	// BoostWeight scales the similarity-based score boost.
	BoostWeight float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		HighPriorityThreshold: 0.70,
		ExploratoryThreshold:  0.12,
		ContentFloor:          0.08,
		DedupThreshold:        0.8,
		BoostWeight:           0.2,
	}
}
