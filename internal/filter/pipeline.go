package filter

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Step describes one pipeline stage's record counts.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Result holds the pipeline output: two ranked, deduplicated lists plus
// per-stage accounting.
type Result struct {
	HighPriority []*models.OpportunityRecord
	Exploratory  []*models.OpportunityRecord

	Excluded   int
	LowScore   int
	Duplicates int
	Steps      []Step
}

// Run executes the full funnel over a batch of extracted records:
// exclusion → scoring → categorization → advanced filtering → similarity
// boost → deduplication → re-split by stored category. Records are
// annotated in place; no error aborts the batch.
func (e *Engine) Run(ctx context.Context, records []*models.OpportunityRecord) *Result {
	result := &Result{}
	e.log.Info("filtering and scoring records", zap.Int("count", len(records)))

	var high, exploratory []*models.OpportunityRecord
	for _, rec := range records {
		rec.Clamp()

		if e.ShouldExclude(ctx, rec) {
			result.Excluded++
			continue
		}

		score, recovered := e.score(ctx, rec)
		rec.PriorityScore = score
		if recovered {
			// A partial score is not trustworthy enough to drop the
			// record; keep it visible in the exploratory tier.
			rec.Category = models.CategoryExploratory
			exploratory = append(exploratory, rec)
			continue
		}

		switch e.Categorize(rec.PriorityScore, rec.Kind) {
		case models.CategoryHighPriority:
			rec.Category = models.CategoryHighPriority
			high = append(high, rec)
		case models.CategoryExploratory:
			rec.Category = models.CategoryExploratory
			exploratory = append(exploratory, rec)
		default:
			result.LowScore++
			e.log.Debug("low score record filtered out",
				zap.String("id", rec.ID),
				zap.Float64("score", rec.PriorityScore),
			)
		}
	}
	sortByScore(high)
	sortByScore(exploratory)
	result.record("score_and_categorize", len(records), result.Excluded+result.LowScore)

	beforeAdvanced := len(high) + len(exploratory)
	high = e.ApplyAdvancedFilters(high)
	exploratory = e.ApplyAdvancedFilters(exploratory)
	result.record("advanced_filters", beforeAdvanced, beforeAdvanced-len(high)-len(exploratory))

	merged := make([]*models.OpportunityRecord, 0, len(high)+len(exploratory))
	merged = append(merged, high...)
	merged = append(merged, exploratory...)

	e.BoostBySimilarity(ctx, merged)

	deduped := e.Deduplicate(ctx, merged, e.cfg.DedupThreshold)
	result.Duplicates = len(merged) - len(deduped)
	result.record("deduplicate", len(merged), result.Duplicates)

	// Re-split by the category assigned earlier; the thresholds are not
	// re-applied to the boosted scores.
	result.HighPriority = result.HighPriority[:0]
	result.Exploratory = result.Exploratory[:0]
	for _, rec := range deduped {
		if rec.Category == models.CategoryHighPriority {
			result.HighPriority = append(result.HighPriority, rec)
		} else {
			result.Exploratory = append(result.Exploratory, rec)
		}
	}
	sortByScore(result.HighPriority)
	sortByScore(result.Exploratory)

	e.log.Info("pipeline complete",
		zap.Int("high_priority", len(result.HighPriority)),
		zap.Int("exploratory", len(result.Exploratory)),
		zap.Int("excluded", result.Excluded),
		zap.Int("low_score", result.LowScore),
		zap.Int("duplicates", result.Duplicates),
	)

	return result
}

func (r *Result) record(name string, initial, dropped int) {
	r.Steps = append(r.Steps, Step{
		Name:    name,
		Initial: initial,
		Dropped: dropped,
		Left:    initial - dropped,
	})
}

func sortByScore(records []*models.OpportunityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PriorityScore != records[j].PriorityScore {
			return records[i].PriorityScore > records[j].PriorityScore
		}
		return records[i].ID < records[j].ID
	})
}
