package filter

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Dedup weights for the detailed pairwise comparison: title similarity
// dominates, organization and kind equality contribute the rest.
const (
	dedupTitleWeight = 0.6
	dedupOrgWeight   = 0.25
	dedupKindWeight  = 0.15
	sameOrgKindFloor = 0.8
)

// Deduplicate suppresses near-duplicate records, keeping the
// highest-scored representative of every cluster. Comparison runs over the
// batch sorted by score descending so the best member is always the one
// retained; output order is restored by processed timestamp then id,
// independent of the comparison order. O(n²) over the batch — callers
// should bound batch size to a few hundred records per run.
func (e *Engine) Deduplicate(ctx context.Context, records []*models.OpportunityRecord, threshold float64) []*models.OpportunityRecord {
	if len(records) <= 1 {
		return records
	}

	sorted := make([]*models.OpportunityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PriorityScore != sorted[j].PriorityScore {
			return sorted[i].PriorityScore > sorted[j].PriorityScore
		}
		return sorted[i].ID < sorted[j].ID
	})

	suppressed := make([]bool, len(sorted))
	kept := make([]*models.OpportunityRecord, 0, len(sorted))

	for i, a := range sorted {
		if suppressed[i] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] {
				continue
			}
			b := sorted[j]
			if similarity := e.pairwiseSimilarity(ctx, a, b); similarity >= threshold {
				suppressed[j] = true
				e.log.Debug("suppressing near-duplicate",
					zap.String("kept", a.ID),
					zap.String("suppressed", b.ID),
					zap.Float64("similarity", similarity),
				)
			}
		}
		kept = append(kept, a)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].ProcessedAt.Equal(kept[j].ProcessedAt) {
			return kept[i].ProcessedAt.Before(kept[j].ProcessedAt)
		}
		return kept[i].ID < kept[j].ID
	})

	if len(kept) != len(records) {
		e.log.Info("deduplicated records",
			zap.Int("initial", len(records)),
			zap.Int("left", len(kept)),
		)
	}

	return kept
}

// pairwiseSimilarity estimates how likely two records describe the same
// underlying opportunity. Cheap exact checks short-circuit before the text
// comparison; any failure reads as non-duplicate, since keeping a
// near-duplicate is cheaper than losing a record.
func (e *Engine) pairwiseSimilarity(ctx context.Context, a, b *models.OpportunityRecord) (similarity float64) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("pairwise comparison panicked, treating as non-duplicate",
				zap.String("a", a.ID),
				zap.String("b", b.ID),
				zap.Any("panic", r),
			)
			similarity = 0.0
		}
	}()

	if a.ID == b.ID {
		return 1.0
	}

	titleA := strings.ToLower(strings.TrimSpace(a.Title))
	titleB := strings.ToLower(strings.TrimSpace(b.Title))
	if titleA == titleB {
		return 1.0
	}

	sameOrg := normalizeOrg(a.Organization) == normalizeOrg(b.Organization)
	sameKind := strings.EqualFold(string(a.Kind), string(b.Kind))

	titleSimilarity := e.sim.Compare(ctx, a.Title, b.Title)

	// Same organization and kind is strong evidence of duplication
	// regardless of title phrasing; title similarity can only push the
	// estimate higher.
	if sameOrg && sameKind {
		if titleSimilarity > sameOrgKindFloor {
			return titleSimilarity
		}
		return sameOrgKindFloor
	}

	orgScore := 0.0
	if sameOrg {
		orgScore = 1.0
	}
	kindScore := 0.0
	if sameKind {
		kindScore = 1.0
	}

	return dedupTitleWeight*titleSimilarity + dedupOrgWeight*orgScore + dedupKindWeight*kindScore
}

func normalizeOrg(org string) string {
	return strings.ToLower(strings.Join(strings.Fields(org), " "))
}
