package filter

import (
	"context"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// BoostBySimilarity raises each record's score by its similarity to the
// profile's interests, with diminishing returns: low-scoring records get a
// larger absolute boost than records already near 1.0, smoothing the final
// distribution instead of letting similarity dominate. No-op when the
// profile states no interests.
func (e *Engine) BoostBySimilarity(ctx context.Context, records []*models.OpportunityRecord) {
	interests := e.profile.InterestsText()
	if interests == "" {
		e.log.Debug("no interests in profile, skipping similarity boost")
		return
	}

	for _, rec := range records {
		similarity := e.sim.Compare(ctx, interests, rec.Title+" "+rec.Notes)
		boost := similarity * e.cfg.BoostWeight * (1.0 - rec.PriorityScore*0.5)

		boosted := rec.PriorityScore + boost
		if boosted > 1.0 {
			boosted = 1.0
		}

		if boosted != rec.PriorityScore {
			e.log.Debug("similarity boost applied",
				zap.String("id", rec.ID),
				zap.Float64("similarity", similarity),
				zap.Float64("score", boosted),
			)
		}
		rec.PriorityScore = boosted
	}
}
