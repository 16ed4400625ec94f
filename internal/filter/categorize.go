package filter

import "github.com/sentinel-agent/sentinel/internal/models"

// Categorize buckets a scored record. The high-priority boundary is
// inclusive; content kinds get a lower exploratory floor. CategoryUnset
// means the record is dropped.
func (e *Engine) Categorize(score float64, kind models.Kind) models.Category {
	switch {
	case score >= e.cfg.HighPriorityThreshold:
		return models.CategoryHighPriority
	case score >= e.cfg.ExploratoryThreshold:
		return models.CategoryExploratory
	case kind.IsContent() && score >= e.cfg.ContentFloor:
		return models.CategoryExploratory
	default:
		return models.CategoryUnset
	}
}
