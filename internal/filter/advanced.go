package filter

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// deadlineGraceDays lets recently expired deadlines through: an
// opportunity a few days past due may still be worth knowing about.
const deadlineGraceDays = 7

var restrictiveEligibilityTerms = []string{"required", "must", "only", "exclusive"}

// ApplyAdvancedFilters drops scored records that fail the location,
// eligibility, or deadline-relevance gates. All three gates bias toward
// inclusion: missing information passes, and a gate that cannot evaluate a
// record passes it.
func (e *Engine) ApplyAdvancedFilters(records []*models.OpportunityRecord) []*models.OpportunityRecord {
	filtered := make([]*models.OpportunityRecord, 0, len(records))

	for _, rec := range records {
		switch {
		case !e.locationGate(rec):
			e.log.Debug("location mismatch", zap.String("id", rec.ID), zap.String("title", rec.Title))
		case !e.eligibilityGate(rec):
			e.log.Debug("eligibility mismatch", zap.String("id", rec.ID), zap.String("title", rec.Title))
		case !e.deadlineGate(rec):
			e.log.Debug("deadline no longer relevant", zap.String("id", rec.ID), zap.String("title", rec.Title))
		default:
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// locationGate passes when no location preference is configured, when the
// location text matches a preference, or when both sides speak of remote
// work.
func (e *Engine) locationGate(rec *models.OpportunityRecord) bool {
	preferred := lowerAll(e.profile.PreferredLocations)
	if len(preferred) == 0 {
		return true
	}

	location := strings.ToLower(rec.Location)
	for _, pref := range preferred {
		if strings.Contains(location, pref) {
			return true
		}
	}

	if listHasAny(preferred, remoteEquivalents...) &&
		containsAnyTerm(location, append([]string{"anywhere"}, remoteEquivalents...)) {
		return true
	}

	return false
}

// eligibilityGate assumes open eligibility by default: it fails only when
// restrictive language is present and none of the configured eligibility
// keywords appear.
func (e *Engine) eligibilityGate(rec *models.OpportunityRecord) bool {
	keywords := lowerAll(e.profile.EligibilityKeywords)
	if len(keywords) == 0 {
		return true
	}

	text := strings.ToLower(rec.Eligibility + " " + rec.Notes)
	for _, kw := range keywords {
		if containsTerm(text, kw) {
			return true
		}
	}

	return !containsAnyTerm(text, restrictiveEligibilityTerms)
}

// deadlineGate passes records with no recognizable deadline, and records
// with at least one parsed deadline inside [-grace, exploratory_days] from
// now. Candidates that fail to parse never exclude.
func (e *Engine) deadlineGate(rec *models.OpportunityRecord) bool {
	candidates := findDateCandidates(rec.Deadline)
	if len(candidates) == 0 {
		return true
	}

	maxDays := e.profile.TimeSensitivity.ExploratoryDays
	parsedAny := false
	for _, candidate := range candidates {
		due, ok := parseDateFuzzy(candidate)
		if !ok {
			continue
		}
		parsedAny = true
		days := int(due.Sub(e.now()).Hours() / 24)
		if days >= -deadlineGraceDays && days <= maxDays {
			return true
		}
	}

	// Nothing parsed: unknown deadlines never exclude.
	return !parsedAny
}
