package filter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// spamPhrases are hard-blocked regardless of profile: this check is cheap
// and never delegated to the classifier.
var spamPhrases = []string{
	"pyramid scheme",
	"mlm",
	"get rich quick",
	"binary options",
	"forex trading",
}

// maxIncidentalMentions is the fallback tolerance: an exclusion term that
// only shows up this many times in the notes is treated as an incidental
// mention, not the topic of the record.
const maxIncidentalMentions = 3

// ShouldExclude decides whether a record is dropped before scoring.
// Obvious spam is blocked unconditionally; contextual exclusions are
// delegated to the classifier, with a strict keyword rule when the
// classifier is unavailable. Internal failures default to keeping the
// record: a false positive downstream is cheaper than lost data.
func (e *Engine) ShouldExclude(ctx context.Context, rec *models.OpportunityRecord) bool {
	text := rec.SearchText()

	for _, phrase := range spamPhrases {
		if containsTerm(text, phrase) {
			e.log.Debug("record hard-blocked as spam",
				zap.String("id", rec.ID),
				zap.String("phrase", phrase),
			)
			return true
		}
	}

	exclusions := contextualExclusions(e.profile.Exclusions)
	avoidFields := lowerAll(e.profile.AvoidFields)
	if len(exclusions) == 0 && len(avoidFields) == 0 {
		return false
	}

	if e.classifier != nil {
		decision, err := e.classifier.CheckExclusion(ctx, rec, exclusions, avoidFields)
		if err == nil {
			if decision.Exclude {
				e.log.Debug("record excluded by classifier",
					zap.String("id", rec.ID),
					zap.String("reasoning", decision.Reasoning),
				)
			}
			return decision.Exclude
		}
		e.log.Warn("exclusion classifier failed, using keyword fallback",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
	}

	return e.excludeByKeywords(rec, exclusions)
}

// excludeByKeywords is the stricter classifier fallback: a term must be the
// apparent focus of the record, either appearing in the title or repeatedly
// in the notes. Single incidental mentions do not exclude.
func (e *Engine) excludeByKeywords(rec *models.OpportunityRecord, exclusions []string) bool {
	title := strings.ToLower(rec.Title)
	notes := strings.ToLower(rec.Notes)

	for _, term := range exclusions {
		if containsTerm(title, term) {
			return true
		}
		if countTerm(notes, term) > maxIncidentalMentions {
			return true
		}
	}
	return false
}

// contextualExclusions lowercases the profile exclusions and removes any
// that the hard-block set already covers.
func contextualExclusions(exclusions []string) []string {
	out := make([]string, 0, len(exclusions))
	for _, term := range lowerAll(exclusions) {
		blocked := false
		for _, phrase := range spamPhrases {
			if term == phrase {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, term)
		}
	}
	return out
}
