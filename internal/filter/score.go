package filter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Bonus addends for high-value signals. Additive, not mutually exclusive;
// the final score is clamped to 1.0.
const (
	bonusPrestigiousOrg  = 0.15
	bonusFunding         = 0.10
	bonusTechnical       = 0.10
	bonusIndustryNews    = 0.08
	bonusResearch        = 0.05
	bonusDesign          = 0.06
	neutralInterestScore = 0.5
	neutralUrgencyScore  = 0.3
)

var prestigiousOrgs = []string{
	"nsf", "nih", "darpa", "google", "microsoft", "openai", "anthropic",
	"stanford", "mit", "berkeley", "apple", "meta", "amazon", "nvidia",
	"adobe", "databricks", "hugging face", "cohere", "deepmind", "tesla",
	"spacex", "stripe", "airbnb", "uber", "netflix", "spotify",
}

var fundingTerms = []string{"fellowship", "grant", "scholarship", "funding"}

var technicalBonusTerms = []string{
	"developer", "programming", "coding", "software", "ai", "machine learning",
	"deep learning", "neural network", "algorithm", "data science", "python",
	"javascript", "react", "css", "html", "api", "framework", "library",
}

var announcementTerms = []string{
	"announcement", "release", "launch", "update", "breakthrough",
	"innovation", "trending", "viral", "popular", "featured", "spotlight",
}

var researchBonusTerms = []string{"research", "phd", "graduate", "academic"}

var designBonusTerms = []string{
	"design", "ui", "ux", "creative", "visual", "css", "animation", "graphics",
}

// Score computes the record's priority in [0,1]: a weighted sum of
// interest, type, location, and urgency sub-scores plus a capped bonus
// addend. Sub-score failures degrade to neutral values; Score never
// panics out.
func (e *Engine) Score(ctx context.Context, rec *models.OpportunityRecord) float64 {
	score, _ := e.score(ctx, rec)
	return score
}

// score additionally reports whether the computation panicked part-way.
// The pipeline routes such records to exploratory instead of trusting a
// partial score against the categorization thresholds.
func (e *Engine) score(ctx context.Context, rec *models.OpportunityRecord) (score float64, recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("scoring panicked, keeping partial score",
				zap.String("id", rec.ID),
				zap.Any("panic", r),
			)
			score = clamp01(score)
			recovered = true
		}
	}()

	weights := e.profile.ScoringWeights

	score += e.interestScore(ctx, rec) * weights.InterestMatch
	score += e.typeScore(rec) * weights.OpportunityType
	score += e.locationScore(rec) * weights.LocationMatch
	score += e.urgencyScore(rec.Deadline) * weights.Urgency
	score += e.bonusScore(rec)

	return clamp01(score), false
}

// interestScore blends the classifier's contextual judgment (0.7) with
// direct/partial keyword overlap (0.3), plus a content-type boost for
// technically dense news/content records.
func (e *Engine) interestScore(ctx context.Context, rec *models.OpportunityRecord) float64 {
	interests := lowerAll(e.profile.Interests)
	text := strings.ToLower(rec.Title + " " + rec.Notes)

	classifierScore := e.classifierInterestScore(ctx, rec, interests, text)

	base := 0.0
	if len(interests) > 0 {
		direct := 0
		for _, interest := range interests {
			if containsTerm(text, interest) {
				direct++
			}
		}
		partial := e.partialMatchScore(interests, text)
		base = (float64(direct) + partial*0.5) / float64(len(interests))
	}

	combined := classifierScore*0.7 + base*0.3
	return clamp01(combined + contentTypeBoost(rec.Kind, text))
}

// classifierInterestScore asks the classifier for a contextual judgment,
// substituting the keyword fallback when the classifier is missing or
// errors.
func (e *Engine) classifierInterestScore(ctx context.Context, rec *models.OpportunityRecord, interests []string, text string) float64 {
	if e.classifier == nil {
		return keywordInterestScore(interests, text)
	}

	assessment, err := e.classifier.EvaluateInterest(ctx, rec, interests)
	if err != nil {
		e.log.Warn("interest classifier failed, using keyword fallback",
			zap.String("id", rec.ID),
			zap.Error(err),
		)
		return keywordInterestScore(interests, text)
	}
	return clamp01(assessment.Score)
}

// keywordInterestScore is the deterministic fallback: direct interest
// matches plus a small increment per technical indicator term.
func keywordInterestScore(interests []string, text string) float64 {
	if len(interests) == 0 {
		return neutralInterestScore
	}

	direct := 0
	for _, interest := range interests {
		if containsTerm(text, interest) {
			direct++
		}
	}

	indicators := []string{"ai", "tech", "software", "programming", "algorithm", "system", "platform", "framework"}
	partial := float64(countMatchingTerms(text, indicators)) * 0.1

	return clamp01(float64(direct)/float64(len(interests)) + partial)
}

// partialMatchScore counts topic-cluster term hits for the clusters whose
// trigger terms intersect the stated interests.
func (e *Engine) partialMatchScore(interests []string, text string) float64 {
	partial := 0.0

	if listHasAny(interests, "artificial intelligence", "machine learning") {
		partial += float64(countMatchingTerms(text, aiTerms))
	}
	if listHasAny(interests, "research") {
		partial += float64(countMatchingTerms(text, researchTerms))
	}
	if listHasAny(interests, "software engineering", "data science") {
		partial += float64(countMatchingTerms(text, techTerms))
		partial += float64(countMatchingTerms(text, designTerms))
	}
	if listHasAny(interests, "conferences", "workshops") {
		partial += float64(countMatchingTerms(text, industryTerms)) * 0.5
	}

	return partial
}

// contentTypeBoost counteracts the keyword penalty that news/content
// records take for not matching narrow interests: technically dense
// content earns up to +1.0 pre-clamp, scaled by term density.
func contentTypeBoost(kind models.Kind, text string) float64 {
	if !kind.IsContent() {
		return 0
	}
	relevance := countMatchingTerms(text, aiTerms) +
		countMatchingTerms(text, techTerms) +
		countMatchingTerms(text, designTerms)
	if relevance == 0 {
		return 0
	}
	boost := float64(relevance) * 0.3
	if boost > 1.0 {
		boost = 1.0
	}
	return boost
}

// typeScore matches the record kind against the preferred opportunity
// kinds: exact substring 1.0, recognized near-synonyms 0.5-0.8, and a
// reduced score for content records whose text carries concrete event or
// technical-release signals.
func (e *Engine) typeScore(rec *models.OpportunityRecord) float64 {
	preferred := lowerAll(e.profile.PreferredKinds)
	if len(preferred) == 0 {
		return 0
	}

	kind := strings.ToLower(string(rec.Kind))
	for _, pref := range preferred {
		if strings.Contains(kind, pref) || strings.Contains(pref, kind) {
			return 1.0
		}
	}

	hasKindTerm := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(kind, t) {
				return true
			}
		}
		return false
	}

	switch {
	case listHasAny(preferred, "fellowship") && hasKindTerm("program", "scholarship", "award"):
		return 0.7
	case listHasAny(preferred, "research position", "research_position") && hasKindTerm("academic", "university", "lab"):
		return 0.7
	case listHasAny(preferred, "conference") && hasKindTerm("workshop", "seminar", "symposium", "event", "webinar"):
		return 0.8
	case listHasAny(preferred, "job", "job opening") && hasKindTerm("position", "role", "career", "job"):
		return 0.6
	case listHasAny(preferred, "workshop") && hasKindTerm("course", "certificate", "specialization"):
		return 0.6
	case listHasAny(preferred, "internship", "job", "job opening") && hasKindTerm("competition", "challenge"):
		return 0.5
	}

	if rec.Kind.IsContent() && listHasAny(preferred, "conference", "workshop") {
		text := strings.ToLower(rec.Title + " " + rec.Notes)
		eventSignals := []string{
			"conference", "workshop", "event", "summit", "symposium", "meetup",
			"keynote", "tech talk", "presentation",
		}
		if containsAnyTerm(text, eventSignals) {
			return 0.7
		}
		releaseSignals := []string{
			"release", "launch", "update", "announcement", "breakthrough",
			"openai", "google", "microsoft", "apple", "meta", "anthropic",
			"css", "javascript", "react", "python", "llm",
		}
		if containsAnyTerm(text, releaseSignals) {
			return 0.6
		}
	}

	return 0
}

var remoteEquivalents = []string{"remote", "virtual", "online"}

// locationScore favors preferred locations and remote equivalence. With no
// location preference configured there is no signal to score, so the
// sub-score contributes nothing; records with unrecognized locations get a
// neutral 0.5 rather than zero, leaving hard exclusion to the advanced
// filter.
func (e *Engine) locationScore(rec *models.OpportunityRecord) float64 {
	preferred := lowerAll(e.profile.PreferredLocations)
	if len(preferred) == 0 {
		return 0
	}

	location := strings.ToLower(rec.Location)
	for _, pref := range preferred {
		if strings.Contains(location, pref) {
			return 1.0
		}
	}

	if listHasAny(preferred, remoteEquivalents...) &&
		containsAnyTerm(location, append([]string{"anywhere"}, remoteEquivalents...)) {
		return 1.0
	}

	if listHasAny(preferred, "united states") &&
		containsAnyTerm(location, []string{"usa", "us", "america", "united states"}) {
		return 0.9
	}

	return 0.5
}

// urgencyScore buckets the first parseable deadline date by proximity.
// Unknown or unparsable deadlines are mildly relevant (0.3), never zero.
func (e *Engine) urgencyScore(deadline string) float64 {
	due, ok := parseFirstDate(deadline)
	if !ok {
		return neutralUrgencyScore
	}

	windows := e.profile.TimeSensitivity
	days := int(due.Sub(e.now()).Hours() / 24)

	switch {
	case days <= windows.UrgentDays:
		return 1.0
	case days <= windows.ImportantDays:
		return 0.7
	case days <= windows.ExploratoryDays:
		return 0.4
	default:
		return 0.1
	}
}

// bonusScore sums the fixed increments for high-value signals across the
// record's full text.
func (e *Engine) bonusScore(rec *models.OpportunityRecord) float64 {
	text := rec.SearchText()

	bonus := 0.0
	if containsAnyTerm(text, prestigiousOrgs) {
		bonus += bonusPrestigiousOrg
	}
	if containsAnyTerm(text, fundingTerms) {
		bonus += bonusFunding
	}
	if containsAnyTerm(text, technicalBonusTerms) {
		bonus += bonusTechnical
	}
	if containsAnyTerm(text, announcementTerms) {
		bonus += bonusIndustryNews
	}
	if containsAnyTerm(text, researchBonusTerms) {
		bonus += bonusResearch
	}
	if containsAnyTerm(text, designBonusTerms) {
		bonus += bonusDesign
	}
	return bonus
}
