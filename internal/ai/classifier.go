package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sentinel-agent/sentinel/internal/filter"
	"github.com/sentinel-agent/sentinel/internal/models"
)

// Classifier implements filter.RelevanceClassifier on top of an LLM
// completion backend. The filter engine has deterministic fallbacks for
// every call, so Classifier returns errors freely instead of guessing.
type Classifier struct {
	completer Completer
}

func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

var _ filter.RelevanceClassifier = (*Classifier)(nil)

type interestResult struct {
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// EvaluateInterest asks the model how interesting the record would be to
// someone with the stated interests, beyond literal keyword matches.
func (c *Classifier) EvaluateInterest(ctx context.Context, rec *models.OpportunityRecord, interests []string) (filter.InterestAssessment, error) {
	prompt := fmt.Sprintf(`Analyze how interesting this content would be to someone with these interests.

TITLE: %s
ORGANIZATION: %s
CONTENT: %s

USER'S STATED INTERESTS: %s

Beyond keywords, consider whether the content is technically sophisticated,
helps the user stay current, or represents cutting-edge developments.

Rate relevance 0.0-1.0:
- 0.0-0.2: completely uninteresting or irrelevant
- 0.3-0.5: somewhat interesting but not compelling
- 0.6-0.8: quite interesting and relevant
- 0.9-1.0: extremely compelling and valuable

Return a JSON object with this format:
{
  "relevance_score": 0.0,
  "reasoning": "short explanation"
}

RESPOND ONLY WITH JSON.`,
		rec.Title, rec.Organization, models.Truncate(rec.Notes, 800), strings.Join(interests, ", "))

	resp, err := c.completer.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return filter.InterestAssessment{}, err
	}

	var result interestResult
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return filter.InterestAssessment{}, fmt.Errorf("failed to parse interest json: %w. Response: %s", err, resp)
	}

	score := result.RelevanceScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return filter.InterestAssessment{Score: score, Reasoning: result.Reasoning}, nil
}

type exclusionResult struct {
	ShouldExclude bool   `json:"should_exclude"`
	Reasoning     string `json:"reasoning"`
}

// CheckExclusion asks the model whether the record is genuinely about an
// avoided topic, as opposed to mentioning it in a technical or analytical
// context worth keeping.
func (c *Classifier) CheckExclusion(ctx context.Context, rec *models.OpportunityRecord, exclusions, avoidFields []string) (filter.ExclusionDecision, error) {
	avoided := strings.Join(append(append([]string{}, exclusions...), avoidFields...), ", ")

	prompt := fmt.Sprintf(`Decide if this content should be excluded based on user preferences.

TITLE: %s
ORGANIZATION: %s
CONTENT: %s

THE USER WANTS TO AVOID: %s

Consider context: is the content actually ABOUT what the user wants to
avoid, or does it only mention those terms in a technical or analytical
context that would still be interesting?

Examples to EXCLUDE: job postings for sales roles, MLM schemes,
cryptocurrency trading promotions.
Examples to KEEP: technical articles about marketing technology, AI in
sales, security analysis of ad tracking.

Return a JSON object with this format:
{
  "should_exclude": false,
  "reasoning": "short explanation"
}

RESPOND ONLY WITH JSON.`,
		rec.Title, rec.Organization, models.Truncate(rec.Notes, 500), avoided)

	resp, err := c.completer.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return filter.ExclusionDecision{}, err
	}

	var result exclusionResult
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return filter.ExclusionDecision{}, fmt.Errorf("failed to parse exclusion json: %w. Response: %s", err, resp)
	}

	return filter.ExclusionDecision{Exclude: result.ShouldExclude, Reasoning: result.Reasoning}, nil
}
