package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/mail"
	"github.com/sentinel-agent/sentinel/internal/models"
)

// Extractor turns raw email messages into structured opportunity records
// using an LLM in JSON mode, with kind validation to discard hallucinated
// type values.
type Extractor struct {
	completer Completer
	log       *zap.Logger
}

func NewExtractor(completer Completer, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{completer: completer, log: log}
}

type extractedOpportunity struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Type         string `json:"opportunity_type"`
	Eligibility  string `json:"eligibility"`
	Location     string `json:"location"`
	Deadlines    string `json:"deadlines"`
	Notes        string `json:"notes"`
}

type extractionResult struct {
	Opportunities []extractedOpportunity `json:"opportunities"`
}

// Extract pulls zero or more opportunity records out of one email.
func (e *Extractor) Extract(ctx context.Context, msg *mail.Message) ([]*models.OpportunityRecord, error) {
	kinds := make([]string, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		kinds = append(kinds, string(k))
	}

	prompt := fmt.Sprintf(`You are an expert at extracting opportunities (fellowships, jobs, grants,
conferences, interesting technical content) from email newsletters.

EMAIL SUBJECT: %s
EMAIL FROM: %s
EMAIL BODY:
%s

Extract every distinct opportunity. Use only these EXACT opportunity types: %s

Return a JSON object with this format:
{
  "opportunities": [
    {
      "title": "...",
      "organization": "...",
      "opportunity_type": "...",
      "eligibility": "...",
      "location": "...",
      "deadlines": "...",
      "notes": "..."
    }
  ]
}

Rules:
1. Leave fields you cannot determine as empty strings.
2. Copy deadline text verbatim, including dates.
3. If the email contains no opportunities and no interesting technical content, return an empty array.
4. RESPOND ONLY WITH JSON.`,
		msg.Subject, msg.From, models.Truncate(msg.Text, 4000), strings.Join(kinds, ", "))

	resp, err := e.completer.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction json: %w. Response: %s", err, resp)
	}

	now := time.Now().UTC()
	records := make([]*models.OpportunityRecord, 0, len(result.Opportunities))
	for i, opp := range result.Opportunities {
		if strings.TrimSpace(opp.Title) == "" {
			continue
		}
		rec := &models.OpportunityRecord{
			ID:           recordID(msg.UID, i),
			Title:        opp.Title,
			Organization: opp.Organization,
			Kind:         models.NormalizeKind(opp.Type),
			Eligibility:  opp.Eligibility,
			Location:     opp.Location,
			Deadline:     opp.Deadlines,
			Notes:        opp.Notes,
			SourceDate:   msg.Date,
			ProcessedAt:  now,
			URLs:         msg.URLs,
			PrimaryURL:   msg.PrimaryURL(),
			Links:        msg.Links,
			Contacts:     msg.Contacts,
			PDFDeadlines: msg.PDFDeadlines,
			Account:      msg.Account,
		}
		rec.Clamp()
		records = append(records, rec)
	}

	return records, nil
}

// recordID derives a stable record id from the composite email UID so
// re-runs over the same message produce the same ids.
func recordID(uid string, index int) string {
	if uid == "" {
		return uuid.NewString()
	}
	return fmt.Sprintf("%s-%d", uid, index)
}

// FallbackExtractor is the rule-based extractor used when no LLM is
// reachable: one record per email, typed by subject keywords.
type FallbackExtractor struct{}

var fallbackKindHints = []struct {
	kind  models.Kind
	terms []string
}{
	{models.KindFellowship, []string{"fellowship", "fellow"}},
	{models.KindGrant, []string{"grant", "funding opportunity"}},
	{models.KindScholarship, []string{"scholarship"}},
	{models.KindConference, []string{"conference", "symposium", "workshop", "summit"}},
	{models.KindResearchPosition, []string{"postdoc", "research position", "research assistant"}},
	{models.KindJob, []string{"job", "hiring", "position", "vacancy", "opening"}},
	{models.KindIndustryUpdate, []string{"announcement", "release", "launch"}},
}

// Extract builds a best-effort record from the subject line and body text.
// It returns nil when the email carries no opportunity signal at all.
func (FallbackExtractor) Extract(_ context.Context, msg *mail.Message) ([]*models.OpportunityRecord, error) {
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.Text)

	kind := models.KindUnknown
	for _, hint := range fallbackKindHints {
		for _, term := range hint.terms {
			if strings.Contains(subject, term) || strings.Contains(body, term) {
				kind = hint.kind
				break
			}
		}
		if kind != models.KindUnknown {
			break
		}
	}
	if kind == models.KindUnknown && strings.TrimSpace(msg.Subject) == "" {
		return nil, nil
	}

	rec := &models.OpportunityRecord{
		ID:           recordID(msg.UID, 0),
		Title:        msg.Subject,
		Organization: mail.SenderDomain(msg.From),
		Kind:         kind,
		Deadline:     mail.DeadlineSnippet(msg.Text),
		Notes:        msg.Text,
		SourceDate:   msg.Date,
		ProcessedAt:  time.Now().UTC(),
		URLs:         msg.URLs,
		PrimaryURL:   msg.PrimaryURL(),
		Links:        msg.Links,
		Contacts:     msg.Contacts,
		PDFDeadlines: msg.PDFDeadlines,
		Account:      msg.Account,
	}
	rec.Clamp()
	return []*models.OpportunityRecord{rec}, nil
}
