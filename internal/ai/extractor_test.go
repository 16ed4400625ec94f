package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-agent/sentinel/internal/mail"
	"github.com/sentinel-agent/sentinel/internal/models"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) GenerateCompletion(_ context.Context, prompt string, _ bool) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testMessage() *mail.Message {
	return &mail.Message{
		UID:     "inbox:42",
		Account: "inbox",
		From:    "grants@nsf.gov",
		Subject: "GRFP deadline approaching",
		Date:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Text:    "The NSF Graduate Research Fellowship deadline is March 15, 2024.",
		URLs:    []string{"https://nsf.gov/grfp"},
	}
}

func TestExtract_ParsesOpportunities(t *testing.T) {
	completer := &stubCompleter{response: `{
		"opportunities": [
			{
				"title": "NSF Graduate Research Fellowship",
				"organization": "NSF",
				"opportunity_type": "fellowship",
				"eligibility": "US graduate students",
				"location": "Remote",
				"deadlines": "March 15, 2024",
				"notes": "Annual program"
			},
			{
				"title": "",
				"opportunity_type": "grant"
			}
		]
	}`}

	ext := NewExtractor(completer, nil)
	records, err := ext.Extract(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (empty titles skipped)", len(records))
	}

	rec := records[0]
	if rec.ID != "inbox:42-0" {
		t.Fatalf("id = %q, want uid-derived id", rec.ID)
	}
	if rec.Kind != models.KindFellowship {
		t.Fatalf("kind = %q", rec.Kind)
	}
	if rec.Deadline != "March 15, 2024" {
		t.Fatalf("deadline = %q", rec.Deadline)
	}
	if rec.Account != "inbox" || rec.SourceDate.IsZero() {
		t.Fatalf("message metadata not carried: %+v", rec)
	}
	if rec.PrimaryURL != "https://nsf.gov/grfp" {
		t.Fatalf("primary url = %q", rec.PrimaryURL)
	}
}

func TestExtract_UnknownTypeNormalized(t *testing.T) {
	completer := &stubCompleter{response: `{
		"opportunities": [{"title": "Something", "opportunity_type": "hackathon prize"}]
	}`}

	records, err := NewExtractor(completer, nil).Extract(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if records[0].Kind != models.KindUnknown {
		t.Fatalf("kind = %q, want unknown for invented type", records[0].Kind)
	}
}

func TestExtract_EmptyResult(t *testing.T) {
	completer := &stubCompleter{response: `{"opportunities": []}`}
	records, err := NewExtractor(completer, nil).Extract(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want none", len(records))
	}
}

func TestExtract_Errors(t *testing.T) {
	t.Run("completion error", func(t *testing.T) {
		completer := &stubCompleter{err: errors.New("connection refused")}
		if _, err := NewExtractor(completer, nil).Extract(context.Background(), testMessage()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		completer := &stubCompleter{response: "I could not find any opportunities."}
		if _, err := NewExtractor(completer, nil).Extract(context.Background(), testMessage()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestExtract_PromptCarriesEmailAndKinds(t *testing.T) {
	completer := &stubCompleter{response: `{"opportunities": []}`}
	_, err := NewExtractor(completer, nil).Extract(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("got %d prompts", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	if !strings.Contains(prompt, "GRFP deadline approaching") {
		t.Fatal("prompt missing subject")
	}
	if !strings.Contains(prompt, string(models.KindResearchPosition)) {
		t.Fatal("prompt missing valid kind list")
	}
}

func TestFallbackExtract_KindFromSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		text    string
		want    models.Kind
	}{
		{"fellowship", "Apply for the 2024 AI Fellowship", "", models.KindFellowship},
		{"grant beats job order", "Grant opening for researchers", "", models.KindGrant},
		{"conference", "CFP: Systems Symposium", "", models.KindConference},
		{"body signal", "Monthly update", "we are hiring engineers", models.KindJob},
		{"industry update", "Product launch next week", "", models.KindIndustryUpdate},
		{"no signal", "Hello again", "just checking in", models.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &mail.Message{UID: "a:1", Subject: tt.subject, Text: tt.text}
			records, err := FallbackExtractor{}.Extract(context.Background(), msg)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if records[0].Kind != tt.want {
				t.Fatalf("kind = %q, want %q", records[0].Kind, tt.want)
			}
		})
	}
}

func TestFallbackExtract_NoSignalNoSubject(t *testing.T) {
	msg := &mail.Message{UID: "a:2", Subject: "  ", Text: "nothing relevant"}
	records, err := FallbackExtractor{}.Extract(context.Background(), msg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if records != nil {
		t.Fatalf("got %+v, want nil for signal-free empty-subject email", records)
	}
}

func TestFallbackExtract_FieldsFromMessage(t *testing.T) {
	msg := &mail.Message{
		UID:     "inbox:7",
		Account: "inbox",
		From:    "Grants Office <grants@nsf.gov>",
		Subject: "Fellowship announcement",
		Text:    "Great opportunity. Deadline: June 1, 2024 for all applicants.",
		URLs:    []string{"https://nsf.gov/apply"},
	}

	records, err := FallbackExtractor{}.Extract(context.Background(), msg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	rec := records[0]
	if rec.ID != "inbox:7-0" {
		t.Fatalf("id = %q", rec.ID)
	}
	if rec.Organization != "nsf" {
		t.Fatalf("organization = %q, want sender domain", rec.Organization)
	}
	if rec.Deadline != "Deadline: June 1, 2024 for all applicants" {
		t.Fatalf("deadline = %q", rec.Deadline)
	}
	if rec.PrimaryURL != "https://nsf.gov/apply" {
		t.Fatalf("primary url = %q", rec.PrimaryURL)
	}
}
