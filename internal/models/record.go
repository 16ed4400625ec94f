package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the opportunity type reported by the extraction stage.
type Kind string

const (
	KindFellowship       Kind = "fellowship"
	KindJob              Kind = "job"
	KindGrant            Kind = "grant"
	KindConference       Kind = "conference"
	KindResearchPosition Kind = "research_position"
	KindScholarship      Kind = "scholarship"
	KindNews             Kind = "news_with_opportunities"
	KindContent          Kind = "interesting_content"
	KindIndustryUpdate   Kind = "industry_update"
	KindUnknown          Kind = "unknown"
)

// Kinds lists every valid kind, used to validate extraction output.
var Kinds = []Kind{
	KindFellowship, KindJob, KindGrant, KindConference, KindResearchPosition,
	KindScholarship, KindNews, KindContent, KindIndustryUpdate, KindUnknown,
}

// IsContent reports whether the kind is a news/content type rather than an
// actionable opportunity. Content types get a lower categorization floor.
func (k Kind) IsContent() bool {
	switch k {
	case KindNews, KindContent, KindIndustryUpdate:
		return true
	}
	return false
}

// NormalizeKind maps free-text kind values onto the canonical set,
// defaulting to unknown.
func NormalizeKind(raw string) Kind {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	for _, k := range Kinds {
		if string(k) == cleaned {
			return k
		}
	}
	return KindUnknown
}

// Category is assigned by the filtering pipeline.
type Category string

const (
	CategoryUnset        Category = ""
	CategoryHighPriority Category = "high_priority"
	CategoryExploratory  Category = "exploratory"
)

// Field length limits. Overflowing text is truncated with an ellipsis,
// never rejected.
const (
	MaxTitleLen       = 200
	MaxEligibilityLen = 500
	MaxNotesLen       = 1000
)

// LinkContext is a URL found in the source email together with its anchor
// text and surrounding context.
type LinkContext struct {
	URL     string `json:"url"`
	Anchor  string `json:"anchor,omitempty"`
	Context string `json:"context,omitempty"`
}

// Contact is a mailto address found in the source email.
type Contact struct {
	Address string `json:"address"`
	Context string `json:"context,omitempty"`
}

// OpportunityRecord is one opportunity extracted from an email. The record
// flows through the filtering pipeline exactly once per run; only
// PriorityScore and Category are mutated downstream.
type OpportunityRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Kind         Kind   `json:"kind"`
	Eligibility  string `json:"eligibility"`
	Location     string `json:"location"`
	Deadline     string `json:"deadline"`
	Notes        string `json:"notes"`

	SourceDate  time.Time `json:"source_date"`
	ProcessedAt time.Time `json:"processed_at"`

	PriorityScore float64  `json:"priority_score"`
	Category      Category `json:"category"`

	URLs          []string      `json:"urls,omitempty"`
	PrimaryURL    string        `json:"primary_url,omitempty"`
	Links         []LinkContext `json:"links,omitempty"`
	Contacts      []Contact     `json:"contacts,omitempty"`
	PDFDeadlines  []string      `json:"pdf_deadlines,omitempty"`
	Account       string        `json:"account,omitempty"`
}

// Clamp enforces the bounded-length invariants on the free-text fields.
func (r *OpportunityRecord) Clamp() {
	r.Title = Truncate(r.Title, MaxTitleLen)
	r.Eligibility = Truncate(r.Eligibility, MaxEligibilityLen)
	r.Notes = Truncate(r.Notes, MaxNotesLen)
}

// SearchText returns the combined lowercased text used by keyword checks.
func (r *OpportunityRecord) SearchText() string {
	return strings.ToLower(r.Title + " " + r.Organization + " " + r.Notes)
}

// Truncate cuts a string to max length in bytes, appending ellipsis if
// truncated. The cut never splits a multi-byte rune, so the result is
// always valid UTF-8.
func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:runeBoundary(text, maxLen-3)] + "..."
	}
	return text[:runeBoundary(text, maxLen)]
}

// runeBoundary backs cut off to the nearest rune start at or before it.
func runeBoundary(text string, cut int) int {
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}
