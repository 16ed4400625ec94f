package filter

import (
	"regexp"
	"strings"
	"time"
)

// Deadline text arrives as free text ("Apply by March 15, 2026", "Due:
// 03/15/26"). Candidate extraction and parsing are both best-effort; callers
// fall back to documented defaults when nothing parses.

var dateCandidateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{4}\b`),
}

// findDateCandidates extracts every substring of text that looks like a
// date, in order of appearance.
func findDateCandidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range dateCandidateRegexes {
		for _, match := range re.FindAllString(text, -1) {
			if !seen[match] {
				out = append(out, match)
				seen[match] = true
			}
		}
	}
	return out
}

var dateFormats = []string{
	"2006-01-02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"02 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

var ordinalSuffixRe = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)\b`)

// parseDateFuzzy attempts to parse a date candidate in multiple formats.
// Date-only values resolve to end of day so a same-day deadline is not
// treated as already past.
func parseDateFuzzy(candidate string) (time.Time, bool) {
	cleaned := cleanDateString(candidate)

	if t, err := time.Parse(time.RFC3339, cleaned); err == nil {
		return t, true
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return toEndOfDay(t), true
		}
	}
	return time.Time{}, false
}

// parseFirstDate finds and parses the first recognizable date in free text.
func parseFirstDate(text string) (time.Time, bool) {
	for _, candidate := range findDateCandidates(text) {
		if t, ok := parseDateFuzzy(candidate); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanDateString strips label prefixes, ordinal suffixes, and stray
// punctuation from a date candidate.
func cleanDateString(s string) string {
	prefixes := []string{
		"closing date:", "deadline:", "due date:", "due:",
		"apply by:", "apply by", "expires:", "ends:",
	}
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(lower, p); idx != -1 {
			s = s[idx+len(p):]
			lower = lower[idx+len(p):]
		}
	}
	s = ordinalSuffixRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ".", "")
	return strings.TrimSpace(s)
}

// toEndOfDay sets the time to 23:59:59 UTC.
func toEndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
