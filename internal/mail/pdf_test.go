package mail

import (
	"testing"
	"time"
)

func TestParsePDFDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		token string
		ok    bool
	}{
		{"3/15/2024", true},
		{"2024-03-15", true},
		{"15 March 2024", true},
		{"March 15, 2024", true},
		{"Mar. 15, 2024", true},
		{"not a date", false},
		{"15/45/2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := parsePDFDate(tt.token)
			if ok != tt.ok {
				t.Fatalf("parsePDFDate(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && !got.Equal(want) {
				t.Fatalf("parsePDFDate(%q) = %v, want %v", tt.token, got, want)
			}
		})
	}
}

func TestPDFDateRegexes(t *testing.T) {
	text := "Submissions close 15 March 2024. The 2024-06-01 workshop follows. Order #12345/678 is unrelated."

	found := map[string]bool{}
	for _, expr := range pdfDateRegexes {
		for _, token := range expr.FindAllString(text, -1) {
			found[token] = true
		}
	}

	for _, want := range []string{"15 March 2024", "2024-06-01"} {
		if !found[want] {
			t.Fatalf("expected to find %q in %v", want, found)
		}
	}
}

func TestExtractPDFDeadlines_InvalidAttachmentsSkipped(t *testing.T) {
	attachments := []Attachment{
		{Filename: "broken.pdf", Data: []byte("%PDF-1.4 truncated garbage")},
		{Filename: "not-even-pdf.pdf", Data: []byte("plain text")},
	}
	if got := ExtractPDFDeadlines(attachments); got != nil {
		t.Fatalf("ExtractPDFDeadlines = %v, want nil", got)
	}
}
