package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/sentinel-agent/sentinel/internal/models"
)

var digestDate = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func sampleRecords() []*models.OpportunityRecord {
	return []*models.OpportunityRecord{
		{
			ID:            "a",
			Title:         "NSF Graduate Research Fellowship",
			Organization:  "NSF",
			Kind:          models.KindFellowship,
			Deadline:      "March 15, 2024",
			PriorityScore: 0.91,
			Category:      models.CategoryHighPriority,
			PrimaryURL:    "https://nsf.gov/grfp",
		},
		{
			ID:            "b",
			Title:         "Systems design reading list",
			Organization:  "ByteByteGo",
			Kind:          models.KindContent,
			PriorityScore: 0.31,
			Category:      models.CategoryExploratory,
		},
		{
			ID:       "c",
			Title:    "Uncategorized leftover",
			Category: models.CategoryUnset,
		},
	}
}

func TestBuild(t *testing.T) {
	d := Build(digestDate, sampleRecords())

	if len(d.HighPriority) != 1 || d.HighPriority[0].ID != "a" {
		t.Fatalf("high priority = %+v", d.HighPriority)
	}
	if len(d.Exploratory) != 1 || d.Exploratory[0].ID != "b" {
		t.Fatalf("exploratory = %+v", d.Exploratory)
	}
	if d.Empty() {
		t.Fatal("digest with records is not empty")
	}

	empty := Build(digestDate, nil)
	if !empty.Empty() {
		t.Fatal("digest without records must be empty")
	}
}

func TestSubject(t *testing.T) {
	d := Build(digestDate, sampleRecords())
	if got := d.Subject(); got != "Sentinel digest Feb 1: 1 high priority, 1 exploratory" {
		t.Fatalf("subject = %q", got)
	}

	exploratoryOnly := Build(digestDate, sampleRecords()[1:])
	if got := exploratoryOnly.Subject(); got != "Sentinel digest Feb 1: 1 exploratory leads" {
		t.Fatalf("subject = %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	d := Build(digestDate, sampleRecords())
	html, err := d.RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	for _, want := range []string{
		"Thursday, February 1, 2024",
		"NSF Graduate Research Fellowship",
		"91%",
		"Deadline: March 15, 2024",
		`href="https://nsf.gov/grfp"`,
		"interesting content", // kind with underscore replaced
		"Systems design reading list",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered digest missing %q", want)
		}
	}
	if strings.Contains(html, "Uncategorized leftover") {
		t.Fatal("unset-category records must not render")
	}
}

func TestRenderHTML_Empty(t *testing.T) {
	html, err := Build(digestDate, nil).RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "Nothing cleared the filters today.") {
		t.Fatal("empty digest should carry the empty message")
	}
}

func TestRenderHTML_EscapesMarkup(t *testing.T) {
	records := []*models.OpportunityRecord{{
		ID:       "x",
		Title:    `<script>alert("x")</script>`,
		Category: models.CategoryHighPriority,
	}}
	html, err := Build(digestDate, records).RenderHTML()
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("record fields must be HTML-escaped")
	}
}
