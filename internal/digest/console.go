package digest

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// WriteTable renders the digest as a console table for the summary
// command.
func WriteTable(w io.Writer, d *Digest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Score", "Kind", "Title", "Organization", "Deadline"})

	for _, rec := range d.HighPriority {
		t.AppendRow(tableRow("high", rec))
	}
	if len(d.HighPriority) > 0 && len(d.Exploratory) > 0 {
		t.AppendSeparator()
	}
	for _, rec := range d.Exploratory {
		t.AppendRow(tableRow("exploratory", rec))
	}
	t.Render()
}

func tableRow(category string, rec *models.OpportunityRecord) table.Row {
	return table.Row{
		category,
		rec.PriorityScore,
		string(rec.Kind),
		models.Truncate(rec.Title, 60),
		models.Truncate(rec.Organization, 30),
		models.Truncate(rec.Deadline, 30),
	}
}
