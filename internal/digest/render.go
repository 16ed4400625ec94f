package digest

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Digest is the rendered daily summary split by category.
type Digest struct {
	Date         time.Time
	HighPriority []*models.OpportunityRecord
	Exploratory  []*models.OpportunityRecord
}

func (d *Digest) Empty() bool {
	return len(d.HighPriority) == 0 && len(d.Exploratory) == 0
}

func (d *Digest) Subject() string {
	if len(d.HighPriority) > 0 {
		return fmt.Sprintf("Sentinel digest %s: %d high priority, %d exploratory",
			d.Date.Format("Jan 2"), len(d.HighPriority), len(d.Exploratory))
	}
	return fmt.Sprintf("Sentinel digest %s: %d exploratory leads",
		d.Date.Format("Jan 2"), len(d.Exploratory))
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"pct":   func(score float64) string { return fmt.Sprintf("%.0f%%", score*100) },
	"kind":  func(k models.Kind) string { return strings.ReplaceAll(string(k), "_", " ") },
	"first": func(s string, n int) string { return models.Truncate(s, n) },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, Helvetica, Arial, sans-serif; max-width: 680px; margin: 0 auto; color: #1a1a2e;">
  <h1 style="font-size: 20px;">Opportunity digest — {{.Date.Format "Monday, January 2, 2006"}}</h1>

  {{if .HighPriority}}
  <h2 style="font-size: 16px; color: #c0392b;">High priority ({{len .HighPriority}})</h2>
  {{range .HighPriority}}
  <div style="border-left: 3px solid #c0392b; padding: 8px 12px; margin: 12px 0; background: #fdf6f5;">
    <strong>{{.Title}}</strong> <span style="color: #777;">({{pct .PriorityScore}})</span><br>
    {{if .Organization}}<span>{{.Organization}}</span> &middot; {{end}}<span>{{kind .Kind}}</span>
    {{if .Deadline}}<br><span style="color: #c0392b;">Deadline: {{first .Deadline 120}}</span>{{end}}
    {{if .Location}}<br><span>Location: {{.Location}}</span>{{end}}
    {{if .PrimaryURL}}<br><a href="{{.PrimaryURL}}">{{.PrimaryURL}}</a>{{end}}
    {{if .Notes}}<p style="margin: 6px 0 0; color: #444;">{{first .Notes 300}}</p>{{end}}
  </div>
  {{end}}
  {{end}}

  {{if .Exploratory}}
  <h2 style="font-size: 16px; color: #2c6e91;">Exploratory ({{len .Exploratory}})</h2>
  <ul style="padding-left: 18px;">
  {{range .Exploratory}}
    <li style="margin: 6px 0;">
      {{if .PrimaryURL}}<a href="{{.PrimaryURL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}
      <span style="color: #777;">— {{if .Organization}}{{.Organization}}, {{end}}{{kind .Kind}} ({{pct .PriorityScore}})</span>
    </li>
  {{end}}
  </ul>
  {{end}}

  {{if and (not .HighPriority) (not .Exploratory)}}
  <p>Nothing cleared the filters today.</p>
  {{end}}

  <p style="color: #999; font-size: 12px; margin-top: 24px;">Generated by sentinel.</p>
</body>
</html>`))

// Build splits records by stored category, preserving their order.
func Build(date time.Time, records []*models.OpportunityRecord) *Digest {
	d := &Digest{Date: date}
	for _, rec := range records {
		switch rec.Category {
		case models.CategoryHighPriority:
			d.HighPriority = append(d.HighPriority, rec)
		case models.CategoryExploratory:
			d.Exploratory = append(d.Exploratory, rec)
		}
	}
	return d
}

// RenderHTML produces the email body.
func (d *Digest) RenderHTML() (string, error) {
	var sb strings.Builder
	if err := digestTemplate.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return sb.String(), nil
}
