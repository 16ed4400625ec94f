package mail

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	rpdf "rsc.io/pdf"
)

var pdfDateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}/20\d{2}\b`),
	regexp.MustCompile(`(?i)\b20\d{2}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+20\d{2}\b`),
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+20\d{2}\b`),
}

var pdfDateFormats = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// ExtractPDFDeadlines pulls deadline-looking dates out of every PDF
// attachment, returned as sorted unique ISO dates. Attachments that the
// PDF parser cannot handle are skipped.
func ExtractPDFDeadlines(attachments []Attachment) []string {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, att := range attachments {
		text, err := extractPDFText(att.Data)
		if err != nil {
			continue
		}
		for _, expr := range pdfDateRegexes {
			for _, token := range expr.FindAllString(text, -1) {
				parsed, ok := parsePDFDate(token)
				if !ok {
					continue
				}
				iso := parsed.Format("2006-01-02")
				if !seen[iso] {
					seen[iso] = true
					dates = append(dates, parsed)
				}
			}
		}
	}
	if len(dates) == 0 {
		return nil
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}

// extractPDFText renders every page to plain text. The rsc.io/pdf
// parser panics on malformed files, so the panic is converted to an
// error here.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func parsePDFDate(token string) (time.Time, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(token, ".", ""))
	for _, layout := range pdfDateFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
