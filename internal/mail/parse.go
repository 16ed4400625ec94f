package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sentinel-agent/sentinel/internal/models"
)

var urlRegex = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

var emailAddrRegex = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)

// Parse turns raw RFC822 bytes into a Message: decoded headers, a plain
// text body (HTML converted when no text part exists), harvested links
// and mailto contacts, and any PDF attachments.
func Parse(raw []byte) (*Message, error) {
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	msg := &Message{
		From:    decodeHeader(parsed.Header.Get("From")),
		Subject: decodeHeader(parsed.Header.Get("Subject")),
	}
	if t, err := mail.ParseDate(parsed.Header.Get("Date")); err == nil {
		msg.Date = t
	}

	var body partCollector
	if err := body.walk(parsed.Header.Get("Content-Type"),
		parsed.Header.Get("Content-Transfer-Encoding"), parsed.Body); err != nil {
		return nil, err
	}

	msg.Attachments = body.attachments

	if strings.TrimSpace(body.text.String()) != "" {
		msg.Text = normalizeWhitespace(body.text.String())
		msg.URLs = dedupeStrings(urlRegex.FindAllString(msg.Text, -1))
	}

	if body.html.Len() > 0 {
		text, links, contacts := parseHTML(body.html.String())
		if msg.Text == "" {
			msg.Text = text
		}
		msg.Links = links
		msg.Contacts = contacts
		for _, link := range links {
			msg.URLs = append(msg.URLs, link.URL)
		}
		msg.URLs = dedupeStrings(msg.URLs)
	}

	if len(msg.Contacts) == 0 {
		for _, addr := range dedupeStrings(emailAddrRegex.FindAllString(msg.Text, -1)) {
			if strings.EqualFold(addr, strings.TrimSpace(msg.From)) {
				continue
			}
			msg.Contacts = append(msg.Contacts, models.Contact{Address: addr})
		}
	}

	return msg, nil
}

// partCollector accumulates the text, html, and attachment parts of a
// possibly nested multipart body.
type partCollector struct {
	text        strings.Builder
	html        strings.Builder
	attachments []Attachment
}

func (pc *partCollector) walk(contentType, encoding string, body io.Reader) error {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("multipart message without boundary")
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				// Truncated multipart bodies are common in newsletters;
				// keep whatever parts decoded so far.
				return nil
			}
			childErr := pc.walk(part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"), part)
			part.Close()
			if childErr != nil {
				return childErr
			}
		}
	}

	data, err := io.ReadAll(decodeTransfer(body, encoding))
	if err != nil {
		return fmt.Errorf("failed to read body part: %w", err)
	}

	switch {
	case mediaType == "text/plain":
		pc.text.Write(data)
		pc.text.WriteString("\n")
	case mediaType == "text/html":
		pc.html.Write(data)
	case mediaType == "application/pdf" || strings.HasSuffix(strings.ToLower(params["name"]), ".pdf"):
		pc.attachments = append(pc.attachments, Attachment{
			Filename:    params["name"],
			ContentType: mediaType,
			Data:        data,
		})
	}
	return nil
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newLineStripper(r))
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// lineStripper removes CR/LF so base64 bodies wrapped at 76 columns
// decode cleanly.
type lineStripper struct {
	r io.Reader
}

func newLineStripper(r io.Reader) io.Reader { return &lineStripper{r: r} }

func (ls *lineStripper) Read(p []byte) (int, error) {
	n, err := ls.r.Read(p)
	kept := 0
	for i := 0; i < n; i++ {
		if p[i] == '\r' || p[i] == '\n' {
			continue
		}
		p[kept] = p[i]
		kept++
	}
	if kept == 0 && err == nil && n > 0 {
		return ls.Read(p)
	}
	return kept, err
}

var htmlSanitizer = bluemonday.UGCPolicy()

// parseHTML sanitizes the HTML and extracts visible text, anchor links
// with surrounding context, and mailto contacts.
func parseHTML(rawHTML string) (text string, links []models.LinkContext, contacts []models.Contact) {
	clean := htmlSanitizer.Sanitize(rawHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return normalizeWhitespace(clean), nil, nil
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		anchor := strings.TrimSpace(sel.Text())
		context := anchorContext(sel)

		switch {
		case strings.HasPrefix(strings.ToLower(href), "mailto:"):
			addr := strings.TrimPrefix(href, "mailto:")
			if idx := strings.IndexByte(addr, '?'); idx >= 0 {
				addr = addr[:idx]
			}
			if addr != "" {
				contacts = append(contacts, models.Contact{Address: addr, Context: context})
			}
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			links = append(links, models.LinkContext{
				URL:     href,
				Anchor:  models.Truncate(anchor, 120),
				Context: models.Truncate(context, 240),
			})
		}
	})

	return normalizeWhitespace(doc.Text()), links, contacts
}

// anchorContext returns the text of the link's nearest block parent, as
// a hint for what the link points at.
func anchorContext(sel *goquery.Selection) string {
	parent := sel.Closest("p, li, td, div")
	if parent.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(parent.First().Text())
}

func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

var multiSpaceRegex = regexp.MustCompile(`[ \t]{2,}`)
var multiNewlineRegex = regexp.MustCompile(`\n{3,}`)

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	s = multiNewlineRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimRight(s, ".,;")
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
