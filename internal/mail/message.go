package mail

import (
	"regexp"
	"strings"
	"time"

	"github.com/sentinel-agent/sentinel/internal/models"
)

// Attachment is one decoded MIME attachment.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a parsed email ready for extraction: plain text body,
// harvested URLs and contacts, and any deadline dates pulled out of PDF
// attachments.
type Message struct {
	UID     string
	Account string
	From    string
	Subject string
	Date    time.Time

	Text string

	URLs         []string
	Links        []models.LinkContext
	Contacts     []models.Contact
	Attachments  []Attachment
	PDFDeadlines []string
}

// trackerHosts are link shorteners and click trackers that make poor
// primary URLs.
var trackerHosts = []string{
	"list-manage.com", "mailchi.mp", "sendgrid.net", "click.", "track.",
	"links.", "email.", "unsubscribe",
}

// PrimaryURL picks the most informative URL from the email: the first
// one that is not an obvious click tracker, falling back to the first
// URL of any kind.
func (m *Message) PrimaryURL() string {
	for _, u := range m.URLs {
		if !looksLikeTracker(u) {
			return u
		}
	}
	if len(m.URLs) > 0 {
		return m.URLs[0]
	}
	return ""
}

func looksLikeTracker(u string) bool {
	lower := strings.ToLower(u)
	for _, host := range trackerHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

var senderAddrRegex = regexp.MustCompile(`[\w.+-]+@([\w-]+(?:\.[\w-]+)+)`)

// SenderDomain extracts the sender's domain from a From header, with
// the TLD stripped, as a rough organization name. "news@openai.com"
// becomes "openai".
func SenderDomain(from string) string {
	match := senderAddrRegex.FindStringSubmatch(from)
	if match == nil {
		return ""
	}
	domain := match[1]
	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return domain
}

var deadlineSnippetRegex = regexp.MustCompile(`(?i)(deadline|due date|apply by|applications? close|closes on|submit by)[^.\n]{0,120}`)

// DeadlineSnippet returns the first deadline-looking phrase in the
// text, verbatim, or an empty string.
func DeadlineSnippet(text string) string {
	return strings.TrimSpace(deadlineSnippetRegex.FindString(text))
}
