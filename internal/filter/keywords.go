package filter

import (
	"strings"
	"unicode"
)

// Keyword matching is word-boundary aware: the term "ai" must not match
// inside "retail". Terms and text are tokenized on non-alphanumeric runes
// and a term matches when its token sequence appears in the text.

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsTerm reports whether term appears in text as a whole-word
// (possibly multi-word) sequence.
func containsTerm(text, term string) bool {
	return countTerm(text, term) > 0
}

// countTerm counts non-overlapping whole-word occurrences of term in text.
func countTerm(text, term string) int {
	termTokens := tokenize(term)
	if len(termTokens) == 0 {
		return 0
	}
	textTokens := tokenize(text)

	count := 0
	for i := 0; i+len(termTokens) <= len(textTokens); i++ {
		matched := true
		for j, tt := range termTokens {
			if textTokens[i+j] != tt {
				matched = false
				break
			}
		}
		if matched {
			count++
			i += len(termTokens) - 1
		}
	}
	return count
}

// containsAnyTerm reports whether any of the terms appears in text.
func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if containsTerm(text, term) {
			return true
		}
	}
	return false
}

// countMatchingTerms counts how many of the terms appear in text at least
// once.
func countMatchingTerms(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if containsTerm(text, term) {
			n++
		}
	}
	return n
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// listHasAny reports whether any needle is an element of the list
// (exact match after lowercasing).
func listHasAny(list []string, needles ...string) bool {
	for _, item := range list {
		for _, needle := range needles {
			if item == needle {
				return true
			}
		}
	}
	return false
}

// Broad topic clusters used for partial interest matching. A cluster
// contributes only when the profile's stated interests intersect its
// trigger terms.

var aiTerms = []string{
	"ai", "artificial intelligence", "ml", "machine learning", "deep learning",
	"neural", "neural network", "algorithm", "llm", "gpt", "chatgpt", "openai",
	"claude", "anthropic", "transformer", "bert", "diffusion", "generative",
	"nlp", "computer vision", "reinforcement learning", "foundation model",
	"large language model", "prompt engineering", "fine-tuning",
}

var techTerms = []string{
	"tech", "engineering", "development", "programming", "coding", "software",
	"frontend", "backend", "fullstack", "devops", "cloud", "aws", "azure",
	"kubernetes", "docker", "api", "database", "python", "javascript", "react",
	"nodejs", "typescript", "css", "html", "framework", "library",
	"open source", "github", "architecture",
}

var researchTerms = []string{
	"study", "academic", "university", "phd", "graduate", "scholar", "paper",
	"publication", "journal", "conference", "workshop", "symposium", "research",
	"experiment", "analysis", "methodology", "findings", "peer review",
}

var industryTerms = []string{
	"startup", "funding", "venture", "series a", "ipo", "acquisition", "merger",
	"product launch", "announcement", "release", "update", "platform",
	"service", "industry", "market", "trend", "innovation", "breakthrough",
	"investment",
}

var designTerms = []string{
	"design", "ui", "ux", "interface", "user experience", "creative", "visual",
	"graphic", "web design", "product design", "prototyping", "figma", "sketch",
}
