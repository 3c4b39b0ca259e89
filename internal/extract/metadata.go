package extract

import (
	"regexp"
	"strings"
)

const (
	// metadataScanLimit is how many leading paragraphs may be boilerplate.
	metadataScanLimit = 3
	// metadataMaxWords guards against a pattern matching inside real narrative.
	metadataMaxWords = 20
)

var (
	// bylinePattern matches a paragraph that is only a name, optionally with an affiliation.
	bylinePattern    = regexp.MustCompile(`^(?:By\s+)?[A-Z][A-Za-z'-]*[a-z](?:\s+[A-Z]\.)?\s+[A-Z][A-Za-z'-]*[a-z](?:,\s*ISW)?$`)
	dateLinePattern  = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}\b`)
	timeOfDayPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}|\b\d{1,2}\s*(?:(?i:am|pm)\b|(?i:a\.m\.|p\.m\.))|\b(?:ET|EST|EDT)\b`)

	pressTags = map[string]struct{}{
		"press isw":         {},
		"isw press":         {},
		"press release":     {},
		"tags":              {},
		"share":             {},
		"print":             {},
		"download the pdf":  {},
		"download pdf":      {},
		"view the full pdf": {},
	}

	// unwantedPrefixes open paragraphs that are template prompts rather than narrative.
	unwantedPrefixes = []string{"click", "isw", "note", "correction"}
)

// StripMetadata removes the longest boilerplate prefix from paragraphs. Only the first
// few paragraphs are examined and the scan stops at the first substantive one. If every
// paragraph would be removed the input is returned unchanged.
func StripMetadata(paragraphs []string) []string {
	cut := 0
	for cut < len(paragraphs) && cut < metadataScanLimit && IsMetadata(paragraphs[cut]) {
		cut++
	}
	if cut == len(paragraphs) {
		return append([]string(nil), paragraphs...)
	}
	return append([]string(nil), paragraphs[cut:]...)
}

// IsMetadata reports whether a paragraph looks like a byline, dateline, timestamp or
// press tag and is short enough to be one.
func IsMetadata(paragraph string) bool {
	text := strings.TrimSpace(paragraph)
	if text == "" {
		return false
	}
	if len(strings.Fields(text)) >= metadataMaxWords {
		return false
	}
	if _, ok := pressTags[strings.ToLower(text)]; ok {
		return true
	}
	return bylinePattern.MatchString(text) ||
		dateLinePattern.MatchString(text) ||
		timeOfDayPattern.MatchString(text)
}

// DropPrompts removes paragraphs that open with a template prompt such as
// "Click here" or "Note:".
func DropPrompts(paragraphs []string) []string {
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if hasUnwantedPrefix(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasUnwantedPrefix(paragraph string) bool {
	lower := strings.ToLower(strings.TrimSpace(paragraph))
	for _, prefix := range unwantedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
