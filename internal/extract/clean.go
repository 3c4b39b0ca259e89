package extract

import (
	"regexp"
	"strings"
)

var (
	leadingTagsPattern = regexp.MustCompile(`(?i)^\s*tags\S*\s*`)
	citationPattern    = regexp.MustCompile(`\s*\[\d+\]`)
	satelliteCredit    = regexp.MustCompile(`Click here to expand the image below\.\s*Satellite image\s*©\s*\d{4} Maxar Technologies\.\s*`)
	linkPattern        = regexp.MustCompile(`https?://`)
)

// Clean runs the ordered text passes over one joined document: leading tag label,
// citation markers, satellite image credits, then truncation at the first link.
func Clean(text string) string {
	text = leadingTagsPattern.ReplaceAllString(text, "")
	text = citationPattern.ReplaceAllString(text, "")
	text = satelliteCredit.ReplaceAllString(text, "")
	if loc := linkPattern.FindStringIndex(text); loc != nil {
		text = strings.TrimRight(text[:loc[0]], " \t\r\n")
	}
	return strings.TrimSpace(text)
}

// Join flattens headings followed by paragraphs into a single whitespace-collapsed string.
func Join(headings, paragraphs []string) string {
	parts := make([]string, 0, len(headings)+len(paragraphs))
	parts = append(parts, headings...)
	parts = append(parts, paragraphs...)
	return collapseWhitespace(strings.Join(parts, " "))
}

// Derive turns raw bulletin markup into cleaned narrative text. Markup without any
// extractable content yields "".
func Derive(raw string) (string, error) {
	doc, err := Structure(raw)
	if err != nil {
		return "", err
	}
	if doc.Empty() {
		return "", nil
	}
	paragraphs := DropPrompts(StripMetadata(doc.Paragraphs))
	return Clean(Join(doc.Headings, paragraphs)), nil
}
