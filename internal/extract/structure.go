package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// contentSelector is the container the bulletin template puts the narrative in.
	contentSelector  = "div.content"
	fallbackSelector = "body"
	removedSelector  = "script, style, nav, footer, header"
	headingSelector  = "h1, h2, h3, h4, h5, h6"
	paragraphSelect  = "p"
)

// Document is the structural skeleton of one bulletin page.
type Document struct {
	Headings   []string
	Paragraphs []string
}

// Empty reports whether nothing extractable was found.
func (d Document) Empty() bool {
	return len(d.Headings) == 0 && len(d.Paragraphs) == 0
}

// Structure parses raw markup and collects heading and paragraph text from the main
// content region. A page without a locatable region yields an empty Document, not an error.
func Structure(raw string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("parse markup: %w", err)
	}
	doc.Find(removedSelector).Remove()

	region := doc.Find(contentSelector).First()
	if region.Length() == 0 {
		region = doc.Find(fallbackSelector).First()
	}
	if region.Length() == 0 {
		return Document{}, nil
	}

	return Document{
		Headings:   collectText(region.Find(headingSelector)),
		Paragraphs: collectText(region.Find(paragraphSelect)),
	}, nil
}

func collectText(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if text := collapseWhitespace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
