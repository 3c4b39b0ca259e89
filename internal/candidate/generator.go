// Package candidate guesses the addresses a dated bulletin may have been published under.
package candidate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the listing root every bulletin slug hangs off.
const DefaultBaseURL = "https://www.understandingwar.org/backgrounder/"

// placeholder marks where the date token is substituted in a template.
const placeholder = "{}"

// DefaultTemplates are the slug patterns observed for the daily assessment, most likely first.
var DefaultTemplates = []string{
	"russian-offensive-campaign-assessment-{}",
	"russia-ukraine-warning-update-russian-offensive-campaign-assessment-{}",
	"russian-campaign-assessment-{}",
	"russian-offensive-campaign-update-{}",
	"russian-offensive-campaign-assessment-{}-0",
}

// Generator instantiates every template twice per date: once with a
// month-day-year token and once with a month-day token.
type Generator struct {
	baseURL   string
	templates []string
}

// New builds a Generator. Empty inputs fall back to the defaults.
func New(baseURL string, templates []string) (*Generator, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if len(templates) == 0 {
		templates = DefaultTemplates
	}
	for _, tmpl := range templates {
		if strings.Count(tmpl, placeholder) != 1 {
			return nil, fmt.Errorf("template %q must contain exactly one %s", tmpl, placeholder)
		}
	}
	return &Generator{
		baseURL:   baseURL,
		templates: append([]string(nil), templates...),
	}, nil
}

// Default returns a Generator over DefaultBaseURL and DefaultTemplates.
func Default() *Generator {
	g, err := New(DefaultBaseURL, DefaultTemplates)
	if err != nil {
		panic(err)
	}
	return g
}

// Candidates returns the ordered candidate URLs for date. The result always has
// twice as many entries as there are templates.
func (g *Generator) Candidates(date time.Time) []string {
	withYear := Token(date, true)
	withoutYear := Token(date, false)
	urls := make([]string, 0, 2*len(g.templates))
	for _, tmpl := range g.templates {
		urls = append(urls,
			g.baseURL+strings.Replace(tmpl, placeholder, withYear, 1),
			g.baseURL+strings.Replace(tmpl, placeholder, withoutYear, 1),
		)
	}
	return urls
}

// Token renders the slug date token, e.g. "march-1-2025" or "march-1".
func Token(date time.Time, includeYear bool) string {
	month := strings.ToLower(date.Month().String())
	day := strconv.Itoa(date.Day())
	if includeYear {
		return month + "-" + day + "-" + strconv.Itoa(date.Year())
	}
	return month + "-" + day
}
