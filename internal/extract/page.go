// Package extract turns rendered dashboard markup into structured content.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a snapshot of a rendered page: its markup and the URL it was captured at.
// Strategies only read from it.
type Page struct {
	URL string
	Doc *goquery.Document
}

// NewPage parses html into a Page
func NewPage(url, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{URL: url, Doc: doc}, nil
}

// CleanText collapses whitespace runs and trims the result
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textOf returns the cleaned text content of a selection
func textOf(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

// Seen is the dedup set of text fragments already emitted for one page
type Seen struct {
	texts map[string]struct{}
}

// NewSeen creates an empty dedup set
func NewSeen() *Seen {
	return &Seen{texts: make(map[string]struct{})}
}

// Has reports whether text was already emitted
func (s *Seen) Has(text string) bool {
	_, ok := s.texts[text]
	return ok
}

// Add records texts as emitted. Empty strings are ignored.
func (s *Seen) Add(texts ...string) {
	for _, t := range texts {
		if t != "" {
			s.texts[t] = struct{}{}
		}
	}
}

// Len returns the number of distinct texts recorded
func (s *Seen) Len() int {
	return len(s.texts)
}
