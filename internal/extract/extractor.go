package extract

import (
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Strategy is one heuristic for locating content in arbitrary markup.
// It may append sections and record texts in seen; it must not modify the page.
type Strategy interface {
	Name() string
	Extract(page *Page, seen *Seen) []models.Section
}

// DefaultTitleSelectors are tried in order; the first non-empty match is the page title
var DefaultTitleSelectors = []string{"h1", ".card-title", ".page-title", "title"}

// Extractor builds a PageContext by running every strategy in order
type Extractor struct {
	titleSelectors []string
	strategies     []Strategy
}

// New creates an Extractor with the given title selectors and strategy cascade
func New(titleSelectors []string, strategies ...Strategy) *Extractor {
	return &Extractor{
		titleSelectors: titleSelectors,
		strategies:     strategies,
	}
}

// NewDefault creates the Extractor used for dashboard pages: paired selectors,
// tables, label siblings, then residual headings and paragraphs.
func NewDefault() *Extractor {
	return New(DefaultTitleSelectors,
		NewPairedSelectors(DefaultPairs),
		NewTables(),
		NewLabelSiblings(DefaultLabelSelector),
		NewResidual(),
	)
}

// Strategies returns the strategy names in execution order
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract produces the page context. Absent matches just yield fewer sections.
func (e *Extractor) Extract(page *Page) *models.PageContext {
	pc := &models.PageContext{
		Sections: []models.Section{},
	}
	if page == nil || page.Doc == nil {
		return pc
	}
	pc.URL = page.URL

	seen := NewSeen()

	if title := e.title(page); title != "" {
		pc.Title = models.StringPtr(title)
		seen.Add(title)
	}

	for _, s := range e.strategies {
		sections := s.Extract(page, seen)
		log.Debug().
			Str("url", page.URL).
			Str("strategy", s.Name()).
			Int("sections", len(sections)).
			Msg("Strategy applied")
		pc.Sections = append(pc.Sections, sections...)
	}

	log.Debug().
		Str("url", page.URL).
		Int("sections", len(pc.Sections)).
		Int("texts", seen.Len()).
		Msg("Page extracted")
	return pc
}

func (e *Extractor) title(page *Page) string {
	for _, sel := range e.titleSelectors {
		if t := textOf(page.Doc.Find(sel).First()); t != "" {
			return t
		}
	}
	return ""
}
