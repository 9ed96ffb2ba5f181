package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/dashscrape/internal/wait"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Locator resolves a selector against a page each time it is asked,
// so a page that re-renders between reads is queried afresh.
type Locator interface {
	// Count returns how many elements currently match
	Count(ctx context.Context) (int, error)
	// TextAt returns the cleaned text of the i-th current match.
	// An index that no longer exists yields "" and no error.
	TextAt(ctx context.Context, i int) (string, error)
	// String describes the locator for logs
	String() string
}

// LocatorPair is a (label, value) locator convention tried by StatusExtractor
type LocatorPair struct {
	Label Locator
	Value Locator
}

// DefaultStatusPairs are the status-item conventions, most specific first.
// Kept separate from DefaultPairs: the two extractors evolve independently.
var DefaultStatusPairs = []SelectorPair{
	{Label: ".status-item .status-item-label", Value: ".status-item .status-item-value"},
	{Label: "[id=info-name]", Value: "[id=info-value]"},
}

// StatusOptions configures how long StatusExtractor waits for a view to render
type StatusOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// StatusExtractor returns the label/value pairs of the first locator pair that yields any
type StatusExtractor struct {
	pairs []LocatorPair
	opts  StatusOptions
}

// NewStatusExtractor creates a StatusExtractor over the given pairs
func NewStatusExtractor(pairs []LocatorPair, opts StatusOptions) *StatusExtractor {
	return &StatusExtractor{pairs: pairs, opts: opts}
}

// Extract waits for any label locator to match, then tries each pair in order.
// It returns wait.ErrTimeout if nothing rendered within the timeout.
func (s *StatusExtractor) Extract(ctx context.Context) ([]models.StatusItem, error) {
	err := wait.Until(ctx, s.opts.Timeout, s.opts.PollInterval, func(ctx context.Context) (bool, error) {
		for _, p := range s.pairs {
			n, err := p.Label.Count(ctx)
			if err != nil {
				return false, err
			}
			if n > 0 {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range s.pairs {
		items, err := s.extractPair(ctx, p)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			log.Debug().
				Str("label", p.Label.String()).
				Int("count", len(items)).
				Msg("Status items extracted")
			return items, nil
		}
	}
	return []models.StatusItem{}, nil
}

func (s *StatusExtractor) extractPair(ctx context.Context, p LocatorPair) ([]models.StatusItem, error) {
	var items []models.StatusItem
	for i := 0; ; i++ {
		// counts are re-read every step; the view may grow or shrink while we read it
		labels, err := p.Label.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", p.Label, err)
		}
		values, err := p.Value.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", p.Value, err)
		}
		if i >= labels || i >= values {
			break
		}

		label, err := p.Label.TextAt(ctx, i)
		if err != nil {
			return nil, err
		}
		value, err := p.Value.TextAt(ctx, i)
		if err != nil {
			return nil, err
		}
		if label == "" || value == "" {
			log.Debug().Int("index", i).Msg("Skipping status item with empty label or value")
			continue
		}
		items = append(items, models.StatusItem{Label: label, Value: value})
	}
	return items, nil
}

// DocLocator is a Locator over a parsed document; it re-runs the selector on every call
type DocLocator struct {
	doc      *goquery.Document
	selector string
}

// NewDocLocator creates a Locator for selector over doc
func NewDocLocator(doc *goquery.Document, selector string) *DocLocator {
	return &DocLocator{doc: doc, selector: selector}
}

func (l *DocLocator) Count(ctx context.Context) (int, error) {
	return l.doc.Find(l.selector).Length(), nil
}

func (l *DocLocator) TextAt(ctx context.Context, i int) (string, error) {
	sel := l.doc.Find(l.selector)
	if i < 0 || i >= sel.Length() {
		return "", nil
	}
	return textOf(sel.Eq(i)), nil
}

func (l *DocLocator) String() string {
	return l.selector
}

// DocPairs builds document locators for each selector pair
func DocPairs(doc *goquery.Document, pairs []SelectorPair) []LocatorPair {
	out := make([]LocatorPair, len(pairs))
	for i, p := range pairs {
		out[i] = LocatorPair{
			Label: NewDocLocator(doc, p.Label),
			Value: NewDocLocator(doc, p.Value),
		}
	}
	return out
}
