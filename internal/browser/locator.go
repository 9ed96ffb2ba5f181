package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/law-makers/dashscrape/internal/extract"
)

// LiveLocator queries the tab with querySelectorAll on every call.
// Nothing is cached between calls, so a re-rendered view is read afresh.
type LiveLocator struct {
	s        *Session
	selector string
}

// Locator creates a LiveLocator for selector
func (s *Session) Locator(selector string) *LiveLocator {
	return &LiveLocator{s: s, selector: selector}
}

// Locators builds live label/value locators for each selector pair
func (s *Session) Locators(pairs []extract.SelectorPair) []extract.LocatorPair {
	out := make([]extract.LocatorPair, len(pairs))
	for i, p := range pairs {
		out[i] = extract.LocatorPair{
			Label: s.Locator(p.Label),
			Value: s.Locator(p.Value),
		}
	}
	return out
}

func (l *LiveLocator) Count(ctx context.Context) (int, error) {
	var n int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(l.selector))
	if err := l.s.Run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, fmt.Errorf("count %s: %w", l.selector, err)
	}
	return n, nil
}

func (l *LiveLocator) TextAt(ctx context.Context, i int) (string, error) {
	var text string
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelectorAll(%s)[%d];
		return el ? (el.innerText || el.textContent || '') : '';
	})()`, jsString(l.selector), i)
	if err := l.s.Run(ctx, chromedp.Evaluate(expr, &text)); err != nil {
		return "", fmt.Errorf("text %s[%d]: %w", l.selector, i, err)
	}
	return extract.CleanText(text), nil
}

func (l *LiveLocator) String() string {
	return l.selector
}
