// Package scrape visits dashboard routes in a signed-in browser and collects their content.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/law-makers/dashscrape/internal/extract"
	"github.com/law-makers/dashscrape/internal/output"
	"github.com/law-makers/dashscrape/internal/reqctx"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Browser is the tab a Runner drives. browser.Session implements it.
type Browser interface {
	GoRoute(ctx context.Context, route string) error
	DismissOverlays(ctx context.Context) int
	Snapshot(ctx context.Context) (url, html string, err error)
	Locators(pairs []extract.SelectorPair) []extract.LocatorPair
}

// Options configures a Runner
type Options struct {
	Mode        models.ScrapeMode
	Routes      []string
	StatusPairs []extract.SelectorPair
	Extractor   *extract.Extractor

	Timeout      time.Duration
	PollInterval time.Duration
	// SettleDelay is waited after each route change before reading the view
	SettleDelay time.Duration

	// SnapshotDir receives a markdown and HTML snapshot per route when set
	SnapshotDir string
	// Progress receives a progress bar when set
	Progress io.Writer
}

// Result is what a run collected. Routes that failed contribute nothing.
type Result struct {
	Mode     models.ScrapeMode
	Items    []models.StatusItem
	Contexts []*models.PageContext
	Failed   []string
}

// Empty reports whether the run collected nothing
func (r *Result) Empty() bool {
	return len(r.Items) == 0 && len(r.Contexts) == 0
}

// Runner visits routes one at a time in a single tab
type Runner struct {
	browser Browser
	opts    Options
}

// NewRunner creates a Runner over b
func NewRunner(b Browser, opts Options) *Runner {
	if opts.Mode == "" {
		opts.Mode = models.ModeItems
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.NewDefault()
	}
	if opts.StatusPairs == nil {
		opts.StatusPairs = extract.DefaultStatusPairs
	}
	return &Runner{browser: b, opts: opts}
}

// Run visits every route in order. A route that times out or fails is logged
// and skipped; only cancellation of ctx stops the run early.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Mode:     r.opts.Mode,
		Items:    []models.StatusItem{},
		Contexts: []*models.PageContext{},
	}

	var bar *progressbar.ProgressBar
	if r.opts.Progress != nil {
		bar = progressbar.NewOptions(len(r.opts.Routes),
			progressbar.OptionSetWriter(r.opts.Progress),
			progressbar.OptionSetDescription("Scraping"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, route := range r.opts.Routes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if bar != nil {
			bar.Describe(route)
		}

		vctx := reqctx.WithVisit(ctx, route, i+1)
		visit := reqctx.FromContext(vctx)
		log.Info().
			Str("visit_id", visit.ID).
			Str("route", route).
			Msgf("[%d/%d] Navigating", i+1, len(r.opts.Routes))

		if err := r.visit(vctx, res); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return res, err
			}
			serr := NewScrapeError("route skipped", reqctx.NewVisitError(vctx, err))
			log.Warn().
				Str("visit_id", visit.ID).
				Str("route", route).
				Str("code", string(serr.Code)).
				Err(err).
				Msg("Failed to scrape route")
			res.Failed = append(res.Failed, route)
		} else {
			log.Debug().
				Str("visit_id", visit.ID).
				Str("route", route).
				Dur("elapsed", visit.Elapsed()).
				Msg("Route scraped")
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return res, nil
}

func (r *Runner) visit(ctx context.Context, res *Result) error {
	route := reqctx.FromContext(ctx).Route

	if err := r.browser.GoRoute(ctx, route); err != nil {
		return err
	}
	r.browser.DismissOverlays(ctx)

	if err := sleep(ctx, r.opts.SettleDelay); err != nil {
		return err
	}

	if r.opts.SnapshotDir != "" {
		r.saveSnapshot(ctx, route)
	}

	switch r.opts.Mode {
	case models.ModeContext:
		pageURL, html, err := r.browser.Snapshot(ctx)
		if err != nil {
			return err
		}
		page, err := extract.NewPage(pageURL, html)
		if err != nil {
			return err
		}
		pc := r.opts.Extractor.Extract(page)
		log.Debug().Str("route", route).Int("sections", len(pc.Sections)).Msg("Page context extracted")
		res.Contexts = append(res.Contexts, pc)

	default:
		status := extract.NewStatusExtractor(r.browser.Locators(r.opts.StatusPairs), extract.StatusOptions{
			Timeout:      r.opts.Timeout,
			PollInterval: r.opts.PollInterval,
		})
		items, err := status.Extract(ctx)
		if err != nil {
			return err
		}
		log.Debug().Str("route", route).Int("count", len(items)).Msg("Status items extracted")
		res.Items = append(res.Items, items...)
	}
	return nil
}

// saveSnapshot is best effort; a failed snapshot never fails the route
func (r *Runner) saveSnapshot(ctx context.Context, route string) {
	pageURL, html, err := r.browser.Snapshot(ctx)
	if err == nil {
		err = output.SaveSnapshot(r.opts.SnapshotDir, output.SnapshotName(route), pageURL, html)
	}
	if err != nil {
		log.Warn().Err(err).Str("route", route).Msg("Snapshot not saved")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Save writes the result to path: status items for items mode, page contexts
// for context mode. An empty result writes nothing and reports false.
func Save(res *Result, path string) (bool, error) {
	if res.Empty() {
		log.Warn().Msg("No data was scraped")
		return false, nil
	}

	var v interface{} = res.Items
	if res.Mode == models.ModeContext {
		v = res.Contexts
	}
	if err := output.SaveJSON(v, path); err != nil {
		return false, NewScrapeError("save results", err)
	}
	log.Info().Str("path", path).Msg("Results saved")
	return true, nil
}

// PrintSummary writes one "label: value" line per status item
func PrintSummary(w io.Writer, items []models.StatusItem) {
	for _, it := range items {
		fmt.Fprintf(w, "%s: %s\n", it.Label, it.Value)
	}
}
