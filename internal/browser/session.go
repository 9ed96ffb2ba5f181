// Package browser drives a single Chrome tab over the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	urlutil "github.com/law-makers/dashscrape/internal/utils/url"
	"github.com/law-makers/dashscrape/internal/wait"
	"github.com/rs/zerolog/log"
)

// ErrBrowserStart is returned when Chrome could not be launched or attached
var ErrBrowserStart = errors.New("browser failed to start")

// Options configures a Session
type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string
	// Headers are sent with every request the tab makes
	Headers map[string]string
	// Timeout bounds every page operation; PollInterval paces waits
	Timeout      time.Duration
	PollInterval time.Duration
	// Overlays are close-button selectors clicked by DismissOverlays
	Overlays []string
}

// Session owns one browser process and one tab. It is not safe for concurrent use.
type Session struct {
	opts        Options
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// Open launches Chrome and prepares a tab. The caller must Close the session.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = wait.DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = wait.DefaultPollInterval
	}

	chromePath := FindChrome(opts.ChromePath)
	log.Debug().
		Str("path", chromePath).
		Str("version", ChromeVersion(chromePath)).
		Bool("headless", opts.Headless).
		Msg("Launching Chrome")

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
		// no microphone prompt from the dashboard's voice features
		chromedp.Flag("use-fake-ui-for-media-stream", true),
		chromedp.Flag("deny-permission-prompts", true),
		chromedp.WindowSize(1920, 1080),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"), chromedp.Flag("disable-gpu", true))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:        opts,
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}

	s.listen()

	tasks := []chromedp.Action{network.Enable()}
	if len(opts.Headers) > 0 {
		h := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			h[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(h))
	}
	tasks = append(tasks, chromedp.Navigate("about:blank"))

	if err := s.Run(ctx, tasks...); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	log.Debug().Int("headers", len(opts.Headers)).Msg("Browser session ready")
	return s, nil
}

// listen accepts JavaScript dialogs as they open so they never block the tab
func (s *Session) listen() {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			log.Debug().Str("type", string(e.Type)).Str("message", e.Message).Msg("Dismissing dialog")
			go func() {
				if err := chromedp.Run(s.ctx, page.HandleJavaScriptDialog(true)); err != nil {
					log.Debug().Err(err).Msg("Dialog already gone")
				}
			}()
		}
	})
}

// Close shuts the tab and the browser. Safe to call more than once.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
}

// Run executes actions in the tab, bounded by the session timeout and by ctx
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Location returns the current URL of the tab
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// WaitURL waits until the tab URL satisfies match
func (s *Session) WaitURL(ctx context.Context, match func(string) bool) error {
	return wait.Until(ctx, s.opts.Timeout, s.opts.PollInterval, func(ctx context.Context) (bool, error) {
		loc, err := s.Location(ctx)
		if err != nil {
			return false, err
		}
		return match(loc), nil
	})
}

// GoRoute switches the single-page app to a hash route and waits until the
// URL shows it. The page is not reloaded.
func (s *Session) GoRoute(ctx context.Context, route string) error {
	fragment := urlutil.RouteFragment(route)
	expr := "window.location.hash = " + jsString(fragment)
	if err := s.Run(ctx, chromedp.Evaluate(expr, nil)); err != nil {
		return fmt.Errorf("set route %s: %w", fragment, err)
	}
	if err := s.WaitURL(ctx, func(loc string) bool { return urlutil.RouteMatches(loc, route) }); err != nil {
		return fmt.Errorf("route %s: %w", fragment, err)
	}
	return nil
}

// snapshotJS serializes a clone of the document with current form state
// written into attributes, leaving the live page untouched
const snapshotJS = `(() => {
	const root = document.documentElement;
	const clone = root.cloneNode(true);
	const src = root.querySelectorAll('input, textarea, select');
	const dst = clone.querySelectorAll('input, textarea, select');
	src.forEach((el, i) => {
		const c = dst[i];
		if (!c) return;
		if (el.tagName === 'SELECT') {
			Array.from(el.options).forEach((o, j) => {
				if (!c.options[j]) return;
				if (o.selected) c.options[j].setAttribute('selected', '');
				else c.options[j].removeAttribute('selected');
			});
		} else if (el.tagName === 'TEXTAREA') {
			c.textContent = el.value;
		} else if (el.type === 'checkbox' || el.type === 'radio') {
			if (el.checked) c.setAttribute('checked', ''); else c.removeAttribute('checked');
		} else {
			c.setAttribute('value', el.value);
		}
	});
	return '<!DOCTYPE html>' + clone.outerHTML;
})()`

// Snapshot returns the current URL and rendered markup of the tab
func (s *Session) Snapshot(ctx context.Context) (url, html string, err error) {
	err = s.Run(ctx,
		chromedp.Location(&url),
		chromedp.Evaluate(snapshotJS, &html),
	)
	if err != nil {
		return "", "", fmt.Errorf("snapshot: %w", err)
	}
	return url, html, nil
}

// DismissOverlays clicks the close buttons of any open modal overlays and
// reports how many were clicked. Failures are logged and ignored.
func (s *Session) DismissOverlays(ctx context.Context) int {
	clicked := 0
	for _, sel := range s.opts.Overlays {
		var n int
		expr := fmt.Sprintf(`(() => {
			const els = document.querySelectorAll(%s);
			els.forEach(el => el.click());
			return els.length;
		})()`, jsString(sel))
		if err := s.Run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
			log.Debug().Err(err).Str("selector", sel).Msg("Overlay check failed")
			continue
		}
		if n > 0 {
			log.Debug().Str("selector", sel).Int("count", n).Msg("Overlay dismissed")
		}
		clicked += n
	}
	return clicked
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
