// Package auth signs into the dashboard and keeps its credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/law-makers/dashscrape/internal/browser"
	"github.com/rs/zerolog/log"
)

// ErrLoginFailed is returned when the login form is missing or never leads to the dashboard
var ErrLoginFailed = errors.New("login failed")

// Credentials are the dashboard account used for a run
type Credentials struct {
	Username string
	Password string
}

// Form names the login form elements and the URL marker of a signed-in page
type Form struct {
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	DashboardMarker  string
}

// Login opens baseURL, fills and submits the login form, then waits until
// the URL contains the dashboard marker. A tab already showing the
// dashboard is left alone.
func Login(ctx context.Context, s *browser.Session, baseURL string, form Form, creds Credentials) error {
	log.Debug().Str("url", baseURL).Str("user", creds.Username).Msg("Starting login")

	if err := s.Navigate(ctx, baseURL); err != nil {
		return loginError("open login page", err)
	}

	onDashboard := func(loc string) bool { return strings.Contains(loc, form.DashboardMarker) }
	if loc, err := s.Location(ctx); err == nil && onDashboard(loc) {
		log.Info().Str("url", loc).Msg("Already signed in")
		return nil
	}

	err := s.Run(ctx,
		chromedp.WaitVisible(form.UsernameSelector, chromedp.ByQuery),
		chromedp.Clear(form.UsernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(form.UsernameSelector, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(form.PasswordSelector, creds.Password, chromedp.ByQuery),
		chromedp.Click(form.SubmitSelector, chromedp.ByQuery),
	)
	if err != nil {
		return loginError("login form not usable", err)
	}

	if err := s.WaitURL(ctx, onDashboard); err != nil {
		return loginError("dashboard not reached", err)
	}

	log.Info().Str("user", creds.Username).Msg("Login successful")
	return nil
}

// loginError keeps both ErrLoginFailed and the cause reachable through errors.Is
func loginError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoginFailed, stage, err)
}
