// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/law-makers/dashscrape/internal/auth"
	"github.com/law-makers/dashscrape/internal/browser"
	"github.com/law-makers/dashscrape/internal/config"
	"github.com/law-makers/dashscrape/internal/extract"
	"github.com/law-makers/dashscrape/internal/utils/headers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure the browser is shut down on every exit path.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Credentials *auth.Store
	Browser     *browser.Session
	browserMu   sync.Mutex
	startTime   time.Time
}

// New creates and initializes a new Application.
//
// Logging is configured from cfg and the credential store is checked.
// The browser is not started here; commands that need it call EnsureBrowser.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// info logs stay hidden unless -v is used; warnings are always shown
	logLevel := zerolog.WarnLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn", "info":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}
	if cfg.Quiet {
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("base_url", cfg.BaseURL).
		Msg("Logger initialized")

	store, err := auth.NewStore()
	if err != nil {
		logger.Warn().Err(err).Msg("Credential store unavailable")
		store = nil
	} else {
		logger.Debug().Str("backend", store.Backend()).Msg("Credential store initialized")
	}

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		Credentials: store,
		startTime:   time.Now(),
	}, nil
}

// EnsureBrowser starts the browser session if it is not already running
func (a *Application) EnsureBrowser(ctx context.Context) (*browser.Session, error) {
	if a == nil {
		return nil, fmt.Errorf("application is nil")
	}

	a.browserMu.Lock()
	defer a.browserMu.Unlock()

	if a.Browser != nil {
		return a.Browser, nil
	}

	hdrs, err := headers.ParseHeaders(a.Config.ExtraHeaders)
	if err != nil {
		return nil, err
	}

	a.Logger.Debug().Msg("Starting browser on demand")
	s, err := browser.Open(ctx, browser.Options{
		Headless:     a.Config.Headless,
		ChromePath:   a.Config.ChromePath,
		UserAgent:    a.Config.UserAgent,
		Proxy:        a.Config.Proxy,
		Headers:      hdrs,
		Timeout:      a.Config.WaitTimeout,
		PollInterval: a.Config.PollInterval,
		Overlays:     a.Config.Overlays,
	})
	if err != nil {
		return nil, err
	}
	a.Browser = s
	return s, nil
}

// Login signs the browser into the dashboard with the configured account
func (a *Application) Login(ctx context.Context) error {
	s, err := a.EnsureBrowser(ctx)
	if err != nil {
		return err
	}

	cfg := a.Config
	password := auth.ResolvePassword(
		a.Credentials,
		auth.Account(cfg.BaseURL, cfg.Username),
		cfg.Password,
		cfg.PasswordExplicit(),
		config.DefaultPassword,
	)

	return auth.Login(ctx, s, cfg.BaseURL, auth.Form{
		UsernameSelector: cfg.Login.UsernameSelector,
		PasswordSelector: cfg.Login.PasswordSelector,
		SubmitSelector:   cfg.Login.SubmitSelector,
		DashboardMarker:  cfg.Login.DashboardMarker,
	}, auth.Credentials{Username: cfg.Username, Password: password})
}

// Extractor builds the page-context extractor from the configured selectors
func (a *Application) Extractor() *extract.Extractor {
	sel := a.Config.Selectors
	return extract.New(sel.Title,
		extract.NewPairedSelectors(sel.Pairs),
		extract.NewTables(),
		extract.NewLabelSiblings(sel.Label),
		extract.NewResidual(),
	)
}

// Close gracefully shuts down the application. Safe to call more than once.
func (a *Application) Close(ctx context.Context) error {
	a.browserMu.Lock()
	if a.Browser != nil {
		a.Browser.Close()
		a.Browser = nil
		a.Logger.Debug().Msg("Browser closed")
	}
	a.browserMu.Unlock()

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
