package config

import (
	"fmt"

	"github.com/law-makers/dashscrape/internal/utils/headers"
	urlutil "github.com/law-makers/dashscrape/internal/utils/url"
	"github.com/law-makers/dashscrape/pkg/models"
)

func validate(c *Config) error {
	if err := urlutil.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if len(c.Routes) == 0 {
		return fmt.Errorf("at least one route is required")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be > 0")
	}
	if c.PollInterval <= 0 || c.PollInterval > c.WaitTimeout {
		return fmt.Errorf("poll interval must be > 0 and not exceed the wait timeout")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be >= 0")
	}
	switch models.ScrapeMode(c.Mode) {
	case models.ModeItems, models.ModeContext:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", models.ModeItems, models.ModeContext, c.Mode)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	if c.Login.DashboardMarker == "" {
		return fmt.Errorf("login dashboard marker is required")
	}
	if _, err := headers.ParseHeaders(c.ExtraHeaders); err != nil {
		return err
	}
	for _, p := range c.Selectors.Pairs {
		if p.Label == "" || p.Value == "" {
			return fmt.Errorf("selector pair needs both label and value")
		}
	}
	for _, p := range c.Selectors.StatusPairs {
		if p.Label == "" || p.Value == "" {
			return fmt.Errorf("status selector pair needs both label and value")
		}
	}
	return nil
}
