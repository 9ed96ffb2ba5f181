package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/law-makers/dashscrape/internal/extract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`
	Quiet    bool   `yaml:"-"`

	// Dashboard
	BaseURL  string   `yaml:"base_url"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Routes   []string `yaml:"routes"`
	Login    Login    `yaml:"login"`

	// Timing
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	SettleDelay  time.Duration `yaml:"settle_delay"`

	// Browser
	Headless     bool     `yaml:"headless"`
	ChromePath   string   `yaml:"chrome_path"`
	Proxy        string   `yaml:"proxy"`
	UserAgent    string   `yaml:"user_agent"`
	ExtraHeaders []string `yaml:"headers"`
	Overlays     []string `yaml:"overlay_selectors"`

	// Output
	OutputFile  string `yaml:"output"`
	Mode        string `yaml:"mode"`
	SnapshotDir string `yaml:"snapshot_dir"`

	// Extraction
	Selectors Selectors `yaml:"selectors"`

	// passwordSet records whether Password came from a file, env or flag
	// rather than the built-in default
	passwordSet bool
}

// Login names the login form elements and the URL marker of a completed login
type Login struct {
	UsernameSelector string `yaml:"username_selector"`
	PasswordSelector string `yaml:"password_selector"`
	SubmitSelector   string `yaml:"submit_selector"`
	DashboardMarker  string `yaml:"dashboard_marker"`
}

// Selectors tunes the extractors without a rebuild
type Selectors struct {
	Title       []string               `yaml:"title"`
	Pairs       []extract.SelectorPair `yaml:"pairs"`
	StatusPairs []extract.SelectorPair `yaml:"status_pairs"`
	Label       string                 `yaml:"label"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:     DefaultLogLevel,
		JSONLog:      DefaultJSONLog,
		BaseURL:      DefaultBaseURL,
		Username:     DefaultUsername,
		Password:     DefaultPassword,
		Routes:       append([]string(nil), DefaultRoutes...),
		WaitTimeout:  DefaultWaitTimeout,
		PollInterval: DefaultPollInterval,
		SettleDelay:  DefaultSettleDelay,
		Headless:     DefaultHeadless,
		UserAgent:    DefaultUserAgent,
		Overlays:     append([]string(nil), DefaultOverlaySelectors...),
		OutputFile:   DefaultOutputFile,
		Mode:         DefaultMode,
		Login: Login{
			UsernameSelector: DefaultUsernameSelector,
			PasswordSelector: DefaultPasswordSelector,
			SubmitSelector:   DefaultSubmitSelector,
			DashboardMarker:  DefaultDashboardMarker,
		},
		Selectors: Selectors{
			Title:       append([]string(nil), extract.DefaultTitleSelectors...),
			Pairs:       append([]extract.SelectorPair(nil), extract.DefaultPairs...),
			StatusPairs: append([]extract.SelectorPair(nil), extract.DefaultStatusPairs...),
			Label:       extract.DefaultLabelSelector,
		},
	}
}

// PasswordExplicit reports whether the password was configured rather than defaulted.
// Callers consult the credential store only when it was not.
func (c *Config) PasswordExplicit() bool {
	return c.passwordSet
}

// Load builds a Config by combining defaults, an optional YAML file, a .env file,
// DASHSCRAPE_* environment variables, and CLI flags, in increasing precedence.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if err := loadEnvFile(flagString(cmd, "env-file")); err != nil {
		return nil, err
	}

	path := flagString(cmd, "config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(cmd); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile feeds a .env file into the process environment without
// overriding variables that are already set. The default file is optional.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// password presence is tracked separately from its value
	var raw struct {
		Password *string `yaml:"password"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if raw.Password != nil {
		c.passwordSet = true
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("BASE_URL", &c.BaseURL)
	str("USERNAME", &c.Username)
	str("CHROME_PATH", &c.ChromePath)
	str("PROXY", &c.Proxy)
	str("USER_AGENT", &c.UserAgent)
	str("OUTPUT", &c.OutputFile)
	str("MODE", &c.Mode)
	str("SNAPSHOT_DIR", &c.SnapshotDir)
	str("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv(EnvPrefix + "PASSWORD"); v != "" {
		c.Password = v
		c.passwordSet = true
	}
	if v := os.Getenv(EnvPrefix + "ROUTES"); v != "" {
		c.Routes = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sHEADLESS: %w", EnvPrefix, err)
		}
		c.Headless = b
	}
	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.WaitTimeout = d
	}
	return nil
}

func (c *Config) applyFlags(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	flags := cmd.Flags()

	str := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	str("base-url", &c.BaseURL)
	str("user", &c.Username)
	str("chrome-path", &c.ChromePath)
	str("proxy", &c.Proxy)
	str("user-agent", &c.UserAgent)
	str("output", &c.OutputFile)
	str("mode", &c.Mode)
	str("snapshot-dir", &c.SnapshotDir)

	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		c.WaitTimeout = d
	}
	if f := flags.Lookup("headless"); f != nil && f.Changed {
		c.Headless = f.Value.String() == "true"
	}
	if f := flags.Lookup("route"); f != nil && f.Changed {
		if routes, err := flags.GetStringSlice("route"); err == nil && len(routes) > 0 {
			c.Routes = routes
		}
	}
	if f := flags.Lookup("header"); f != nil && f.Changed {
		if hdrs, err := flags.GetStringArray("header"); err == nil {
			c.ExtraHeaders = append(c.ExtraHeaders, hdrs...)
		}
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		c.JSONLog = true
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		c.Quiet = true
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		c.LogLevel = "debug"
	}
	return nil
}

// flagString returns the string value of a flag, or "" when cmd or the flag is absent
func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
