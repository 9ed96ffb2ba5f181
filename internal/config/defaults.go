package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel     = "info"
	DefaultJSONLog      = false
	DefaultBaseURL      = "http://localhost:4200/"
	DefaultUsername     = "service"
	DefaultPassword     = "service"
	DefaultUserAgent    = ""
	DefaultHeadless     = false
	DefaultWaitTimeout  = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultSettleDelay  = 2 * time.Second
	DefaultOutputFile   = "status_data.json"
	DefaultMode         = "items"
	DefaultEnvFile      = ".env"

	DefaultUsernameSelector = "#login-username-text-input"
	DefaultPasswordSelector = "#login-password-text-input"
	DefaultSubmitSelector   = "#submit-button"
	DefaultDashboardMarker  = "dashboard"

	// EnvPrefix prefixes every environment variable the tool reads
	EnvPrefix = "DASHSCRAPE_"
)

// DefaultRoutes are the status views of the dashboard, in scrape order
var DefaultRoutes = []string{
	"#/status/Lens",
	"#/status/Versions",
	"#/status/Fans",
	"#/status/Temperatures",
	"#/status/System",
	"#/status/Lamp",
	"#/status/Network",
	"#/status/Interlocks",
	"#/status/Serial",
	"#/status/Video",
	"#/status/Playback",
	"#/status/Scheduler",
	"#/status/Automation",
	"#/status/ChristieNAS",
	"#/status/Debugging",
}

// DefaultOverlaySelectors are close buttons of modal overlays the dashboard may raise
var DefaultOverlaySelectors = []string{
	".cdk-overlay-container button.close",
	".modal-dialog button.close",
	"mat-dialog-container button[mat-dialog-close]",
}
