package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output logs as JSON lines")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (optional)")
	cmd.PersistentFlags().String("env-file", "", "Path to .env file (default .env when present)")
	cmd.PersistentFlags().String("base-url", "", "Dashboard base URL (default "+DefaultBaseURL+")")
	cmd.PersistentFlags().String("timeout", DefaultWaitTimeout.String(), "Page and element wait timeout")
}

// RegisterBrowserFlags registers flags of commands that drive the browser
func RegisterBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("headless", DefaultHeadless, "Run Chrome without a window")
	cmd.Flags().String("user", "", "Dashboard username")
	cmd.Flags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.Flags().String("user-agent", "", "Custom user agent string")
	cmd.Flags().String("chrome-path", "", "Path to the Chrome/Chromium executable")
	cmd.Flags().StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
}
