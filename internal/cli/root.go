package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/dashscrape/internal/app"
	"github.com/law-makers/dashscrape/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dashscrape",
	Short: "Scrape a projector web dashboard and merge its values into reference files",
	Long: `Dashscrape signs into the projector's web dashboard in Chrome, walks its status
views and saves what they show as JSON.

The saved values can then be merged into the reference record list and the
Qt translation file that document the dashboard fields.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// The application is closed on every exit path, including failed commands.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	closeApp()
	if err != nil {
		return 1
	}
	return 0
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if currentApp != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, a)
		return nil
	}

	// PostRun is skipped when a command fails; Execute closes the app in that case
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		closeApp()
	}
}

func closeApp() {
	a := currentApp
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.WaitTimeout)
	defer cancel()
	_ = a.Close(ctx)
	SetApp(nil, nil)
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for dashscrape")
	rootCmd.Flags().Bool("version", false, "Version for dashscrape")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Set custom help function
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}
