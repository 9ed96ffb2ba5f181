package cli

import (
	"fmt"

	"github.com/law-makers/dashscrape/internal/auth"
	"github.com/law-makers/dashscrape/internal/config"
	"github.com/law-makers/dashscrape/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check that the dashboard accepts the configured account",
	Long: `Opens Chrome, submits the login form and waits for the dashboard to load.

With --save the password that worked is stored for later runs.`,
	Example: `  # Try the default service account
  $ dashscrape login

  # Sign in as admin and remember the password
  $ DASHSCRAPE_PASSWORD=secret dashscrape login --user admin --save`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	config.RegisterBrowserFlags(loginCmd)
	loginCmd.Flags().Bool("save", false, "Store the password after a successful login")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config
	account := auth.Account(cfg.BaseURL, cfg.Username)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", ui.Bold("Dashboard Login"))
	fmt.Fprintf(out, "%s\n", ui.ColorDim+"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"+ui.ColorReset)
	fmt.Fprintf(out, "  %s %s\n", ui.Bold("Account:"), account)
	fmt.Fprintf(out, "  %s %s\n\n", ui.Bold("Timeout:"), cfg.WaitTimeout)

	if err := a.Login(cmd.Context()); err != nil {
		fmt.Fprintln(out, ui.Error("✗ Login failed"))
		return err
	}
	fmt.Fprintln(out, ui.Success("✓ Signed in"))

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}
	if !cfg.PasswordExplicit() {
		log.Warn().Msg("No password was given, nothing to save")
		return nil
	}
	store, err := credentialStore(a)
	if err != nil {
		return err
	}
	if err := store.Set(account, cfg.Password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("✓ Password stored (%s)", store.Backend())))
	return nil
}
