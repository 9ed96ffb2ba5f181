package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/law-makers/dashscrape/internal/app"
	"github.com/law-makers/dashscrape/internal/auth"
	"github.com/law-makers/dashscrape/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored dashboard passwords",
	Long: `Stores dashboard passwords in the OS keyring, or in ~/.dashscrape/credentials.json
where no keyring is available.

A stored password is used when none is given with --password in the config
file or DASHSCRAPE_PASSWORD. Accounts are named user@host after --user and
--base-url.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the password of the current account",
	Example: `  # Prompt for the password of service@192.168.0.20
  $ dashscrape credentials set --base-url http://192.168.0.20/

  # Read it from a pipe
  $ echo secret | dashscrape credentials set --user admin`,
	Args: cobra.NoArgs,
	RunE: runCredentialsSet,
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored password of the current account",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsDelete,
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with a stored password",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsList,
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsDeleteCmd, credentialsListCmd)

	credentialsCmd.PersistentFlags().String("user", "", "Dashboard username")
	credentialsSetCmd.Flags().String("password", "", "Password to store (read from stdin when omitted)")
}

func credentialStore(a *app.Application) (*auth.Store, error) {
	if a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	if a.Credentials == nil {
		return nil, fmt.Errorf("no credential store available")
	}
	return a.Credentials, nil
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	store, err := credentialStore(a)
	if err != nil {
		return err
	}
	account := auth.Account(a.Config.BaseURL, a.Config.Username)

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), account)
		if err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}

	if err := store.Set(account, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	log.Info().Str("account", account).Str("backend", store.Backend()).Msg("Password stored")
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("✓ Password stored for %s (%s)", account, store.Backend())))
	return nil
}

// readPassword prompts without echo on a terminal, otherwise reads one line
func readPassword(in io.Reader, prompt io.Writer, account string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(prompt, "Password for %s: ", account)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runCredentialsDelete(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	store, err := credentialStore(a)
	if err != nil {
		return err
	}
	account := auth.Account(a.Config.BaseURL, a.Config.Username)

	if _, err := store.Get(account); errors.Is(err, auth.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info("No password stored for "+account))
		return nil
	}
	if err := store.Delete(account); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Removed "+account))
	return nil
}

func runCredentialsList(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	store, err := credentialStore(a)
	if err != nil {
		return err
	}
	accounts, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		fmt.Fprintln(out, ui.Info("No stored passwords"))
		return nil
	}
	fmt.Fprintf(out, "\n%s %s\n\n", ui.Bold("Stored passwords"), ui.ColorDim+"("+store.Backend()+")"+ui.ColorReset)
	for _, acc := range accounts {
		fmt.Fprintf(out, "  %s•%s %s\n", ui.ColorCyan, ui.ColorReset, acc)
	}
	fmt.Fprintln(out)
	return nil
}
