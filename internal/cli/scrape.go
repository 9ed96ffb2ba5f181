package cli

import (
	"fmt"
	"os"

	"github.com/law-makers/dashscrape/internal/browser"
	"github.com/law-makers/dashscrape/internal/config"
	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/internal/scrape"
	"github.com/law-makers/dashscrape/internal/ui"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var _ scrape.Browser = (*browser.Session)(nil)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Sign in and scrape the dashboard status views",
	Long: `Opens Chrome, signs into the dashboard and visits each status route in turn.

In items mode (the default) the label/value pairs of every view are collected
into one list. In context mode each view is saved as a page context with its
title and the sections found on it.

Routes that never render are skipped with a warning. Nothing is written when
no route produced data.`,
	Example: `  # Scrape every status view into status_data.json
  $ dashscrape scrape

  # Scrape two views of a remote projector without a window
  $ dashscrape scrape --base-url http://192.168.0.20/ --headless --route '#/status/Lamp,#/status/Fans'

  # Save page contexts and per-route snapshots
  $ dashscrape scrape --mode context -o contexts.json --snapshot-dir snapshots

  # Fill the reference records with the values just scraped
  $ dashscrape scrape --reference context/en.json --filled-output en_filled.json`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	config.RegisterBrowserFlags(scrapeCmd)
	scrapeCmd.Flags().StringP("output", "o", config.DefaultOutputFile, "Output JSON file")
	scrapeCmd.Flags().String("mode", config.DefaultMode, "What to extract: items or context")
	scrapeCmd.Flags().String("snapshot-dir", "", "Save a markdown and HTML snapshot of each route here")
	scrapeCmd.Flags().StringSlice("route", nil, "Route fragment to visit (repeatable, default all status views)")
	scrapeCmd.Flags().String("reference", "", "Reference records to fill with the scraped items (items mode)")
	scrapeCmd.Flags().Bool("partial", false, "Match reference names by substring when filling")
	scrapeCmd.Flags().String("filled-output", "en_filled.json", "Where the filled reference records go")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config
	ctx := cmd.Context()

	log.Info().
		Str("base_url", cfg.BaseURL).
		Str("mode", cfg.Mode).
		Int("routes", len(cfg.Routes)).
		Msg("Starting scrape")

	if err := a.Login(ctx); err != nil {
		return err
	}

	opts := scrape.Options{
		Mode:         models.ScrapeMode(cfg.Mode),
		Routes:       cfg.Routes,
		StatusPairs:  cfg.Selectors.StatusPairs,
		Extractor:    a.Extractor(),
		Timeout:      cfg.WaitTimeout,
		PollInterval: cfg.PollInterval,
		SettleDelay:  cfg.SettleDelay,
		SnapshotDir:  cfg.SnapshotDir,
	}
	if !cfg.Quiet && !cfg.JSONLog {
		opts.Progress = os.Stderr
	}

	res, err := scrape.NewRunner(a.Browser, opts).Run(ctx)
	if err != nil {
		return err
	}

	if res.Mode == models.ModeItems && !cfg.Quiet {
		scrape.PrintSummary(cmd.OutOrStdout(), res.Items)
	}

	written, err := scrape.Save(res, cfg.OutputFile)
	if err != nil {
		return err
	}
	if written && !cfg.Quiet {
		n := len(res.Items)
		if res.Mode == models.ModeContext {
			n = len(res.Contexts)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("\n✓ Saved %d entries to %s", n, cfg.OutputFile)))
	}

	refPath, _ := cmd.Flags().GetString("reference")
	if refPath != "" && res.Mode == models.ModeItems && len(res.Items) > 0 {
		partial, _ := cmd.Flags().GetBool("partial")
		filledPath, _ := cmd.Flags().GetString("filled-output")
		n, err := fillReference(refPath, merge.FromStatusItems(res.Items), cfg.BaseURL, partial, filledPath)
		if err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("✓ Saved %d records to %s", n, filledPath)))
		}
	}

	if len(res.Failed) > 0 && !cfg.Quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", ui.Info(fmt.Sprintf("%d route(s) produced no data:", len(res.Failed))))
		for _, r := range res.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", r)
		}
	}
	return nil
}
