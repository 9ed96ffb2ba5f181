package cli

import (
	"fmt"

	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/internal/output"
	"github.com/law-makers/dashscrape/internal/scrape"
	"github.com/law-makers/dashscrape/internal/translation"
	"github.com/law-makers/dashscrape/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var translationsCmd = &cobra.Command{
	Use:   "translations",
	Short: "Turn a Qt translation file into field entries with values",
	Long: `Reads the messages of a Qt .ts file and writes one entry per message.

An extracomment of the form "<level>-<path>" gives the entry its user level
and a page url resolved against --base-url. Values come from the lookup file;
when the lookup cannot be read every value is left empty.`,
	Example: `  # Process the English translations with the last scrape
  $ dashscrape translations --ts context/EN.ts --lookup status_data.json`,
	Args: cobra.NoArgs,
	RunE: runTranslations,
}

func init() {
	rootCmd.AddCommand(translationsCmd)

	translationsCmd.Flags().String("ts", "context/EN.ts", "Qt translation file")
	translationsCmd.Flags().String("lookup", "status_data.json", "Lookup JSON file of scraped values")
	translationsCmd.Flags().StringP("output", "o", "en_ts_processed.json", "Output JSON file")
}

func runTranslations(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	flags := cmd.Flags()
	tsPath, _ := flags.GetString("ts")
	lookupPath, _ := flags.GetString("lookup")
	outPath, _ := flags.GetString("output")

	msgs, err := translation.LoadFile(tsPath)
	if err != nil {
		log.Error().Err(err).Str("file", tsPath).Msg("Could not load translation file")
		return scrape.NewScrapeError("load translations", err)
	}

	lookup, err := merge.LoadLookup(lookupPath)
	if err != nil {
		log.Warn().Err(err).Str("file", lookupPath).Msg("Lookup unavailable, values stay empty")
		lookup = merge.Lookup{}
	}

	entries := translation.Process(msgs, lookup, a.Config.BaseURL)
	if err := output.SaveJSON(entries, outPath); err != nil {
		return scrape.NewScrapeError("save translations", err)
	}

	log.Info().Int("entries", len(entries)).Str("file", outPath).Msg("Translations processed")
	if !a.Config.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("✓ Saved %d entries to %s", len(entries), outPath)))
	}
	return nil
}
