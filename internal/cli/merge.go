package cli

import (
	"fmt"

	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/internal/output"
	"github.com/law-makers/dashscrape/internal/scrape"
	"github.com/law-makers/dashscrape/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fill a reference record list with scraped values",
	Long: `Joins the reference records with a lookup of scraped values.

Each record takes the value of the lookup entry with exactly its name, and its
url is resolved against --base-url. With --partial a record whose name
contains a lookup name takes the value of the longest such name instead.

Nothing is written when either input cannot be read.`,
	Example: `  # Fill the English reference list from a scrape
  $ dashscrape merge --reference en.json --lookup status_data.json

  # Substring matching and a custom output file
  $ dashscrape merge --reference en.json --lookup status_data.json --partial -o en_partial.json`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().String("reference", "", "Reference records JSON file (required)")
	mergeCmd.Flags().String("lookup", "", "Lookup JSON file of scraped values (required)")
	mergeCmd.Flags().Bool("partial", false, "Match records whose name contains a lookup name")
	mergeCmd.Flags().StringP("output", "o", "en_filled.json", "Output JSON file")
	_ = mergeCmd.MarkFlagRequired("reference")
	_ = mergeCmd.MarkFlagRequired("lookup")
}

func runMerge(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	flags := cmd.Flags()
	refPath, _ := flags.GetString("reference")
	lookupPath, _ := flags.GetString("lookup")
	partial, _ := flags.GetBool("partial")
	outPath, _ := flags.GetString("output")

	lookup, err := merge.LoadLookup(lookupPath)
	if err != nil {
		log.Error().Err(err).Str("file", lookupPath).Msg("Could not load lookup")
		return scrape.NewScrapeError("load lookup", err)
	}

	n, err := fillReference(refPath, lookup, a.Config.BaseURL, partial, outPath)
	if err != nil {
		return err
	}

	if !a.Config.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("✓ Saved %d records to %s", n, outPath)))
	}
	return nil
}

// fillReference joins lookup into the records at refPath and writes them to
// outPath. Nothing is written when the records cannot be loaded.
func fillReference(refPath string, lookup merge.Lookup, base string, partial bool, outPath string) (int, error) {
	records, err := merge.LoadRecords(refPath)
	if err != nil {
		log.Error().Err(err).Str("file", refPath).Msg("Could not load reference records")
		return 0, scrape.NewScrapeError("load reference", err)
	}

	if partial {
		records = merge.JoinPartial(records, lookup, base)
	} else {
		records = merge.Join(records, lookup, base)
	}

	if err := output.SaveJSON(records, outPath); err != nil {
		return 0, scrape.NewScrapeError("save merged records", err)
	}
	log.Info().Int("records", len(records)).Str("file", outPath).Bool("partial", partial).Msg("Merge complete")
	return len(records), nil
}
