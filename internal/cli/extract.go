package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/law-makers/dashscrape/internal/extract"
	"github.com/law-makers/dashscrape/internal/output"
	"github.com/law-makers/dashscrape/internal/scrape"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract page contexts from saved HTML files",
	Long: `Runs the page-context extractor over HTML files saved earlier, without a browser.

Each file becomes one page context. With --items the status label/value pairs
are extracted instead, one list for all files. The JSON goes to stdout unless
-o is given.`,
	Example: `  # Inspect what a saved snapshot contains
  $ dashscrape extract snapshots/status_Lamp.html

  # Collect the status items of several snapshots into a file
  $ dashscrape extract --items -o items.json snapshots/*.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Write JSON here instead of stdout")
	extractCmd.Flags().Bool("items", false, "Extract status label/value pairs")
}

func runExtract(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	outPath, _ := cmd.Flags().GetString("output")
	itemsMode, _ := cmd.Flags().GetBool("items")

	extractor := a.Extractor()
	contexts := make([]*models.PageContext, 0, len(args))
	items := []models.StatusItem{}

	for _, path := range args {
		page, err := loadPage(path)
		if err != nil {
			return scrape.NewScrapeError("read "+path, err)
		}

		if !itemsMode {
			pc := extractor.Extract(page)
			log.Debug().Str("file", path).Int("sections", len(pc.Sections)).Msg("Extracted page context")
			contexts = append(contexts, pc)
			continue
		}

		// a saved page never changes, so there is nothing to wait for
		se := extract.NewStatusExtractor(
			extract.DocPairs(page.Doc, a.Config.Selectors.StatusPairs),
			extract.StatusOptions{Timeout: time.Millisecond, PollInterval: a.Config.PollInterval},
		)
		found, err := se.Extract(cmd.Context())
		if errors.Is(err, scrape.ErrTimeout) {
			log.Warn().Str("file", path).Msg("No status items found")
			continue
		}
		if err != nil {
			return err
		}
		items = append(items, found...)
	}

	var v interface{} = contexts
	if itemsMode {
		v = items
	}

	if outPath != "" {
		if err := output.SaveJSON(v, outPath); err != nil {
			return scrape.NewScrapeError("save extraction", err)
		}
		log.Info().Str("file", outPath).Msg("Extraction saved")
		return nil
	}

	data, err := output.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func loadPage(path string) (*extract.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return extract.NewPage("file://"+filepath.ToSlash(abs), string(data))
}
