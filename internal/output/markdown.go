package output

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/dashscrape/internal/utils/url"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SnapshotName turns a route like "#/status/Lamp" into a file stem like "status_Lamp"
func SnapshotName(route string) string {
	name := unsafeName.ReplaceAllString(strings.TrimPrefix(route, "#"), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "root"
	}
	return name
}

// SaveSnapshot writes a cleaned route snapshot into dir as <name>.md and <name>.html.
// The markdown shows what a reader sees; the HTML keeps the ids and classes
// needed to tune selectors.
func SaveSnapshot(dir, name, pageURL, htmlContent string) error {
	doc, err := CleanHTML(htmlContent)
	if err != nil {
		return fmt.Errorf("clean snapshot: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			str := fmt.Sprintf("[%s](%s)", strings.TrimSpace(selec.Text()), urlutil.ResolveURL(pageURL, href))
			return &str
		},
	})

	cleaned, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return fmt.Errorf("convert snapshot: %w", err)
	}

	header := fmt.Sprintf("<!-- %s -->\n\n", pageURL)
	if err := WriteFileAtomic(filepath.Join(dir, name+".md"), []byte(header+mdStr+"\n"), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	pretty := PrettyPrint(doc.Nodes[0])
	if err := WriteFileAtomic(filepath.Join(dir, name+".html"), []byte(pretty), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
