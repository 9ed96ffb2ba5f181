package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/dashscrape/pkg/models"
	"golang.org/x/net/html"
)

// SelectorPair names a label selector and the value selector matched against it positionally
type SelectorPair struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// DefaultPairs are the pairing conventions used by the dashboard views
var DefaultPairs = []SelectorPair{
	{Label: ".status-item-label", Value: ".status-item-value"},
	{Label: "#info-name", Value: "#info-value"},
	{Label: ".info-name", Value: ".info-value"},
}

// DefaultLabelSelector matches the label-like elements of LabelSiblings
const DefaultLabelSelector = "label"

// PairedSelectors zips label and value matches into name/value sections.
// Every pair is tried; a pair only fires when both sides match the same non-zero count.
type PairedSelectors struct {
	pairs []SelectorPair
}

func NewPairedSelectors(pairs []SelectorPair) *PairedSelectors {
	return &PairedSelectors{pairs: pairs}
}

func (s *PairedSelectors) Name() string { return "paired-selectors" }

func (s *PairedSelectors) Extract(page *Page, seen *Seen) []models.Section {
	var out []models.Section
	for _, p := range s.pairs {
		labels := page.Doc.Find(p.Label)
		values := page.Doc.Find(p.Value)
		if labels.Length() == 0 || labels.Length() != values.Length() {
			continue
		}
		for i := 0; i < labels.Length(); i++ {
			name := textOf(labels.Eq(i))
			value := textOf(values.Eq(i))
			if name == "" || value == "" || seen.Has(name) || seen.Has(value) {
				continue
			}
			seen.Add(name, value)
			out = append(out, models.NameValue{Name: name, Value: value})
		}
	}
	return out
}

// Tables captures every table with at least one data row
type Tables struct{}

func NewTables() *Tables { return &Tables{} }

func (s *Tables) Name() string { return "tables" }

func (s *Tables) Extract(page *Page, seen *Seen) []models.Section {
	var out []models.Section
	page.Doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers, rows := readTable(table)
		if len(rows) == 0 {
			return
		}

		var sig strings.Builder
		for _, h := range headers {
			sig.WriteString(h)
		}
		for _, r := range rows {
			for _, c := range r {
				sig.WriteString(c)
			}
		}
		signature := sig.String()
		if signature == "" || seen.Has(signature) || consumed(seen, headers, rows) {
			return
		}

		section := models.Table{Headers: headers}
		for _, cells := range rows {
			row := models.Row{Cells: cells}
			if len(headers) == len(cells) {
				row.Keys = headers
			}
			section.Rows = append(section.Rows, row)
			seen.Add(cells...)
		}
		seen.Add(signature)
		seen.Add(headers...)
		out = append(out, section)
	})
	return out
}

// consumed reports whether every non-empty header and cell text was already emitted
func consumed(seen *Seen, headers []string, rows [][]string) bool {
	for _, h := range headers {
		if h != "" && !seen.Has(h) {
			return false
		}
	}
	for _, r := range rows {
		for _, c := range r {
			if c != "" && !seen.Has(c) {
				return false
			}
		}
	}
	return true
}

// readTable returns header texts and the cell texts of every data row.
// Rows of nested tables are left to their own table.
func readTable(table *goquery.Selection) (headers []string, rows [][]string) {
	trs := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	headerDone := false
	trs.Each(func(i int, tr *goquery.Selection) {
		inHead := goquery.NodeName(tr.Parent()) == "thead"
		ths := tr.ChildrenFiltered("th")
		tds := tr.ChildrenFiltered("td")

		// header row: inside thead, or a leading row made only of th cells
		if !headerDone && ths.Length() > 0 && tds.Length() == 0 && (inHead || i == 0) {
			ths.Each(func(_ int, c *goquery.Selection) {
				headers = append(headers, textOf(c))
			})
			headerDone = true
			return
		}
		if inHead {
			return
		}

		cells := tr.ChildrenFiltered("td, th")
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, textOf(c))
		})
		rows = append(rows, row)
	})
	return headers, rows
}

// LabelSiblings reads the value of a label from the first element that follows it
type LabelSiblings struct {
	selector string
}

func NewLabelSiblings(selector string) *LabelSiblings {
	if selector == "" {
		selector = DefaultLabelSelector
	}
	return &LabelSiblings{selector: selector}
}

func (s *LabelSiblings) Name() string { return "label-siblings" }

func (s *LabelSiblings) Extract(page *Page, seen *Seen) []models.Section {
	var out []models.Section
	page.Doc.Find(s.selector).Each(func(_ int, label *goquery.Selection) {
		name := textOf(label)
		if name == "" || seen.Has(name) {
			return
		}
		next := nextElement(label.Get(0))
		if next == nil {
			return
		}
		value := elementValue(goquery.NewDocumentFromNode(next).Selection)
		if value == "" || seen.Has(value) {
			return
		}
		seen.Add(name, value)
		out = append(out, models.NameValue{Name: name, Value: value})
	})
	return out
}

// nextElement skips text and comment nodes to the first element sibling
func nextElement(n *html.Node) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

// elementValue reads form controls by their value attribute and everything else by text
func elementValue(sel *goquery.Selection) string {
	switch goquery.NodeName(sel) {
	case "input":
		v, _ := sel.Attr("value")
		return CleanText(v)
	case "select":
		if opt := sel.Find("option[selected]").First(); opt.Length() > 0 {
			return textOf(opt)
		}
		return textOf(sel.Find("option").First())
	}
	return textOf(sel)
}

// Residual emits headings and paragraphs no earlier strategy captured, in document order
type Residual struct{}

func NewResidual() *Residual { return &Residual{} }

func (s *Residual) Name() string { return "residual" }

func (s *Residual) Extract(page *Page, seen *Seen) []models.Section {
	var out []models.Section
	page.Doc.Find("h1, h2, h3, h4, h5, h6, p").Each(func(_ int, el *goquery.Selection) {
		text := textOf(el)
		if text == "" || seen.Has(text) {
			return
		}
		seen.Add(text)
		if goquery.NodeName(el) == "p" {
			out = append(out, models.Text{Text: text})
		} else {
			out = append(out, models.Heading{Text: text})
		}
	})
	return out
}
