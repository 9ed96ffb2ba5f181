// Package translation reads Qt Linguist .ts files and maps their messages to dashboard fields.
package translation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/beevik/etree"
	"github.com/law-makers/dashscrape/internal/merge"
	urlutil "github.com/law-makers/dashscrape/internal/utils/url"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Message is one <message> of a .ts file that carries both a source and an extracomment
type Message struct {
	Source       string
	Extracomment string
}

// LoadFile parses the .ts file at path
func LoadFile(path string) ([]Message, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", merge.ErrMalformedInput, path, err)
	}
	return messages(doc), nil
}

// Parse parses .ts XML from memory
func Parse(data []byte) ([]Message, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", merge.ErrMalformedInput, err)
	}
	return messages(doc), nil
}

func messages(doc *etree.Document) []Message {
	var out []Message
	for _, msg := range doc.FindElements("//message") {
		source := msg.SelectElement("source")
		comment := msg.SelectElement("extracomment")
		if source == nil || comment == nil {
			continue
		}
		out = append(out, Message{
			Source:       strings.TrimSpace(source.Text()),
			Extracomment: strings.TrimSpace(comment.Text()),
		})
	}
	return out
}

// Process turns messages into entries. An extracomment of the form
// "<level>-<path>" yields the user level (when numeric) and the page URL
// (path resolved against base, unless it is "/"). Values come from lookup.
func Process(msgs []Message, lookup merge.Lookup, base string) []models.TranslationEntry {
	out := make([]models.TranslationEntry, 0, len(msgs))
	for _, m := range msgs {
		entry := models.TranslationEntry{
			Name:         m.Source,
			Extracomment: m.Extracomment,
		}

		parts := strings.Split(m.Extracomment, "-")
		if m.Extracomment != "" && len(parts) > 1 {
			if isDigits(parts[0]) {
				entry.UserLevel = models.StringPtr(parts[0])
			}
			if path := parts[1]; path != "" && strings.TrimSpace(path) != "/" {
				entry.URL = models.StringPtr(urlutil.ResolveURL(base, path))
			}
		}

		if v, ok := lookup.Get(m.Source); ok {
			entry.Value = models.StringPtr(v)
		}
		out = append(out, entry)
	}

	log.Debug().Int("messages", len(msgs)).Msg("Translation messages processed")
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
