// Package merge joins scraped values into reference records.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/law-makers/dashscrape/pkg/models"
)

// ErrMalformedInput marks an input file that is missing or not valid JSON of the expected shape
var ErrMalformedInput = errors.New("malformed input")

// Lookup maps a field name to its scraped value. A nil value means the name
// was seen without a value.
type Lookup map[string]*string

// snapshotEntry accepts both {label, value} and {name, value} objects
type snapshotEntry struct {
	Label *string          `json:"label"`
	Name  *string          `json:"name"`
	Value *json.RawMessage `json:"value"`
}

// LoadLookup reads a prior scrape snapshot into a Lookup. Duplicate names: last wins.
func LoadLookup(path string) (Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedInput, path, err)
	}
	return ParseLookup(data)
}

// ParseLookup decodes a JSON array of label/value or name/value objects
func ParseLookup(data []byte) (Lookup, error) {
	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	lookup := make(Lookup, len(entries))
	for _, e := range entries {
		key := e.Name
		if e.Label != nil {
			key = e.Label
		}
		if key == nil {
			continue
		}
		lookup[*key] = rawToString(e.Value)
	}
	return lookup, nil
}

// FromStatusItems builds a Lookup straight from scraped status items
func FromStatusItems(items []models.StatusItem) Lookup {
	lookup := make(Lookup, len(items))
	for _, it := range items {
		lookup[it.Label] = models.StringPtr(it.Value)
	}
	return lookup
}

// rawToString keeps strings as-is and renders numbers/bools as their JSON text
func rawToString(raw *json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	text := strings.TrimSpace(string(*raw))
	if text == "null" || text == "" {
		return nil
	}
	var s string
	if err := json.Unmarshal(*raw, &s); err == nil {
		return &s
	}
	return &text
}

// Get returns the value for name and whether it is present with a non-null value
func (l Lookup) Get(name string) (string, bool) {
	v, ok := l[name]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}
