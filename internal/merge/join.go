package merge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	urlutil "github.com/law-makers/dashscrape/internal/utils/url"
	"github.com/law-makers/dashscrape/pkg/models"
)

// LoadRecords reads the reference file: a JSON array of {name, url?, value?}
func LoadRecords(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedInput, path, err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	return records, nil
}

// Join fills each record's value from lookup by exact name and resolves
// relative URLs against base. Records without a lookup hit keep their value.
// The input slice is not modified.
func Join(records []models.Record, lookup Lookup, base string) []models.Record {
	return join(records, base, func(name string) (string, bool) {
		return lookup.Get(name)
	})
}

// JoinPartial is Join with case-insensitive partial matching: a lookup name
// contained in the record name matches, and the longest such name wins.
func JoinPartial(records []models.Record, lookup Lookup, base string) []models.Record {
	return join(records, base, func(name string) (string, bool) {
		return lookup.longestContained(name)
	})
}

func join(records []models.Record, base string, find func(string) (string, bool)) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		rec := models.Record{Name: r.Name, Value: r.Value, URL: r.URL}
		if v, ok := find(r.Name); ok {
			rec.Value = models.StringPtr(v)
		}
		if r.URL != nil && *r.URL != "" {
			rec.URL = models.StringPtr(urlutil.ResolveURL(base, *r.URL))
		}
		out[i] = rec
	}
	return out
}

func (l Lookup) longestContained(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	lower := strings.ToLower(name)
	best := -1
	var bestLabel, value string
	for label, v := range l {
		if label == "" || v == nil {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(label)) {
			continue
		}
		// ties go to the lexically smaller label so map order never decides
		if len(label) > best || len(label) == best && label < bestLabel {
			best = len(label)
			bestLabel = label
			value = *v
		}
	}
	return value, best >= 0
}
