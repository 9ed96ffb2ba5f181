package models

import (
	"bytes"
	"encoding/json"
)

// PageContext is the structured content captured from one dashboard page.
type PageContext struct {
	URL      string    `json:"url"`
	Title    *string   `json:"title"`
	Sections []Section `json:"sections"`
}

// SectionType discriminates the Section variants in JSON output
type SectionType string

const (
	SectionNameValue SectionType = "name_value"
	SectionTable     SectionType = "table"
	SectionHeading   SectionType = "heading"
	SectionText      SectionType = "text"
)

// Section is one piece of extracted page content.
// Implemented by NameValue, Table, Heading and Text.
type Section interface {
	Type() SectionType
}

// NameValue is a label/value pair
type NameValue struct {
	Name  string
	Value string
}

// Table is a captured HTML table
type Table struct {
	Headers []string
	Rows    []Row
}

// Heading is a heading-level element left over after structured extraction
type Heading struct {
	Text string
}

// Text is a paragraph-level element left over after structured extraction
type Text struct {
	Text string
}

func (NameValue) Type() SectionType { return SectionNameValue }
func (Table) Type() SectionType     { return SectionTable }
func (Heading) Type() SectionType   { return SectionHeading }
func (Text) Type() SectionType      { return SectionText }

func (s NameValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  SectionType `json:"type"`
		Name  string      `json:"name"`
		Value string      `json:"value"`
	}{s.Type(), s.Name, s.Value})
}

func (s Table) MarshalJSON() ([]byte, error) {
	headers := s.Headers
	if headers == nil {
		headers = []string{}
	}
	rows := s.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(struct {
		Type    SectionType `json:"type"`
		Headers []string    `json:"headers"`
		Rows    []Row       `json:"rows"`
	}{s.Type(), headers, rows})
}

func (s Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type SectionType `json:"type"`
		Text string      `json:"text"`
	}{s.Type(), s.Text})
}

func (s Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type SectionType `json:"type"`
		Text string      `json:"text"`
	}{s.Type(), s.Text})
}

// Row is one data row of a Table. When Keys is set (header count matched the
// cell count) the row serializes as an object in header order, otherwise as a
// plain array of cell texts.
type Row struct {
	Keys  []string
	Cells []string
}

// Mapped reports whether the row is keyed by header
func (r Row) Mapped() bool {
	return r.Keys != nil && len(r.Keys) == len(r.Cells)
}

// Map returns the row as header->cell. Later duplicate headers overwrite earlier ones.
func (r Row) Map() map[string]string {
	if !r.Mapped() {
		return nil
	}
	m := make(map[string]string, len(r.Keys))
	for i, k := range r.Keys {
		m[k] = r.Cells[i]
	}
	return m
}

func (r Row) MarshalJSON() ([]byte, error) {
	if !r.Mapped() {
		cells := r.Cells
		if cells == nil {
			cells = []string{}
		}
		return json.Marshal(cells)
	}

	// keep header order; a repeated header keeps its first position and last value
	order := make([]string, 0, len(r.Keys))
	values := r.Map()
	emitted := make(map[string]bool, len(r.Keys))
	for _, k := range r.Keys {
		if !emitted[k] {
			emitted[k] = true
			order = append(order, k)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StatusItem is one label/value pair scraped from a status view
type StatusItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Record is an entry of the reference file joined against scraped values
type Record struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
	URL   *string `json:"url"`
}

// TranslationEntry is one processed message of a Qt translation file
type TranslationEntry struct {
	Name         string  `json:"name"`
	URL          *string `json:"url"`
	UserLevel    *string `json:"userLevel"`
	Extracomment string  `json:"extracomment"`
	Value        *string `json:"value"`
}

// ScrapeMode selects what the scrape command extracts from each route
type ScrapeMode string

const (
	ModeItems   ScrapeMode = "items"
	ModeContext ScrapeMode = "context"
)

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
