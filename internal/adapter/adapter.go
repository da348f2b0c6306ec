// Package adapter maps raw CSV rows from known source layouts into
// normalized leads. Each adapter declares the exact columns it reads, so a
// renamed source column fails at the header instead of propagating as empty
// strings.
package adapter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/aerocell/towersync/internal/model"
)

// Adapter parses one known CSV source layout into normalized leads.
type Adapter interface {
	// Source identifies the originating file; it is stamped into every lead.
	Source() string
	// Columns lists the header columns this adapter requires.
	Columns() []string
	// Parse reads the full CSV (header first) and returns zero or more leads.
	// Filtered rows (missing coordinates, aggregate markers) are not errors.
	Parse(r io.Reader) ([]model.NormalizedLead, error)
}

// Registry returns the adapters for all known source layouts, keyed by the
// filename each one ingests.
func Registry() []Adapter {
	return []Adapter{
		NewRichLeads("more-leads.csv"),
		NewStandardLeads("rare-leads.csv"),
		NewPortfolio("Oncorelectricportfolio.csv"),
	}
}

// ByFilename returns the adapter registered for the given filename, or nil.
func ByFilename(name string) Adapter {
	for _, a := range Registry() {
		if a.Source() == name {
			return a
		}
	}
	return nil
}

// row is one CSV record addressed by column name.
type row struct {
	idx    map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// readRows parses the CSV, validates the header against required columns,
// and returns addressable rows.
func readRows(r io.Reader, source string, required []string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "adapter: read header for %s", source)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("adapter: %s: missing required column %q", source, col)
		}
	}

	var rows []row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "adapter: read row for %s", source)
		}
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, row{idx: idx, fields: fields})
	}
	return rows, nil
}

// parseCoords parses latitude/longitude text into finite floats.
func parseCoords(latText, lngText string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(lngText, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// statusOrActive uppercases a status value, defaulting to ACTIVE.
func statusOrActive(raw string) *string {
	s := "ACTIVE"
	if raw != "" {
		s = strings.ToUpper(raw)
	}
	return &s
}
