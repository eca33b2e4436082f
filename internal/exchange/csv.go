package exchange

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/muurk/screwctl/internal/preset"
)

var utf8BOM = []byte("\xEF\xBB\xBF")

type csvFormat struct{}

func (csvFormat) Name() string      { return "csv" }
func (csvFormat) Extension() string { return "csv" }

// Sniff accepts UTF-8 text whose first line has a comma.
func (csvFormat) Sniff(data []byte) bool {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	first, _, _ := bytes.Cut(bytes.TrimPrefix(data, utf8BOM), []byte("\n"))
	return bytes.IndexByte(first, ',') >= 0
}

func (csvFormat) Encode(presets []preset.Preset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(preset.BuildTable(presets)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (csvFormat) Decode(data []byte) ([]preset.Candidate, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return candidatesFromRows(rows)
}
