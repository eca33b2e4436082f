package exchange

import (
	"fmt"
	"strings"

	"github.com/muurk/screwctl/internal/preset"
)

// candidatesFromRows maps a header row plus data rows to candidates.
// Columns are located by exact header text in any order. A blank name gets
// the next automatic name over the names collected so far.
func candidatesFromRows(rows [][]string) ([]preset.Candidate, error) {
	rows = dropBlankRows(rows)
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range preset.Header {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	names := make([]string, 0, len(rows)-1)
	cands := make([]preset.Candidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := cell(preset.ColumnName)
		// Numbered against the names in this file, not the current list.
		if name == "" {
			name = preset.NextScrewName(names)
		}
		names = append(names, name)

		cands = append(cands, preset.Candidate{
			Name:   name,
			Torque: cell(preset.ColumnTorque),
			Speed:  cell(preset.ColumnSpeed),
		})
	}
	return cands, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
