// Package exchange imports and exports presets as files.
//
// The default format is a single-sheet xlsx workbook with the columns Name,
// Torque and Speed. csv, json and yaml are also understood; json and yaml
// accept both a bare list of presets and a {"screws": [...]} document.
package exchange

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/preset"
)

// BaseFilename is the stem of every exported file.
const BaseFilename = "screws"

var (
	// ErrNoData is returned when a file has no header row or no data rows.
	ErrNoData = errors.New("no data found")
	// ErrMissingColumns is returned when a table lacks Name, Torque or Speed.
	ErrMissingColumns = errors.New("missing columns")
	// ErrUnknownFormat is returned when no format recognises the content.
	ErrUnknownFormat = errors.New("unrecognised file format")
)

// Format is a file codec for presets.
type Format interface {
	// Name is the short name used on the command line.
	Name() string
	// Extension is the file extension without a dot.
	Extension() string
	// Sniff reports whether data plausibly is in this format.
	Sniff(data []byte) bool
	Encode(presets []preset.Preset) ([]byte, error)
	Decode(data []byte) ([]preset.Candidate, error)
}

// Built-in formats.
var (
	XLSX Format = xlsxFormat{}
	CSV  Format = csvFormat{}
	JSON Format = jsonFormat{}
	YAML Format = yamlFormat{}
)

// formats is the sniffing priority order.
var formats = []Format{XLSX, JSON, YAML, CSV}

// Formats returns the built-in formats in priority order.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// ByName returns the format with the given name or extension.
func ByName(name string) (Format, bool) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	if name == "yml" {
		name = "yaml"
	}
	for _, f := range formats {
		if f.Name() == name || f.Extension() == name {
			return f, true
		}
	}
	return nil, false
}

// ForFilename returns the format matching the file's extension.
func ForFilename(filename string) (Format, bool) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return nil, false
	}
	return ByName(ext)
}

// Filename returns the export filename for f, e.g. "screws.xlsx".
func Filename(f Format) string {
	return BaseFilename + "." + f.Extension()
}

// Export encodes every preset in the store. It fails with
// preset.ErrEmptyStore, producing nothing, when the store is empty.
// A nil format means xlsx.
func Export(store *preset.Store, f Format) ([]byte, string, error) {
	if f == nil {
		f = XLSX
	}
	presets := store.Presets()
	if len(presets) == 0 {
		return nil, "", preset.ErrEmptyStore
	}

	data, err := f.Encode(presets)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", f.Name(), err)
	}

	logging.Info("Exported presets",
		zap.String("format", f.Name()),
		zap.Int("count", len(presets)),
		zap.Int("bytes", len(data)),
	)
	return data, Filename(f), nil
}

// Import decodes a file into import candidates.
//
// The format matching the filename's extension is tried first, then every
// format whose Sniff accepts the content, in priority order. The first
// successful decode wins; if all fail the errors are joined, so
// errors.Is(err, ErrMissingColumns) and friends still work.
func Import(data []byte, filename string) ([]preset.Candidate, Format, error) {
	if len(data) == 0 {
		return nil, nil, ErrNoData
	}

	var errs []error
	for _, f := range attemptOrder(data, filename) {
		cands, err := f.Decode(data)
		if err == nil {
			logging.Info("Imported presets",
				zap.String("file", filename),
				zap.String("format", f.Name()),
				zap.Int("candidates", len(cands)),
			)
			return cands, f, nil
		}
		logging.Debug("Import attempt failed",
			zap.String("file", filename),
			zap.String("format", f.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
	}

	if len(errs) == 0 {
		return nil, nil, ErrUnknownFormat
	}
	return nil, nil, errors.Join(errs...)
}

func attemptOrder(data []byte, filename string) []Format {
	var order []Format
	byExt, ok := ForFilename(filename)
	if ok {
		order = append(order, byExt)
	}
	for _, f := range formats {
		if ok && f == byExt {
			continue
		}
		if f.Sniff(data) {
			order = append(order, f)
		}
	}
	return order
}
