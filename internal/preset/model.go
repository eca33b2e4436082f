package preset

import (
	"errors"
	"strconv"
)

// Preset is a named torque/speed configuration ("screw").
type Preset struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Torque float64 `json:"torque" yaml:"torque"`
	Speed  float64 `json:"speed" yaml:"speed"`
}

// Values is a torque/speed pair without identity.
type Values struct {
	Torque float64 `json:"torque"`
	Speed  float64 `json:"speed"`
}

// Values returns the preset's torque/speed pair.
func (p Preset) Values() Values {
	return Values{Torque: p.Torque, Speed: p.Speed}
}

// Candidate is an unvalidated preset as read from an import source.
// Numeric fields are kept as text so that coercion and validation happen in
// one place (Store.ReplaceAll). An empty numeric field means "use default".
type Candidate struct {
	ID     string
	Name   string
	Torque string
	Speed  string
}

// Table is a row-oriented view of the store: a header row followed by one
// row per preset.
type Table [][]string

// Column names of the exchange table. They are matched case-sensitively.
const (
	ColumnName   = "Name"
	ColumnTorque = "Torque"
	ColumnSpeed  = "Speed"
)

// Header is the header row of every exported table.
var Header = []string{ColumnName, ColumnTorque, ColumnSpeed}

const (
	// DefaultName is the name of the preset created at startup.
	DefaultName = "Default"
	// UnnamedName replaces an empty name on rename.
	UnnamedName = "Unnamed"
)

var (
	// ErrEmptyStore is returned when serializing a store with no presets.
	ErrEmptyStore = errors.New("no screws to export")
	// ErrNoValidPresets is returned by ReplaceAll when every candidate fails validation.
	ErrNoValidPresets = errors.New("no valid screws found")
)

// FormatValue renders a value the way it appears in tables and lists:
// integers without a decimal point, fractions with the shortest exact form.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
