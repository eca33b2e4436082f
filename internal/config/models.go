package config

import (
	"fmt"
	"math"

	"github.com/muurk/screwctl/internal/command"
)

// Settings is the static configuration surface for the control panel.
// It is loaded once at startup and never mutated by the session.
type Settings struct {
	Version int    `yaml:"version"`
	Torque  Range  `yaml:"torque"`
	Speed   Range  `yaml:"speed"`
	Serial  Serial `yaml:"serial"`
	Panel   *Panel `yaml:"panel,omitempty"` // Remote panel server preferences
}

// Range describes one device-facing value: its default, bounds, and the
// preset-value buttons shown next to its range control.
type Range struct {
	Default float64   `yaml:"default"`
	Min     float64   `yaml:"min"`
	Max     float64   `yaml:"max"`
	Step    float64   `yaml:"step"`    // Increment for step up/down (default 1)
	Buttons []float64 `yaml:"buttons"` // Preset-value buttons
}

// Serial holds the byte-stream configuration used when opening the port.
type Serial struct {
	Port     string `yaml:"port,omitempty"` // Default port name (e.g. /dev/ttyUSB0)
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"` // none, odd, even, mark, space
}

// Panel holds preferences for the remote panel server.
type Panel struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Advertise bool   `yaml:"advertise"` // Announce the panel over mDNS
	Instance  string `yaml:"instance,omitempty"`
}

// Parities lists the accepted parity names.
var Parities = []string{"none", "odd", "even", "mark", "space"}

// DefaultSettings returns the factory settings: torque 40 and speed 50 on a
// 0..100 scale, and a 9600 8N1 serial link.
func DefaultSettings() *Settings {
	return &Settings{
		Version: 1,
		Torque: Range{
			Default: 40,
			Min:     0,
			Max:     100,
			Step:    1,
			Buttons: []float64{10, 20, 30, 90, 100},
		},
		Speed: Range{
			Default: 50,
			Min:     0,
			Max:     100,
			Step:    1,
			Buttons: []float64{10, 20, 30, 90, 100},
		},
		Serial: Serial{
			BaudRate: 9600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
		},
		Panel: DefaultPanel(),
	}
}

// DefaultPanel returns the default remote panel preferences.
func DefaultPanel() *Panel {
	return &Panel{
		Host:      "",
		Port:      8080,
		Advertise: true,
	}
}

// RangeFor returns the range configured for a parameter.
func (s *Settings) RangeFor(p command.Parameter) Range {
	if p == command.Speed {
		return s.Speed
	}
	return s.Torque
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bound limits v to [Min, Max].
func (r Range) Bound(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// StepSize returns Step, or 1 when unset.
func (r Range) StepSize() float64 {
	if r.Step <= 0 {
		return 1
	}
	return r.Step
}

// Validate checks the settings for internal consistency.
// It returns every problem found rather than stopping at the first.
func (s *Settings) Validate() []error {
	var errs []error

	for _, named := range []struct {
		name string
		r    Range
	}{{"torque", s.Torque}, {"speed", s.Speed}} {
		for _, f := range []struct {
			field string
			v     float64
		}{{"default", named.r.Default}, {"min", named.r.Min}, {"max", named.r.Max}, {"step", named.r.Step}} {
			if !finite(f.v) {
				errs = append(errs, fmt.Errorf("%s: %s must be a finite number, got %v", named.name, f.field, f.v))
			}
		}
		for i, b := range named.r.Buttons {
			if !finite(b) {
				errs = append(errs, fmt.Errorf("%s: button %d must be a finite number, got %v", named.name, i+1, b))
			}
		}
		if named.r.Min > named.r.Max {
			errs = append(errs, fmt.Errorf("%s: min %v is greater than max %v", named.name, named.r.Min, named.r.Max))
		}
		if named.r.Step < 0 {
			errs = append(errs, fmt.Errorf("%s: step must not be negative", named.name))
		}
	}

	if s.Serial.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("serial: baud rate must be positive, got %d", s.Serial.BaudRate))
	}
	if s.Serial.DataBits < 5 || s.Serial.DataBits > 8 {
		errs = append(errs, fmt.Errorf("serial: data bits must be 5-8, got %d", s.Serial.DataBits))
	}
	if s.Serial.StopBits != 1 && s.Serial.StopBits != 2 {
		errs = append(errs, fmt.Errorf("serial: stop bits must be 1 or 2, got %d", s.Serial.StopBits))
	}
	if !validParity(s.Serial.Parity) {
		errs = append(errs, fmt.Errorf("serial: unknown parity %q", s.Serial.Parity))
	}

	if s.Panel != nil && (s.Panel.Port < 0 || s.Panel.Port > 65535) {
		errs = append(errs, fmt.Errorf("panel: port out of range: %d", s.Panel.Port))
	}

	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validParity(p string) bool {
	for _, name := range Parities {
		if p == name {
			return true
		}
	}
	return false
}
