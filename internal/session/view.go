package session

import (
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/control"
	"github.com/muurk/screwctl/internal/lockgate"
	"github.com/muurk/screwctl/internal/preset"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventPresets   EventKind = iota // list contents or names
	EventSelection                  // selected index
	EventValues                     // live torque/speed
	EventLock                       // lock state
	EventLink                       // connection status
	EventNotice                     // message for the operator
)

// String returns the event name used on the wire.
func (k EventKind) String() string {
	switch k {
	case EventPresets:
		return "presets"
	case EventSelection:
		return "selection"
	case EventValues:
		return "values"
	case EventLock:
		return "lock"
	case EventLink:
		return "link"
	case EventNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Event describes a state change.
type Event struct {
	Kind    EventKind
	Message string
	Err     error
}

// View is a copy of the session state for rendering.
type View struct {
	Presets   []preset.Preset   `json:"presets"`
	Selected  int               `json:"selected"`
	CanPrev   bool              `json:"canPrev"`
	CanNext   bool              `json:"canNext"`
	Values    control.Snapshot  `json:"values"`
	Controls  lockgate.Controls `json:"controls"`
	Connected bool              `json:"connected"`
	Port      string            `json:"port,omitempty"`
	Torque    RangeView         `json:"torqueRange"`
	Speed     RangeView         `json:"speedRange"`
}

// RangeView is the range and buttons of one control.
type RangeView struct {
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Step    float64   `json:"step"`
	Buttons []float64 `json:"buttons"`
}

func rangeView(r config.Range) RangeView {
	return RangeView{
		Min:     r.Min,
		Max:     r.Max,
		Step:    r.StepSize(),
		Buttons: append([]float64(nil), r.Buttons...),
	}
}

// SelectedPreset returns the selected preset, if any.
func (v View) SelectedPreset() (preset.Preset, bool) {
	if v.Selected < 0 || v.Selected >= len(v.Presets) {
		return preset.Preset{}, false
	}
	return v.Presets[v.Selected], true
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	v := View{
		Presets:  s.store.Presets(),
		Selected: s.store.SelectedIndex(),
		CanPrev:  s.store.CanPrev(),
		CanNext:  s.store.CanNext(),
		Values:   s.surface.Snapshot(),
		Controls: s.gate.Controls(),
		Torque:   rangeView(s.settings.Torque),
		Speed:    rangeView(s.settings.Speed),
	}
	if s.link != nil {
		v.Connected = s.link.Connected()
		v.Port = s.link.Port()
	}
	return v
}
