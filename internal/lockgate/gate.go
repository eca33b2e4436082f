// Package lockgate implements the panel-wide lock that separates operating
// the device from editing presets.
//
// In the Locked state the live controls (range controls, preset-value
// buttons, connect/disconnect) are enabled and structural preset edits are
// hidden. In the Unlocked state it is the reverse. The panel starts Unlocked.
package lockgate

import (
	"errors"
	"fmt"
)

// State is the lock state.
type State int

const (
	Unlocked State = iota
	Locked
)

// String returns "locked" or "unlocked".
func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is an operation gated by the lock.
type Action string

const (
	ActionAdjust     Action = "adjust"     // Range controls and preset-value buttons
	ActionConnect    Action = "connect"    // Connect or disconnect the device link
	ActionRename     Action = "rename"
	ActionAdd        Action = "add"
	ActionDelete     Action = "delete"
	ActionImport     Action = "import"
	ActionExport     Action = "export"
	ActionNavigate   Action = "navigate" // Select or step through presets
	ActionToggleLock Action = "toggle"
)

var (
	// ErrLocked is returned for an edit attempted while the panel is locked.
	ErrLocked = errors.New("controls are locked: unlock to edit presets")
	// ErrUnlocked is returned for a live operation attempted while unlocked.
	ErrUnlocked = errors.New("controls are unlocked: lock to operate the device")
)

// Controls is the enabled/visible state of every gated control, derived
// from a single lock state so that all of them change together.
type Controls struct {
	State                State `json:"state"`
	RangeEnabled         bool  `json:"rangeEnabled"`
	NameEditable         bool  `json:"nameEditable"`
	PresetActionsVisible bool  `json:"presetActionsVisible"`
	ConnectEnabled       bool  `json:"connectEnabled"`
}

// ControlsFor computes the control state for s.
func ControlsFor(s State) Controls {
	locked := s == Locked
	return Controls{
		State:                s,
		RangeEnabled:         locked,
		NameEditable:         !locked,
		PresetActionsVisible: !locked,
		ConnectEnabled:       locked,
	}
}

// Permits reports whether the controls allow action a.
func (c Controls) Permits(a Action) bool {
	switch a {
	case ActionAdjust:
		return c.RangeEnabled
	case ActionConnect:
		return c.ConnectEnabled
	case ActionRename:
		return c.NameEditable
	case ActionAdd, ActionDelete, ActionImport, ActionExport:
		return c.PresetActionsVisible
	default:
		return true
	}
}

// Gate holds the lock state. It is not safe for concurrent use.
type Gate struct {
	state    State
	onChange []func(Controls)
}

// New creates a gate in the given state.
func New(initial State) *Gate {
	return &Gate{state: initial}
}

// State returns the current state.
func (g *Gate) State() State {
	return g.state
}

// Controls returns the control state for the current lock state.
func (g *Gate) Controls() Controls {
	return ControlsFor(g.state)
}

// OnChange registers fn to receive the new controls after every transition.
func (g *Gate) OnChange(fn func(Controls)) {
	g.onChange = append(g.onChange, fn)
}

// Toggle flips the state and returns the new controls.
func (g *Gate) Toggle() Controls {
	if g.state == Locked {
		return g.Set(Unlocked)
	}
	return g.Set(Locked)
}

// Set moves to state s. Listeners are notified even when s equals the
// current state so that views can re-apply it.
func (g *Gate) Set(s State) Controls {
	g.state = s
	c := ControlsFor(s)
	for _, fn := range g.onChange {
		fn(c)
	}
	return c
}

// Require returns nil if the current state permits a, otherwise ErrLocked
// or ErrUnlocked.
func (g *Gate) Require(a Action) error {
	if g.Controls().Permits(a) {
		return nil
	}
	if g.state == Locked {
		return fmt.Errorf("%s: %w", a, ErrLocked)
	}
	return fmt.Errorf("%s: %w", a, ErrUnlocked)
}
