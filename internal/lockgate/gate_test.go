package lockgate

import (
	"errors"
	"testing"
)

func TestControlsFor(t *testing.T) {
	tests := []struct {
		state State
		want  Controls
	}{
		{Locked, Controls{State: Locked, RangeEnabled: true, NameEditable: false, PresetActionsVisible: false, ConnectEnabled: true}},
		{Unlocked, Controls{State: Unlocked, RangeEnabled: false, NameEditable: true, PresetActionsVisible: true, ConnectEnabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := ControlsFor(tt.state); got != tt.want {
				t.Errorf("ControlsFor(%s) = %+v, want %+v", tt.state, got, tt.want)
			}
		})
	}
}

func TestToggleUnlockedToLockedIsAtomic(t *testing.T) {
	g := New(Unlocked)

	var notified []Controls
	g.OnChange(func(c Controls) { notified = append(notified, c) })

	c := g.Toggle()

	if len(notified) != 1 {
		t.Fatalf("listener called %d times, want exactly 1", len(notified))
	}
	if notified[0] != c {
		t.Errorf("listener got %+v, Toggle returned %+v", notified[0], c)
	}
	if c.NameEditable || c.PresetActionsVisible || !c.ConnectEnabled || !c.RangeEnabled {
		t.Errorf("after lock: %+v", c)
	}
	if g.State() != Locked {
		t.Errorf("State() = %s, want locked", g.State())
	}

	g.Toggle()
	if g.State() != Unlocked {
		t.Errorf("second Toggle() state = %s, want unlocked", g.State())
	}
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		action  Action
		wantErr error
	}{
		{"adjust while locked", Locked, ActionAdjust, nil},
		{"adjust while unlocked", Unlocked, ActionAdjust, ErrUnlocked},
		{"connect while unlocked", Unlocked, ActionConnect, ErrUnlocked},
		{"connect while locked", Locked, ActionConnect, nil},
		{"rename while locked", Locked, ActionRename, ErrLocked},
		{"add while locked", Locked, ActionAdd, ErrLocked},
		{"delete while unlocked", Unlocked, ActionDelete, nil},
		{"import while locked", Locked, ActionImport, ErrLocked},
		{"export while unlocked", Unlocked, ActionExport, nil},
		{"navigate while locked", Locked, ActionNavigate, nil},
		{"navigate while unlocked", Unlocked, ActionNavigate, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.state).Require(tt.action)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Require(%s) error = %v, want nil", tt.action, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Require(%s) error = %v, want %v", tt.action, err, tt.wantErr)
			}
		})
	}
}
