// Package session holds the state of one control panel: the preset list,
// the live control surface, the lock and the device link.
//
// A Session is created once at startup and mutated only through its
// methods. It is not safe for concurrent use; front ends serialize calls
// (the TUI through its update loop, the server with a mutex).
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/control"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/exchange"
	"github.com/muurk/screwctl/internal/lockgate"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/preset"
)

// Link is the device connection used by a session. *devicelink.Link
// implements it.
type Link interface {
	control.Sender
	Open(ctx context.Context, name string) error
	Close() error
	Connected() bool
	Port() string
}

// Session owns every piece of panel state.
type Session struct {
	settings  *config.Settings
	store     *preset.Store
	surface   *control.Surface
	gate      *lockgate.Gate
	link      Link
	listeners []func(Event)
}

// New creates a session with a single "Default" preset at the configured
// default values, selected, and the lock open. A nil link gives an offline
// session in which commands are dropped.
func New(settings *config.Settings, link Link) *Session {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	s := &Session{
		settings: settings,
		store:    preset.NewDefaultStore(preset.Values{Torque: settings.Torque.Default, Speed: settings.Speed.Default}),
		gate:     lockgate.New(lockgate.Unlocked),
		link:     link,
	}

	var sender control.Sender
	if link != nil {
		sender = link
	}
	s.surface = control.New(settings.Torque, settings.Speed, sender, s.store)
	s.surface.OnRefresh(func() { s.emit(Event{Kind: EventPresets}) })
	s.gate.OnChange(func(c lockgate.Controls) {
		s.emit(Event{Kind: EventLock, Message: "Controls " + c.State.String()})
	})

	s.applySelected()
	return s
}

// Subscribe registers fn to receive every event. Events are delivered
// synchronously from the mutating call.
func (s *Session) Subscribe(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) emit(e Event) {
	for _, fn := range s.listeners {
		fn(e)
	}
}

func (s *Session) notice(msg string) {
	s.emit(Event{Kind: EventNotice, Message: msg})
}

// Settings returns the settings the session was created with.
func (s *Session) Settings() *config.Settings {
	return s.settings
}

// Controls returns the current lock-derived control state.
func (s *Session) Controls() lockgate.Controls {
	return s.gate.Controls()
}

// applySelected pushes the selected preset into the control surface.
func (s *Session) applySelected() {
	p, ok := s.store.Selected()
	if !ok {
		return
	}
	if err := s.surface.Apply(p.Torque, p.Speed); err != nil {
		logging.Warn("Selected preset has invalid values", zap.String("preset", p.Name), zap.Error(err))
	}
	s.emit(Event{Kind: EventValues})
}

// SetTorque sets the live torque. Requires Locked.
func (s *Session) SetTorque(v float64) error {
	return s.Set(command.Torque, v)
}

// SetSpeed sets the live speed. Requires Locked.
func (s *Session) SetSpeed(v float64) error {
	return s.Set(command.Speed, v)
}

// Set sets a live value, sends it and writes it into the selected preset.
// Requires Locked.
func (s *Session) Set(p command.Parameter, v float64) error {
	if err := s.gate.Require(lockgate.ActionAdjust); err != nil {
		return err
	}
	if err := s.surface.Set(p, v); err != nil {
		return err
	}
	s.emit(Event{Kind: EventValues})
	return nil
}

// SetText parses and sets a live value. Requires Locked.
func (s *Session) SetText(p command.Parameter, text string) error {
	if err := s.gate.Require(lockgate.ActionAdjust); err != nil {
		return err
	}
	if err := s.surface.SetText(p, text); err != nil {
		return err
	}
	s.emit(Event{Kind: EventValues})
	return nil
}

// Step moves a live value by delta steps within its range. Requires Locked.
func (s *Session) Step(p command.Parameter, delta int) error {
	if err := s.gate.Require(lockgate.ActionAdjust); err != nil {
		return err
	}
	if err := s.surface.Step(p, delta); err != nil {
		return err
	}
	s.emit(Event{Kind: EventValues})
	return nil
}

// PressButton applies a preset-value button (0-based). Requires Locked.
func (s *Session) PressButton(p command.Parameter, index int) error {
	if err := s.gate.Require(lockgate.ActionAdjust); err != nil {
		return err
	}
	if err := s.surface.Press(p, index); err != nil {
		return err
	}
	s.emit(Event{Kind: EventValues})
	return nil
}

// Select makes the preset at index current and loads its values into the
// control surface. Out-of-range indexes are ignored.
func (s *Session) Select(index int) bool {
	if !s.store.Select(index) {
		return false
	}
	s.emit(Event{Kind: EventSelection})
	s.applySelected()
	return true
}

// Navigate moves the selection by direction (-1 or +1).
func (s *Session) Navigate(direction int) bool {
	before := s.store.SelectedIndex()
	if !s.store.Navigate(direction) || s.store.SelectedIndex() == before {
		return false
	}
	s.emit(Event{Kind: EventSelection})
	s.applySelected()
	return true
}

// Add appends a preset holding the current live values and selects it.
// Requires Unlocked.
func (s *Session) Add() (preset.Preset, error) {
	if err := s.gate.Require(lockgate.ActionAdd); err != nil {
		return preset.Preset{}, err
	}
	p := s.store.Add(s.surface.Value(command.Torque), s.surface.Value(command.Speed))
	logging.Info("Added preset", zap.String("name", p.Name), zap.String("id", p.ID))
	s.emit(Event{Kind: EventPresets})
	s.emit(Event{Kind: EventSelection})
	return p, nil
}

// Delete removes the selected preset (or the last one when nothing is
// selected). Requires Unlocked.
func (s *Session) Delete() error {
	if err := s.gate.Require(lockgate.ActionDelete); err != nil {
		return err
	}
	return s.deleted(s.store.Delete())
}

// DeleteAt removes the preset at index. Requires Unlocked.
func (s *Session) DeleteAt(index int) error {
	if err := s.gate.Require(lockgate.ActionDelete); err != nil {
		return err
	}
	return s.deleted(s.store.DeleteAt(index))
}

func (s *Session) deleted(ok bool) error {
	if !ok {
		return nil
	}
	s.emit(Event{Kind: EventPresets})
	s.emit(Event{Kind: EventSelection})
	s.applySelected()
	return nil
}

// Rename renames the selected preset. Requires Unlocked.
func (s *Session) Rename(text string) error {
	if err := s.gate.Require(lockgate.ActionRename); err != nil {
		return err
	}
	if s.store.Rename(text) {
		s.emit(Event{Kind: EventPresets})
	}
	return nil
}

// ImportResult summarises a successful import.
type ImportResult struct {
	Format    string `json:"format"`
	Imported  int    `json:"imported"`
	Discarded int    `json:"discarded"`
}

// Import replaces every preset with the contents of a file. On any failure
// the existing presets are left untouched. Requires Unlocked.
func (s *Session) Import(data []byte, filename string) (ImportResult, error) {
	if err := s.gate.Require(lockgate.ActionImport); err != nil {
		return ImportResult{}, err
	}

	cands, f, err := exchange.Import(data, filename)
	if err != nil {
		logging.Warn("Import failed", zap.String("file", filename), zap.Error(err))
		return ImportResult{}, fmt.Errorf("import %s: %w", filename, err)
	}

	defaults := preset.Values{Torque: s.settings.Torque.Default, Speed: s.settings.Speed.Default}
	discarded, err := s.store.ReplaceAll(cands, defaults)
	if err != nil {
		logging.Warn("Import rejected", zap.String("file", filename), zap.Error(err))
		return ImportResult{}, fmt.Errorf("import %s: %w", filename, err)
	}

	res := ImportResult{Format: f.Name(), Imported: s.store.Len(), Discarded: discarded}
	s.emit(Event{Kind: EventPresets})
	s.emit(Event{Kind: EventSelection})
	s.applySelected()

	msg := fmt.Sprintf("Imported %d screws", res.Imported)
	if discarded > 0 {
		msg += fmt.Sprintf(" (%d invalid rows skipped)", discarded)
	}
	s.notice(msg)
	return res, nil
}

// Export encodes every preset. A nil format means xlsx. Requires Unlocked.
func (s *Session) Export(f exchange.Format) ([]byte, string, error) {
	if err := s.gate.Require(lockgate.ActionExport); err != nil {
		return nil, "", err
	}
	return exchange.Export(s.store, f)
}

// Connect opens the device link. An empty port uses the configured one.
// Requires Locked.
func (s *Session) Connect(ctx context.Context, port string) error {
	if err := s.gate.Require(lockgate.ActionConnect); err != nil {
		return err
	}
	if s.link == nil {
		return devicelink.NewUnsupportedError("No device link available", nil)
	}
	if err := s.link.Open(ctx, port); err != nil {
		s.emit(Event{Kind: EventLink, Err: err})
		return err
	}
	s.emit(Event{Kind: EventLink, Message: "Connected to " + s.link.Port()})
	return nil
}

// Disconnect closes the device link. Requires Locked.
func (s *Session) Disconnect() error {
	if err := s.gate.Require(lockgate.ActionConnect); err != nil {
		return err
	}
	if s.link == nil {
		return nil
	}
	err := s.link.Close()
	s.emit(Event{Kind: EventLink, Message: "Disconnected", Err: err})
	return err
}

// LinkChanged records a link status change reported outside a Connect or
// Disconnect call, such as a dropped connection.
func (s *Session) LinkChanged(status devicelink.Status) {
	msg := "Disconnected"
	if status.Connected {
		msg = "Connected to " + status.Port
	}
	s.emit(Event{Kind: EventLink, Message: msg, Err: status.Err})
}

// ToggleLock flips the lock and returns the new control state.
func (s *Session) ToggleLock() lockgate.Controls {
	return s.gate.Toggle()
}

// SetLock moves the lock to state.
func (s *Session) SetLock(state lockgate.State) lockgate.Controls {
	return s.gate.Set(state)
}
