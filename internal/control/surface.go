// Package control implements the parameter control surface: the single
// source of truth for the live torque and speed values sent to the device.
package control

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/logging"
)

// ErrNotFinite is returned when a value is NaN, infinite or not a number.
var ErrNotFinite = errors.New("value is not a finite number")

// Sender transmits encoded commands. Implementations must not fail the
// caller: a disconnected or failing link is logged and ignored.
type Sender interface {
	Send(cmd command.Command)
}

// ActivePreset receives live edits for the currently selected preset.
// UpdateSelected returns false when nothing is selected.
type ActivePreset interface {
	UpdateSelected(p command.Parameter, value float64) bool
}

// Snapshot is the live parameter state.
type Snapshot struct {
	Torque           float64 `json:"torque"`
	Speed            float64 `json:"speed"`
	TorqueOutOfRange bool    `json:"torqueOutOfRange"`
	SpeedOutOfRange  bool    `json:"speedOutOfRange"`
}

// Surface owns the current torque and speed values.
//
// Every change goes through Set, which updates the value, sends the command
// and writes the value back into the selected preset, in that order.
// Surface is not safe for concurrent use.
type Surface struct {
	torque    config.Range
	speed     config.Range
	values    map[command.Parameter]float64
	sender    Sender
	active    ActivePreset
	onRefresh func()
}

// New creates a surface holding the range defaults. Nothing is sent until
// the first Set.
func New(torque, speed config.Range, sender Sender, active ActivePreset) *Surface {
	return &Surface{
		torque: torque,
		speed:  speed,
		values: map[command.Parameter]float64{
			command.Torque: torque.Default,
			command.Speed:  speed.Default,
		},
		sender: sender,
		active: active,
	}
}

// OnRefresh registers fn to be called after a live edit has been written
// into the selected preset, so that list views can redraw it.
func (s *Surface) OnRefresh(fn func()) {
	s.onRefresh = fn
}

// Range returns the configured range for p.
func (s *Surface) Range(p command.Parameter) config.Range {
	if p == command.Speed {
		return s.speed
	}
	return s.torque
}

// Value returns the current value of p.
func (s *Surface) Value(p command.Parameter) float64 {
	return s.values[p]
}

// Snapshot returns the current values and their range status.
func (s *Surface) Snapshot() Snapshot {
	t, sp := s.values[command.Torque], s.values[command.Speed]
	return Snapshot{
		Torque:           t,
		Speed:            sp,
		TorqueOutOfRange: !s.torque.Contains(t),
		SpeedOutOfRange:  !s.speed.Contains(sp),
	}
}

// SetTorque sets the torque value. See Set.
func (s *Surface) SetTorque(v float64) error {
	return s.Set(command.Torque, v)
}

// SetSpeed sets the speed value. See Set.
func (s *Surface) SetSpeed(v float64) error {
	return s.Set(command.Speed, v)
}

// Set applies v to parameter p:
//
//  1. v must be finite, otherwise ErrNotFinite and nothing changes
//  2. the value and readout are updated
//  3. the command is sent (never fails; see Sender)
//  4. the selected preset, if any, takes the new value and a refresh is signalled
//
// Values outside the configured range are applied as-is and logged.
func (s *Surface) Set(p command.Parameter, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logging.Warn("Ignoring non-finite value", zap.String("parameter", p.String()))
		return fmt.Errorf("%s: %w", p, ErrNotFinite)
	}

	r := s.Range(p)
	if !r.Contains(v) {
		logging.Warn("Value outside configured range",
			zap.String("parameter", p.String()),
			zap.Float64("value", v),
			zap.Float64("min", r.Min),
			zap.Float64("max", r.Max),
		)
	}

	s.values[p] = v

	if s.sender != nil {
		s.sender.Send(command.Encode(p, v))
	}

	if s.active != nil && s.active.UpdateSelected(p, v) && s.onRefresh != nil {
		s.onRefresh()
	}

	return nil
}

// SetText parses text the way a range control input would and applies it.
func (s *Surface) SetText(p command.Parameter, text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return fmt.Errorf("%s: %q: %w", p, text, ErrNotFinite)
	}
	return s.Set(p, v)
}

// Step moves p by delta steps, bounded to the configured range as a range
// control would be.
func (s *Surface) Step(p command.Parameter, delta int) error {
	r := s.Range(p)
	return s.Set(p, r.Bound(s.values[p]+float64(delta)*r.StepSize()))
}

// Press applies the value of the preset-value button at index.
func (s *Surface) Press(p command.Parameter, index int) error {
	buttons := s.Range(p).Buttons
	if index < 0 || index >= len(buttons) {
		return fmt.Errorf("%s: no preset-value button %d", p, index+1)
	}
	return s.Set(p, buttons[index])
}

// Apply pushes a full torque/speed pair through Set, torque first.
func (s *Surface) Apply(torque, speed float64) error {
	return errors.Join(s.Set(command.Torque, torque), s.Set(command.Speed, speed))
}
