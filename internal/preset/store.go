package preset

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/muurk/screwctl/internal/command"
)

// autoNamePattern matches generated names ("Screw 3", "screw  12").
var autoNamePattern = regexp.MustCompile(`(?i)^Screw\s+(\d+)$`)

// Store is an ordered list of presets with a selection cursor.
//
// The selected index is -1 only when the store is empty; otherwise it is a
// valid index. Insertion order is display and traversal order.
//
// Store is not safe for concurrent use.
type Store struct {
	presets  []Preset
	selected int
	newID    func() string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{selected: -1, newID: uuid.NewString}
}

// NewDefaultStore creates a store holding a single selected preset named
// "Default" with the given values.
func NewDefaultStore(v Values) *Store {
	s := NewStore()
	s.presets = []Preset{{ID: s.newID(), Name: DefaultName, Torque: v.Torque, Speed: v.Speed}}
	s.selected = 0
	return s
}

// Len returns the number of presets.
func (s *Store) Len() int {
	return len(s.presets)
}

// Presets returns a copy of the presets in order.
func (s *Store) Presets() []Preset {
	out := make([]Preset, len(s.presets))
	copy(out, s.presets)
	return out
}

// At returns the preset at index.
func (s *Store) At(index int) (Preset, bool) {
	if index < 0 || index >= len(s.presets) {
		return Preset{}, false
	}
	return s.presets[index], true
}

// SelectedIndex returns the cursor, -1 when nothing is selected.
func (s *Store) SelectedIndex() int {
	return s.selected
}

// Selected returns the currently selected preset.
func (s *Store) Selected() (Preset, bool) {
	return s.At(s.selected)
}

// CanPrev reports whether navigating backwards would move the cursor.
func (s *Store) CanPrev() bool {
	return len(s.presets) > 1 && s.selected > 0
}

// CanNext reports whether navigating forwards would move the cursor.
func (s *Store) CanNext() bool {
	return len(s.presets) > 1 && s.selected < len(s.presets)-1
}

// NextName returns the next auto-generated name for this store.
func (s *Store) NextName() string {
	names := make([]string, len(s.presets))
	for i, p := range s.presets {
		names[i] = p.Name
	}
	return NextScrewName(names)
}

// NextScrewName returns "Screw N" where N is one more than the largest
// numeral among names of that form (case-insensitive), or 1 if none match.
func NextScrewName(names []string) string {
	maxN := 0
	for _, name := range names {
		m := autoNamePattern.FindStringSubmatch(strings.TrimSpace(name))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("Screw %d", maxN+1)
}

// Add appends a new auto-named preset and selects it.
func (s *Store) Add(torque, speed float64) Preset {
	p := Preset{
		ID:     s.newID(),
		Name:   s.NextName(),
		Torque: torque,
		Speed:  speed,
	}
	s.presets = append(s.presets, p)
	s.selected = len(s.presets) - 1
	return p
}

// Delete removes the selected preset (or the last one if nothing is selected).
// It returns false when the store was already empty.
func (s *Store) Delete() bool {
	if len(s.presets) == 0 {
		return false
	}
	index := s.selected
	if index < 0 {
		index = len(s.presets) - 1
	}
	return s.DeleteAt(index)
}

// DeleteAt removes the preset at index. The selection moves to
// min(index, len-1), or -1 if the store became empty.
func (s *Store) DeleteAt(index int) bool {
	if index < 0 || index >= len(s.presets) {
		return false
	}
	s.presets = append(s.presets[:index], s.presets[index+1:]...)
	if len(s.presets) == 0 {
		s.selected = -1
		return true
	}
	s.selected = min(index, len(s.presets)-1)
	return true
}

// Select moves the cursor to index. Out-of-range indices are ignored.
func (s *Store) Select(index int) bool {
	if index < 0 || index >= len(s.presets) {
		return false
	}
	s.selected = index
	return true
}

// Navigate moves the cursor by direction, clamped to the list bounds.
// It returns false on an empty store.
func (s *Store) Navigate(direction int) bool {
	if len(s.presets) == 0 {
		return false
	}
	return s.Select(max(0, min(s.selected+direction, len(s.presets)-1)))
}

// Rename sets the selected preset's name. The text is trimmed and an empty
// result becomes "Unnamed". It returns false when nothing is selected.
func (s *Store) Rename(text string) bool {
	if s.selected < 0 {
		return false
	}
	name := strings.TrimSpace(text)
	if name == "" {
		name = UnnamedName
	}
	s.presets[s.selected].Name = name
	return true
}

// UpdateSelected writes value into the given field of the selected preset.
// It returns false when nothing is selected.
func (s *Store) UpdateSelected(p command.Parameter, value float64) bool {
	if s.selected < 0 {
		return false
	}
	switch p {
	case command.Torque:
		s.presets[s.selected].Torque = value
	case command.Speed:
		s.presets[s.selected].Speed = value
	default:
		return false
	}
	return true
}

// ReplaceAll validates candidates and, if at least one survives, replaces the
// store contents with them and selects the first. Candidates with a torque or
// speed that is not a finite number are discarded. Empty values fall back to
// defaults; empty names become "Screw {i+1}".
//
// On failure the store is left untouched. The second return value is the
// number of discarded candidates.
func (s *Store) ReplaceAll(cands []Candidate, defaults Values) (int, error) {
	next := make([]Preset, 0, len(cands))
	seen := make(map[string]bool, len(cands))

	for i, c := range cands {
		torque, err := coerce(c.Torque, defaults.Torque)
		if err != nil {
			continue
		}
		speed, err := coerce(c.Speed, defaults.Speed)
		if err != nil {
			continue
		}

		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("Screw %d", i+1)
		}

		id := strings.TrimSpace(c.ID)
		if id == "" || seen[id] {
			id = s.newID()
		}
		seen[id] = true

		next = append(next, Preset{ID: id, Name: name, Torque: torque, Speed: speed})
	}

	discarded := len(cands) - len(next)
	if len(next) == 0 {
		return discarded, ErrNoValidPresets
	}

	s.presets = next
	s.selected = 0
	return discarded, nil
}

// Table returns the store as a header row followed by one row per preset.
func (s *Store) Table() (Table, error) {
	if len(s.presets) == 0 {
		return nil, ErrEmptyStore
	}
	return BuildTable(s.presets), nil
}

// BuildTable renders presets as a header row plus one row per preset.
func BuildTable(presets []Preset) Table {
	rows := make(Table, 0, len(presets)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, p := range presets {
		rows = append(rows, []string{p.Name, FormatValue(p.Torque), FormatValue(p.Speed)})
	}
	return rows
}

// coerce parses text as a finite number. Empty text yields def.
func coerce(text string, def float64) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", text)
	}
	return v, nil
}
