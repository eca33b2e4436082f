package preset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/muurk/screwctl/internal/command"
)

func newTestStore() *Store {
	s := NewStore()
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func names(s *Store) []string {
	out := make([]string, 0, s.Len())
	for _, p := range s.Presets() {
		out = append(out, p.Name)
	}
	return out
}

func TestNewDefaultStore(t *testing.T) {
	s := NewDefaultStore(Values{Torque: 40, Speed: 50})

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	p, ok := s.Selected()
	if !ok {
		t.Fatal("default preset should be selected")
	}
	if p.Name != "Default" || p.Torque != 40 || p.Speed != 50 {
		t.Errorf("default preset = %+v", p)
	}
	if p.ID == "" {
		t.Error("default preset should have an ID")
	}
}

func TestNextScrewName(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"empty", nil, "Screw 1"},
		{"no matches", []string{"Default", "M4 wood"}, "Screw 1"},
		{"sequential", []string{"Screw 1", "Screw 2"}, "Screw 3"},
		{"gap uses max", []string{"Screw 1", "Screw 7"}, "Screw 8"},
		{"case insensitive", []string{"SCREW 4", "screw   9"}, "Screw 10"},
		{"suffix not matched", []string{"Screw 5b", "My Screw 6"}, "Screw 1"},
		{"huge numeral ignored", []string{"Screw 99999999999999999999999", "Screw 2"}, "Screw 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextScrewName(tt.names); got != tt.want {
				t.Errorf("NextScrewName(%v) = %q, want %q", tt.names, got, tt.want)
			}
		})
	}
}

func TestAddGeneratesIncreasingNames(t *testing.T) {
	s := newTestStore()

	for i := 1; i <= 5; i++ {
		p := s.Add(10, 20)
		want := fmt.Sprintf("Screw %d", i)
		if p.Name != want {
			t.Fatalf("Add() #%d name = %q, want %q", i, p.Name, want)
		}
		if s.SelectedIndex() != s.Len()-1 {
			t.Fatalf("Add() should select the new preset, selected = %d", s.SelectedIndex())
		}
	}
}

func TestAddNeverCollidesAfterDeletes(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 4; i++ {
		s.Add(1, 1)
	}

	// Remove "Screw 2" and "Screw 4"
	s.DeleteAt(1)
	s.DeleteAt(2)

	for i := 0; i < 3; i++ {
		p := s.Add(1, 1)
		seen := 0
		for _, n := range names(s) {
			if n == p.Name {
				seen++
			}
		}
		if seen != 1 {
			t.Fatalf("name %q appears %d times in %v", p.Name, seen, names(s))
		}
	}

	ids := map[string]bool{}
	for _, p := range s.Presets() {
		if ids[p.ID] {
			t.Fatalf("duplicate id %q", p.ID)
		}
		ids[p.ID] = true
	}
}

func TestDeleteSingleton(t *testing.T) {
	s := NewDefaultStore(Values{Torque: 40, Speed: 50})

	if !s.Delete() {
		t.Fatal("Delete() on singleton should succeed")
	}
	if s.Len() != 0 || s.SelectedIndex() != -1 {
		t.Fatalf("after delete: len=%d selected=%d, want 0/-1", s.Len(), s.SelectedIndex())
	}
	if s.Delete() {
		t.Error("Delete() on empty store should be a no-op")
	}
	if s.Len() != 0 || s.SelectedIndex() != -1 {
		t.Error("no-op delete changed state")
	}
}

func TestDeleteMovesSelection(t *testing.T) {
	tests := []struct {
		name         string
		selectIndex  int
		wantSelected int
		wantNames    []string
	}{
		{"delete first", 0, 0, []string{"Screw 2", "Screw 3"}},
		{"delete middle", 1, 1, []string{"Screw 1", "Screw 3"}},
		{"delete last", 2, 1, []string{"Screw 1", "Screw 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			s.Add(1, 1)
			s.Add(2, 2)
			s.Add(3, 3)
			s.Select(tt.selectIndex)

			s.Delete()

			if s.SelectedIndex() != tt.wantSelected {
				t.Errorf("selected = %d, want %d", s.SelectedIndex(), tt.wantSelected)
			}
			got := names(s)
			if fmt.Sprint(got) != fmt.Sprint(tt.wantNames) {
				t.Errorf("names = %v, want %v", got, tt.wantNames)
			}
		})
	}
}

func TestDeleteAtOutOfRange(t *testing.T) {
	s := newTestStore()
	s.Add(1, 1)
	if s.DeleteAt(5) || s.DeleteAt(-1) {
		t.Error("DeleteAt out of range should return false")
	}
	if s.Len() != 1 {
		t.Error("DeleteAt out of range should not modify the store")
	}
}

func TestSelectOutOfBoundsIsNoOp(t *testing.T) {
	s := newTestStore()
	s.Add(10, 20)
	s.Add(30, 40)
	s.Select(0)
	before := s.Presets()

	for _, i := range []int{-5, -1, 2, 100} {
		if s.Select(i) {
			t.Errorf("Select(%d) should return false", i)
		}
		if s.SelectedIndex() != 0 {
			t.Errorf("Select(%d) changed selection to %d", i, s.SelectedIndex())
		}
	}
	if fmt.Sprint(before) != fmt.Sprint(s.Presets()) {
		t.Error("out-of-bounds Select changed preset data")
	}
}

func TestNavigate(t *testing.T) {
	s := newTestStore()
	if s.Navigate(1) {
		t.Error("Navigate on empty store should be a no-op")
	}

	s.Add(1, 1)
	s.Add(2, 2)
	s.Add(3, 3)
	s.Select(0)

	if s.CanPrev() || !s.CanNext() {
		t.Error("at first entry: CanPrev should be false, CanNext true")
	}

	s.Navigate(-1)
	if s.SelectedIndex() != 0 {
		t.Errorf("Navigate(-1) at start moved to %d", s.SelectedIndex())
	}
	s.Navigate(1)
	s.Navigate(1)
	s.Navigate(1)
	if s.SelectedIndex() != 2 {
		t.Errorf("Navigate(+1) past end = %d, want 2", s.SelectedIndex())
	}
	if !s.CanPrev() || s.CanNext() {
		t.Error("at last entry: CanPrev should be true, CanNext false")
	}
}

func TestRename(t *testing.T) {
	s := newTestStore()
	if s.Rename("x") {
		t.Error("Rename with no selection should be a no-op")
	}

	s.Add(1, 1)
	tests := []struct {
		in   string
		want string
	}{
		{"  M4 wood  ", "M4 wood"},
		{"", "Unnamed"},
		{"   ", "Unnamed"},
		{"Screw 12", "Screw 12"},
	}
	for _, tt := range tests {
		s.Rename(tt.in)
		p, _ := s.Selected()
		if p.Name != tt.want {
			t.Errorf("Rename(%q) -> %q, want %q", tt.in, p.Name, tt.want)
		}
	}

	if got := s.NextName(); got != "Screw 13" {
		t.Errorf("NextName() after renaming to Screw 12 = %q, want Screw 13", got)
	}
}

func TestUpdateSelected(t *testing.T) {
	s := newTestStore()
	if s.UpdateSelected(command.Torque, 1) {
		t.Error("UpdateSelected with no selection should return false")
	}

	s.Add(10, 20)
	s.Add(30, 40)
	s.Select(0)

	s.UpdateSelected(command.Torque, 77)
	s.UpdateSelected(command.Speed, 88)

	first, _ := s.At(0)
	second, _ := s.At(1)
	if first.Torque != 77 || first.Speed != 88 {
		t.Errorf("selected preset = %+v, want 77/88", first)
	}
	if second.Torque != 30 || second.Speed != 40 {
		t.Errorf("other preset changed: %+v", second)
	}
}

func TestReplaceAll(t *testing.T) {
	defaults := Values{Torque: 40, Speed: 50}

	t.Run("discards non-finite", func(t *testing.T) {
		s := newTestStore()
		discarded, err := s.ReplaceAll([]Candidate{
			{Name: "A", Torque: "10", Speed: "20"},
			{Name: "B", Torque: "notanumber", Speed: "5"},
			{Name: "C", Torque: "1", Speed: "NaN"},
			{Name: "D", Torque: "Inf", Speed: "1"},
		}, defaults)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		if discarded != 3 {
			t.Errorf("discarded = %d, want 3", discarded)
		}
		if s.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", s.Len())
		}
		p, _ := s.Selected()
		if p.Name != "A" || p.Torque != 10 || p.Speed != 20 {
			t.Errorf("preset = %+v", p)
		}
	})

	t.Run("defaults and fallback names", func(t *testing.T) {
		s := newTestStore()
		_, err := s.ReplaceAll([]Candidate{
			{Name: "First", Torque: "1", Speed: "2"},
			{Name: "  ", Torque: "", Speed: " 7.5 "},
		}, defaults)
		if err != nil {
			t.Fatalf("ReplaceAll() error = %v", err)
		}
		p, _ := s.At(1)
		if p.Name != "Screw 2" || p.Torque != 40 || p.Speed != 7.5 {
			t.Errorf("second preset = %+v", p)
		}
		if s.SelectedIndex() != 0 {
			t.Errorf("selected = %d, want 0", s.SelectedIndex())
		}
	})

	t.Run("keeps unique ids", func(t *testing.T) {
		s := newTestStore()
		_, err := s.ReplaceAll([]Candidate{
			{ID: "abc", Name: "A", Torque: "1", Speed: "1"},
			{ID: "abc", Name: "B", Torque: "1", Speed: "1"},
		}, defaults)
		if err != nil {
			t.Fatal(err)
		}
		a, _ := s.At(0)
		b, _ := s.At(1)
		if a.ID != "abc" || b.ID == "abc" || b.ID == "" {
			t.Errorf("ids = %q, %q", a.ID, b.ID)
		}
	})

	t.Run("all invalid leaves store untouched", func(t *testing.T) {
		s := newTestStore()
		s.Add(11, 22)
		before := s.Presets()

		_, err := s.ReplaceAll([]Candidate{{Name: "X", Torque: "x", Speed: "y"}}, defaults)
		if !errors.Is(err, ErrNoValidPresets) {
			t.Fatalf("err = %v, want ErrNoValidPresets", err)
		}
		if fmt.Sprint(before) != fmt.Sprint(s.Presets()) || s.SelectedIndex() != 0 {
			t.Error("failed ReplaceAll modified the store")
		}

		if _, err := s.ReplaceAll(nil, defaults); !errors.Is(err, ErrNoValidPresets) {
			t.Errorf("empty candidate list err = %v", err)
		}
	})
}

func TestTable(t *testing.T) {
	s := newTestStore()
	if _, err := s.Table(); !errors.Is(err, ErrEmptyStore) {
		t.Errorf("Table() on empty store err = %v, want ErrEmptyStore", err)
	}

	s.Add(10, 20)
	s.Add(12.5, 100)
	s.Rename("Fine")

	rows, err := s.Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	want := Table{
		{"Name", "Torque", "Speed"},
		{"Screw 1", "10", "20"},
		{"Fine", "12.5", "100"},
	}
	if fmt.Sprint(rows) != fmt.Sprint(want) {
		t.Errorf("Table() = %v, want %v", rows, want)
	}
}

func TestTableRoundTrip(t *testing.T) {
	s := newTestStore()
	s.Add(10, 20)
	s.Add(0.25, 99.75)
	s.Add(-3, 150)
	s.Rename("Out of range")
	original := s.Presets()

	rows, err := s.Table()
	if err != nil {
		t.Fatal(err)
	}

	cands := make([]Candidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cands = append(cands, Candidate{Name: row[0], Torque: row[1], Speed: row[2]})
	}

	restored := newTestStore()
	if _, err := restored.ReplaceAll(cands, Values{}); err != nil {
		t.Fatal(err)
	}

	got := restored.Presets()
	for i := range original {
		if got[i].Name != original[i].Name || got[i].Torque != original[i].Torque || got[i].Speed != original[i].Speed {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], original[i])
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 40, false},
		{" 12 ", 12, false},
		{"1e2", 100, false},
		{"-0.5", -0.5, false},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
	}
	for _, tt := range tests {
		got, err := coerce(tt.in, 40)
		if (err != nil) != tt.wantErr {
			t.Errorf("coerce(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("coerce(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := map[float64]string{40: "40", 12.5: "12.5", -3: "-3", 0.1: "0.1"}
	for in, want := range tests {
		if got := FormatValue(in); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", in, got, want)
		}
	}
}
