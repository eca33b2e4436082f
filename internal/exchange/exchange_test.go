package exchange

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/muurk/screwctl/internal/preset"
)

var defaults = preset.Values{Torque: 40, Speed: 50}

func storeWith(t *testing.T, cands ...preset.Candidate) *preset.Store {
	t.Helper()
	s := preset.NewStore()
	if _, err := s.ReplaceAll(cands, defaults); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	return s
}

// workbook builds an xlsx file with the given rows on its first sheet.
func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func names(s *preset.Store) []string {
	var out []string
	for _, p := range s.Presets() {
		out = append(out, p.Name)
	}
	return out
}

func TestExportEmptyStore(t *testing.T) {
	data, name, err := Export(preset.NewStore(), nil)
	if !errors.Is(err, preset.ErrEmptyStore) {
		t.Fatalf("Export() error = %v, want ErrEmptyStore", err)
	}
	if data != nil || name != "" {
		t.Error("Export() of an empty store must not produce an artifact")
	}
}

func TestRoundTrip(t *testing.T) {
	original := storeWith(t,
		preset.Candidate{Name: "M3 panel", Torque: "12", Speed: "80"},
		preset.Candidate{Name: "M5 frame", Torque: "35.5", Speed: "40"},
		preset.Candidate{Name: "Default", Torque: "40", Speed: "50"},
		preset.Candidate{Name: "Thirds", Torque: "33.333333333333336", Speed: "0.1"},
		preset.Candidate{Name: "Wide", Torque: "123456789.123456789", Speed: "12345678901234567"},
	)

	for _, f := range Formats() {
		t.Run(f.Name(), func(t *testing.T) {
			data, filename, err := Export(original, f)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if filename != "screws."+f.Extension() {
				t.Errorf("filename = %q", filename)
			}

			cands, got, err := Import(data, filename)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if got != f {
				t.Errorf("Import() decoded as %s, want %s", got.Name(), f.Name())
			}

			restored := preset.NewStore()
			if _, err := restored.ReplaceAll(cands, defaults); err != nil {
				t.Fatalf("ReplaceAll() error = %v", err)
			}

			want, have := original.Presets(), restored.Presets()
			if len(have) != len(want) {
				t.Fatalf("restored %d presets, want %d", len(have), len(want))
			}
			for i := range want {
				if have[i].Name != want[i].Name || have[i].Torque != want[i].Torque || have[i].Speed != want[i].Speed {
					t.Errorf("preset %d = %+v, want %+v", i, have[i], want[i])
				}
			}
			if restored.SelectedIndex() != 0 {
				t.Errorf("SelectedIndex() = %d, want 0", restored.SelectedIndex())
			}
		})
	}
}

func TestXLSXUsesScrewsSheetWithNumbers(t *testing.T) {
	store := storeWith(t, preset.Candidate{Name: "A", Torque: "10", Speed: "20"})
	data, _, err := Export(store, XLSX)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != SheetName {
		t.Errorf("sheets = %v, want [%s]", list, SheetName)
	}
	typ, err := f.GetCellType(SheetName, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Errorf("torque cell type = %v, want numeric", typ)
	}
}

func TestImportMissingSpeedColumn(t *testing.T) {
	store := storeWith(t, preset.Candidate{Name: "Keep me", Torque: "1", Speed: "2"})
	data := workbook(t,
		[]interface{}{"Name", "Torque"},
		[]interface{}{"A", 10},
	)

	cands, _, err := Import(data, "screws.xlsx")
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("Import() error = %v, want ErrMissingColumns", err)
	}
	if !strings.Contains(err.Error(), "Speed") {
		t.Errorf("error %q should name the missing column", err)
	}
	if cands != nil {
		t.Error("failed import returned candidates")
	}
	if got := names(store); len(got) != 1 || got[0] != "Keep me" {
		t.Errorf("store changed to %v", got)
	}
}

func TestImportColumnsAreCaseSensitive(t *testing.T) {
	_, _, err := Import([]byte("name,torque,speed\nA,1,2\n"), "screws.csv")
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("Import() error = %v, want ErrMissingColumns", err)
	}
}

func TestImportColumnsAnyOrder(t *testing.T) {
	cands, _, err := Import([]byte("Speed,Name,Torque\n20,A,10\n"), "screws.csv")
	if err != nil {
		t.Fatal(err)
	}
	want := preset.Candidate{Name: "A", Torque: "10", Speed: "20"}
	if len(cands) != 1 || cands[0] != want {
		t.Errorf("candidates = %+v, want [%+v]", cands, want)
	}
}

func TestImportPartiallyInvalid(t *testing.T) {
	inputs := map[string][]byte{
		"screws.xlsx": workbook(t,
			[]interface{}{"Name", "Torque", "Speed"},
			[]interface{}{"A", "10", "20"},
			[]interface{}{"B", "notanumber", "5"},
		),
		"screws.csv": []byte("Name,Torque,Speed\nA,10,20\nB,notanumber,5\n"),
	}

	for filename, data := range inputs {
		t.Run(filename, func(t *testing.T) {
			cands, _, err := Import(data, filename)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}

			store := preset.NewStore()
			discarded, err := store.ReplaceAll(cands, defaults)
			if err != nil {
				t.Fatalf("ReplaceAll() error = %v", err)
			}
			if discarded != 1 {
				t.Errorf("discarded = %d, want 1", discarded)
			}
			p, _ := store.At(0)
			if store.Len() != 1 || p.Name != "A" || p.Torque != 10 || p.Speed != 20 {
				t.Errorf("store = %+v", store.Presets())
			}
		})
	}
}

func TestImportAllRowsInvalid(t *testing.T) {
	cands, _, err := Import([]byte("Name,Torque,Speed\nA,x,1\nB,2,y\n"), "screws.csv")
	if err != nil {
		t.Fatal(err)
	}

	store := storeWith(t, preset.Candidate{Name: "Original", Torque: "1", Speed: "1"})
	if _, err := store.ReplaceAll(cands, defaults); !errors.Is(err, preset.ErrNoValidPresets) {
		t.Fatalf("ReplaceAll() error = %v, want ErrNoValidPresets", err)
	}
	if got := names(store); len(got) != 1 || got[0] != "Original" {
		t.Errorf("store changed to %v", got)
	}
}

func TestImportNoData(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"empty file", "screws.xlsx", nil},
		{"header only csv", "screws.csv", []byte("Name,Torque,Speed\n")},
		{"header only xlsx", "screws.xlsx", workbook(t, []interface{}{"Name", "Torque", "Speed"})},
		{"blank rows only", "screws.csv", []byte("Name,Torque,Speed\n,,\n")},
		{"empty json list", "screws.json", []byte("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Import(tt.data, tt.filename)
			if !errors.Is(err, ErrNoData) {
				t.Errorf("Import() error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestImportBlankNamesGetNextScrewName(t *testing.T) {
	data := []byte("Name,Torque,Speed\nScrew 3,1,1\n,2,2\nCustom,3,3\n,4,4\n")

	cands, _, err := Import(data, "list.csv")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Screw 3", "Screw 4", "Custom", "Screw 5"}
	for i, c := range cands {
		if c.Name != want[i] {
			t.Errorf("candidate %d name = %q, want %q", i, c.Name, want[i])
		}
	}
}

func TestImportLegacyJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"array", `[{"id":1712345678901,"name":"A","torque":10,"speed":"20"},{"name":"B","torque":"x","speed":1}]`},
		{"document", `{"screws":[{"id":"abc","name":"A","torque":"10","speed":20},{"name":"B","torque":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands, f, err := Import([]byte(tt.data), "backup.json")
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if f != JSON {
				t.Errorf("format = %s", f.Name())
			}

			store := preset.NewStore()
			if _, err := store.ReplaceAll(cands, defaults); err != nil {
				t.Fatal(err)
			}
			p, _ := store.At(0)
			if store.Len() != 1 || p.Name != "A" || p.Torque != 10 || p.Speed != 20 {
				t.Errorf("store = %+v", store.Presets())
			}
		})
	}
}

func TestImportYAML(t *testing.T) {
	data := []byte("# tightening presets\nscrews:\n  - name: Lid\n    torque: 12.5\n    speed: 30\n  - torque: 8\n    speed: 90\n")

	cands, f, err := Import(data, "presets.yml")
	if err != nil {
		t.Fatal(err)
	}
	if f != YAML {
		t.Errorf("format = %s", f.Name())
	}

	store := preset.NewStore()
	if _, err := store.ReplaceAll(cands, defaults); err != nil {
		t.Fatal(err)
	}
	got := store.Presets()
	if got[0].Name != "Lid" || got[0].Torque != 12.5 || got[1].Name != "Screw 2" || got[1].Speed != 90 {
		t.Errorf("store = %+v", got)
	}
}

func TestImportDispatchFallsBackToSniffing(t *testing.T) {
	// Legacy backups were often saved with a spreadsheet extension.
	data := []byte(`[{"name":"A","torque":1,"speed":2}]`)

	cands, f, err := Import(data, "screws.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if f != JSON || len(cands) != 1 {
		t.Errorf("format = %s, candidates = %+v", f.Name(), cands)
	}

	xlsx := workbook(t, []interface{}{"Name", "Torque", "Speed"}, []interface{}{"A", 1, 2})
	if _, f, err := Import(xlsx, "download"); err != nil || f != XLSX {
		t.Errorf("Import(no extension) = %v, %v", f, err)
	}
}

func TestImportUnknownFormat(t *testing.T) {
	_, _, err := Import([]byte{0x00, 0x01, 0xFF, 0xFE}, "blob.bin")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Import() error = %v, want ErrUnknownFormat", err)
	}
}

func TestByNameAndForFilename(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"xlsx", XLSX},
		{".CSV", CSV},
		{"yml", YAML},
		{"json", JSON},
	}
	for _, tt := range tests {
		if got, ok := ByName(tt.in); !ok || got != tt.want {
			t.Errorf("ByName(%q) = %v, %v", tt.in, got, ok)
		}
	}

	if _, ok := ByName("ods"); ok {
		t.Error("ByName(ods) should fail")
	}
	if f, ok := ForFilename("/tmp/out/screws.yaml"); !ok || f != YAML {
		t.Errorf("ForFilename() = %v, %v", f, ok)
	}
	if _, ok := ForFilename("screws"); ok {
		t.Error("ForFilename without extension should fail")
	}
}
