package config

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/muurk/screwctl/internal/command"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "screwctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'screwctl'", configDir)
	}

	if runtime.GOOS == "linux" && configDir != filepath.Join("/tmp/xdg-test", "screwctl") {
		t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "settings.yaml" {
		t.Errorf("GetConfigPath() should end with 'settings.yaml', got: %v", configPath)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Torque.Default != 40 || s.Speed.Default != 50 {
		t.Errorf("defaults = %v/%v, want 40/50", s.Torque.Default, s.Speed.Default)
	}
	if s.Torque.Min != 0 || s.Torque.Max != 100 {
		t.Errorf("torque range = %v..%v, want 0..100", s.Torque.Min, s.Torque.Max)
	}
	if len(s.Speed.Buttons) != 5 || s.Speed.Buttons[4] != 100 {
		t.Errorf("speed buttons = %v", s.Speed.Buttons)
	}
	if s.Serial.BaudRate != 9600 || s.Serial.DataBits != 8 || s.Serial.StopBits != 1 || s.Serial.Parity != "none" {
		t.Errorf("serial = %+v, want 9600 8N1", s.Serial)
	}
	if errs := s.Validate(); len(errs) != 0 {
		t.Errorf("DefaultSettings().Validate() = %v", errs)
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Min: 0, Max: 100}

	if !r.Contains(0) || !r.Contains(100) || r.Contains(101) || r.Contains(-1) {
		t.Error("Contains() boundaries wrong")
	}
	if r.Bound(150) != 100 || r.Bound(-5) != 0 || r.Bound(42) != 42 {
		t.Error("Bound() wrong")
	}
	if r.StepSize() != 1 {
		t.Errorf("StepSize() = %v, want 1 when unset", r.StepSize())
	}

	s := DefaultSettings()
	if s.RangeFor(command.Speed).Default != 50 {
		t.Error("RangeFor(Speed) should return speed range")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Settings)
		wantCount int
	}{
		{"valid defaults", func(*Settings) {}, 0},
		{"inverted range", func(s *Settings) { s.Torque.Min = 200 }, 1},
		{"bad serial", func(s *Settings) {
			s.Serial.BaudRate = 0
			s.Serial.DataBits = 9
			s.Serial.StopBits = 3
			s.Serial.Parity = "sometimes"
		}, 4},
		{"bad panel port", func(s *Settings) { s.Panel.Port = 70000 }, 1},
		{"non-finite range", func(s *Settings) {
			s.Torque.Default = math.NaN()
			s.Speed.Max = math.Inf(1)
			s.Speed.Buttons = []float64{10, math.NaN()}
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			errs := s.Validate()
			if len(errs) != tt.wantCount {
				t.Errorf("Validate() got %d errors, want %d", len(errs), tt.wantCount)
				for i, err := range errs {
					t.Logf("  Error %d: %v", i+1, err)
				}
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Torque.Default != 40 {
		t.Errorf("Torque.Default = %v, want 40", s.Torque.Default)
	}
}

func TestParsePartialOverridesDefaults(t *testing.T) {
	data := []byte(`
version: 1
torque:
  default: 25
  min: 0
  max: 60
serial:
  baud_rate: 115200
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Torque.Default != 25 || s.Torque.Max != 60 {
		t.Errorf("torque = %+v", s.Torque)
	}
	if s.Speed.Default != 50 {
		t.Errorf("speed default should be kept, got %v", s.Speed.Default)
	}
	if s.Serial.BaudRate != 115200 || s.Serial.DataBits != 8 {
		t.Errorf("serial = %+v", s.Serial)
	}
	if s.Panel == nil {
		t.Error("Panel should default when absent")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2"},
		{"invalid values", "version: 1\nserial:\n  parity: maybe\n"},
		{"nan default", "version: 1\ntorque:\n  default: .nan\n"},
		{"infinite min", "version: 1\nspeed:\n  min: -.inf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.data)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := DefaultSettings()
	s.Torque.Buttons = []float64{5, 15}
	s.Serial.Port = "/dev/ttyUSB0"

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Torque.Buttons) != 2 || loaded.Torque.Buttons[1] != 15 {
		t.Errorf("Torque.Buttons = %v", loaded.Torque.Buttons)
	}
	if loaded.Serial.Port != "/dev/ttyUSB0" {
		t.Errorf("Serial.Port = %q", loaded.Serial.Port)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	got, err := CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if got != path {
		t.Errorf("CreateDefaultConfig() path = %q, want %q", got, path)
	}

	if _, err := CreateDefaultConfig(path); err == nil {
		t.Error("second CreateDefaultConfig() should refuse to overwrite")
	}
}
