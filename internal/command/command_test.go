package command

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		value float64
		want  string
	}{
		{"torque default", Torque, 40, "SET TORQUE 40\r\n"},
		{"speed default", Speed, 50, "SET SPEED 50\r\n"},
		{"zero", Torque, 0, "SET TORQUE 0\r\n"},
		{"rounds half up", Speed, 10.5, "SET SPEED 11\r\n"},
		{"rounds down", Torque, 10.4, "SET TORQUE 10\r\n"},
		{"above range kept", Torque, 150, "SET TORQUE 150\r\n"},
		{"negative kept", Speed, -3, "SET SPEED -3\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.param, tt.value).String()
			if got != tt.want {
				t.Errorf("Encode(%s, %v) = %q, want %q", tt.param, tt.value, got, tt.want)
			}
			if string(Encode(tt.param, tt.value).Bytes()) != tt.want {
				t.Errorf("Bytes() mismatch for %s", tt.name)
			}
		})
	}
}

func TestParseParameter(t *testing.T) {
	tests := []struct {
		in      string
		want    Parameter
		wantErr bool
	}{
		{"torque", Torque, false},
		{"TORQUE", Torque, false},
		{" Speed ", Speed, false},
		{"rpm", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseParameter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseParameter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseParameter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParameterLabels(t *testing.T) {
	if Torque.String() != "torque" || Torque.Label() != "Torque" {
		t.Errorf("Torque names = %q/%q", Torque.String(), Torque.Label())
	}
	if Speed.Label() != "Speed" {
		t.Errorf("Speed.Label() = %q", Speed.Label())
	}
}
