package discovery

import "testing"

func TestPanel_String(t *testing.T) {
	panel := &Panel{
		Instance: "screwctl-bench-3",
		Hostname: "bench-3.local.",
		IP:       "192.168.4.16",
		Port:     8080,
	}

	expected := "Panel screwctl-bench-3 (bench-3.local.) at 192.168.4.16:8080"
	if panel.String() != expected {
		t.Errorf("Panel.String() = %v, want %v", panel.String(), expected)
	}
}

func TestPanel_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		panel    *Panel
		expected string
	}{
		{
			name:     "plain HTTP",
			panel:    &Panel{IP: "192.168.4.16", Port: 8080},
			expected: "http://192.168.4.16:8080",
		},
		{
			name:     "TLS advertised",
			panel:    &Panel{IP: "10.0.0.5", Port: 8443, Metadata: map[string]string{"tls": "1"}},
			expected: "https://10.0.0.5:8443",
		},
		{
			name:     "IPv6 address is bracketed",
			panel:    &Panel{IP: "fe80::1", Port: 8080},
			expected: "http://[fe80::1]:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.panel.BaseURL(); got != tt.expected {
				t.Errorf("Panel.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPanel_GetMetadata(t *testing.T) {
	panel := &Panel{Metadata: map[string]string{"version": "1.2.0"}}

	if got := panel.GetMetadata("version"); got != "1.2.0" {
		t.Errorf("GetMetadata(version) = %q", got)
	}
	if got := panel.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}

	empty := &Panel{}
	if got := empty.GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata on nil metadata = %q", got)
	}
}
