package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Panel is a remote control panel found on the network
type Panel struct {
	// Instance is the advertised service name (e.g., "screwctl-bench-3")
	Instance string

	// Hostname is the mDNS hostname (e.g., "bench-3.local.")
	Hostname string

	// IP is the panel address, IPv4 when one is advertised
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the TXT record data ("version", "tls", "path")
	Metadata map[string]string

	// DiscoveredAt is when the panel answered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the panel
func (p *Panel) String() string {
	return fmt.Sprintf("Panel %s (%s) at %s", p.Instance, p.Hostname, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)))
}

// BaseURL returns the HTTP base URL for the panel
func (p *Panel) BaseURL() string {
	scheme := "http"
	if p.GetMetadata("tls") == "1" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(p.IP, strconv.Itoa(p.Port)))
}

// Version returns the advertised screwctl version, if any
func (p *Panel) Version() string {
	return p.GetMetadata("version")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Panel) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
