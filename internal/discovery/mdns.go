package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/logging"
)

const (
	// ServiceType is the mDNS service type remote panels advertise
	ServiceType = "_screwctl._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for panel discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the port assumed when an entry carries none
	DefaultPort = 8080
)

// Scanner handles mDNS panel discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForPanels collects every panel that answers before the timeout or
// ctx ends.
func (s *Scanner) ScanForPanels(ctx context.Context) ([]*Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	var (
		mu     sync.Mutex
		panels = make([]*Panel, 0)
		seen   = make(map[string]bool)
	)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			panel := parseServiceEntry(entry)
			if panel == nil {
				continue
			}
			mu.Lock()
			if !seen[panel.Instance] {
				seen[panel.Instance] = true
				panels = append(panels, panel)
				logging.Debug("Panel discovered", zap.String("panel", panel.String()))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Panel(nil), panels...), nil
}

// WaitForPanel returns the first panel whose instance name matches
func (s *Scanner) WaitForPanel(ctx context.Context, instance string) (*Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Panel, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			panel := parseServiceEntry(entry)
			if panel != nil && strings.EqualFold(panel.Instance, instance) {
				select {
				case found <- panel:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case panel := <-found:
		return panel, nil
	case <-ctx.Done():
		// The browse goroutine may have found it as the timeout fired.
		select {
		case panel := <-found:
			return panel, nil
		default:
		}
		return nil, fmt.Errorf("panel %s not found within %s", instance, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Panel.
// Returns nil if the entry has no instance name or no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Panel {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	hostname := entry.HostName
	if hostname == "" {
		hostname = ip
	}

	return &Panel{
		Instance:     entry.Instance,
		Hostname:     hostname,
		IP:           ip,
		Port:         port,
		Metadata:     parseText(entry.Text),
		DiscoveredAt: time.Now(),
	}
}

// parseText splits TXT records in "key=value" form; a bare key maps to ""
func parseText(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		if key == "" {
			continue
		}
		metadata[key] = value
	}
	return metadata
}

// ScanForPanels is a convenience function to scan with a custom timeout
func ScanForPanels(ctx context.Context, timeout time.Duration) ([]*Panel, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForPanels(ctx)
}
