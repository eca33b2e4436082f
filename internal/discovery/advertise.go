package discovery

import (
	"fmt"
	"os"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/logging"
)

// Advertisement is a running mDNS registration for a remote panel
type Advertisement struct {
	server   *zeroconf.Server
	Instance string
	Port     int
}

// AdvertiseOptions describes the panel being announced
type AdvertiseOptions struct {
	Instance string // defaults to "screwctl-<hostname>"
	Port     int
	Version  string
	TLS      bool
}

// DefaultInstance returns the instance name used when none is configured
func DefaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "screwctl"
	}
	host, _, _ = strings.Cut(host, ".")
	return "screwctl-" + host
}

// TextRecords returns the TXT records announced for opts
func TextRecords(opts AdvertiseOptions) []string {
	tls := "0"
	if opts.TLS {
		tls = "1"
	}
	records := []string{"path=/", "tls=" + tls}
	if opts.Version != "" {
		records = append(records, "version="+opts.Version)
	}
	return records
}

// Advertise announces a panel on every multicast interface until Shutdown
func Advertise(opts AdvertiseOptions) (*Advertisement, error) {
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}
	if opts.Instance == "" {
		opts.Instance = DefaultInstance()
	}

	server, err := zeroconf.Register(opts.Instance, ServiceType, ServiceDomain, opts.Port, TextRecords(opts), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising panel",
		zap.String("instance", opts.Instance),
		zap.String("service", ServiceType),
		zap.Int("port", opts.Port),
	)

	return &Advertisement{server: server, Instance: opts.Instance, Port: opts.Port}, nil
}

// Shutdown withdraws the announcement
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Info("Stopped advertising panel", zap.String("instance", a.Instance))
}
