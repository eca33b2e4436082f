// Package discovery announces and finds remote control panels with mDNS.
//
// A panel started with "screwctl-server serve" registers itself as a
// "_screwctl._tcp" service. "screwctl scan" browses for that service type
// and lists every panel that answers.
//
// # Usage Example
//
//	ad, err := discovery.Advertise(discovery.AdvertiseOptions{Port: 8080, Version: version.Version})
//	if err != nil {
//	    return err
//	}
//	defer ad.Shutdown()
//
//	panels, err := discovery.ScanForPanels(ctx, 3*time.Second)
//	for _, p := range panels {
//	    fmt.Println(p.Instance, p.BaseURL())
//	}
//
// # TXT Records
//
//   - path: always "/"
//   - tls: "1" when the panel serves HTTPS
//   - version: the screwctl version
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Panels must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
