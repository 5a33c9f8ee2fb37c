package discovery

import (
	"fmt"

	"github.com/grandcat/zeroconf"
)

// Advertiser announces the climateir hub on the local network so IR bridges
// can find the websocket endpoint without static configuration.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers instance as a HubServiceType service on port. txt
// entries are published as TXT records ("key=value").
func Advertise(instance string, port int, txt []string) (*Advertiser, error) {
	if instance == "" {
		instance = "climateir"
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	server, err := zeroconf.Register(instance, HubServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
