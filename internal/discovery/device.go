package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a discovered ESPHome node on the network
type Device struct {
	// Name is the mDNS instance name (e.g., "living-room-ir")
	Name string `json:"name"`

	// Hostname is the mDNS hostname (e.g., "living-room-ir.local.")
	Hostname string `json:"hostname"`

	// IP is the IPv4 address, or IPv6 when the node has no IPv4 address
	IP string `json:"ip"`

	// Port is the ESPHome native API port (typically 6053)
	Port int `json:"port"`

	// Metadata contains the mDNS TXT record data.
	// Common fields: "version", "platform", "board", "mac", "friendly_name"
	Metadata map[string]string `json:"metadata,omitempty"`

	// DiscoveredAt is when the node was discovered
	DiscoveredAt time.Time `json:"discovered_at"`
}

// String returns a human-readable string representation of the node
func (d *Device) String() string {
	return fmt.Sprintf("ESPHome node %s (%s) at %s:%d", d.Name, d.Hostname, d.IP, d.Port)
}

// Address returns host:port for the native API.
func (d *Device) Address() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// FriendlyName returns the configured friendly name, falling back to the
// instance name.
func (d *Device) FriendlyName() string {
	if name := d.GetMetadata("friendly_name"); name != "" {
		return name
	}
	return d.Name
}

func (d *Device) Platform() string { return d.GetMetadata("platform") }

func (d *Device) Version() string { return d.GetMetadata("version") }
