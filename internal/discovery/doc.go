// Package discovery finds IR bridges on the local network and announces the
// climateir hub.
//
// IR bridges are ESPHome boards with an IR LED; they advertise the
// "_esphomelib._tcp" service. The scanner lists them so a bridge can be picked
// for a device's sink. The hub itself is advertised as "_climateir._tcp" so
// bridges can locate the websocket endpoint.
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s\n", device.FriendlyName(), device.Address())
//	}
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - Nodes must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
package discovery
