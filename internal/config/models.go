package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
)

// CurrentVersion is the configuration file format version.
const CurrentVersion = 1

// DefaultListen is the default address of the HTTP server.
const DefaultListen = ":8080"

// Registry represents the entire user configuration file.
type Registry struct {
	Version int                    `yaml:"version"`
	Devices map[string]*DeviceSpec `yaml:"devices,omitempty"` // Keyed by device name
	Server  *ServerPrefs           `yaml:"server,omitempty"`
	Logging logging.Options        `yaml:"logging,omitempty"`

	path string
	mu   sync.Mutex
}

// DeviceSpec describes one air conditioner and where its programs go.
type DeviceSpec struct {
	Model       protocol.Model  `yaml:"model"`
	Nickname    string          `yaml:"nickname,omitempty"` // User-friendly name
	Sink        transmit.Config `yaml:"sink"`
	MinInterval time.Duration   `yaml:"min_interval,omitempty"` // Minimum spacing between transmissions
	FullFrame   bool            `yaml:"full_frame,omitempty"`   // Transmit all 27 bytes

	// PowerOn is the last recorded state of a toggle-power unit. It is
	// rewritten after every successful power toggle.
	PowerOn bool `yaml:"power_on,omitempty"`
}

// ServerPrefs holds the settings of "climateir serve".
type ServerPrefs struct {
	Listen    string `yaml:"listen"`
	TLSCert   string `yaml:"tls_cert,omitempty"`
	TLSKey    string `yaml:"tls_key,omitempty"`
	Advertise bool   `yaml:"advertise"` // Announce the hub over mDNS
	Instance  string `yaml:"instance,omitempty"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (p *ServerPrefs) TLSEnabled() bool {
	return p.TLSCert != "" && p.TLSKey != ""
}

func defaultServerPrefs() *ServerPrefs {
	return &ServerPrefs{
		Listen:    DefaultListen,
		Advertise: true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: CurrentVersion,
		Devices: make(map[string]*DeviceSpec),
		Server:  defaultServerPrefs(),
	}
}

// Validate checks a device entry.
func (d *DeviceSpec) Validate() error {
	if !slices.Contains(protocol.Models, d.Model) {
		return fmt.Errorf("%w: %v", protocol.ErrUnknownModel, d.Model)
	}
	if d.MinInterval < 0 {
		return errors.New("min_interval must not be negative")
	}
	if err := d.Sink.Validate(); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}

// Validate checks every device entry.
func (r *Registry) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", r.Version, CurrentVersion)
	}
	for _, name := range r.DeviceNames() {
		if err := r.Devices[name].Validate(); err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
	}
	return nil
}

// GetDevice retrieves a device by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *DeviceSpec {
	return r.Devices[name]
}

// SetDevice adds or replaces a device after validating it.
func (r *Registry) SetDevice(name string, spec *DeviceSpec) error {
	if name == "" {
		return errors.New("device name is required")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*DeviceSpec)
	}
	r.Devices[name] = spec
	return nil
}

// RemoveDevice deletes a device. It reports whether the device existed.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	return true
}

// DeviceNames returns the configured device names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
