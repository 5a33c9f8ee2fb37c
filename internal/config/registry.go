package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
)

const (
	appName    = "climateir"
	configFile = "config.yaml"
)

// ErrUnknownDevice is returned for operations on a device that is not configured.
var ErrUnknownDevice = errors.New("unknown device")

// Serializes writes across registries sharing a file.
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
//   - Linux: $XDG_CONFIG_HOME/climateir or $HOME/.config/climateir
//   - macOS: $HOME/.config/climateir
//   - Windows: %LOCALAPPDATA%\climateir
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistry loads the registry from the default location.
func LoadRegistry() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return Load(path)
}

// Load reads the registry at path. A missing file yields a default registry
// that will be written to path on Save.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		r := NewRegistry()
		r.path = path
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	registry.path = path

	if registry.Devices == nil {
		registry.Devices = make(map[string]*DeviceSpec)
	}
	if registry.Server == nil {
		registry.Server = defaultServerPrefs()
	}
	if registry.Server.Listen == "" {
		registry.Server.Listen = DefaultListen
	}

	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return &registry, nil
}

// Path returns the file the registry is saved to.
func (r *Registry) Path() string {
	return r.path
}

// Save writes the registry to its file. The write goes to a temporary file
// that is renamed into place.
func (r *Registry) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if r.path == "" {
		path, err := GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		r.path = path
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# climateir configuration
#
# devices:     air conditioners keyed by name (model, sink, min_interval)
# power_on:    recorded state of toggle-power models, updated automatically
#
# Location: ` + r.path + `

`)
	data = append(header, data...)

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// SetPowerState records the power state of a toggle-power device and saves
// the registry.
func (r *Registry) SetPowerState(name string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device := r.GetDevice(name)
	if device == nil {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, name)
	}
	if device.PowerOn == on {
		return nil
	}
	device.PowerOn = on
	return r.Save()
}

// CreateDefaultConfig writes an example configuration to path. It refuses to
// overwrite an existing file.
func CreateDefaultConfig(path string) (*Registry, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("config file already exists: %s", path)
	}

	registry := NewRegistry()
	registry.path = path
	registry.Devices["living-room"] = &DeviceSpec{
		Model:    protocol.ModelDKE,
		Nickname: "Living room",
		Sink:     transmit.Config{Type: transmit.TypeStdout, Format: transmit.FormatRaw},
	}
	registry.Devices["bedroom"] = &DeviceSpec{
		Model:       protocol.ModelCKP,
		Nickname:    "Bedroom",
		MinInterval: 2 * time.Second,
		Sink: transmit.Config{
			Type: transmit.TypeMQTT,
			MQTT: transmit.MQTTConfig{Broker: "tcp://localhost:1883"},
		},
	}

	if err := registry.Save(); err != nil {
		return nil, err
	}
	return registry, nil
}
