package climate

import (
	"slices"

	"github.com/muurk/climateir/internal/protocol"
)

// Traits describes what a unit supports.
type Traits struct {
	MinTemperature  float64              `json:"min_temperature"`
	MaxTemperature  float64              `json:"max_temperature"`
	TemperatureStep float64              `json:"temperature_step"`
	SupportsDry     bool                 `json:"supports_dry"`
	SupportsFanOnly bool                 `json:"supports_fan_only"`
	Modes           []protocol.Mode      `json:"modes"`
	FanSpeeds       []protocol.FanSpeed  `json:"fan_speeds"`
	SwingModes      []protocol.SwingMode `json:"swing_modes"`
	TogglePower     bool                 `json:"toggle_power"`
}

// TraitsFor returns the traits of the given model. Every supported model
// shares the same capabilities apart from how power is switched.
func TraitsFor(model protocol.Model) Traits {
	return Traits{
		MinTemperature:  protocol.TempMin,
		MaxTemperature:  protocol.TempMax,
		TemperatureStep: protocol.TempStep,
		SupportsDry:     true,
		SupportsFanOnly: true,
		Modes:           append([]protocol.Mode(nil), protocol.Modes...),
		FanSpeeds:       append([]protocol.FanSpeed(nil), protocol.FanSpeeds...),
		SwingModes:      []protocol.SwingMode{protocol.SwingOff, protocol.SwingVertical},
		TogglePower:     model.TogglePower(),
	}
}

// Supports reports whether req only uses values listed in t.
func (t Traits) Supports(req protocol.Request) bool {
	return slices.Contains(t.Modes, req.Mode) &&
		slices.Contains(t.FanSpeeds, req.Fan) &&
		slices.Contains(t.SwingModes, req.Swing)
}
