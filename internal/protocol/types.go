package protocol

import (
	"fmt"
	"strings"
)

// Mode is the requested operating mode of the unit.
type Mode int

const (
	ModeOff Mode = iota
	ModeAuto
	ModeCool
	ModeHeat
	ModeDry
	ModeFanOnly
)

// Hardware mode codes (B13, 3 bits)
const (
	modeCodeAuto byte = 0
	modeCodeDry  byte = 2
	modeCodeCool byte = 3
	modeCodeHeat byte = 4
	modeCodeFan  byte = 6
)

var modeCodes = map[Mode]byte{
	ModeAuto:    modeCodeAuto,
	ModeDry:     modeCodeDry,
	ModeCool:    modeCodeCool,
	ModeHeat:    modeCodeHeat,
	ModeFanOnly: modeCodeFan,
}

var modeNames = map[Mode]string{
	ModeOff:     "off",
	ModeAuto:    "auto",
	ModeCool:    "cool",
	ModeHeat:    "heat",
	ModeDry:     "dry",
	ModeFanOnly: "fan_only",
}

// Modes lists every mode in the order a handset cycles through them.
var Modes = []Mode{ModeAuto, ModeCool, ModeHeat, ModeDry, ModeFanOnly, ModeOff}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Code returns the 3-bit hardware code for m. ok is false for ModeOff and
// unknown modes, which have no code.
func (m Mode) Code() (code byte, ok bool) {
	code, ok = modeCodes[m]
	return code, ok
}

// ParseMode parses a mode name such as "cool" or "fan-only".
func ParseMode(s string) (Mode, error) {
	key := normalizeName(s)
	if key == "fan" {
		return ModeFanOnly, nil
	}
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// FanSpeed is the requested fan speed.
type FanSpeed int

const (
	FanAuto FanSpeed = iota
	FanMinimum
	FanLow
	FanMedium
	FanHigh
	FanMaximum
)

// Hardware fan codes (B16 high nibble)
var fanCodes = map[FanSpeed]byte{
	FanMinimum: 3,
	FanLow:     4,
	FanMedium:  5,
	FanHigh:    6,
	FanMaximum: 7,
	FanAuto:    10,
}

var fanNames = map[FanSpeed]string{
	FanAuto:    "auto",
	FanMinimum: "min",
	FanLow:     "low",
	FanMedium:  "medium",
	FanHigh:    "high",
	FanMaximum: "max",
}

// FanSpeeds lists every fan speed from quietest to loudest, auto first.
var FanSpeeds = []FanSpeed{FanAuto, FanMinimum, FanLow, FanMedium, FanHigh, FanMaximum}

func (f FanSpeed) String() string {
	if name, ok := fanNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FanSpeed(%d)", int(f))
}

// Code returns the 4-bit hardware code for f.
func (f FanSpeed) Code() (code byte, ok bool) {
	code, ok = fanCodes[f]
	return code, ok
}

// ParseFanSpeed parses a fan speed name. "minimum" and "maximum" are accepted
// as aliases for "min" and "max".
func ParseFanSpeed(s string) (FanSpeed, error) {
	key := normalizeName(s)
	switch key {
	case "minimum":
		return FanMinimum, nil
	case "maximum":
		return FanMaximum, nil
	}
	for f, name := range fanNames {
		if name == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFan, s)
}

func (f FanSpeed) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FanSpeed) UnmarshalText(text []byte) error {
	v, err := ParseFanSpeed(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// SwingMode selects whether the vertical vanes swing.
type SwingMode int

const (
	SwingOff SwingMode = iota
	SwingVertical
)

func (s SwingMode) String() string {
	switch s {
	case SwingOff:
		return "off"
	case SwingVertical:
		return "vertical"
	default:
		return fmt.Sprintf("SwingMode(%d)", int(s))
	}
}

// ParseSwingMode parses "off" or "vertical".
func ParseSwingMode(s string) (SwingMode, error) {
	switch normalizeName(s) {
	case "off", "none":
		return SwingOff, nil
	case "vertical", "on":
		return SwingVertical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSwing, s)
}

func (s SwingMode) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SwingMode) UnmarshalText(text []byte) error {
	v, err := ParseSwingMode(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Vane is a vertical vane position. Values are the hardware codes.
type Vane byte

const (
	VaneUp      Vane = 1
	VaneMidUp   Vane = 2
	VaneMiddle  Vane = 3
	VaneMidDown Vane = 4
	VaneDown    Vane = 5
	VaneAuto    Vane = 0x0F
)

func (v Vane) String() string {
	switch v {
	case VaneUp:
		return "up"
	case VaneMidUp:
		return "mid_up"
	case VaneMiddle:
		return "middle"
	case VaneMidDown:
		return "mid_down"
	case VaneDown:
		return "down"
	case VaneAuto:
		return "auto"
	default:
		return fmt.Sprintf("Vane(0x%X)", byte(v))
	}
}

// Model identifies a Panasonic remote/unit family.
type Model int

const (
	ModelDKE Model = iota
	ModelJKE
	ModelLKE
	ModelNKE
	ModelCKP
	ModelRKR
	ModelPKE
)

// modelQuirk describes the bit-level differences between models.
type modelQuirk struct {
	name string
	// togglePower means B13 b0 flips power instead of setting it.
	togglePower bool
}

var modelQuirks = map[Model]modelQuirk{
	ModelDKE: {name: "DKE"},
	ModelJKE: {name: "JKE"},
	ModelLKE: {name: "LKE"},
	ModelNKE: {name: "NKE"},
	ModelCKP: {name: "CKP", togglePower: true},
	ModelRKR: {name: "RKR"},
	ModelPKE: {name: "PKE"},
}

// Models lists every supported model.
var Models = []Model{ModelDKE, ModelJKE, ModelLKE, ModelNKE, ModelCKP, ModelRKR, ModelPKE}

func (m Model) String() string {
	if q, ok := modelQuirks[m]; ok {
		return q.name
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// TogglePower reports whether the model's power bit is a toggle.
func (m Model) TogglePower() bool {
	return modelQuirks[m].togglePower
}

// ParseModel parses a model name such as "CKP" (case insensitive).
func ParseModel(s string) (Model, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for m, q := range modelQuirks {
		if q.name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

func (m Model) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Model) UnmarshalText(text []byte) error {
	v, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}
