package protocol

import (
	"math"

	"github.com/muurk/climateir/internal/logging"
	"go.uber.org/zap"
)

// Temperature limits in degrees Celsius
const (
	TempMin     = 16
	TempMax     = 30
	TempStep    = 1
	TempFanOnly = 27 // handsets always report 27C in fan-only mode
)

// Request is the logical state to encode. Values are expected to come from an
// upstream climate abstraction; out-of-range values are normalized, never
// rejected.
type Request struct {
	Mode        Mode      `json:"mode" yaml:"mode"`
	Temperature float64   `json:"temperature" yaml:"temperature"`
	Fan         FanSpeed  `json:"fan" yaml:"fan"`
	Swing       SwingMode `json:"swing" yaml:"swing"`
}

// ToggleState is the recorded power state of a toggle-power unit. It is only
// meaningful for models where Model.TogglePower is true.
type ToggleState struct {
	On bool `json:"on" yaml:"on"`
}

// BuildFrame encodes req on top of template for the given model.
//
// Field order matters: each step clears its bits before setting them.
//
//	[13]  mode code (low nibble) or power toggle
//	[14]  temperature << 1
//	[16]  vane (low nibble) | fan << 4
//	[26]  checksum of [0..25]
//
// The template is never modified. The returned ToggleState differs from
// toggle only when "off" is encoded for a toggle-power model that was
// recorded as on.
func BuildFrame(template Frame, req Request, model Model, toggle ToggleState) (Frame, ToggleState) {
	frame := template

	toggle = encodeModePower(&frame, req.Mode, model, toggle)
	encodeTemperature(&frame, req.Mode, req.Temperature)
	encodeVaneFan(&frame, req.Mode, req.Swing, req.Fan)

	frame.Seal()

	logging.Debug("Encoded frame",
		zap.String("model", model.String()),
		zap.String("mode", req.Mode.String()),
		zap.String("frame", frame.String()),
	)

	return frame, toggle
}

// Build encodes req on the default template.
func Build(req Request, model Model, toggle ToggleState) (Frame, ToggleState) {
	return BuildFrame(Template, req, model, toggle)
}

func encodeModePower(frame *Frame, mode Mode, model Model, toggle ToggleState) ToggleState {
	frame[ByteModePower] &^= modeNibbleMask

	if code, ok := mode.Code(); ok {
		frame[ByteModePower] |= code & 0x07
		return toggle
	}

	if mode != ModeOff {
		// Unknown mode: cleared nibble is the baseline
		return toggle
	}

	frame[ByteModePower] &= powerBit
	if model.TogglePower() {
		logging.Warn("Model has no declarative power, only a toggle",
			zap.String("model", model.String()),
			zap.Bool("recorded_on", toggle.On),
		)
		if toggle.On {
			frame[ByteModePower] |= powerBit
			toggle.On = false
		}
	}
	return toggle
}

func encodeTemperature(frame *Frame, mode Mode, requested float64) {
	frame[ByteTemp] &^= tempMask

	temp := TempFanOnly
	if mode != ModeFanOnly {
		temp = ClampTemperature(requested)
	}
	frame[ByteTemp] |= byte(temp<<tempShift) & tempMask
}

func encodeVaneFan(frame *Frame, mode Mode, swing SwingMode, fan FanSpeed) {
	frame[ByteVaneFan] = 0
	frame[ByteVaneFan] |= byte(SelectVane(mode, swing))

	if code, ok := fan.Code(); ok {
		frame[ByteVaneFan] |= (code & 0x0F) << fanShift
	}
}

// ClampTemperature clamps t to [TempMin, TempMax] and rounds half away from
// zero. NaN maps to TempMin.
func ClampTemperature(t float64) int {
	if math.IsNaN(t) || t < TempMin {
		return TempMin
	}
	if t > TempMax {
		return TempMax
	}
	return int(math.Round(t))
}

// SelectVane picks the vane position for a mode and swing setting. Without
// swing, heat blows down from the floor and everything else blows up from the
// ceiling. Swing only takes effect in cool and dry.
func SelectVane(mode Mode, swing SwingMode) Vane {
	if swing != SwingOff {
		return VaneAuto
	}
	if mode == ModeHeat {
		return VaneDown
	}
	return VaneUp
}
