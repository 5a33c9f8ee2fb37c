package protocol

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrame_CoolScenario(t *testing.T) {
	req := Request{Mode: ModeCool, Temperature: 22.0, Fan: FanHigh, Swing: SwingOff}

	frame, toggle := BuildFrame(Template, req, ModelNKE, ToggleState{})

	want := Template
	want[13] = 0x03
	want[14] = 22 << 1
	want[16] = byte(VaneUp) | 6<<4
	want[26] = 0x91

	assert.Equal(t, want, frame)
	assert.Equal(t, byte(0x61), frame[16])
	assert.Equal(t, ToggleState{}, toggle)
	assert.True(t, frame.Valid())
}

func TestBuildFrame_DoesNotMutateTemplate(t *testing.T) {
	template := Template
	template[13] = 0xA5

	_, _ = BuildFrame(template, Request{Mode: ModeHeat, Temperature: 25}, ModelDKE, ToggleState{})

	assert.Equal(t, byte(0xA5), template[13])
	assert.Equal(t, byte(0x00), Template[26])
}

func TestBuildFrame_ModeCodes(t *testing.T) {
	tests := []struct {
		mode Mode
		want byte
	}{
		{ModeAuto, 0},
		{ModeDry, 2},
		{ModeCool, 3},
		{ModeHeat, 4},
		{ModeFanOnly, 6},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			frame, _ := Build(Request{Mode: tt.mode, Temperature: 24}, ModelLKE, ToggleState{})
			assert.Equal(t, tt.want, frame.ModeCode())
		})
	}
}

func TestBuildFrame_ModeClearsPreviousNibble(t *testing.T) {
	template := Template
	template[13] = 0xFF

	frame, _ := BuildFrame(template, Request{Mode: ModeDry, Temperature: 20}, ModelNKE, ToggleState{})

	assert.Equal(t, byte(0xF2), frame[13])
}

func TestBuildFrame_UnknownModeLeavesBaseline(t *testing.T) {
	frame, toggle := Build(Request{Mode: Mode(42), Temperature: 20}, ModelCKP, ToggleState{On: true})

	assert.Equal(t, byte(0), frame.ModeCode())
	assert.True(t, toggle.On, "unknown mode must not touch the toggle state")
	assert.True(t, frame.Valid())
}

func TestBuildFrame_OffDeclarativeModel(t *testing.T) {
	frame, toggle := Build(Request{Mode: ModeOff, Temperature: 20}, ModelNKE, ToggleState{On: true})

	assert.False(t, frame.PowerBit())
	assert.Equal(t, byte(0), frame.ModeCode())
	assert.True(t, toggle.On, "declarative models never change the toggle state")
}

func TestBuildFrame_ToggleModelOffTwice(t *testing.T) {
	req := Request{Mode: ModeOff, Temperature: 22}

	first, toggle := Build(req, ModelCKP, ToggleState{On: true})
	require.True(t, first.PowerBit(), "first off while on must pulse the toggle bit")
	require.False(t, toggle.On)

	second, toggle := Build(req, ModelCKP, toggle)
	assert.False(t, second.PowerBit(), "second off while off must leave the bit clear")
	assert.False(t, toggle.On)
}

func TestBuildFrame_ToggleModelOnModesKeepState(t *testing.T) {
	for _, mode := range []Mode{ModeAuto, ModeCool, ModeHeat, ModeDry, ModeFanOnly} {
		_, toggle := Build(Request{Mode: mode, Temperature: 22}, ModelCKP, ToggleState{On: true})
		assert.True(t, toggle.On, mode.String())

		_, toggle = Build(Request{Mode: mode, Temperature: 22}, ModelCKP, ToggleState{})
		assert.False(t, toggle.On, mode.String())
	}
}

func TestBuildFrame_Temperature(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		in   float64
		want int
	}{
		{"in range", ModeCool, 22, 22},
		{"rounds down", ModeCool, 22.4, 22},
		{"rounds half up", ModeHeat, 22.5, 23},
		{"below min", ModeHeat, 5, TempMin},
		{"above max", ModeCool, 45, TempMax},
		{"exact min", ModeAuto, 16, 16},
		{"exact max", ModeAuto, 30, 30},
		{"negative", ModeDry, -10, TempMin},
		{"nan", ModeCool, math.NaN(), TempMin},
		{"fan only ignores request", ModeFanOnly, 18, TempFanOnly},
		{"fan only ignores out of range", ModeFanOnly, 99, TempFanOnly},
		{"off still encodes temperature", ModeOff, 24, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, _ := Build(Request{Mode: tt.mode, Temperature: tt.in}, ModelNKE, ToggleState{})
			assert.Equal(t, tt.want, frame.TemperatureCode())
			assert.Equal(t, byte(tt.want<<1), frame[14]&tempMask)
		})
	}
}

func TestBuildFrame_TemperatureProperty(t *testing.T) {
	for tenths := 0; tenths <= 400; tenths++ {
		temp := float64(tenths) / 10
		frame, _ := Build(Request{Mode: ModeCool, Temperature: temp}, ModelNKE, ToggleState{})

		want := int(math.Round(math.Min(math.Max(temp, TempMin), TempMax)))
		require.Equal(t, want, frame.TemperatureCode(), "temperature %.1f", temp)
		// Temperature never leaks into the mode byte
		require.Equal(t, byte(0x03), frame[13], "temperature %.1f", temp)
	}
}

func TestBuildFrame_Vane(t *testing.T) {
	for _, mode := range Modes {
		for _, swing := range []SwingMode{SwingOff, SwingVertical} {
			t.Run(fmt.Sprintf("%s/%s", mode, swing), func(t *testing.T) {
				frame, _ := Build(Request{Mode: mode, Temperature: 22, Swing: swing}, ModelNKE, ToggleState{})

				want := VaneUp
				switch {
				case swing == SwingVertical:
					want = VaneAuto
				case mode == ModeHeat:
					want = VaneDown
				}
				assert.Equal(t, want, frame.VaneCode())
			})
		}
	}
}

func TestBuildFrame_FanCodes(t *testing.T) {
	tests := []struct {
		fan  FanSpeed
		want byte
	}{
		{FanAuto, 10},
		{FanMinimum, 3},
		{FanLow, 4},
		{FanMedium, 5},
		{FanHigh, 6},
		{FanMaximum, 7},
	}

	for _, tt := range tests {
		t.Run(tt.fan.String(), func(t *testing.T) {
			for _, swing := range []SwingMode{SwingOff, SwingVertical} {
				frame, _ := Build(Request{Mode: ModeCool, Temperature: 22, Fan: tt.fan, Swing: swing}, ModelNKE, ToggleState{})
				assert.Equal(t, tt.want, frame.FanCode())
				assert.Equal(t, SelectVane(ModeCool, swing), frame.VaneCode(), "fan must not disturb vane bits")
			}
		})
	}
}

func TestBuildFrame_UnknownFanLeavesZeroNibble(t *testing.T) {
	frame, _ := Build(Request{Mode: ModeHeat, Temperature: 22, Fan: FanSpeed(99)}, ModelNKE, ToggleState{})

	assert.Equal(t, byte(0), frame.FanCode())
	assert.Equal(t, VaneDown, frame.VaneCode())
}

func TestBuildFrame_Idempotent(t *testing.T) {
	req := Request{Mode: ModeHeat, Temperature: 21.3, Fan: FanLow, Swing: SwingVertical}

	for _, model := range Models {
		if model.TogglePower() {
			continue
		}
		a, _ := Build(req, model, ToggleState{})
		b, _ := Build(req, model, ToggleState{})
		assert.Equal(t, a, b, model.String())
	}
}

func TestBuildFrame_OnlyComputedBytesChange(t *testing.T) {
	computed := map[int]bool{13: true, 14: true, 16: true, 26: true}

	frame, _ := Build(Request{Mode: ModeDry, Temperature: 28, Fan: FanMaximum, Swing: SwingVertical}, ModelRKR, ToggleState{})

	for i := range frame {
		if computed[i] {
			continue
		}
		assert.Equal(t, Template[i], frame[i], "byte %d", i)
	}
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 16, ClampTemperature(math.Inf(-1)))
	assert.Equal(t, 30, ClampTemperature(math.Inf(1)))
	assert.Equal(t, 19, ClampTemperature(18.5))
	assert.Equal(t, 18, ClampTemperature(18.49))
}
