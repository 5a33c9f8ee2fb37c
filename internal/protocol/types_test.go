package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"off":      ModeOff,
		"AUTO":     ModeAuto,
		"cool":     ModeCool,
		"heat":     ModeHeat,
		"dry":      ModeDry,
		"fan_only": ModeFanOnly,
		"fan-only": ModeFanOnly,
		"fan":      ModeFanOnly,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("turbo")
	assert.True(t, errors.Is(err, ErrUnknownMode))
}

func TestParseFanSpeed(t *testing.T) {
	for _, f := range FanSpeeds {
		got, err := ParseFanSpeed(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFanSpeed("Maximum")
	require.NoError(t, err)
	assert.Equal(t, FanMaximum, got)

	_, err = ParseFanSpeed("quiet")
	assert.ErrorIs(t, err, ErrUnknownFan)
}

func TestParseSwingMode(t *testing.T) {
	got, err := ParseSwingMode("vertical")
	require.NoError(t, err)
	assert.Equal(t, SwingVertical, got)

	_, err = ParseSwingMode("horizontal")
	assert.ErrorIs(t, err, ErrUnknownSwing)
}

func TestParseModel(t *testing.T) {
	for _, m := range Models {
		got, err := ParseModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseModel("ckp")
	require.NoError(t, err)
	assert.True(t, got.TogglePower())

	_, err = ParseModel("XYZ")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestOnlyCKPTogglesPower(t *testing.T) {
	for _, m := range Models {
		assert.Equal(t, m == ModelCKP, m.TogglePower(), m.String())
	}
}

func TestUnknownEnumStrings(t *testing.T) {
	assert.Equal(t, "Mode(9)", Mode(9).String())
	assert.Equal(t, "FanSpeed(9)", FanSpeed(9).String())
	assert.Equal(t, "SwingMode(9)", SwingMode(9).String())
	assert.Equal(t, "Model(9)", Model(9).String())
	assert.Equal(t, "Vane(0x9)", Vane(9).String())
}

func TestRequestTextEncoding(t *testing.T) {
	req := Request{Mode: ModeFanOnly, Temperature: 23.5, Fan: FanMedium, Swing: SwingVertical}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"fan_only","temperature":23.5,"fan":"medium","swing":"vertical"}`, string(data))

	var decoded Request
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req, decoded)

	var fromYAML Request
	require.NoError(t, yaml.Unmarshal([]byte("mode: heat\ntemperature: 21\nfan: low\nswing: off\n"), &fromYAML))
	assert.Equal(t, Request{Mode: ModeHeat, Temperature: 21, Fan: FanLow, Swing: SwingOff}, fromYAML)
}
