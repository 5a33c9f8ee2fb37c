package transmit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/climateir/internal/protocol"
)

func scenarioEnvelope(t *testing.T) Envelope {
	t.Helper()
	req := protocol.Request{
		Mode:        protocol.ModeCool,
		Temperature: 22,
		Fan:         protocol.FanHigh,
		Swing:       protocol.SwingOff,
	}
	frame, _ := protocol.Build(req, protocol.ModelDKE, protocol.ToggleState{})
	return NewEnvelope("living-room", protocol.ModelDKE, frame, protocol.Serialize(frame))
}

func TestNewEnvelope(t *testing.T) {
	env := scenarioEnvelope(t)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "living-room", env.Device)
	assert.Equal(t, "DKE", env.Model)
	assert.Equal(t, protocol.CarrierFrequency, env.CarrierHz)
	assert.Len(t, env.Raw, 19*8*2)
	assert.True(t, strings.HasSuffix(env.Frame, "91"))
	assert.False(t, env.CreatedAt.IsZero())

	other := scenarioEnvelope(t)
	assert.NotEqual(t, env.ID, other.ID)
}

func TestEncodeRaw(t *testing.T) {
	env := scenarioEnvelope(t)

	data, err := Encode(FormatRaw, env)
	require.NoError(t, err)

	line := string(data)
	require.True(t, strings.HasSuffix(line, "\n"))
	assert.True(t, strings.HasPrefix(line, "38000:433,"))
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, ",-10433,")

	fields := strings.Split(strings.TrimSpace(strings.SplitN(line, ":", 2)[1]), ",")
	assert.Len(t, fields, len(env.Raw))

	// Empty format defaults to raw.
	def, err := Encode("", env)
	require.NoError(t, err)
	assert.Equal(t, data, def)
}

func TestEncodeJSON(t *testing.T) {
	env := scenarioEnvelope(t)

	data, err := Encode(FormatJSON, env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, env.ID, decoded["id"])
	assert.Equal(t, "living-room", decoded["device"])
	assert.Equal(t, float64(38000), decoded["carrier_hz"])
	assert.NotContains(t, decoded, "Program")
}

func TestEncodeMode2(t *testing.T) {
	env := scenarioEnvelope(t)

	data, err := Encode(FormatMode2, env)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, len(env.Raw)+1)
	assert.Equal(t, "carrier 38000", lines[0])
	assert.Equal(t, "pulse 433", lines[1])
	assert.Equal(t, "space 433", lines[2])
	assert.Equal(t, "space 10433", lines[128])
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := Encode("pronto", Envelope{})
	assert.Error(t, err)
}
