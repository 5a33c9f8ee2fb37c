package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/climateir/internal/protocol"
)

func TestByteLabel(t *testing.T) {
	cool, _ := protocol.Build(protocol.Request{
		Mode:        protocol.ModeCool,
		Temperature: 22,
		Fan:         protocol.FanHigh,
		Swing:       protocol.SwingOff,
	}, protocol.ModelDKE, protocol.ToggleState{})
	off, _ := protocol.Build(protocol.Request{Mode: protocol.ModeOff}, protocol.ModelDKE, protocol.ToggleState{})

	broken := cool
	broken[protocol.ByteChecksum]++

	tests := []struct {
		name  string
		frame protocol.Frame
		index int
		want  string
	}{
		{"header", cool, 0, "header section"},
		{"mode", cool, protocol.ByteModePower, "mode cool (3)"},
		{"off is ambiguous", off, protocol.ByteModePower, "mode auto or off (0)"},
		{"temperature", cool, protocol.ByteTemp, "temperature 22°C"},
		{"vane and fan", cool, protocol.ByteVaneFan, "fan high"},
		{"valid checksum", cool, protocol.ByteChecksum, "checksum (valid)"},
		{"invalid checksum", broken, protocol.ByteChecksum, "want 91"},
		{"trailer", cool, protocol.FrameLength - 2, "trailer"},
		{"unlabelled", cool, 15, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByteLabel(tt.frame, tt.index)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestRenderFrameDump(t *testing.T) {
	f, _ := protocol.Build(protocol.Request{
		Mode:        protocol.ModeCool,
		Temperature: 22,
		Fan:         protocol.FanHigh,
	}, protocol.ModelDKE, protocol.ToggleState{})

	out := RenderFrameDump(f)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, protocol.FrameLength)
	assert.Contains(t, lines[protocol.ByteTemp], "2C")
	assert.Contains(t, lines[protocol.ByteTemp], "00101100")
	assert.Contains(t, lines[protocol.ByteChecksum], "91")
}
