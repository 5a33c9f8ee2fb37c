package ui

import (
	"fmt"
	"strings"

	"github.com/muurk/climateir/internal/protocol"
)

// ByteLabel describes what byte i of frame carries.
func ByteLabel(frame protocol.Frame, i int) string {
	switch {
	case i < protocol.SectionLength:
		return "header section"
	case i == protocol.ByteModePower:
		switch frame.ModeCode() {
		case 0:
			return "mode auto or off (0)"
		case 1:
			return "off, power toggle (1)"
		}
		return fmt.Sprintf("mode %s (%d)", modeName(frame.ModeCode()), frame.ModeCode())
	case i == protocol.ByteTemp:
		return fmt.Sprintf("temperature %d°C", frame.TemperatureCode())
	case i == protocol.ByteVaneFan:
		return fmt.Sprintf("vane %s, fan %s", frame.VaneCode(), fanName(frame.FanCode()))
	case i == protocol.ByteChecksum:
		if frame.Valid() {
			return "checksum (valid)"
		}
		return fmt.Sprintf("checksum (invalid, want %02X)", protocol.Checksum(frame))
	case i >= protocol.FrameLength-8:
		return "trailer (not transmitted by default)"
	default:
		return ""
	}
}

func modeName(code byte) string {
	for _, m := range protocol.Modes {
		if c, ok := m.Code(); ok && c == code {
			return m.String()
		}
	}
	return "unknown"
}

func fanName(code byte) string {
	for _, f := range protocol.FanSpeeds {
		if c, ok := f.Code(); ok && c == code {
			return f.String()
		}
	}
	return fmt.Sprintf("code %d", code)
}

// RenderFrameDump renders one line per byte: index, hex, bits and the field
// it carries. Bytes that differ from the template are highlighted.
func RenderFrameDump(frame protocol.Frame) string {
	var b strings.Builder
	for i, v := range frame {
		hexStyle := ByteHexStyle
		if v != protocol.Template[i] {
			hexStyle = ByteChangedStyle
		}

		b.WriteString(ByteIndexStyle.Render(fmt.Sprintf("%d", i)))
		b.WriteString("  ")
		b.WriteString(hexStyle.Render(fmt.Sprintf("%02X", v)))
		b.WriteString(ByteBitsStyle.Render(fmt.Sprintf("%08b", v)))
		if label := ByteLabel(frame, i); label != "" {
			b.WriteString(FieldLabelStyle.Render(label))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
