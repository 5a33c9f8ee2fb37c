package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FrameLength is the size of a Panasonic AC frame in bytes (216 bits).
const FrameLength = 27

// Byte offsets of the computed fields
const (
	ByteModePower  = 13
	ByteTemp       = 14
	ByteVaneFan    = 16
	ByteChecksum   = 26
	SectionLength  = 8 // first transmitted section
	modeNibbleMask = 0x0F
	powerBit       = 0x01
	tempMask       = 0x3E // b1-b5
	tempShift      = 1
	vaneMask       = 0x0F
	fanShift       = 4
)

// Frame is a complete Panasonic AC command.
type Frame [FrameLength]byte

// Template is the static frame every command is built from. Byte 26 is a
// placeholder that BuildFrame always overwrites.
var Template = Frame{
	0x02, 0x20, 0xE0, 0x04, 0x00, 0x00, 0x00, 0x06, 0x02,
	0x20, 0xE0, 0x04, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x0E, 0xE0, 0x00, 0x00, 0x81, 0x00, 0x00, 0x00,
}

// ParseFrame copies b into a Frame. b must be exactly FrameLength bytes.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameLength {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(b), FrameLength)
	}
	copy(f[:], b)
	return f, nil
}

// ParseFrameHex parses a hex string, ignoring spaces, colons and a 0x prefix.
func ParseFrameHex(s string) (Frame, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame hex: %w", err)
	}
	return ParseFrame(b)
}

// MustFrame is like ParseFrame but panics on a length mismatch. Passing a
// buffer of the wrong size is a programming error.
func MustFrame(b []byte) Frame {
	f, err := ParseFrame(b)
	if err != nil {
		panic(err)
	}
	return f
}

// Bytes returns a copy of the frame as a slice.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameLength)
	copy(b, f[:])
	return b
}

// Hex returns the frame as an uppercase space separated hex string.
func (f Frame) Hex() string {
	var sb strings.Builder
	for i, b := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{mode=0x%X, power=%v, temp=%d, vane=%s, fan=0x%X, checksum=0x%02X}",
		f.ModeCode(), f.PowerBit(), f.TemperatureCode(), f.VaneCode(), f.FanCode(), f[ByteChecksum])
}

// PowerBit reports whether B13 b0 is set.
func (f Frame) PowerBit() bool {
	return f[ByteModePower]&powerBit != 0
}

// ModeCode returns the low nibble of B13.
func (f Frame) ModeCode() byte {
	return f[ByteModePower] & modeNibbleMask
}

// TemperatureCode returns the set-point stored in B14 b1-b5.
func (f Frame) TemperatureCode() int {
	return int(f[ByteTemp]&tempMask) >> tempShift
}

// VaneCode returns the vertical vane position in the low nibble of B16.
func (f Frame) VaneCode() Vane {
	return Vane(f[ByteVaneFan] & vaneMask)
}

// FanCode returns the fan speed code in the high nibble of B16.
func (f Frame) FanCode() byte {
	return f[ByteVaneFan] >> fanShift
}
