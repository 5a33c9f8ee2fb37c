package protocol

import (
	"fmt"
	"time"
)

// IR timing parameters
const (
	CarrierFrequency = 38_000 // Hz

	// HeaderMark and HeaderSpace are the handset's leader pulse. Serialize does
	// not emit them; they are kept for captures and bridges that add their own
	// leader.
	HeaderMark  = 3500 * time.Microsecond
	HeaderSpace = 1800 * time.Microsecond

	BitMark      = 433 * time.Microsecond
	BitOneSpace  = 1300 * time.Microsecond
	BitZeroSpace = 433 * time.Microsecond
	SectionGap   = 10000 * time.Microsecond
)

// defaultTransmitLength is the number of bytes sent by default: the frame
// minus its trailing 8 bytes.
const defaultTransmitLength = FrameLength - 8

// Pulse is one mark followed by one space.
type Pulse struct {
	Mark  time.Duration `json:"mark"`
	Space time.Duration `json:"space"`
}

// Program is a carrier frequency plus the ordered pulses to transmit. Gap is
// an extra space inserted before Pulses[GapBefore]; GapBefore is -1 when there
// is no gap.
type Program struct {
	CarrierHz int           `json:"carrier_hz"`
	Pulses    []Pulse       `json:"pulses"`
	GapBefore int           `json:"gap_before"`
	Gap       time.Duration `json:"gap"`
}

// Emitter receives a program one mark or space at a time.
type Emitter interface {
	SetCarrier(hz int)
	Mark(d time.Duration)
	Space(d time.Duration)
}

type serializeConfig struct {
	length int
}

// SerializeOption customizes Serialize.
type SerializeOption func(*serializeConfig)

// WithFullFrame transmits all 27 bytes, checksum included, instead of the
// default 19.
func WithFullFrame() SerializeOption {
	return func(c *serializeConfig) {
		c.length = FrameLength
	}
}

// Serialize converts a frame into a pulse program. Each byte is sent least
// significant bit first; a section gap precedes the ninth byte.
func Serialize(f Frame, opts ...SerializeOption) Program {
	cfg := serializeConfig{length: defaultTransmitLength}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := Program{
		CarrierHz: CarrierFrequency,
		Pulses:    make([]Pulse, 0, cfg.length*8),
		GapBefore: -1,
	}

	for i := 0; i < cfg.length; i++ {
		if i == SectionLength {
			p.GapBefore = len(p.Pulses)
			p.Gap = SectionGap
		}
		b := f[i]
		for bit := 0; bit < 8; bit++ {
			space := BitZeroSpace
			if b&(1<<bit) != 0 {
				space = BitOneSpace
			}
			p.Pulses = append(p.Pulses, Pulse{Mark: BitMark, Space: space})
		}
	}

	return p
}

// Replay feeds the program to e in transmission order.
func (p Program) Replay(e Emitter) {
	e.SetCarrier(p.CarrierHz)
	for i, pulse := range p.Pulses {
		if i == p.GapBefore {
			e.Space(p.Gap)
		}
		e.Mark(pulse.Mark)
		e.Space(pulse.Space)
	}
}

// Raw returns alternating signed timings in microseconds: positive for marks,
// negative for spaces. The section gap is merged into the space before it so
// the sequence strictly alternates; a gap before the first pulse becomes a
// leading space. The absolute values always sum to Duration.
func (p Program) Raw() []int32 {
	raw := make([]int32, 0, len(p.Pulses)*2+1)
	gap := int32(p.Gap / time.Microsecond)
	for i, pulse := range p.Pulses {
		if i == p.GapBefore {
			if len(raw) > 0 {
				raw[len(raw)-1] -= gap
			} else {
				raw = append(raw, -gap)
			}
		}
		raw = append(raw, int32(pulse.Mark/time.Microsecond), -int32(pulse.Space/time.Microsecond))
	}
	return raw
}

// Duration returns the total on-air time of the program.
func (p Program) Duration() time.Duration {
	var total time.Duration
	for _, pulse := range p.Pulses {
		total += pulse.Mark + pulse.Space
	}
	if p.GapBefore >= 0 {
		total += p.Gap
	}
	return total
}

func (p Program) String() string {
	return fmt.Sprintf("Program{carrier=%dHz, pulses=%d, gap_before=%d, duration=%s}",
		p.CarrierHz, len(p.Pulses), p.GapBefore, p.Duration())
}
