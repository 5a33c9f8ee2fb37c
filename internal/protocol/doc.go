// Package protocol implements the Panasonic air-conditioner infrared protocol.
//
// This package turns a small set of logical settings (mode, target temperature,
// fan speed, vane position) into the 27-byte frame a Panasonic handset sends,
// and serializes that frame into the mark/space timings an IR transmitter
// replays on a modulated carrier.
//
// # Frame Layout
//
// Frames are 216 bits long. Only a handful of fields are computed per request:
//   - B0-B12: static header 0x0220E004000000060220E00400
//   - B13: power bit (b0) and mode code (low nibble)
//   - B14: temperature set-point (b1-b5)
//   - B16: vertical vane position (b0-b3) and fan speed (b4-b7)
//   - B26: checksum, low byte of the sum of B0-B25
//
// Everything else is copied from Template. Bytes 17-25 carry timers, quiet and
// powerful flags and model specific markers; they stay at their template values.
//
// # Usage Example - Encoding
//
//	req := protocol.Request{
//	    Mode:        protocol.ModeCool,
//	    Temperature: 22,
//	    Fan:         protocol.FanHigh,
//	    Swing:       protocol.SwingOff,
//	}
//	frame, toggle := protocol.BuildFrame(protocol.Template, req, protocol.ModelNKE, protocol.ToggleState{})
//	program := protocol.Serialize(frame)
//
// # Pulse Timing
//
// Bits are sent least significant bit first. Every bit is a 433us mark followed
// by a 1300us space for a one or a 433us space for a zero. A 10ms section gap
// separates the first 8 bytes from the rest of the transmission.
//
// # Toggle Power Models
//
// CKP units have no declarative power bit: setting b0 of B13 flips the unit's
// power. The caller keeps a ToggleState per physical unit and threads it
// through BuildFrame.
//
// # Receiving
//
// Decoding received timings back into a frame is not supported; Decode always
// returns ErrDecodeUnsupported.
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use. ToggleState values are
// owned by the caller.
package protocol
