// Package transmit delivers encoded pulse programs to IR transmitters.
//
// A Sink receives one complete Envelope per command. Every implementation
// formats the whole program before touching its transport, so a transmitter
// either gets the full program or nothing.
package transmit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/climateir/internal/protocol"
)

// Sink accepts pulse programs for transmission.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Transmit hands a complete program to the transmitter.
	Transmit(ctx context.Context, env Envelope) error
}

// Envelope is a pulse program plus the context it was encoded in.
type Envelope struct {
	ID        string           `json:"id"`
	Device    string           `json:"device"`
	Model     string           `json:"model"`
	Frame     string           `json:"frame"`
	CarrierHz int              `json:"carrier_hz"`
	Raw       []int32          `json:"raw"`
	CreatedAt time.Time        `json:"created_at"`
	Program   protocol.Program `json:"-"`
}

// NewEnvelope wraps a program for device.
func NewEnvelope(device string, model protocol.Model, frame protocol.Frame, program protocol.Program) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Device:    device,
		Model:     model.String(),
		Frame:     frame.Hex(),
		CarrierHz: program.CarrierHz,
		Raw:       program.Raw(),
		CreatedAt: time.Now().UTC(),
		Program:   program,
	}
}

// Error describes a failed transmission.
type Error struct {
	Sink      string // Sink name
	Op        string // "connect", "open", "write", "publish"
	Err       error  // Underlying error
	Retryable bool   // Whether retrying later may succeed
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s sink: %s failed: %v", e.Sink, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
