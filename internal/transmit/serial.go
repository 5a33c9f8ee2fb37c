package transmit

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Compile-time interface check.
var _ Sink = (*SerialSink)(nil)

// DefaultBaudRate is the default baud rate for USB IR blasters.
const DefaultBaudRate = 115200

// SerialConfig holds the configuration for a serial sink.
type SerialConfig struct {
	// Port is the serial port path (e.g., "/dev/ttyUSB0" or "COM3").
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate,omitempty"`
	// Format defaults to FormatRaw, one "carrier:timings" line per program.
	Format string `yaml:"format,omitempty"`
}

// SerialSink writes programs to a USB IR blaster. The port is opened for the
// duration of a single transmission.
type SerialSink struct {
	cfg  SerialConfig
	mu   sync.Mutex
	open func(port string, mode *serial.Mode) (io.WriteCloser, error)
}

// NewSerialSink creates a serial sink.
func NewSerialSink(cfg SerialConfig) *SerialSink {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Format == "" {
		cfg.Format = FormatRaw
	}
	return &SerialSink{cfg: cfg, open: openSerial}
}

func openSerial(port string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(port, mode)
}

func (s *SerialSink) Name() string { return "serial" }

func (s *SerialSink) Transmit(ctx context.Context, env Envelope) error {
	if s.cfg.Port == "" {
		return &Error{Sink: s.Name(), Op: "open", Err: errors.New("serial port is required")}
	}

	data, err := Encode(s.cfg.Format, env)
	if err != nil {
		return &Error{Sink: s.Name(), Op: "encode", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	port, err := s.open(s.cfg.Port, &serial.Mode{BaudRate: s.cfg.BaudRate})
	if err != nil {
		return &Error{Sink: s.Name(), Op: "open", Err: err, Retryable: true}
	}
	defer port.Close()

	if _, err := port.Write(data); err != nil {
		return &Error{Sink: s.Name(), Op: "write", Err: err, Retryable: true}
	}
	return nil
}

// ListPorts returns the serial ports present on this machine.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
