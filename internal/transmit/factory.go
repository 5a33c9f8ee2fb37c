package transmit

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Sink types understood by New
const (
	TypeStdout    = "stdout"
	TypeFile      = "file"
	TypeMQTT      = "mqtt"
	TypeSerial    = "serial"
	TypeWebSocket = "websocket"
)

// ErrNoHub is returned by New for a websocket sink when no hub is running.
var ErrNoHub = errors.New("websocket sink requires a running server hub")

// Config selects and configures a sink.
type Config struct {
	Type   string       `yaml:"type"`
	Format string       `yaml:"format,omitempty"`
	Path   string       `yaml:"path,omitempty"`
	MQTT   MQTTConfig   `yaml:"mqtt,omitempty"`
	Serial SerialConfig `yaml:"serial,omitempty"`
}

// Validate checks the configuration without opening any transport.
func (c Config) Validate() error {
	if c.Format != "" {
		if _, err := Encode(c.Format, Envelope{}); err != nil {
			return err
		}
	}

	switch c.Type {
	case "", TypeStdout, TypeWebSocket:
		return nil
	case TypeFile:
		if c.Path == "" {
			return errors.New("file sink requires a path")
		}
	case TypeMQTT:
		if c.MQTT.Broker == "" {
			return errors.New("mqtt sink requires a broker")
		}
	case TypeSerial:
		if c.Serial.Port == "" {
			return errors.New("serial sink requires a port")
		}
	default:
		return fmt.Errorf("unknown sink type %q", c.Type)
	}
	return nil
}

// New builds the sink described by cfg. hub serves websocket sinks and may be
// nil when no server is running.
func New(cfg Config, hub Sink) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "", TypeStdout:
		return NewWriterSink(TypeStdout, stdout, cfg.Format), nil
	case TypeFile:
		return NewFileSink(cfg.Path, cfg.Format), nil
	case TypeMQTT:
		return NewMQTTSink(cfg.MQTT), nil
	case TypeSerial:
		sc := cfg.Serial
		if sc.Format == "" {
			sc.Format = cfg.Format
		}
		return NewSerialSink(sc), nil
	case TypeWebSocket:
		if hub == nil {
			return nil, ErrNoHub
		}
		return hub, nil
	}
	return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
}

// Close releases resources held by s, if it holds any.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var stdout io.Writer = os.Stdout
