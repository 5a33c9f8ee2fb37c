package transmit

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/logging"
)

// Compile-time interface check.
var _ Sink = (*MQTTSink)(nil)

const (
	// DefaultTopicPrefix is the default MQTT topic prefix.
	DefaultTopicPrefix = "climateir"

	// DefaultMQTTTimeout bounds connect and publish round trips.
	DefaultMQTTTimeout = 10 * time.Second
)

// MQTTConfig holds the configuration for an MQTT sink.
type MQTTConfig struct {
	// Broker is the MQTT broker URL (e.g., "tcp://broker.local:1883").
	Broker   string `yaml:"broker"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	UseTLS   bool   `yaml:"tls,omitempty"`
	// ClientID defaults to "climateir-<device>".
	ClientID string `yaml:"client_id,omitempty"`
	// Programs are published to "{TopicPrefix}/{device}/ir".
	TopicPrefix string        `yaml:"topic_prefix,omitempty"`
	QoS         byte          `yaml:"qos,omitempty"`
	Retain      bool          `yaml:"retain,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// MQTTSink publishes JSON envelopes to an MQTT broker, where an IR bridge
// (ESPHome, Tasmota or similar) picks them up.
type MQTTSink struct {
	cfg       MQTTConfig
	mu        sync.Mutex
	client    paho.Client
	newClient func(*paho.ClientOptions) paho.Client
}

// NewMQTTSink creates an MQTT sink. The broker connection is opened on the
// first transmission.
func NewMQTTSink(cfg MQTTConfig) *MQTTSink {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultMQTTTimeout
	}
	if cfg.QoS > 2 {
		cfg.QoS = 1
	}
	return &MQTTSink{cfg: cfg, newClient: paho.NewClient}
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Topic returns the topic programs for device are published on.
func (s *MQTTSink) Topic(device string) string {
	return s.cfg.TopicPrefix + "/" + device + "/ir"
}

// Transmit publishes env and waits for the broker to acknowledge it.
func (s *MQTTSink) Transmit(ctx context.Context, env Envelope) error {
	payload, err := Encode(FormatJSON, env)
	if err != nil {
		return &Error{Sink: s.Name(), Op: "encode", Err: err}
	}

	client, err := s.connect(env.Device)
	if err != nil {
		return err
	}

	token := client.Publish(s.Topic(env.Device), s.cfg.QoS, s.cfg.Retain, payload)
	if err := waitToken(ctx, token, s.cfg.Timeout); err != nil {
		return &Error{Sink: s.Name(), Op: "publish", Err: err, Retryable: true}
	}

	logging.Debug("Published pulse program",
		zap.String("topic", s.Topic(env.Device)),
		zap.String("id", env.ID),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

func (s *MQTTSink) connect(device string) (paho.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.client.IsConnected() {
		return s.client, nil
	}
	if s.cfg.Broker == "" {
		return nil, &Error{Sink: s.Name(), Op: "connect", Err: errors.New("broker URL is required")}
	}

	clientID := s.cfg.ClientID
	if clientID == "" {
		clientID = "climateir-" + device
	}

	opts := paho.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(s.cfg.Timeout).
		SetKeepAlive(60 * time.Second).
		SetCleanSession(true)

	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if s.cfg.Password != "" {
		opts.SetPassword(s.cfg.Password)
	}
	if s.cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := s.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(s.cfg.Timeout) {
		return nil, &Error{Sink: s.Name(), Op: "connect", Err: errors.New("connection timeout"), Retryable: true}
	}
	if err := token.Error(); err != nil {
		return nil, &Error{Sink: s.Name(), Op: "connect", Err: fmt.Errorf("connecting to broker: %w", err), Retryable: true}
	}

	logging.Info("Connected to MQTT broker", zap.String("broker", s.cfg.Broker), zap.String("client_id", clientID))
	s.client = client
	return client, nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Disconnect(250)
		s.client = nil
	}
	return nil
}

func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timeout waiting for broker")
	}
}
