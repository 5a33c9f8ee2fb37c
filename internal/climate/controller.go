package climate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
)

// ErrNoSink is returned by Apply when the controller has nowhere to send.
var ErrNoSink = errors.New("controller has no sink")

// Options configures a Controller.
type Options struct {
	Name  string
	Model protocol.Model
	Sink  transmit.Sink

	// MinInterval is the minimum spacing between transmissions. Zero
	// disables pacing.
	MinInterval time.Duration

	// PowerOn seeds the recorded power state of toggle-power models.
	PowerOn bool

	// FullFrame transmits all 27 bytes instead of the default 19.
	FullFrame bool

	Metrics *metrics.Metrics

	// OnPowerChange is called after the recorded toggle state changed
	// because a transmission succeeded.
	OnPowerChange func(name string, on bool)
}

// State is a snapshot of a controller.
type State struct {
	Name          string           `json:"name"`
	Model         protocol.Model   `json:"model"`
	Sink          string           `json:"sink"`
	Request       protocol.Request `json:"request"`
	PowerOn       bool             `json:"power_on"`
	Traits        Traits           `json:"traits"`
	LastFrame     string           `json:"last_frame,omitempty"`
	LastTransmit  time.Time        `json:"last_transmit"`
	LastError     string           `json:"last_error,omitempty"`
	Transmissions int              `json:"transmissions"`
}

// Result describes one successful Apply.
type Result struct {
	Frame    protocol.Frame
	Program  protocol.Program
	Envelope transmit.Envelope
}

// Controller drives one air conditioner.
type Controller struct {
	opts    Options
	traits  Traits
	limiter *rate.Limiter

	// sendMu serializes Apply; mu guards the fields below.
	sendMu        sync.Mutex
	mu            sync.Mutex
	toggle        protocol.ToggleState
	request       protocol.Request
	lastFrame     protocol.Frame
	hasFrame      bool
	lastTransmit  time.Time
	lastErr       error
	transmissions int
}

// New creates a controller. The initial request is the unit switched off at
// the lowest temperature.
func New(opts Options) *Controller {
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Controller{
		opts:    opts,
		traits:  TraitsFor(opts.Model),
		limiter: rate.NewLimiter(limit, 1),
		toggle:  protocol.ToggleState{On: opts.PowerOn},
		request: protocol.Request{
			Mode:        protocol.ModeOff,
			Temperature: protocol.TempMin,
			Fan:         protocol.FanAuto,
			Swing:       protocol.SwingOff,
		},
	}
}

func (c *Controller) Name() string { return c.opts.Name }

func (c *Controller) Model() protocol.Model { return c.opts.Model }

func (c *Controller) Traits() Traits { return c.traits }

// Normalize returns req with out-of-range values replaced by what would be
// encoded: temperatures are clamped and rounded, unknown enumerations fall
// back to their defaults.
func (c *Controller) Normalize(req protocol.Request) protocol.Request {
	if _, ok := req.Mode.Code(); !ok && req.Mode != protocol.ModeOff {
		logging.Warn("Unknown mode, sending with cleared mode bits",
			zap.String("device", c.opts.Name),
			zap.Stringer("mode", req.Mode),
		)
	}
	if _, ok := req.Fan.Code(); !ok {
		logging.Warn("Unknown fan speed, sending without fan bits",
			zap.String("device", c.opts.Name),
			zap.Stringer("fan", req.Fan),
		)
	}
	if req.Swing != protocol.SwingOff && req.Swing != protocol.SwingVertical {
		logging.Warn("Unknown swing mode, treating as vertical",
			zap.String("device", c.opts.Name),
			zap.Stringer("swing", req.Swing),
		)
	}

	if req.Mode == protocol.ModeFanOnly {
		req.Temperature = protocol.TempFanOnly
	} else {
		req.Temperature = float64(protocol.ClampTemperature(req.Temperature))
	}
	return req
}

// Encode builds the frame and program for req without transmitting or
// changing any state.
func (c *Controller) Encode(req protocol.Request) (protocol.Frame, protocol.Program) {
	c.mu.Lock()
	toggle := c.toggle
	c.mu.Unlock()

	frame, _ := protocol.Build(req, c.opts.Model, toggle)
	return frame, protocol.Serialize(frame, c.serializeOptions()...)
}

func (c *Controller) serializeOptions() []protocol.SerializeOption {
	if c.opts.FullFrame {
		return []protocol.SerializeOption{protocol.WithFullFrame()}
	}
	return nil
}

// Apply encodes req, waits for the pacing limiter and transmits the program.
// The stored request and toggle state only change when the sink accepted the
// whole program.
func (c *Controller) Apply(ctx context.Context, req protocol.Request) (Result, error) {
	if c.opts.Sink == nil {
		return Result{}, ErrNoSink
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	req = c.Normalize(req)
	c.mu.Lock()
	recorded := c.toggle
	c.mu.Unlock()

	frame, toggle := protocol.Build(req, c.opts.Model, recorded)
	program := protocol.Serialize(frame, c.serializeOptions()...)
	c.opts.Metrics.ObserveEncode(c.opts.Model.String(), req.Mode.String())
	logging.LogFrame("Frame for "+c.opts.Name, frame.Bytes())

	sinkName := c.opts.Sink.Name()
	if err := c.limiter.Wait(ctx); err != nil {
		c.opts.Metrics.ObserveTransmit(sinkName, metrics.ResultRateLimited, 0)
		return Result{}, fmt.Errorf("waiting to transmit to %s: %w", c.opts.Name, err)
	}

	env := transmit.NewEnvelope(c.opts.Name, c.opts.Model, frame, program)
	start := time.Now()
	err := c.opts.Sink.Transmit(ctx, env)
	elapsed := time.Since(start)
	logging.LogTransmit(c.opts.Name, sinkName, len(program.Pulses), program.Duration(), err)

	if err != nil {
		c.opts.Metrics.ObserveTransmit(sinkName, metrics.ResultError, elapsed)
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return Result{}, fmt.Errorf("transmitting to %s: %w", c.opts.Name, err)
	}
	c.opts.Metrics.ObserveTransmit(sinkName, metrics.ResultOK, elapsed)

	c.mu.Lock()
	changed := toggle != recorded
	if changed {
		c.toggle = toggle
	}
	c.request = req
	c.lastFrame = frame
	c.hasFrame = true
	c.lastTransmit = env.CreatedAt
	c.lastErr = nil
	c.transmissions++
	c.mu.Unlock()

	if changed && c.opts.OnPowerChange != nil {
		c.opts.OnPowerChange(c.opts.Name, toggle.On)
	}

	return Result{Frame: frame, Program: program, Envelope: env}, nil
}

// OnReceive handles a captured IR signal. Decoding handset frames is not
// supported, so the signal is never consumed.
func (c *Controller) OnReceive(raw []int32) bool {
	if _, err := protocol.Decode(raw); err != nil {
		logging.Debug("Ignoring received signal",
			zap.String("device", c.opts.Name),
			zap.Int("timings", len(raw)),
			zap.Error(err),
		)
		return false
	}
	return false
}

// PowerOn reports the recorded power state. For toggle-power models this is
// what the next "off" command relies on; for the others it follows the last
// transmitted mode.
func (c *Controller) PowerOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.powerOnLocked()
}

func (c *Controller) powerOnLocked() bool {
	if c.opts.Model.TogglePower() {
		return c.toggle.On
	}
	return c.request.Mode != protocol.ModeOff
}

// SetPowerState records whether a toggle-power unit is currently on, for
// example after the user switched it with the handset.
func (c *Controller) SetPowerState(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggle.On = on
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Name:          c.opts.Name,
		Model:         c.opts.Model,
		Request:       c.request,
		PowerOn:       c.powerOnLocked(),
		Traits:        c.traits,
		LastTransmit:  c.lastTransmit,
		Transmissions: c.transmissions,
	}
	if c.opts.Sink != nil {
		s.Sink = c.opts.Sink.Name()
	}
	if c.hasFrame {
		s.LastFrame = c.lastFrame.Hex()
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}
