package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/config"
	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/transmit"
)

// newController builds the controller for a configured device. hub serves
// websocket sinks and may be nil outside "climateir serve".
func newController(reg *config.Registry, name string, hub transmit.Sink, m *metrics.Metrics) (*climate.Controller, transmit.Sink, error) {
	spec := reg.GetDevice(name)
	if spec == nil {
		return nil, nil, fmt.Errorf("%w: %s (known: %v)", config.ErrUnknownDevice, name, reg.DeviceNames())
	}

	sink, err := transmit.New(spec.Sink, hub)
	if errors.Is(err, transmit.ErrNoHub) {
		return nil, nil, fmt.Errorf("device %q sends to IR bridges; run 'climateir serve' instead", name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("device %q: %w", name, err)
	}

	c := climate.New(climate.Options{
		Name:          name,
		Model:         spec.Model,
		Sink:          sink,
		MinInterval:   spec.MinInterval,
		PowerOn:       spec.PowerOn,
		FullFrame:     spec.FullFrame,
		Metrics:       m,
		OnPowerChange: persistPower(reg),
	})
	return c, sink, nil
}

// persistPower records toggle-power state changes in the config file.
func persistPower(reg *config.Registry) func(name string, on bool) {
	return func(name string, on bool) {
		if err := reg.SetPowerState(name, on); err != nil {
			logging.Warn("Failed to persist power state",
				zap.String("device", name),
				zap.Bool("power_on", on),
				zap.Error(err),
			)
		}
	}
}

// closeSink releases a sink and logs failures.
func closeSink(sink transmit.Sink) {
	if sink == nil {
		return
	}
	if err := transmit.Close(sink); err != nil {
		logging.Warn("Failed to close sink", zap.String("sink", sink.Name()), zap.Error(err))
	}
}
