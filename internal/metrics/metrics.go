// Package metrics exposes Prometheus counters for encoding and transmission.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "climateir"

// Transmission results
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultRateLimited = "rate_limited"
)

// NewRegistry creates a registry with the Go and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the application metrics.
type Metrics struct {
	FramesEncoded    *prometheus.CounterVec   // labels: model, mode
	Transmissions    *prometheus.CounterVec   // labels: sink, result
	TransmitDuration *prometheus.HistogramVec // labels: sink
	WebSocketClients prometheus.Gauge
}

// New registers and returns the application metrics. A nil reg creates an
// unregistered set, which is what tests and one-shot CLI commands use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_encoded_total",
			Help:      "Frames encoded, by model and mode.",
		}, []string{"model", "mode"}),
		Transmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transmissions_total",
			Help:      "Pulse programs handed to sinks, by result.",
		}, []string{"sink", "result"}),
		TransmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transmit_duration_seconds",
			Help:      "Time spent in Sink.Transmit.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"sink"}),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket transmitters.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FramesEncoded, m.Transmissions, m.TransmitDuration, m.WebSocketClients)
	}
	return m
}

// ObserveEncode counts one encoded frame.
func (m *Metrics) ObserveEncode(model, mode string) {
	if m == nil {
		return
	}
	m.FramesEncoded.WithLabelValues(model, mode).Inc()
}

// ObserveTransmit records the outcome of one transmission.
func (m *Metrics) ObserveTransmit(sink, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Transmissions.WithLabelValues(sink, result).Inc()
	if result != ResultRateLimited {
		m.TransmitDuration.WithLabelValues(sink).Observe(elapsed.Seconds())
	}
}
