package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
)

type memorySink struct {
	mu   sync.Mutex
	err  error
	envs []transmit.Envelope
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Transmit(_ context.Context, env transmit.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.envs = append(s.envs, env)
	return nil
}

type memoryPowerStore map[string]bool

func (m memoryPowerStore) SetPowerState(name string, on bool) error {
	m[name] = on
	return nil
}

type fixture struct {
	server  *Server
	handler http.Handler
	sink    *memorySink
	power   memoryPowerStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	sink := &memorySink{}
	power := memoryPowerStore{}

	controllers := []*climate.Controller{
		climate.New(climate.Options{Name: "living-room", Model: protocol.ModelDKE, Sink: sink, Metrics: m}),
		climate.New(climate.Options{Name: "bedroom", Model: protocol.ModelCKP, Sink: sink, Metrics: m}),
	}

	srv, err := New(Config{Listen: "127.0.0.1:0"}, NewHub(m), controllers,
		WithMetricsRegistry(reg), WithPowerStore(power))
	require.NoError(t, err)

	return &fixture{server: srv, handler: srv.Handler(), sink: sink, power: power}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestListDevices(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var states []climate.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
	require.Len(t, states, 2)
	assert.Equal(t, "bedroom", states[0].Name)
	assert.Equal(t, "living-room", states[1].Name)
	assert.Equal(t, protocol.ModeOff, states[1].Request.Mode)
}

func TestGetDevice(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/devices/bedroom", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"model":"CKP"`)

	rec = f.do(t, http.MethodGet, "/api/devices/garage", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown device")
}

func TestPutState(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/devices/living-room/state",
		`{"mode":"cool","temperature":22,"fan":"high","swing":"off"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp applyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp.Frame, "91"))
	assert.Equal(t, 152, resp.Pulses)
	assert.Equal(t, int64(161573), resp.DurationUS)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, protocol.ModeCool, resp.State.Request.Mode)
	require.Len(t, f.sink.envs, 1)
	assert.Equal(t, resp.ID, f.sink.envs[0].ID)

	// Partial update keeps the other fields.
	rec = f.do(t, http.MethodPut, "/api/devices/living-room/state", `{"temperature":24}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, protocol.ModeCool, resp.State.Request.Mode)
	assert.Equal(t, protocol.FanHigh, resp.State.Request.Fan)
	assert.Equal(t, 24.0, resp.State.Request.Temperature)
}

func TestPutStateErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown device", "/api/devices/garage/state", `{"mode":"cool"}`, http.StatusNotFound},
		{"unknown mode", "/api/devices/living-room/state", `{"mode":"turbo"}`, http.StatusBadRequest},
		{"unknown field", "/api/devices/living-room/state", `{"humidity":40}`, http.StatusBadRequest},
		{"malformed json", "/api/devices/living-room/state", `{"mode":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, f.sink.envs)
}

func TestPutStateSinkFailure(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("bridge offline")

	rec := f.do(t, http.MethodPut, "/api/devices/living-room/state", `{"mode":"heat"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "bridge offline")
}

func TestPreviewDoesNotTransmit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/devices/living-room/preview",
		`{"mode":"cool","temperature":22,"fan":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 38000, resp.CarrierHz)
	assert.Len(t, resp.Raw, 304)
	assert.Empty(t, f.sink.envs)
}

func TestPutPower(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/devices/bedroom/power", `{"on":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.power["bedroom"])

	rec = f.do(t, http.MethodPut, "/api/devices/bedroom/state", `{"mode":"off"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp applyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.State.PowerOn)

	frame, err := protocol.ParseFrameHex(resp.Frame)
	require.NoError(t, err)
	assert.True(t, frame.PowerBit())

	rec = f.do(t, http.MethodPut, "/api/devices/living-room/power", `{"on":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelsHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"CKP","toggle_power":true`)

	rec = f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	f.do(t, http.MethodPut, "/api/devices/living-room/state", `{"mode":"dry"}`)
	rec = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `climateir_frames_encoded_total{mode="dry",model="DKE"} 1`)
	assert.Contains(t, rec.Body.String(), `climateir_transmissions_total{result="ok",sink="memory"} 1`)
}

func TestNewRejectsDuplicates(t *testing.T) {
	a := climate.New(climate.Options{Name: "x", Model: protocol.ModelDKE})
	b := climate.New(climate.Options{Name: "x", Model: protocol.ModelJKE})

	_, err := New(Config{}, NewHub(nil), []*climate.Controller{a, b})
	assert.Error(t, err)

	_, err = New(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestRunAndShutdown(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx) }()

	require.Eventually(t, func() bool { return f.server.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + f.server.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
