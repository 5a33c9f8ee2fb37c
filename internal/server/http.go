package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/muurk/climateir/internal/climate"
	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/protocol"
)

const maxBodySize = 4096

type errorResponse struct {
	Error string `json:"error"`
}

// applyResponse is returned by PUT /api/devices/{name}/state.
type applyResponse struct {
	State      climate.State `json:"state"`
	ID         string        `json:"id"`
	Frame      string        `json:"frame"`
	Pulses     int           `json:"pulses"`
	DurationUS int64         `json:"duration_us"`
}

// previewResponse is returned by POST /api/devices/{name}/preview.
type previewResponse struct {
	Frame     string  `json:"frame"`
	CarrierHz int     `json:"carrier_hz"`
	Raw       []int32 `json:"raw"`
}

type powerRequest struct {
	On bool `json:"on"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) controller(w http.ResponseWriter, r *http.Request) *climate.Controller {
	name := r.PathValue("name")
	c, ok := s.controllers[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown device %q", name)
		return nil
	}
	return c
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	states := make([]climate.State, 0, len(s.names))
	for _, name := range s.names {
		states = append(states, s.controllers[name].State())
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

// handlePutState applies a partial request: omitted fields keep their
// current value.
func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}

	req := c.State().Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	res, err := c.Apply(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, climate.ErrNoSink) {
			status = http.StatusConflict
		}
		writeError(w, status, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, applyResponse{
		State:      c.State(),
		ID:         res.Envelope.ID,
		Frame:      res.Frame.Hex(),
		Pulses:     len(res.Program.Pulses),
		DurationUS: res.Program.Duration().Microseconds(),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}

	req := c.State().Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	frame, program := c.Encode(c.Normalize(req))
	writeJSON(w, http.StatusOK, previewResponse{
		Frame:     frame.Hex(),
		CarrierHz: program.CarrierHz,
		Raw:       program.Raw(),
	})
}

// handlePutPower records the power state of a toggle-power unit without
// transmitting anything.
func (s *Server) handlePutPower(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	if !c.Model().TogglePower() {
		writeError(w, http.StatusBadRequest, "model %s has declarative power; send a state instead", c.Model())
		return
	}

	var body powerRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return
	}

	c.SetPowerState(body.On)
	if s.power != nil {
		if err := s.power.SetPowerState(c.Name(), body.On); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to persist power state: %v", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, c.State())
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	type model struct {
		Name        string         `json:"name"`
		TogglePower bool           `json:"toggle_power"`
		Traits      climate.Traits `json:"traits"`
	}
	out := make([]model, 0, len(protocol.Models))
	for _, m := range protocol.Models {
		out = append(out, model{Name: m.String(), TogglePower: m.TogglePower(), Traits: climate.TraitsFor(m)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"devices": len(s.controllers),
		"bridges": s.hub.Clients(),
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
