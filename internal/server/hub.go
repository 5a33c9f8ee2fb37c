package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/transmit"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Programs queued per bridge before it counts as stalled
	sendBuffer = 16
)

// ErrNoBridges is returned by Hub.Transmit when no bridge is subscribed to
// the device.
var ErrNoBridges = errors.New("no IR bridge connected")

// Compile-time interface check.
var _ transmit.Sink = (*Hub)(nil)

// Hub accepts websocket connections from IR bridges and fans pulse programs
// out to them. A bridge may subscribe to one device with ?device=<name>;
// without it, it receives every program.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	device string
	remote string
}

// Ack is what bridges send back after transmitting a program.
type Ack struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Bridges are embedded devices without an Origin header
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) Name() string { return transmit.TypeWebSocket }

// Clients returns the number of connected bridges.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the bridge until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		device: r.URL.Query().Get("device"),
		remote: r.RemoteAddr,
	}
	h.register(c)
	logging.LogConnection(c.remote, "bridge_connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.setGauge(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.setGauge(n)
}

func (h *Hub) setGauge(n int) {
	if h.metrics != nil {
		h.metrics.WebSocketClients.Set(float64(n))
	}
}

// readPump consumes acknowledgements until the bridge goes away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		logging.LogConnection(c.remote, "bridge_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Bridge connection closed",
					zap.String("remote_addr", c.remote),
					zap.Error(err),
				)
			}
			return
		}

		var ack Ack
		if err := json.Unmarshal(data, &ack); err != nil {
			logging.Warn("Unparseable message from bridge",
				zap.String("remote_addr", c.remote),
				zap.Error(err),
			)
			logging.LogRawBytes("Unparseable bridge message", data)
			continue
		}
		if ack.Error != "" {
			logging.Warn("Bridge reported transmit failure",
				zap.String("remote_addr", c.remote),
				zap.String("id", ack.ID),
				zap.String("error", ack.Error),
			)
			continue
		}
		logging.Debug("Bridge acknowledged program",
			zap.String("remote_addr", c.remote),
			zap.String("id", ack.ID),
			zap.String("status", ack.Status),
		)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Warn("Failed to write to bridge",
					zap.String("remote_addr", c.remote),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Transmit queues env for every bridge subscribed to its device. It fails
// when no bridge could take the program.
func (h *Hub) Transmit(ctx context.Context, env transmit.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return &transmit.Error{Sink: h.Name(), Op: "encode", Err: err}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subscribed, delivered := 0, 0
	for c := range h.clients {
		if c.device != "" && c.device != env.Device {
			continue
		}
		subscribed++
		select {
		case c.send <- payload:
			delivered++
		default:
			logging.Warn("Bridge send queue full, dropping program",
				zap.String("remote_addr", c.remote),
				zap.String("id", env.ID),
			)
		}
	}

	if subscribed == 0 {
		return &transmit.Error{Sink: h.Name(), Op: "publish", Err: ErrNoBridges, Retryable: true}
	}
	if delivered == 0 {
		return &transmit.Error{Sink: h.Name(), Op: "publish", Err: errors.New("all bridges stalled"), Retryable: true}
	}
	return nil
}

// Close disconnects every bridge.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
	return nil
}
