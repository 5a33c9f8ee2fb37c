package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/climateir/internal/logging"
	"github.com/muurk/climateir/internal/metrics"
	"github.com/muurk/climateir/internal/protocol"
	"github.com/muurk/climateir/internal/transmit"
)

func testEnvelope(device string) transmit.Envelope {
	frame, _ := protocol.Build(protocol.Request{
		Mode:        protocol.ModeCool,
		Temperature: 22,
		Fan:         protocol.FanHigh,
	}, protocol.ModelDKE, protocol.ToggleState{})
	return transmit.NewEnvelope(device, protocol.ModelDKE, frame, protocol.Serialize(frame))
}

func dialBridge(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) transmit.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env transmit.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func newHubServer(t *testing.T, m *metrics.Metrics) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(m)
	ts := httptest.NewServer(logRequests(hub))
	t.Cleanup(ts.Close)
	return hub, ts
}

func TestHubWithoutBridges(t *testing.T) {
	hub := NewHub(nil)

	err := hub.Transmit(context.Background(), testEnvelope("living-room"))

	var terr *transmit.Error
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Retryable)
	assert.True(t, errors.Is(err, ErrNoBridges))
	assert.Equal(t, "websocket", hub.Name())
}

func TestHubBroadcast(t *testing.T) {
	m := metrics.New(nil)
	hub, ts := newHubServer(t, m)

	all := dialBridge(t, ts, "")
	bedroom := dialBridge(t, ts, "?device=bedroom")
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WebSocketClients))

	env := testEnvelope("living-room")
	require.NoError(t, hub.Transmit(context.Background(), env))

	got := readEnvelope(t, all)
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, env.Raw, got.Raw)
	assert.Equal(t, 38000, got.CarrierHz)

	bedroomEnv := testEnvelope("bedroom")
	require.NoError(t, hub.Transmit(context.Background(), bedroomEnv))

	// The filtered bridge never saw the living-room program.
	assert.Equal(t, bedroomEnv.ID, readEnvelope(t, bedroom).ID)
	assert.Equal(t, bedroomEnv.ID, readEnvelope(t, all).ID)
}

func TestHubFilteredBridgeOnly(t *testing.T) {
	hub, ts := newHubServer(t, nil)

	dialBridge(t, ts, "?device=bedroom")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	err := hub.Transmit(context.Background(), testEnvelope("living-room"))
	assert.ErrorIs(t, err, ErrNoBridges)
}

func TestHubAcksAndDisconnect(t *testing.T) {
	hub, ts := newHubServer(t, nil)

	conn := dialBridge(t, ts, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	env := testEnvelope("living-room")
	require.NoError(t, hub.Transmit(context.Background(), env))
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteJSON(Ack{ID: env.ID, Status: "ok"}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDumpsUnparseableMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(zap.NewNop()) })

	hub, ts := newHubServer(t, nil)
	conn := dialBridge(t, ts, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("oops")))

	dump := func() []observer.LoggedEntry {
		return logs.FilterMessage("Unparseable bridge message").All()
	}
	require.Eventually(t, func() bool { return len(dump()) == 1 }, 2*time.Second, 10*time.Millisecond)

	fields := dump()[0].ContextMap()
	assert.Equal(t, "6f6f7073", fields["hex"])
	assert.Equal(t, "oops", fields["ascii"])
	assert.EqualValues(t, 4, fields["length"])
}

func TestHubClose(t *testing.T) {
	hub, ts := newHubServer(t, nil)

	dialBridge(t, ts, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubCancelledContext(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Transmit(ctx, testEnvelope("x")), context.Canceled)
}
