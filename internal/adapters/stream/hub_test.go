package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/grid"
	"github.com/andrescamacho/colony-go/internal/domain/resource"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dial(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(b, &msg))
	return msg
}

func TestHub_StreamsEventsToClient(t *testing.T) {
	// Arrange
	hub := NewHub(8, shared.NewMockClock(epoch), nil)
	conn := dial(t, hub, "")

	// Act
	hub.HandleEvent(events.WorkerStateChanged{
		AgentID:  "w1",
		From:     "idle",
		To:       "moving_to_harvest",
		Position: grid.Point{X: 2, Y: 3},
		Hint:     "walk",
	})

	// Assert
	msg := readMessage(t, conn)
	assert.Equal(t, "worker_state_changed", msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, "w1", data["worker"])
	assert.Equal(t, "moving_to_harvest", data["to"])
	assert.Equal(t, map[string]any{"x": 2.0, "y": 3.0}, data["position"])
	assert.Equal(t, "2024-01-01T00:00:00Z", msg["at"])
}

func TestHub_FiltersByType(t *testing.T) {
	hub := NewHub(8, shared.NewMockClock(epoch), nil)
	conn := dial(t, hub, "?types=grid_rebuilt,%20resource_changed")

	hub.HandleEvent(events.WorkerMoved{AgentID: "w1"})
	hub.HandleEvent(events.GridRebuilt{Version: 3, Reason: "zone cleared"})

	msg := readMessage(t, conn)
	assert.Equal(t, "grid_rebuilt", msg["type"])
	assert.Equal(t, 3.0, msg["data"].(map[string]any)["version"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(8, nil, nil)
	conn := dial(t, hub, "")

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_CloseSendsGoingAway(t *testing.T) {
	hub := NewHub(8, nil, nil)
	conn := dial(t, hub, "")

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
	assert.Zero(t, hub.Clients())
}

func TestHub_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	// Arrange
	hub := NewHub(2, nil, nil)
	c := hub.register(nil)

	// Act
	for i := 0; i < 5; i++ {
		hub.HandleEvent(events.WorkerMoved{AgentID: "w1"})
	}

	// Assert
	assert.Len(t, c.out, 2)
	assert.Equal(t, uint64(3), hub.Dropped())
	hub.unregister(c)
	hub.unregister(c)
}

func TestHub_NoClientsIsNoop(t *testing.T) {
	hub := NewHub(0, nil, nil)

	hub.HandleEvent(events.ResourceChanged{Kind: resource.Wood, Delta: 1})

	assert.Zero(t, hub.Dropped())
}

func TestParseTypes(t *testing.T) {
	assert.Nil(t, parseTypes(""))
	assert.Nil(t, parseTypes("  "))
	assert.Equal(t, map[string]bool{"a": true, "b": true}, parseTypes("a, b,,"))
}
