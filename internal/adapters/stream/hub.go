package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/andrescamacho/colony-go/internal/domain/events"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type client struct {
	id    uint64
	out   chan []byte
	types map[string]bool
}

func (c *client) wants(name string) bool {
	return len(c.types) == 0 || c.types[name]
}

// Hub fans bus events out to websocket clients.
//
// HandleEvent runs on the simulation loop and never blocks: each client has
// a bounded queue and events that do not fit are dropped for that client.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*client
	nextID  atomic.Uint64
	dropped atomic.Uint64

	queueSize int
	clock     shared.Clock
	upgrader  websocket.Upgrader
	logger    *log.Logger
}

// NewHub creates a hub. queueSize <= 0 uses 256; clock nil uses real time.
func NewHub(queueSize int, clock shared.Clock, logger *log.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:   make(map[uint64]*client),
		queueSize: queueSize,
		clock:     clock,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleEvent encodes e once and queues it for every interested client
func (h *Hub) HandleEvent(e events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	name := e.EventName()
	var payload []byte
	for _, c := range h.clients {
		if !c.wants(name) {
			continue
		}
		if payload == nil {
			b, err := json.Marshal(Encode(e, h.clock.Now()))
			if err != nil {
				h.logger.Error("failed to encode event", "event", name, "error", err)
				return
			}
			payload = b
		}
		select {
		case c.out <- payload:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) register(types map[string]bool) *client {
	c := &client{
		id:    h.nextID.Add(1),
		out:   make(chan []byte, h.queueSize),
		types: types,
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.out)
	}
	h.mu.Unlock()
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.out)
	}
}

// Handler upgrades the request and streams events until the client leaves.
// ?types=worker_state_changed,resource_changed limits what is sent.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.logger.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		c := h.register(parseTypes(r.URL.Query().Get("types")))
		h.logger.Info("stream client connected", "client", c.id, "remote", r.RemoteAddr)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			h.writeLoop(conn, c)
		}()

		// Reader: only control frames matter; any error ends the session.
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.unregister(c)
		<-writerDone
		h.logger.Info("stream client disconnected", "client", c.id)
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-c.out:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				// the reader notices the broken connection and unregisters
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func parseTypes(raw string) map[string]bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	types := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}
