// Package feed streams session notifications to browser charts over
// WebSocket. Each client first receives a snapshot of the recent window,
// then one message per notification.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rileyhilliard/pulsemon/internal/logger"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
)

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 64
)

// Message is the JSON document sent to feed clients.
type Message struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	State   string          `json:"state"`
	Sample  *sample.Sample  `json:"sample,omitempty"`
	Window  []sample.Sample `json:"window,omitempty"`
	BPM     int             `json:"bpm"`
	Count   int             `json:"count"`
	At      int64           `json:"at_ms"`
}

// Hub fans notifications out to connected WebSocket clients. It implements
// session.Sink and http.Handler.
type Hub struct {
	store      *sample.Store
	windowSize int
	log        logger.Logger
	upgrader   websocket.Upgrader
	now        func() time.Time

	mu      sync.Mutex
	clients map[*client]struct{}
	state   session.State
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub reading derived values from store.
func NewHub(store *sample.Store, windowSize int, log logger.Logger) *Hub {
	if log == nil {
		log = logger.Noop()
	}
	if windowSize <= 0 {
		windowSize = sample.DefaultDisplaySize
	}
	return &Hub{
		store:      store,
		windowSize: windowSize,
		log:        log,
		now:        time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	// Snapshot and registration happen under mu, which broadcast also
	// holds, so every sample is either in the window or sent afterwards.
	snapshot := h.message("snapshot", "", h.state, nil)
	snapshot.Window = h.store.RecentWindow(h.windowSize)
	if data, err := json.Marshal(snapshot); err == nil {
		c.send <- data
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("client connected from %s", conn.RemoteAddr())

	go h.writePump(c)
	go h.readPump(c)
}

// Handle implements session.Sink.
func (h *Hub) Handle(n session.Notification) {
	var smp *sample.Sample
	if n.Kind == session.KindDataArrived {
		s := n.Sample
		smp = &s
	}

	h.mu.Lock()
	h.state = n.State
	h.mu.Unlock()

	msg := h.message(n.Kind.String(), n.Message, n.State, smp)
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode %s message: %v", n.Kind, err)
		return
	}
	h.broadcast(data)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) message(kind, text string, st session.State, smp *sample.Sample) Message {
	now := h.now()
	return Message{
		Type:    kind,
		Message: text,
		State:   st.String(),
		Sample:  smp,
		BPM:     h.store.BPM(now),
		Count:   h.store.Count(),
		At:      now.UnixMilli(),
	}
}

// broadcast queues data for every client. A client whose queue is full is
// disconnected rather than allowed to stall the others.
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dropping slow client %s", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("write to %s: %v", c.conn.RemoteAddr(), err)
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}
