package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const broadcastBuffer = 1000

// Topical messages are only delivered to clients subscribed to their topic
type Topical interface {
	Topic() string
}

type outbound struct {
	topic   string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	totalConnections atomic.Int64
	totalMessages    atomic.Int64
	dropped          atomic.Int64

	log logrus.FieldLogger
}

// NewHub creates a new Hub instance
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws_hub"),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register adds a client to the hub. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues v as JSON for every matching client. The message is dropped
// when the broadcast buffer is full.
func (h *Hub) Broadcast(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Warn("Failed to encode broadcast")
		return
	}

	msg := outbound{payload: payload}
	if t, ok := v.(Topical); ok {
		msg.topic = t.Topic()
	}

	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.log.Warn("Broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics returns hub counters
func (h *Hub) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":     h.ClientCount(),
		"total_connections":  h.totalConnections.Load(),
		"total_messages":     h.totalMessages.Load(),
		"dropped_broadcasts": h.dropped.Load(),
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	h.totalConnections.Add(1)
	h.log.WithFields(logrus.Fields{"client_id": c.ID, "clients": total}).Debug("Client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		h.log.WithFields(logrus.Fields{"client_id": c.ID, "clients": len(h.clients)}).Debug("Client disconnected")
	}
}

// deliver sends a message to every client subscribed to its topic
func (h *Hub) deliver(msg outbound) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		if !c.Wants(msg.topic) {
			continue
		}
		if c.TrySend(msg.payload) {
			sent++
			continue
		}
		// slow client
		h.log.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
		go h.Unregister(c)
	}

	if sent > 0 {
		h.totalMessages.Add(1)
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.WithField("clients", len(h.clients)).Info("Shutting down hub")
	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
}

// serverMessage is a control reply sent to one client
type serverMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
