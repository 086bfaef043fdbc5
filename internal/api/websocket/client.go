package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outbound messages
	sendBufferSize = 256
)

// Client message types
const (
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
	MessageHeartbeat   = "heartbeat"
	MessageError       = "error"
)

// clientMessage is a control message from a client
type clientMessage struct {
	Type    string   `json:"type"`
	PickIDs []string `json:"pick_ids,omitempty"`
}

// Client is one websocket connection
type Client struct {
	ID   string
	Send chan []byte

	conn        *websocket.Conn
	hub         *Hub
	connectedAt time.Time
	log         logrus.FieldLogger

	mu    sync.RWMutex
	picks map[string]struct{}

	// sendMu guards Send against a close by the hub while the reader replies
	sendMu sync.Mutex
	closed bool
}

// NewClient creates a client bound to hub
func NewClient(id string, conn *websocket.Conn, hub *Hub, log logrus.FieldLogger) *Client {
	return &Client{
		ID:          id,
		Send:        make(chan []byte, sendBufferSize),
		conn:        conn,
		hub:         hub,
		connectedAt: time.Now(),
		log:         log.WithField("client_id", id),
	}
}

// Wants reports whether the client should receive a message for topic. Clients
// without a subscription receive everything.
func (c *Client) Wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.picks) == 0 || topic == "" {
		return true
	}
	_, ok := c.picks[topic]
	return ok
}

// Subscribe limits delivery to the given pick ids. An empty list clears the filter.
func (c *Client) Subscribe(pickIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(pickIDs) == 0 {
		c.picks = nil
		return
	}
	c.picks = make(map[string]struct{}, len(pickIDs))
	for _, id := range pickIDs {
		c.picks[id] = struct{}{}
	}
}

// TrySend queues a payload without blocking. It reports false when the buffer is
// full or the client has been closed.
func (c *Client) TrySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel once
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// ReadPump reads control messages until the connection closes
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}

		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Debug("Unexpected close")
			}
			return
		}
		c.handle(msg)
	}
}

// WritePump writes queued payloads and pings until the send channel closes
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.WithError(err).Debug("Write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(msg clientMessage) {
	switch msg.Type {
	case MessageSubscribe:
		c.Subscribe(msg.PickIDs)
		c.reply(MessageSubscribe, map[string]interface{}{"pick_ids": msg.PickIDs})
	case MessageUnsubscribe:
		c.Subscribe(nil)
		c.reply(MessageUnsubscribe, nil)
	case MessageHeartbeat:
		c.reply(MessageHeartbeat, map[string]interface{}{
			"client_id":    c.ID,
			"connected_at": c.connectedAt.UTC(),
		})
	default:
		c.reply(MessageError, map[string]interface{}{"message": "unknown message type: " + msg.Type})
	}
}

func (c *Client) reply(typ string, data interface{}) {
	payload, err := json.Marshal(serverMessage{Type: typ, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	c.TrySend(payload)
}
