package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Client is one live connection. Its lifecycle: connected (no rooms) ->
// joined (one or more rooms) -> closed. Operation errors never close it,
// only transport failure or a stalled send buffer does.
type Client struct {
	conn   *websocket.Conn
	relay  *Relay
	userID string
	send   chan []byte

	mu     sync.Mutex
	joined map[string]bool
	closed bool

	closeOnce sync.Once
}

func newClient(relay *Relay, conn *websocket.Conn, userID string) *Client {
	return &Client{
		conn:   conn,
		relay:  relay,
		userID: userID,
		send:   make(chan []byte, 256),
		joined: make(map[string]bool),
	}
}

// enqueue hands a frame to the write pump without blocking. False means the
// client is closed or its buffer is full (dead or stalled peer).
func (c *Client) enqueue(b []byte) bool {
	c.mu.Lock(); defer c.mu.Unlock()
	if c.closed { return false }
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// track records room membership. False means the client closed concurrently:
// Close has already snapshotted the joined set without this key, so the
// caller must undo its own hub subscription.
func (c *Client) track(key string) bool {
	c.mu.Lock(); defer c.mu.Unlock()
	if c.closed { return false }
	c.joined[key] = true
	return true
}

func (c *Client) untrack(key string) {
	c.mu.Lock(); defer c.mu.Unlock()
	delete(c.joined, key)
}

func (c *Client) isJoined(key string) bool {
	c.mu.Lock(); defer c.mu.Unlock()
	return c.joined[key]
}

// Close tears the session down exactly once: leaves every joined room,
// closes the transport and reports the disconnect.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		keys := make([]string, 0, len(c.joined))
		for k := range c.joined { keys = append(keys, k) }
		close(c.send)
		c.mu.Unlock()
		for _, k := range keys { c.relay.hub.Leave(k, c) }
		if c.conn != nil { _ = c.conn.Close() }
		c.relay.disconnected(c)
	})
}

func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil { return }
		c.relay.handle(c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() { ticker.Stop(); _ = c.conn.Close() }()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok { _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{}); return }
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil { return }
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil { return }
		}
	}
}
