package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"limit-holdem/internal/room"
)

const sendBuffer = 64

// Client is one websocket connection. Writes happen only on its write loop;
// everyone else queues onto send.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	mu     sync.Mutex
	roomID string
}

func newClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *Client) setRoom(id string) {
	c.mu.Lock()
	c.roomID = id
	c.mu.Unlock()
}

// enqueue never blocks. A client that cannot keep up is closed rather than
// silently skipping messages, so what it did receive stays in order.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		log.Warn().Str("conn_id", c.id).Msg("ws_send_overflow")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Hub maps connection ids to clients and delivers room output to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

var _ room.Sender = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{clients: map[string]*Client{}}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send marshals msg and queues it for connID. Unknown ids are ignored: the
// connection may have gone away while the room was working.
func (h *Hub) Send(connID string, msg any) {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("conn_id", connID).Msg("ws_marshal_failed")
		return
	}
	c.enqueue(data)
}

// CloseAll drops every connection. Used on shutdown, since hijacked
// connections are not closed by http.Server.Shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.close()
	}
}
