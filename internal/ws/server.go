package ws

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"limit-holdem/internal/game"
	"limit-holdem/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	submitTimeout  = 5 * time.Second
	// joinAttempts bounds retries when a room is reaped between lookup and join.
	joinAttempts = 3
)

var metricConnectionsActive = expvar.NewInt("ws_connections_active")

type Server struct {
	hub         *Hub
	rooms       *room.Manager
	defaultRoom string
	upgrader    websocket.Upgrader
}

// NewServer routes websocket clients into rooms. An empty allowedOrigins list
// accepts any origin.
func NewServer(hub *Hub, rooms *room.Manager, defaultRoom string, allowedOrigins []string) *Server {
	if defaultRoom == "" {
		defaultRoom = "main"
	}
	return &Server{
		hub:         hub,
		rooms:       rooms,
		defaultRoom: defaultRoom,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and otherwise requires an exact match.
func originChecker(allowed []string) func(*http.Request) bool {
	set := map[string]bool{}
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("ws_upgrade_failed")
		return
	}
	c := newClient(uuid.NewString(), conn)
	s.hub.register(c)
	metricConnectionsActive.Add(1)
	log.Info().Str("conn_id", c.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		if id := c.room(); id != "" {
			s.submit(c, id, room.DisconnectEvent{ConnID: c.id})
		}
		s.hub.unregister(c)
		c.close()
		metricConnectionsActive.Add(-1)
		log.Info().Str("conn_id", c.id).Msg("ws_disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("ws_read_failed")
			}
			return
		}
		s.dispatch(c, raw)
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// dispatch routes one message. A connection is bound to a room once a join
// there succeeds.
func (s *Server) dispatch(c *Client, raw []byte) {
	msg, err := decodeInbound(c.id, raw)
	if err != nil {
		s.reject(c, err)
		return
	}

	switch msg.Type {
	case TypeJoin:
		s.join(c, msg)
	case TypeLeave:
		cur := c.room()
		if cur == "" {
			s.reject(c, game.ErrUnknownPlayer)
			return
		}
		s.submit(c, cur, msg.Event)
		c.setRoom("")
	default:
		cur := c.room()
		if cur == "" {
			s.reject(c, game.ErrUnknownPlayer)
			return
		}
		s.submit(c, cur, msg.Event)
	}
}

// join seats the connection in the requested room and only then leaves the
// room it was in, so a rejected join leaves the old seat untouched. The room
// itself reports rejections to the client.
func (s *Server) join(c *Client, msg inbound) {
	id := msg.RoomID
	if id == "" {
		id = s.defaultRoom
	}
	ev, ok := msg.Event.(room.JoinEvent)
	if !ok {
		s.reject(c, game.ErrInvalidMessage)
		return
	}

	var err error
	for attempt := 0; attempt < joinAttempts; attempt++ {
		var r *room.Room
		r, err = s.rooms.GetOrCreate(id)
		if err != nil {
			s.reject(c, err)
			return
		}
		err = s.awaitJoin(r, ev)
		if !errors.Is(err, room.ErrRoomClosed) {
			break
		}
		log.Debug().Str("conn_id", c.id).Str("room_id", id).Int("attempt", attempt+1).Msg("ws_join_retry")
	}
	switch {
	case err == nil:
	case errors.Is(err, room.ErrRoomClosed), errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Str("conn_id", c.id).Str("room_id", id).Msg("ws_join_failed")
		s.reject(c, err)
		return
	default:
		return
	}

	if cur := c.room(); cur != "" && cur != id {
		s.submit(c, cur, room.DisconnectEvent{ConnID: c.id})
	}
	c.setRoom(id)
}

// awaitJoin submits ev to r and waits for the room to handle it.
func (s *Server) awaitJoin(r *room.Room, ev room.JoinEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	result := make(chan error, 1)
	ev.Result = result
	if err := r.Submit(ctx, ev); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) submit(c *Client, roomID string, ev room.Event) {
	r, ok := s.rooms.Get(roomID)
	if !ok {
		s.reject(c, room.ErrRoomClosed)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	if err := r.Submit(ctx, ev); err != nil {
		log.Warn().Err(err).Str("conn_id", c.id).Str("room_id", roomID).Msg("ws_submit_failed")
		s.reject(c, err)
	}
}

func (s *Server) reject(c *Client, err error) {
	code := game.ErrorCode(err)
	switch {
	case errors.Is(err, room.ErrRoomClosed):
		code = room.ErrRoomClosed.Error()
	case errors.Is(err, room.ErrTooManyRooms):
		code = room.ErrTooManyRooms.Error()
	}
	s.hub.Send(c.id, room.ErrorMessage{
		Type:            "error",
		ProtocolVersion: room.ProtocolVersion,
		Code:            code,
		Message:         err.Error(),
	})
}
