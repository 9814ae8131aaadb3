package room

import "limit-holdem/internal/game"

// Event is one inbound request for a room. The set is closed: every kind is
// handled in Room.handle.
type Event interface {
	connID() string
}

type JoinEvent struct {
	ConnID string
	Name   string
	// Token, when set, asks to reclaim an existing seat.
	Token string
	// Result, when set, receives the outcome once the room has handled the
	// join. It must have room for one value.
	Result chan<- error
}

func (e JoinEvent) reply(err error) {
	if e.Result == nil {
		return
	}
	select {
	case e.Result <- err:
	default:
	}
}

type StartGameEvent struct {
	ConnID string
}

type ActionEvent struct {
	ConnID string
	Action game.Action
}

type NewHandEvent struct {
	ConnID string
}

type DisconnectEvent struct {
	ConnID string
}

func (e JoinEvent) connID() string       { return e.ConnID }
func (e StartGameEvent) connID() string  { return e.ConnID }
func (e ActionEvent) connID() string     { return e.ConnID }
func (e NewHandEvent) connID() string    { return e.ConnID }
func (e DisconnectEvent) connID() string { return e.ConnID }
