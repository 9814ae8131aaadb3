package ws

import (
	"encoding/json"
	"fmt"
	"strings"

	"limit-holdem/internal/game"
	"limit-holdem/internal/room"
)

// Inbound message types.
const (
	TypeJoin      = "join"
	TypeStartGame = "start_game"
	TypeAction    = "action"
	TypeNewHand   = "new_hand"
	TypeLeave     = "leave"
)

type JoinMessage struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	RoomID string `json:"room_id,omitempty"`
	Token  string `json:"token,omitempty"`
}

type ActionMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

type envelope struct {
	Type string `json:"type"`
}

// inbound is one decoded client message. RoomID is only set for joins.
type inbound struct {
	Type   string
	RoomID string
	Event  room.Event
}

func decodeInbound(connID string, raw []byte) (inbound, error) {
	var base envelope
	if err := json.Unmarshal(raw, &base); err != nil {
		return inbound{}, fmt.Errorf("decode envelope: %w", game.ErrInvalidMessage)
	}
	switch base.Type {
	case TypeJoin:
		var m JoinMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return inbound{}, fmt.Errorf("decode join: %w", game.ErrInvalidMessage)
		}
		return inbound{
			Type:   base.Type,
			RoomID: strings.TrimSpace(m.RoomID),
			Event:  room.JoinEvent{ConnID: connID, Name: m.Name, Token: m.Token},
		}, nil
	case TypeAction:
		var m ActionMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return inbound{}, fmt.Errorf("decode action: %w", game.ErrInvalidMessage)
		}
		typ, err := game.ParseActionType(strings.ToLower(strings.TrimSpace(m.Action)))
		if err != nil {
			return inbound{}, fmt.Errorf("action %q: %w", m.Action, err)
		}
		if m.Amount < 0 {
			return inbound{}, fmt.Errorf("negative amount: %w", game.ErrInvalidRaiseAmount)
		}
		return inbound{
			Type:  base.Type,
			Event: room.ActionEvent{ConnID: connID, Action: game.Action{Type: typ, Amount: m.Amount}},
		}, nil
	case TypeStartGame:
		return inbound{Type: base.Type, Event: room.StartGameEvent{ConnID: connID}}, nil
	case TypeNewHand:
		return inbound{Type: base.Type, Event: room.NewHandEvent{ConnID: connID}}, nil
	case TypeLeave:
		return inbound{Type: base.Type, Event: room.DisconnectEvent{ConnID: connID}}, nil
	default:
		return inbound{}, fmt.Errorf("message type %q: %w", base.Type, game.ErrInvalidMessage)
	}
}
