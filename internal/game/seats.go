package game

import (
	"strings"
	"unicode/utf8"
)

const maxNameLength = 32

type JoinRequest struct {
	PlayerID string
	Name     string
	Token    string
	ConnID   string
}

// Join seats a new player with the starting stack. Only allowed in the lobby.
func Join(s *GameState, req JoinRequest) (*Player, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength || req.PlayerID == "" {
		return nil, ErrInvalidName
	}
	if s.Phase != PhaseLobby {
		return nil, ErrGameStarted
	}
	if len(s.Players) >= s.Rules.MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range s.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}
	p := &Player{
		ID:        req.PlayerID,
		Name:      name,
		Chips:     s.Rules.StartingChips,
		Token:     req.Token,
		ConnID:    req.ConnID,
		Connected: true,
	}
	s.Players = append(s.Players, p)
	return p, nil
}

// Reconnect binds the seat holding token to a new connection. Chips and cards
// are left alone.
func Reconnect(s *GameState, token, connID string) (*Player, error) {
	if token == "" {
		return nil, ErrUnknownToken
	}
	for _, p := range s.Players {
		if p.Token == token {
			p.ConnID = connID
			p.Connected = true
			return p, nil
		}
	}
	return nil, ErrUnknownToken
}

type DisconnectResult struct {
	Player *Player
	// Removed is set when the seat left the table outright.
	Removed bool
	// Folded is set when the disconnect folded a live hand.
	Folded bool
	// WasActive is set when it was the player's turn.
	WasActive bool
}

// Disconnect handles a dropped connection. Outside a hand the seat is
// removed. During a hand the seat is kept until the hand ends; a player who
// could still act is folded through the same path as a voluntary fold.
func Disconnect(s *GameState, connID string) (DisconnectResult, error) {
	idx := -1
	for i, p := range s.Players {
		if connID != "" && p.ConnID == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DisconnectResult{}, ErrUnknownPlayer
	}
	p := s.Players[idx]

	if !s.Phase.Betting() {
		RemoveSeat(s, idx)
		if s.Phase == PhaseShowdown && (len(s.Players) < s.Rules.MinPlayers || len(s.Players) < 2) {
			s.Phase = PhaseLobby
		}
		return DisconnectResult{Player: p, Removed: true}, nil
	}

	res := DisconnectResult{Player: p}
	if p.CanAct() {
		res.Folded = true
		if idx == s.ActivePlayerIndex {
			res.WasActive = true
			if _, err := ApplyAction(s, p.ID, Action{Type: ActionFold}); err != nil {
				return DisconnectResult{}, err
			}
		} else {
			foldSeat(s, idx)
		}
	}
	p.Connected = false
	p.ConnID = ""
	return res, nil
}

// RemoveSeat deletes seat idx and renormalizes every positional index.
// Indices past the removed slot shift down by one. An index equal to the
// removed slot wraps onto the next seat for the dealer and the active player,
// and is cleared for the raise anchor.
func RemoveSeat(s *GameState, idx int) *Player {
	if idx < 0 || idx >= len(s.Players) {
		return nil
	}
	removed := s.Players[idx]
	if idx == s.DealerIndex {
		s.buttonVacated = true
	}
	s.Players = append(s.Players[:idx:idx], s.Players[idx+1:]...)
	n := len(s.Players)

	s.DealerIndex = shiftOrWrap(s.DealerIndex, idx, n)
	s.ActivePlayerIndex = shiftOrWrap(s.ActivePlayerIndex, idx, n)
	s.LastRaiserIndex = shiftOrReset(s.LastRaiserIndex, idx)
	for i, p := range s.Players {
		p.IsDealer = i == s.DealerIndex
	}
	return removed
}

func shiftOrWrap(i, removed, n int) int {
	switch {
	case i < 0:
		return i
	case i > removed:
		return i - 1
	case i == removed:
		if n == 0 {
			return -1
		}
		return i % n
	default:
		return i
	}
}

func shiftOrReset(i, removed int) int {
	switch {
	case i == removed:
		return -1
	case i > removed:
		return i - 1
	default:
		return i
	}
}
