package room

import (
	"limit-holdem/internal/game"
	"limit-holdem/internal/game/viewmodel"
)

const ProtocolVersion = "1.0"

type WelcomeMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RoomID          string `json:"room_id"`
	PlayerID        string `json:"player_id"`
	Token           string `json:"token"`
	Reconnected     bool   `json:"reconnected"`
}

type ErrorMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

type GameStateMessage struct {
	Type            string                    `json:"type"`
	ProtocolVersion string                    `json:"protocol_version"`
	RoomID          string                    `json:"room_id"`
	State           viewmodel.PlayerStateView `json:"state"`
}

type PlayerJoinedMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	SeatIndex       int    `json:"seat_index"`
	Reconnected     bool   `json:"reconnected"`
}

type PlayerLeftMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	Reason          string `json:"reason"`
}

type ActionTakenMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	Action          string `json:"action"`
	Amount          int64  `json:"amount"`
	Phase           string `json:"phase"`
	// Auto is set when the server acted for the player (disconnect).
	Auto bool `json:"auto,omitempty"`
}

type ShowdownEntry struct {
	PlayerID  string   `json:"player_id"`
	Name      string   `json:"name"`
	HoleCards []string `json:"hole_cards,omitempty"`
	Category  string   `json:"category,omitempty"`
	Score     int64    `json:"score"`
	Won       int64    `json:"won"`
}

type PotAwardEntry struct {
	Amount    int64    `json:"amount"`
	WinnerIDs []string `json:"winner_ids"`
}

type ShowdownMessage struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	HandNumber      int             `json:"hand_number"`
	FoldWin         bool            `json:"fold_win"`
	CommunityCards  []string        `json:"community_cards"`
	Results         []ShowdownEntry `json:"results"`
	Awards          []PotAwardEntry `json:"awards"`
}

type HandCompleteMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	HandNumber      int    `json:"hand_number"`
	WinnerID        string `json:"winner_id"`
	WinnerName      string `json:"winner_name"`
	HandCategory    string `json:"hand_category"`
	PotAmount       int64  `json:"pot_amount"`
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{
		Type:            "error",
		ProtocolVersion: ProtocolVersion,
		Code:            game.ErrorCode(err),
		Message:         err.Error(),
	}
}

func showdownMessage(st *game.GameState, res *game.ShowdownResult) ShowdownMessage {
	msg := ShowdownMessage{
		Type:            "showdown",
		ProtocolVersion: ProtocolVersion,
		HandNumber:      st.HandNumber,
		FoldWin:         res.FoldWin,
		CommunityCards:  game.CardStrings(st.CommunityCards),
		Results:         make([]ShowdownEntry, 0, len(res.Results)),
		Awards:          make([]PotAwardEntry, 0, len(res.Awards)),
	}
	for _, r := range res.Results {
		entry := ShowdownEntry{
			PlayerID: r.PlayerID,
			Name:     r.Name,
			Category: r.Category,
			Score:    r.Score,
			Won:      r.Won,
		}
		if !res.FoldWin {
			entry.HoleCards = game.CardStrings(r.HoleCards)
		}
		msg.Results = append(msg.Results, entry)
	}
	for _, a := range res.Awards {
		msg.Awards = append(msg.Awards, PotAwardEntry{Amount: a.Amount, WinnerIDs: append([]string{}, a.WinnerIDs...)})
	}
	return msg
}

func handCompleteMessage(st *game.GameState, res *game.ShowdownResult) HandCompleteMessage {
	msg := HandCompleteMessage{
		Type:            "hand_complete",
		ProtocolVersion: ProtocolVersion,
		HandNumber:      st.HandNumber,
		PotAmount:       res.PotTotal,
	}
	if w, ok := res.Winner(); ok {
		msg.WinnerID = w.PlayerID
		msg.WinnerName = w.Name
		msg.HandCategory = w.Category
	}
	if res.FoldWin {
		msg.HandCategory = "Uncontested"
	}
	return msg
}
