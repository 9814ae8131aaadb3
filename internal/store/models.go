package store

import "time"

type Hand struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id"`
	HandNumber   int        `json:"hand_number"`
	DealerID     string     `json:"dealer_id"`
	SmallBlind   int64      `json:"small_blind"`
	BigBlind     int64      `json:"big_blind"`
	StartChips   int64      `json:"start_chips"`
	WinnerID     string     `json:"winner_id,omitempty"`
	WinnerName   string     `json:"winner_name,omitempty"`
	HandCategory string     `json:"hand_category,omitempty"`
	Pot          *int64     `json:"pot,omitempty"`
	Board        string     `json:"board,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

type HandAction struct {
	ID         string    `json:"id"`
	HandID     string    `json:"hand_id"`
	Seq        int       `json:"seq"`
	PlayerID   string    `json:"player_id"`
	Street     string    `json:"street"`
	ActionType string    `json:"action_type"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type PotAward struct {
	ID        string    `json:"id"`
	HandID    string    `json:"hand_id"`
	PlayerID  string    `json:"player_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// HandResult is what gets written when a hand ends.
type HandResult struct {
	WinnerID     string
	WinnerName   string
	HandCategory string
	Pot          int64
	Board        string
	Awards       map[string]int64
}
