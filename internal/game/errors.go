package game

import "errors"

// Protocol errors.
var (
	ErrInvalidMessage = errors.New("invalid_message")
	ErrInvalidName    = errors.New("invalid_name")
	ErrUnknownAction  = errors.New("unknown_action")
	ErrInvalidCard    = errors.New("invalid_card")
)

// Turn violations.
var (
	ErrNotYourTurn    = errors.New("not_your_turn")
	ErrPlayerInactive = errors.New("player_inactive")
	ErrNotInHand      = errors.New("not_in_hand")
)

// Illegal actions for the current betting state.
var (
	ErrCannotCheck        = errors.New("cannot_check")
	ErrNothingToCall      = errors.New("nothing_to_call")
	ErrRaiseCapReached    = errors.New("raise_cap_reached")
	ErrInsufficientChips  = errors.New("insufficient_chips")
	ErrInvalidRaiseAmount = errors.New("invalid_raise_amount")
	ErrNoChips            = errors.New("no_chips")
)

// Capacity and lobby errors.
var (
	ErrRoomFull         = errors.New("room_full")
	ErrNameTaken        = errors.New("name_taken")
	ErrGameStarted      = errors.New("game_already_started")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrUnknownToken     = errors.New("unknown_token")
	ErrUnknownPlayer    = errors.New("unknown_player")
	ErrHandInProgress   = errors.New("hand_in_progress")
)

var (
	ErrDeckEmpty    = errors.New("deck_empty")
	ErrInvalidState = errors.New("invalid_state")
	ErrHandVoided   = errors.New("hand_voided")
)

var knownErrors = []error{
	ErrInvalidMessage, ErrInvalidName, ErrUnknownAction, ErrInvalidCard,
	ErrNotYourTurn, ErrPlayerInactive, ErrNotInHand,
	ErrCannotCheck, ErrNothingToCall, ErrRaiseCapReached, ErrInsufficientChips, ErrInvalidRaiseAmount, ErrNoChips,
	ErrRoomFull, ErrNameTaken, ErrGameStarted, ErrNotEnoughPlayers, ErrUnknownToken, ErrUnknownPlayer, ErrHandInProgress,
	ErrDeckEmpty, ErrInvalidState, ErrHandVoided,
}

// ErrorCode maps err to the code sent back to clients.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "unknown_error"
}
