package ledger

import (
	"context"
	"strings"

	"limit-holdem/internal/game"
	"limit-holdem/internal/store"
)

// Ledger writes the chip movements of every hand to the history store.
type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func (l *Ledger) HandStarted(ctx context.Context, roomID string, st *game.GameState) (string, error) {
	dealerID := ""
	if st.DealerIndex >= 0 && st.DealerIndex < len(st.Players) {
		dealerID = st.Players[st.DealerIndex].ID
	}
	return l.Store.CreateHand(ctx, store.Hand{
		RoomID:     roomID,
		HandNumber: st.HandNumber,
		DealerID:   dealerID,
		SmallBlind: st.SmallBlind,
		BigBlind:   st.BigBlind,
		StartChips: st.HandStartChips,
	})
}

func (l *Ledger) ActionApplied(ctx context.Context, handID string, seq int, street game.Phase, res game.ApplyResult) error {
	return l.Store.RecordAction(ctx, store.HandAction{
		HandID:     handID,
		Seq:        seq,
		PlayerID:   res.PlayerID,
		Street:     string(street),
		ActionType: string(res.Type),
		Amount:     res.Paid,
	})
}

func (l *Ledger) HandFinished(ctx context.Context, handID string, st *game.GameState, res *game.ShowdownResult) error {
	return l.Store.EndHand(ctx, handID, HandResult(st, res))
}

// HandResult flattens a showdown into the row written for the hand.
func HandResult(st *game.GameState, res *game.ShowdownResult) store.HandResult {
	out := store.HandResult{
		Board:  strings.Join(game.CardStrings(st.CommunityCards), " "),
		Awards: map[string]int64{},
	}
	if res == nil {
		return out
	}
	out.Pot = res.PotTotal
	for id, amount := range res.Winnings {
		out.Awards[id] = amount
	}
	if w, ok := res.Winner(); ok {
		out.WinnerID = w.PlayerID
		out.WinnerName = w.Name
		out.HandCategory = w.Category
	}
	return out
}
