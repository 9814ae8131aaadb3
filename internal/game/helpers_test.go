package game

import (
	"context"
	"math/rand"
	"testing"
)

func testRules() Rules {
	r := DefaultRules()
	r.SmallBlind = 1
	r.BigBlind = 2
	r.SmallBet = 2
	r.BigBet = 4
	r.StartingChips = 100
	return r
}

func newTable(t *testing.T, rules Rules, ids ...string) *GameState {
	t.Helper()
	s := NewGameState(rules)
	for _, id := range ids {
		if _, err := Join(s, JoinRequest{PlayerID: id, Name: id, Token: "tok-" + id, ConnID: "conn-" + id}); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return s
}

func startSeeded(t *testing.T, s *GameState, seed int64) {
	t.Helper()
	if err := StartHand(s, NewDeck(rand.New(rand.NewSource(seed)))); err != nil {
		t.Fatalf("start hand: %v", err)
	}
}

func mustAct(t *testing.T, s *GameState, id string, typ ActionType) ApplyResult {
	t.Helper()
	res, err := ApplyAction(s, id, Action{Type: typ})
	if err != nil {
		t.Fatalf("%s %s: %v", id, typ, err)
	}
	return res
}

func activeID(t *testing.T, s *GameState) string {
	t.Helper()
	p := s.ActivePlayer()
	if p == nil {
		t.Fatalf("no active player in phase %s", s.Phase)
	}
	return p.ID
}

// constantRanker ties every hand.
var constantRanker = RankerFunc(func(ctx context.Context, cards []Card) (HandRank, error) {
	return HandRank{Score: 1, Category: "High Card"}, nil
})

// highCardRanker scores a hand by its highest hole card rank, enough to order
// stacked test hands.
var highCardRanker = RankerFunc(func(ctx context.Context, cards []Card) (HandRank, error) {
	best := Rank(0)
	for _, c := range cards[:2] {
		if c.Rank > best {
			best = c.Rank
		}
	}
	return HandRank{Score: int64(best), Category: "High Card"}, nil
})

func assertConserved(t *testing.T, s *GameState) {
	t.Helper()
	if got := ChipTotal(s); got != s.HandStartChips {
		t.Fatalf("chips not conserved: have %d, hand started with %d", got, s.HandStartChips)
	}
}

// turnActions returns the options of the seat whose turn it is.
func turnActions(s *GameState) LegalActions {
	p := s.ActivePlayer()
	if p == nil {
		return LegalActions{}
	}
	return LegalActionsFor(s, p.ID)
}
