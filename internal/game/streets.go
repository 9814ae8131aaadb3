package game

import "fmt"

var nextPhase = map[Phase]Phase{
	PhasePreflop: PhaseFlop,
	PhaseFlop:    PhaseTurn,
	PhaseTurn:    PhaseRiver,
	PhaseRiver:   PhaseShowdown,
}

var streetCards = map[Phase]int{
	PhaseFlop:  3,
	PhaseTurn:  1,
	PhaseRiver: 1,
}

// AdvanceStreet moves to the next phase. Entering a new street burns one card,
// deals the street's community cards and resets per-street betting state.
// Leaving the river only switches the phase to showdown.
func AdvanceStreet(s *GameState) error {
	next, ok := nextPhase[s.Phase]
	if !ok {
		return fmt.Errorf("advance from %s: %w", s.Phase, ErrInvalidState)
	}
	if next == PhaseShowdown {
		s.Phase = PhaseShowdown
		s.ActivePlayerIndex = -1
		return nil
	}

	if err := s.Deck.Burn(); err != nil {
		return err
	}
	for i := 0; i < streetCards[next]; i++ {
		c, err := s.Deck.Deal()
		if err != nil {
			return err
		}
		s.CommunityCards = append(s.CommunityCards, c)
	}
	s.Phase = next

	for _, p := range s.Players {
		p.CurrentBet = 0
		p.acted = false
	}
	s.CurrentBet = 0
	s.RaisesThisStreet = 0
	s.LastRaiserIndex = -1
	s.StreetBetSize = streetBetSize(s.Rules, next)

	s.ActivePlayerIndex = s.nextCanAct(s.DealerIndex)
	if s.ActivePlayerIndex < 0 {
		// Betting is moot; keep the index inside the table.
		s.ActivePlayerIndex = clampIndex(s.DealerIndex, len(s.Players))
	}
	return nil
}

// RunOutBoard deals every missing street and lands in showdown. Used once no
// voluntary action is possible.
func RunOutBoard(s *GameState) error {
	for s.Phase != PhaseShowdown {
		if err := AdvanceStreet(s); err != nil {
			return err
		}
	}
	return nil
}

func streetBetSize(r Rules, phase Phase) int64 {
	switch phase {
	case PhaseTurn, PhaseRiver:
		return r.BigBet
	default:
		return r.SmallBet
	}
}

func clampIndex(i, n int) int {
	if n == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
