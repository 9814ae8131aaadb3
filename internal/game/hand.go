package game

// StartHand begins a new hand: it drops busted seats, moves the button to
// the next seated player (the seat after a removed dealer gets it),
// deals hole cards from deck (a fresh shuffled deck when nil) and posts the
// blinds. Heads-up, the dealer posts the small blind and acts first preflop.
func StartHand(s *GameState, deck *Deck) error {
	if s.Phase.Betting() {
		return ErrHandInProgress
	}
	for i := len(s.Players) - 1; i >= 0; i-- {
		if s.Players[i].Chips <= 0 {
			RemoveSeat(s, i)
		}
	}
	n := len(s.Players)
	if n < s.Rules.MinPlayers || n < 2 {
		return ErrNotEnoughPlayers
	}
	if deck == nil {
		deck = NewDeck(nil)
	}

	for _, p := range s.Players {
		p.resetForHand()
	}
	switch {
	case s.DealerIndex < 0 || s.HandNumber == 0:
		s.DealerIndex = 0
	case s.buttonVacated:
		// The player after the old dealer moved into the dealer's index.
		s.DealerIndex %= n
	default:
		s.DealerIndex = (s.DealerIndex + 1) % n
	}
	s.buttonVacated = false
	for i, p := range s.Players {
		p.IsDealer = i == s.DealerIndex
	}

	s.HandNumber++
	s.HandStartChips = ChipTotal(&GameState{Players: s.Players})
	s.Deck = deck
	s.CommunityCards = nil
	s.Pots = nil
	s.CurrentBet = 0
	s.RaisesThisStreet = 0
	s.LastRaiserIndex = -1
	s.SmallBlind = s.Rules.SmallBlind
	s.BigBlind = s.Rules.BigBlind
	s.StreetBetSize = streetBetSize(s.Rules, PhasePreflop)
	s.Phase = PhasePreflop

	for round := 0; round < 2; round++ {
		for k := 1; k <= n; k++ {
			p := s.Players[(s.DealerIndex+k)%n]
			c, err := deck.Deal()
			if err != nil {
				return err
			}
			p.HoleCards = append(p.HoleCards, c)
		}
	}

	sbIdx, bbIdx := BlindSeats(s.DealerIndex, n)
	s.Players[sbIdx].commit(s.SmallBlind)
	s.Players[bbIdx].commit(s.BigBlind)
	s.CurrentBet = max(s.Players[sbIdx].CurrentBet, s.Players[bbIdx].CurrentBet)
	s.refreshPots()

	if n == 2 {
		s.ActivePlayerIndex = s.DealerIndex
		if !s.Players[s.DealerIndex].CanAct() {
			s.ActivePlayerIndex = s.nextCanAct(s.DealerIndex)
		}
	} else {
		s.ActivePlayerIndex = s.nextCanAct(bbIdx)
	}
	return nil
}

// BlindSeats returns the small and big blind seats for a table of n players.
func BlindSeats(dealer, n int) (int, int) {
	if n == 2 {
		return dealer, (dealer + 1) % n
	}
	return (dealer + 1) % n, (dealer + 2) % n
}

// FinishHand clears the per-hand pointers after showdown and drops seats that
// are out of chips or whose connection went away during the hand. A table left
// below the minimum player count goes back to the lobby so new players can sit.
func FinishHand(s *GameState) []*Player {
	s.ActivePlayerIndex = -1
	s.LastRaiserIndex = -1
	s.CurrentBet = 0
	removed := []*Player{}
	for i := len(s.Players) - 1; i >= 0; i-- {
		p := s.Players[i]
		if p.Chips <= 0 || !p.Connected {
			removed = append(removed, RemoveSeat(s, i))
		}
	}
	if len(s.Players) < s.Rules.MinPlayers || len(s.Players) < 2 {
		s.Phase = PhaseLobby
	}
	return removed
}
