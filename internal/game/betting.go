package game

// ApplyResult describes what a successfully applied action did.
type ApplyResult struct {
	PlayerID string
	Type     ActionType
	// Paid is the number of chips moved from the stack into the pot.
	Paid int64
	// Raised is true when the action set a new current bet.
	Raised bool
}

// ApplyAction validates and applies one action from playerID. On error the
// state is untouched. After a successful action the turn passes to the next
// seat that can still act; callers then consult IsRoundComplete.
func ApplyAction(s *GameState, playerID string, a Action) (ApplyResult, error) {
	idx, err := ValidateAction(s, playerID, a)
	if err != nil {
		return ApplyResult{}, err
	}
	p := s.Players[idx]
	res := ApplyResult{PlayerID: p.ID, Type: a.Type}

	switch a.Type {
	case ActionFold:
		foldSeat(s, idx)
	case ActionCheck:
		p.acted = true
	case ActionCall:
		res.Paid = p.commit(callAmount(s, p))
		p.acted = true
	case ActionRaise:
		res.Paid = p.commit(callAmount(s, p) + s.StreetBetSize)
		s.RaisesThisStreet++
		raiseTo(s, idx)
		res.Raised = true
	case ActionAllIn:
		res.Paid = p.commit(p.Chips)
		if p.CurrentBet > s.CurrentBet {
			if s.RaisesThisStreet < s.Rules.MaxRaisesPerStreet {
				s.RaisesThisStreet++
			}
			raiseTo(s, idx)
			res.Raised = true
		} else {
			p.acted = true
		}
	}
	p.LastAction = a.Type

	s.refreshPots()
	advanceTurn(s, idx)
	return res, nil
}

// raiseTo makes seat idx the new anchor: everyone else must act again.
func raiseTo(s *GameState, idx int) {
	p := s.Players[idx]
	s.CurrentBet = p.CurrentBet
	s.LastRaiserIndex = idx
	for i, other := range s.Players {
		other.acted = i == idx
	}
}

// foldSeat marks the seat folded without moving the turn. Both voluntary
// folds and disconnects go through here.
func foldSeat(s *GameState, idx int) {
	p := s.Players[idx]
	p.Folded = true
	p.acted = true
	p.LastAction = ActionFold
	s.refreshPots()
}

func advanceTurn(s *GameState, from int) {
	s.ActivePlayerIndex = s.nextCanAct(from)
}

// IsRoundComplete reports whether the current street's betting is closed.
//
// The round is over when at most one player is left in the hand, when nobody
// can act, or when every player who can act has matched the current bet and
// action has come back around to the anchor (the last raiser, or the dealer
// when nobody raised). The anchor is not tracked as a seat index: each player
// carries an acted flag, set when they act and cleared for everyone else by a
// raise, so "back to the anchor" means every player who can act has acted
// since the last raise or since the street opened. Posting a blind is not
// acting, so the big blind keeps its option after a limp.
func IsRoundComplete(s *GameState) bool {
	if s.countNotFolded() <= 1 {
		return true
	}
	canAct := s.countCanAct()
	if canAct == 0 {
		return true
	}
	for _, p := range s.Players {
		if p.CanAct() && p.CurrentBet != s.CurrentBet {
			return false
		}
	}
	if canAct == 1 {
		// Nobody left to bet against.
		return true
	}
	for _, p := range s.Players {
		if p.CanAct() && !p.acted {
			return false
		}
	}
	return true
}

// NeedsShowdownRunout reports whether betting can no longer continue because
// at most one player with chips remains while others are all-in.
func NeedsShowdownRunout(s *GameState) bool {
	return s.countNotFolded() > 1 && s.countCanAct() <= 1
}

// BettingClosed reports whether the hand can go straight to showdown once the
// current round is complete: a single player is left, or nobody remains to
// bet against.
func BettingClosed(s *GameState) bool {
	return s.countNotFolded() <= 1 || NeedsShowdownRunout(s)
}
