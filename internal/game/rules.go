package game

// LegalActions is derived on demand for one seat and never stored.
type LegalActions struct {
	CanFold     bool  `json:"can_fold"`
	CanCheck    bool  `json:"can_check"`
	CanCall     bool  `json:"can_call"`
	CanRaise    bool  `json:"can_raise"`
	CanAllIn    bool  `json:"can_all_in"`
	CallAmount  int64 `json:"call_amount"`
	RaiseAmount int64 `json:"raise_amount"`
	RaiseSize   int64 `json:"raise_size"`
}

// Any reports whether at least one action is allowed.
func (l LegalActions) Any() bool {
	return l.CanFold || l.CanCheck || l.CanCall || l.CanRaise || l.CanAllIn
}

func callAmount(s *GameState, p *Player) int64 {
	if owed := s.CurrentBet - p.CurrentBet; owed > 0 {
		return owed
	}
	return 0
}

// LegalActionsFor computes playerID's options; everything is false unless it
// is that player's turn and they can still act.
func LegalActionsFor(s *GameState, playerID string) LegalActions {
	if !s.Phase.Betting() {
		return LegalActions{}
	}
	active := s.ActivePlayer()
	if active == nil || active.ID != playerID || !active.CanAct() {
		return LegalActions{}
	}
	owed := callAmount(s, active)
	return LegalActions{
		CanFold:     true,
		CanCheck:    owed == 0,
		CanCall:     owed > 0 && active.Chips >= owed,
		CanRaise:    s.RaisesThisStreet < s.Rules.MaxRaisesPerStreet && active.Chips >= owed+s.StreetBetSize,
		CanAllIn:    active.Chips > 0,
		CallAmount:  owed,
		RaiseAmount: owed + s.StreetBetSize,
		RaiseSize:   s.StreetBetSize,
	}
}

// ValidateAction checks a request without touching state. It returns the
// index of the acting seat on success.
func ValidateAction(s *GameState, playerID string, a Action) (int, error) {
	if !s.Phase.Betting() {
		return -1, ErrNotInHand
	}
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return -1, ErrUnknownPlayer
	}
	me := s.Players[idx]
	if !me.CanAct() {
		return -1, ErrPlayerInactive
	}
	if idx != s.ActivePlayerIndex {
		return -1, ErrNotYourTurn
	}
	owed := callAmount(s, me)
	switch a.Type {
	case ActionFold:
		return idx, nil
	case ActionCheck:
		if owed != 0 {
			return -1, ErrCannotCheck
		}
		return idx, nil
	case ActionCall:
		if owed == 0 {
			return -1, ErrNothingToCall
		}
		return idx, nil
	case ActionRaise:
		if a.Amount != 0 && a.Amount != s.StreetBetSize {
			return -1, ErrInvalidRaiseAmount
		}
		if s.RaisesThisStreet >= s.Rules.MaxRaisesPerStreet {
			return -1, ErrRaiseCapReached
		}
		if me.Chips < owed+s.StreetBetSize {
			return -1, ErrInsufficientChips
		}
		return idx, nil
	case ActionAllIn:
		if me.Chips <= 0 {
			return -1, ErrNoChips
		}
		return idx, nil
	default:
		return -1, ErrUnknownAction
	}
}
