package game

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// Betting reports whether players may act in this phase.
func (p Phase) Betting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	default:
		return false
	}
}

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "all-in"
)

// ParseActionType accepts the wire spelling plus a couple of common aliases.
func ParseActionType(s string) (ActionType, error) {
	switch s {
	case "fold":
		return ActionFold, nil
	case "check":
		return ActionCheck, nil
	case "call":
		return ActionCall, nil
	case "raise", "bet":
		return ActionRaise, nil
	case "all-in", "allin", "all_in":
		return ActionAllIn, nil
	default:
		return "", ErrUnknownAction
	}
}

// Action is a player's request. Amount is advisory: for a raise it must be
// zero or the street's fixed bet size, and is ignored for every other kind.
type Action struct {
	Type   ActionType
	Amount int64
}

// Rules are fixed when a room is created.
type Rules struct {
	StartingChips      int64
	SmallBlind         int64
	BigBlind           int64
	SmallBet           int64
	BigBet             int64
	MaxRaisesPerStreet int
	MinPlayers         int
	MaxPlayers         int
}

func DefaultRules() Rules {
	return Rules{
		StartingChips:      1000,
		SmallBlind:         5,
		BigBlind:           10,
		SmallBet:           10,
		BigBet:             20,
		MaxRaisesPerStreet: 3,
		MinPlayers:         2,
		MaxPlayers:         9,
	}
}

type Player struct {
	ID               string
	Name             string
	Chips            int64
	HoleCards        []Card
	CurrentBet       int64
	TotalBetThisHand int64
	Folded           bool
	AllIn            bool
	IsDealer         bool
	LastAction       ActionType

	// Seat lifecycle.
	Token     string
	ConnID    string
	Connected bool

	acted bool
}

// CanAct reports whether the seat can still make voluntary decisions this hand.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.TotalBetThisHand = 0
	p.Folded = false
	p.AllIn = false
	p.IsDealer = false
	p.LastAction = ""
	p.acted = false
}

// commit moves up to amount chips from the stack into the player's bets and
// returns what was actually moved.
func (p *Player) commit(amount int64) int64 {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBetThisHand += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}

type Pot struct {
	Amount            int64
	EligiblePlayerIDs []string
}

type GameState struct {
	Rules             Rules
	Phase             Phase
	Players           []*Player
	CommunityCards    []Card
	Pots              []Pot
	CurrentBet        int64
	DealerIndex       int
	ActivePlayerIndex int
	LastRaiserIndex   int
	RaisesThisStreet  int
	Deck              *Deck
	SmallBlind        int64
	BigBlind          int64
	StreetBetSize     int64

	HandNumber     int
	HandStartChips int64

	// buttonVacated is set when the dealer's seat is removed; DealerIndex then
	// already names the next player in turn.
	buttonVacated bool
}

func NewGameState(rules Rules) *GameState {
	return &GameState{
		Rules:             rules,
		Phase:             PhaseLobby,
		DealerIndex:       -1,
		ActivePlayerIndex: -1,
		LastRaiserIndex:   -1,
		SmallBlind:        rules.SmallBlind,
		BigBlind:          rules.BigBlind,
		StreetBetSize:     rules.SmallBet,
	}
}

func (s *GameState) PlayerIndex(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (s *GameState) PlayerByID(playerID string) *Player {
	if i := s.PlayerIndex(playerID); i >= 0 {
		return s.Players[i]
	}
	return nil
}

func (s *GameState) PlayerByConn(connID string) *Player {
	for _, p := range s.Players {
		if p.ConnID == connID && connID != "" {
			return p
		}
	}
	return nil
}

// ActivePlayer returns the seat whose turn it is, or nil.
func (s *GameState) ActivePlayer() *Player {
	if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.ActivePlayerIndex]
}

func (s *GameState) countNotFolded() int {
	n := 0
	for _, p := range s.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

func (s *GameState) countCanAct() int {
	n := 0
	for _, p := range s.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// nextCanAct scans forward from after index from, wrapping, and returns the
// first seat that can still act. The scan includes from itself last.
func (s *GameState) nextCanAct(from int) int {
	n := len(s.Players)
	if n == 0 {
		return -1
	}
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if s.Players[i].CanAct() {
			return i
		}
	}
	return -1
}

// ChipTotal is every chip in the room: stacks plus pots. Bets are always
// reflected in Pots, so nothing is counted twice.
func ChipTotal(s *GameState) int64 {
	var total int64
	for _, p := range s.Players {
		total += p.Chips
	}
	for _, pot := range s.Pots {
		total += pot.Amount
	}
	return total
}

// PotTotal is the sum of all pots.
func (s *GameState) PotTotal() int64 {
	var total int64
	for _, pot := range s.Pots {
		total += pot.Amount
	}
	return total
}

func (s *GameState) refreshPots() {
	s.Pots = CalculatePots(s.Players, s.Pots)
}
