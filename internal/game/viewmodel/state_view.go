package viewmodel

import "limit-holdem/internal/game"

type SeatView struct {
	SeatIndex        int    `json:"seat_index"`
	PlayerID         string `json:"player_id"`
	Name             string `json:"name"`
	Chips            int64  `json:"chips"`
	CurrentBet       int64  `json:"current_bet"`
	TotalBetThisHand int64  `json:"total_bet_this_hand"`
	ToCall           int64  `json:"to_call"`
	LastAction       string `json:"last_action"`
	Folded           bool   `json:"folded"`
	AllIn            bool   `json:"all_in"`
	IsDealer         bool   `json:"is_dealer"`
	Connected        bool   `json:"connected"`
	HasCards         bool   `json:"has_cards"`
}

type PotView struct {
	Amount            int64    `json:"amount"`
	EligiblePlayerIDs []string `json:"eligible_player_ids"`
}

// PublicStateView is safe to show anyone at the table: no hole cards and
// nothing about the undealt deck.
type PublicStateView struct {
	HandNumber        int        `json:"hand_number"`
	Phase             string     `json:"phase"`
	CommunityCards    []string   `json:"community_cards"`
	Pots              []PotView  `json:"pots"`
	PotTotal          int64      `json:"pot_total"`
	CurrentBet        int64      `json:"current_bet"`
	StreetBetSize     int64      `json:"street_bet_size"`
	RaisesThisStreet  int        `json:"raises_this_street"`
	MaxRaises         int        `json:"max_raises"`
	SmallBlind        int64      `json:"small_blind"`
	BigBlind          int64      `json:"big_blind"`
	DealerIndex       int        `json:"dealer_index"`
	ActivePlayerIndex int        `json:"active_player_index"`
	ActivePlayerID    string     `json:"active_player_id,omitempty"`
	Seats             []SeatView `json:"seats"`
}

// PlayerStateView is the public view plus what only the recipient may see.
type PlayerStateView struct {
	PublicStateView
	YourPlayerID string             `json:"your_player_id"`
	HoleCards    []string           `json:"hole_cards"`
	LegalActions *game.LegalActions `json:"legal_actions,omitempty"`
}

func BuildPublicState(st *game.GameState) PublicStateView {
	seats := make([]SeatView, 0, len(st.Players))
	for i, p := range st.Players {
		toCall := st.CurrentBet - p.CurrentBet
		if toCall < 0 || !p.CanAct() {
			toCall = 0
		}
		seats = append(seats, SeatView{
			SeatIndex:        i,
			PlayerID:         p.ID,
			Name:             p.Name,
			Chips:            p.Chips,
			CurrentBet:       p.CurrentBet,
			TotalBetThisHand: p.TotalBetThisHand,
			ToCall:           toCall,
			LastAction:       string(p.LastAction),
			Folded:           p.Folded,
			AllIn:            p.AllIn,
			IsDealer:         p.IsDealer,
			Connected:        p.Connected,
			HasCards:         len(p.HoleCards) > 0 && !p.Folded,
		})
	}

	pots := make([]PotView, 0, len(st.Pots))
	for _, pot := range st.Pots {
		pots = append(pots, PotView{
			Amount:            pot.Amount,
			EligiblePlayerIDs: append([]string{}, pot.EligiblePlayerIDs...),
		})
	}

	out := PublicStateView{
		HandNumber:        st.HandNumber,
		Phase:             string(st.Phase),
		CommunityCards:    game.CardStrings(st.CommunityCards),
		Pots:              pots,
		PotTotal:          st.PotTotal(),
		CurrentBet:        st.CurrentBet,
		StreetBetSize:     st.StreetBetSize,
		RaisesThisStreet:  st.RaisesThisStreet,
		MaxRaises:         st.Rules.MaxRaisesPerStreet,
		SmallBlind:        st.SmallBlind,
		BigBlind:          st.BigBlind,
		DealerIndex:       st.DealerIndex,
		ActivePlayerIndex: -1,
		Seats:             seats,
	}
	if st.Phase.Betting() {
		if p := st.ActivePlayer(); p != nil && p.CanAct() {
			out.ActivePlayerIndex = st.ActivePlayerIndex
			out.ActivePlayerID = p.ID
		}
	}
	return out
}

// BuildPlayerState scopes the view to playerID. Legal actions are attached
// only when it is that player's turn.
func BuildPlayerState(st *game.GameState, playerID string) PlayerStateView {
	out := PlayerStateView{
		PublicStateView: BuildPublicState(st),
		YourPlayerID:    playerID,
		HoleCards:       []string{},
	}
	p := st.PlayerByID(playerID)
	if p == nil {
		return out
	}
	out.HoleCards = game.CardStrings(p.HoleCards)
	if la := game.LegalActionsFor(st, playerID); la.Any() {
		out.LegalActions = &la
	}
	return out
}
