package game

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// HandRank is an evaluated hand. Higher scores win; equal scores tie.
type HandRank struct {
	Score    int64
	Category string
}

// Ranker evaluates the best hand out of hole plus community cards. It may be
// slow or remote; Showdown calls it concurrently for every contender.
type Ranker interface {
	Rank(ctx context.Context, cards []Card) (HandRank, error)
}

type RankerFunc func(ctx context.Context, cards []Card) (HandRank, error)

func (f RankerFunc) Rank(ctx context.Context, cards []Card) (HandRank, error) {
	return f(ctx, cards)
}

type PlayerResult struct {
	PlayerID  string
	Name      string
	HoleCards []Card
	Category  string
	Score     int64
	Won       int64
}

type PotAward struct {
	Amount    int64
	WinnerIDs []string
}

type ShowdownResult struct {
	// FoldWin is set when everyone but one player folded.
	FoldWin bool
	// Winnings maps player id to chips won across all pots.
	Winnings map[string]int64
	// Results is ordered best hand first, then by seat.
	Results  []PlayerResult
	Awards   []PotAward
	PotTotal int64
}

// Winner returns the top result, the player named in the hand summary.
func (r *ShowdownResult) Winner() (PlayerResult, bool) {
	if r == nil || len(r.Results) == 0 {
		return PlayerResult{}, false
	}
	return r.Results[0], true
}

// Showdown settles the hand. A lone survivor takes everything without any
// evaluation. Otherwise the board is run out if needed, each contender's hand
// is ranked and every pot goes to the best eligible hands, split evenly with
// odd chips handed out one by one in seat order. The state is owned by the
// caller for the whole call; nothing else may touch it until this returns.
func Showdown(ctx context.Context, s *GameState, ranker Ranker) (*ShowdownResult, error) {
	remaining := s.countNotFolded()
	if remaining == 0 {
		return nil, fmt.Errorf("showdown with no players: %w", ErrInvalidState)
	}
	s.refreshPots()
	total := s.PotTotal()

	if remaining == 1 {
		var winner *Player
		for _, p := range s.Players {
			if !p.Folded {
				winner = p
				break
			}
		}
		winner.Chips += total
		s.closeHand()
		return &ShowdownResult{
			FoldWin:  true,
			Winnings: map[string]int64{winner.ID: total},
			Results:  []PlayerResult{{PlayerID: winner.ID, Name: winner.Name, Won: total}},
			Awards:   []PotAward{{Amount: total, WinnerIDs: []string{winner.ID}}},
			PotTotal: total,
		}, nil
	}

	if len(s.CommunityCards) < 5 || s.Phase != PhaseShowdown {
		if err := RunOutBoard(s); err != nil {
			return nil, err
		}
	}

	ranks, err := rankContenders(ctx, s, ranker)
	if err != nil {
		return nil, err
	}

	res := &ShowdownResult{Winnings: map[string]int64{}, PotTotal: total}
	for _, pot := range s.Pots {
		winners := potWinners(s, pot, ranks)
		if len(winners) == 0 {
			continue
		}
		award := PotAward{Amount: pot.Amount}
		share := pot.Amount / int64(len(winners))
		odd := pot.Amount % int64(len(winners))
		for i, idx := range winners {
			amount := share
			if int64(i) < odd {
				amount++
			}
			p := s.Players[idx]
			p.Chips += amount
			res.Winnings[p.ID] += amount
			award.WinnerIDs = append(award.WinnerIDs, p.ID)
		}
		res.Awards = append(res.Awards, award)
	}

	for i, p := range s.Players {
		r, ok := ranks[i]
		if !ok {
			continue
		}
		res.Results = append(res.Results, PlayerResult{
			PlayerID:  p.ID,
			Name:      p.Name,
			HoleCards: append([]Card(nil), p.HoleCards...),
			Category:  r.Category,
			Score:     r.Score,
			Won:       res.Winnings[p.ID],
		})
	}
	sort.SliceStable(res.Results, func(i, j int) bool {
		return res.Results[i].Score > res.Results[j].Score
	})

	s.closeHand()
	return res, nil
}

// rankContenders evaluates every non-folded seat concurrently, keyed by seat.
func rankContenders(ctx context.Context, s *GameState, ranker Ranker) (map[int]HandRank, error) {
	type seatRank struct {
		idx  int
		rank HandRank
	}
	seats := make([]int, 0, len(s.Players))
	for i, p := range s.Players {
		if !p.Folded {
			seats = append(seats, i)
		}
	}
	out := make([]seatRank, len(seats))
	g, gctx := errgroup.WithContext(ctx)
	for k, idx := range seats {
		cards := make([]Card, 0, 7)
		cards = append(cards, s.Players[idx].HoleCards...)
		cards = append(cards, s.CommunityCards...)
		g.Go(func() error {
			r, err := ranker.Rank(gctx, cards)
			if err != nil {
				return fmt.Errorf("rank seat %d: %w", idx, err)
			}
			out[k] = seatRank{idx: idx, rank: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ranks := make(map[int]HandRank, len(out))
	for _, sr := range out {
		ranks[sr.idx] = sr.rank
	}
	return ranks, nil
}

// potWinners returns the seats, in seat order, holding the best eligible hand.
func potWinners(s *GameState, pot Pot, ranks map[int]HandRank) []int {
	eligible := map[string]bool{}
	for _, id := range pot.EligiblePlayerIDs {
		eligible[id] = true
	}
	best := int64(0)
	winners := []int{}
	for i, p := range s.Players {
		r, ok := ranks[i]
		if !ok || !eligible[p.ID] {
			continue
		}
		switch {
		case len(winners) == 0 || r.Score > best:
			best = r.Score
			winners = []int{i}
		case r.Score == best:
			winners = append(winners, i)
		}
	}
	return winners
}

func (s *GameState) closeHand() {
	s.Pots = nil
	s.Phase = PhaseShowdown
	s.ActivePlayerIndex = -1
	s.CurrentBet = 0
	for _, p := range s.Players {
		p.CurrentBet = 0
	}
}

// VoidHand returns every contribution to its owner and closes the hand. Used
// when the hand cannot be settled, e.g. the ranker failed.
func VoidHand(s *GameState) map[string]int64 {
	refunds := map[string]int64{}
	for _, p := range s.Players {
		if p.TotalBetThisHand <= 0 {
			continue
		}
		p.Chips += p.TotalBetThisHand
		refunds[p.ID] = p.TotalBetThisHand
		p.TotalBetThisHand = 0
	}
	s.closeHand()
	return refunds
}
