package handrank

import (
	"context"
	"fmt"

	"github.com/paulhankin/poker"

	"limit-holdem/internal/game"
)

// Ranker scores hands for showdown. Seven-card hands, the only kind a full
// board produces, are scored by the poker lookup evaluator; shorter hands fall
// back to the packed five-card score. Scores from the two paths are not
// comparable with each other.
type Ranker struct{}

func New() *Ranker {
	return &Ranker{}
}

var _ game.Ranker = (*Ranker)(nil)

func (r *Ranker) Rank(ctx context.Context, cards []game.Card) (game.HandRank, error) {
	if err := ctx.Err(); err != nil {
		return game.HandRank{}, err
	}
	if len(cards) < 5 || len(cards) > 7 {
		return game.HandRank{}, fmt.Errorf("rank %d cards: %w", len(cards), game.ErrInvalidCard)
	}
	seen := make(map[game.Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return game.HandRank{}, fmt.Errorf("duplicate card %s: %w", c, game.ErrInvalidCard)
		}
		seen[c] = true
	}

	best := Best(cards)
	out := game.HandRank{Category: best.Category.String(), Score: best.packed()}
	if len(cards) == 7 {
		var hand [7]poker.Card
		for i, c := range cards {
			pc, err := toPokerCard(c)
			if err != nil {
				return game.HandRank{}, err
			}
			hand[i] = pc
		}
		out.Score = int64(poker.Eval7(&hand))
	}
	return out, nil
}

func toPokerCard(c game.Card) (poker.Card, error) {
	var zero poker.Card
	var suit poker.Suit
	switch c.Suit {
	case game.Clubs:
		suit = poker.Club
	case game.Diamonds:
		suit = poker.Diamond
	case game.Hearts:
		suit = poker.Heart
	case game.Spades:
		suit = poker.Spade
	default:
		return zero, fmt.Errorf("card %v: %w", c, game.ErrInvalidCard)
	}
	rank := poker.Rank(c.Rank)
	if c.Rank == game.Ace {
		rank = 1
	}
	pc, err := poker.MakeCard(suit, rank)
	if err != nil {
		return zero, fmt.Errorf("card %s: %w", c, err)
	}
	return pc, nil
}
