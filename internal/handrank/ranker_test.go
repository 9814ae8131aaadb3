package handrank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limit-holdem/internal/game"
)

func rank(t *testing.T, cards string) game.HandRank {
	t.Helper()
	r, err := New().Rank(context.Background(), game.MustParseCards(cards))
	require.NoError(t, err)
	return r
}

func TestBestCategories(t *testing.T) {
	cases := []struct {
		cards string
		want  Category
	}{
		{"As Ks Qs Js Ts 2h 3c", StraightFlush},
		{"As Ah Ac Ad Kd 2h 3c", FourOfAKind},
		{"As Ah Ac Ks Kd 2h 3c", FullHouse},
		{"As 9s 7s 4s 2s Kh Qc", Flush},
		{"Ah 2d 3c 4s 5h Kd 9c", Straight},
		{"7h 7d 7c Ks 2d 4h 9c", ThreeOfAKind},
		{"As Ah Kc Kd 2h 3c 4s", TwoPair},
		{"As Ah Kc Qd 2h 3c 8s", OnePair},
		{"As Jh 9c 7d 5h 3c 2s", HighCard},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			h := Best(game.MustParseCards(tc.cards))
			assert.Equal(t, tc.want, h.Category)
		})
	}
}

func TestWheelIsFiveHigh(t *testing.T) {
	h := Best(game.MustParseCards("Ah 2d 3c 4s 5h"))
	require.Equal(t, Straight, h.Category)
	assert.Equal(t, []int{5}, h.Ranks)
}

func TestRankOrdersHands(t *testing.T) {
	board := " 2c 7d 9h Js 3s"
	pairAces := rank(t, "Ac Ad"+board)
	pairKings := rank(t, "Kc Kd"+board)
	trips := rank(t, "9c 9d"+board)

	assert.Greater(t, pairAces.Score, pairKings.Score)
	assert.Greater(t, trips.Score, pairAces.Score)
	assert.Equal(t, "Pair", pairAces.Category)
	assert.Equal(t, "Three of a Kind", trips.Category)
}

func TestRankKickerDecides(t *testing.T) {
	board := " Ah 8d 6c 4s 2h"
	kingKicker := rank(t, "As Kd"+board)
	queenKicker := rank(t, "Ac Qd"+board)
	assert.Greater(t, kingKicker.Score, queenKicker.Score)
}

func TestRankBoardPlaysTies(t *testing.T) {
	board := " As Ks Qs Js Ts"
	a := rank(t, "2h 3d"+board)
	b := rank(t, "4c 5d"+board)
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, "Straight Flush", a.Category)
}

func TestRankShortHandUsesPackedScore(t *testing.T) {
	five := rank(t, "As Ah Kc Kd 2h")
	six := rank(t, "As Ah Kc Kd 2h 3c")
	assert.Equal(t, "Two Pair", five.Category)
	assert.Greater(t, six.Score, five.Score)
}

func TestRankRejectsBadInput(t *testing.T) {
	_, err := New().Rank(context.Background(), game.MustParseCards("As Ks"))
	assert.ErrorIs(t, err, game.ErrInvalidCard)

	_, err = New().Rank(context.Background(), game.MustParseCards("As As Kd Qd Jd"))
	assert.ErrorIs(t, err, game.ErrInvalidCard)
}

func TestRankHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Rank(ctx, game.MustParseCards("As Ks Qs Js Ts"))
	assert.ErrorIs(t, err, context.Canceled)
}
