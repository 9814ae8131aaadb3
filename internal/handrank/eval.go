package handrank

import (
	"sort"

	"limit-holdem/internal/game"
)

type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	HighCard:      "High Card",
	OnePair:       "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Hand is the best five-card hand found in a set of cards.
type Hand struct {
	Category Category
	Ranks    []int
}

func (h Hand) BetterThan(o Hand) bool {
	if h.Category != o.Category {
		return h.Category > o.Category
	}
	for i := 0; i < len(h.Ranks) && i < len(o.Ranks); i++ {
		if h.Ranks[i] != o.Ranks[i] {
			return h.Ranks[i] > o.Ranks[i]
		}
	}
	return false
}

// packed folds the hand into one comparable integer: category first, then
// up to five tie-break ranks in base 16.
func (h Hand) packed() int64 {
	v := int64(h.Category)
	for i := 0; i < 5; i++ {
		v <<= 4
		if i < len(h.Ranks) {
			v |= int64(h.Ranks[i])
		}
	}
	return v
}

// Best returns the strongest five-card hand among 5 to 7 cards.
func Best(cards []game.Card) Hand {
	best := Hand{Category: -1}
	n := len(cards)
	idx := make([]int, 5)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			h := eval5(cards[idx[0]], cards[idx[1]], cards[idx[2]], cards[idx[3]], cards[idx[4]])
			if h.BetterThan(best) {
				best = h
			}
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			idx[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

func eval5(c1, c2, c3, c4, c5 game.Card) Hand {
	cards := []game.Card{c1, c2, c3, c4, c5}
	counts := map[int]int{}
	suits := map[game.Suit]int{}
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		r := int(c.Rank)
		counts[r]++
		suits[c.Suit]++
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	isFlush := len(suits) == 1
	isStraight, highStraight := straightHigh(ranks)
	if isFlush && isStraight {
		return Hand{Category: StraightFlush, Ranks: []int{highStraight}}
	}

	type rc struct {
		rank  int
		count int
	}
	groups := make([]rc, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, rc{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return Hand{Category: FourOfAKind, Ranks: []int{groups[0].rank, highestExcluding(ranks, groups[0].rank)}}
	case groups[0].count == 3 && groups[1].count == 2:
		return Hand{Category: FullHouse, Ranks: []int{groups[0].rank, groups[1].rank}}
	case isFlush:
		return Hand{Category: Flush, Ranks: ranks}
	case isStraight:
		return Hand{Category: Straight, Ranks: []int{highStraight}}
	case groups[0].count == 3:
		return Hand{Category: ThreeOfAKind, Ranks: append([]int{groups[0].rank}, topKickers(ranks, []int{groups[0].rank}, 2)...)}
	case groups[0].count == 2 && groups[1].count == 2:
		high, low := groups[0].rank, groups[1].rank
		return Hand{Category: TwoPair, Ranks: []int{high, low, highestExcluding(ranks, high, low)}}
	case groups[0].count == 2:
		return Hand{Category: OnePair, Ranks: append([]int{groups[0].rank}, topKickers(ranks, []int{groups[0].rank}, 3)...)}
	}
	return Hand{Category: HighCard, Ranks: ranks}
}

func straightHigh(ranks []int) (bool, int) {
	seen := map[int]bool{}
	for _, r := range ranks {
		seen[r] = true
	}
	if len(seen) < 5 {
		return false, 0
	}
	for high := 14; high >= 6; high-- {
		if seen[high] && seen[high-1] && seen[high-2] && seen[high-3] && seen[high-4] {
			return true, high
		}
	}
	// Wheel: A-2-3-4-5.
	if seen[14] && seen[2] && seen[3] && seen[4] && seen[5] {
		return true, 5
	}
	return false, 0
}

func highestExcluding(ranks []int, exclude ...int) int {
	kickers := topKickers(ranks, exclude, 1)
	if len(kickers) == 0 {
		return 0
	}
	return kickers[0]
}

func topKickers(ranks []int, exclude []int, n int) []int {
	out := []int{}
	for _, r := range ranks {
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		out = append(out, r)
		if len(out) == n {
			break
		}
	}
	return out
}
