package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type Suit int

type Rank int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankSymbols = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "T", Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

var suitSymbols = map[Suit]string{Spades: "s", Hearts: "h", Diamonds: "d", Clubs: "c"}

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return rankSymbols[c.Rank] + suitSymbols[c.Suit]
}

// ParseCard reads the two-character form produced by Card.String, e.g. "Ah" or "Tc".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("parse card %q: %w", s, ErrInvalidCard)
	}
	var out Card
	found := false
	for r, sym := range rankSymbols {
		if strings.EqualFold(sym, s[:1]) {
			out.Rank = r
			found = true
			break
		}
	}
	if !found {
		return Card{}, fmt.Errorf("parse card %q: %w", s, ErrInvalidCard)
	}
	for suit, sym := range suitSymbols {
		if strings.EqualFold(sym, s[1:]) {
			out.Suit = suit
			return out, nil
		}
	}
	return Card{}, fmt.Errorf("parse card %q: %w", s, ErrInvalidCard)
}

// MustParseCards parses a space separated card list and panics on bad input.
// Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func CardStrings(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

type Deck struct {
	cards []Card
}

func freshCards() []Card {
	cards := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}

// NewDeck returns a full shuffled deck. A nil rng seeds from the clock.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Deck{cards: freshCards()}
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// NewStackedDeck deals cards in exactly the given order.
func NewStackedDeck(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

func (d *Deck) Deal() (Card, error) {
	if d == nil || len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

func (d *Deck) Burn() error {
	_, err := d.Deal()
	return err
}

func (d *Deck) Remaining() int {
	if d == nil {
		return 0
	}
	return len(d.cards)
}
