package game

import (
	"fmt"
	"math/rand"
)

const (
	DeckSize     = 84
	PriorityStep = 10
)

// deckRecipe is the population in priority order: the first entry gets the
// lowest priorities. Rotations alternate left/right starting with left.
var deckRecipe = []struct {
	Type  CardType
	Count int
}{
	{CardUTurn, 6},
	{CardRotateLeft, 36}, // expanded to 18 left + 18 right, alternating
	{CardBackUp, 6},
	{CardMove1, 18},
	{CardMove2, 12},
	{CardMove3, 6},
}

// Deck is the shared draw pile. The top of the deck is the last element.
type Deck struct {
	cards []*Card
	rng   *rand.Rand
}

// NewDeck builds the full 84 card population and shuffles it.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	d := &Deck{cards: canonicalCards(), rng: rng}
	d.Shuffle()
	return d
}

// canonicalCards lists the full population in ascending priority.
func canonicalCards() []*Card {
	cards := make([]*Card, 0, DeckSize)
	priority := PriorityStep
	for _, entry := range deckRecipe {
		for i := 0; i < entry.Count; i++ {
			ct := entry.Type
			if ct == CardRotateLeft && i%2 == 1 {
				ct = CardRotateRight
			}
			cards = append(cards, &Card{Type: ct, Priority: priority})
			priority += PriorityStep
		}
	}
	if len(cards) != DeckSize {
		panic(fmt.Sprintf("canonicalCards: built %d cards, want %d", len(cards), DeckSize))
	}
	return cards
}

// ValidatePopulation checks that cards are exactly the 84 card population:
// every priority 10..840 once, each carrying the type the recipe gives it.
func ValidatePopulation(cards []*Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("%d cards, want %d: %w", len(cards), DeckSize, ErrInvalidPopulation)
	}
	want := make(map[int]CardType, DeckSize)
	for _, c := range canonicalCards() {
		want[c.Priority] = c.Type
	}
	for _, c := range cards {
		if c == nil {
			return fmt.Errorf("nil card: %w", ErrInvalidPopulation)
		}
		ct, ok := want[c.Priority]
		if !ok {
			return fmt.Errorf("card %s: priority unknown or repeated: %w", c, ErrInvalidPopulation)
		}
		if ct != c.Type {
			return fmt.Errorf("card %s: priority %d belongs to %s: %w", c, c.Priority, ct, ErrInvalidPopulation)
		}
		delete(want, c.Priority)
	}
	return nil
}

// NewDeckFromCards builds a deck in the given order, top of deck last.
// Used when restoring a snapshot.
func NewDeckFromCards(cards []*Card, rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	d := &Deck{cards: make([]*Card, len(cards)), rng: rng}
	copy(d.cards, cards)
	return d
}

// Len returns the number of cards left in the pile.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Draw removes n cards from the top of the deck.
func (d *Deck) Draw(n int) ([]*Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("draw %d cards: negative count", n)
	}
	if n > len(d.cards) {
		return nil, fmt.Errorf("draw %d cards with %d left: %w", n, len(d.cards), ErrDeckExhausted)
	}
	drawn := make([]*Card, n)
	for i := 0; i < n; i++ {
		drawn[i] = d.cards[len(d.cards)-1-i]
	}
	d.cards = d.cards[:len(d.cards)-n]
	return drawn, nil
}

// RecycleAll puts cards back into the pile and reshuffles.
func (d *Deck) RecycleAll(cards []*Card) {
	for _, c := range cards {
		if c != nil {
			d.cards = append(d.cards, c)
		}
	}
	d.Shuffle()
}

// Shuffle randomizes the deck order.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Cards returns the pile bottom first.
func (d *Deck) Cards() []*Card {
	out := make([]*Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Composition counts the cards of each type left in the pile.
func (d *Deck) Composition() map[CardType]int {
	counts := make(map[CardType]int)
	for _, c := range d.cards {
		counts[c.Type]++
	}
	return counts
}
