package deck

import (
	rand "math/rand/v2"
	"time"
)

// Deck represents a shoe of one or more standard 52-card decks plus jokers.
// Cards are drawn from the tail.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a shuffled shoe built from numDecks standard decks and the
// given number of jokers. The rng may be nil, in which case a time-seeded
// source is used.
func New(numDecks, jokers int, rng *rand.Rand) *Deck {
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}

	d := &Deck{
		cards: make([]Card, 0, numDecks*52+jokers),
		rng:   rng,
	}
	d.fill(numDecks, jokers)
	d.Shuffle()
	return d
}

// NewRand returns a deterministic *rand.Rand for the given seed, suitable
// for injecting into New for reproducible shuffles.
func NewRand(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+0x9e3779b97f4a7c15)))
}

// splitmix finalizes a seed into a well-mixed PCG stream selector.
func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func (d *Deck) fill(numDecks, jokers int) {
	for i := 0; i < numDecks; i++ {
		for _, suit := range Suits {
			for rank := Ace; rank <= King; rank++ {
				d.cards = append(d.cards, NewCard(suit, rank))
			}
		}
	}
	for i := 0; i < jokers; i++ {
		d.cards = append(d.cards, NewJoker())
	}
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top (tail) card.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// DrawN draws up to n cards from the deck.
func (d *Deck) DrawN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}

	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Draw()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Len returns the number of cards left in the shoe.
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards exposes the remaining cards for serialization. Callers must not
// mutate the returned slice.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Restore replaces the shoe contents, used when loading a saved game.
func (d *Deck) Restore(cards []Card) {
	d.cards = append(d.cards[:0], cards...)
}
