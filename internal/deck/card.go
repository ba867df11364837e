package deck

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Clubs
	Hearts
	Diamonds
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	default:
		return "?"
	}
}

// Suits lists every suit in canonical order.
var Suits = []Suit{Spades, Clubs, Hearts, Diamonds}

// ParseSuit converts a suit symbol back into a Suit.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "♠":
		return Spades, nil
	case "♣":
		return Clubs, nil
	case "♥":
		return Hearts, nil
	case "♦":
		return Diamonds, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", s)
	}
}

// Rank represents a card rank. Aces are low (1) in the natural ordering but
// may count as 14 inside a run. Joker is the wildcard sentinel.
type Rank int

const (
	Joker Rank = 0
	Ace   Rank = 1
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
)

// AceHigh is the rank an ace assumes at the top of a run (Q-K-A).
const AceHigh = 14

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Joker:
		return "JOKER"
	case Ace:
		return "A"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		if r >= Two && r <= Nine {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Card represents a playing card. Jokers carry no suit; the Suit field of a
// joker is always the zero value and is ignored for equality.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// NewJoker creates a joker card.
func NewJoker() Card {
	return Card{Rank: Joker}
}

// IsJoker returns true if the card is the wildcard joker.
func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

// Same reports whether two cards are the same card by (rank, suit).
// Jokers match each other regardless of any suit residue.
func (c Card) Same(other Card) bool {
	if c.IsJoker() && other.IsJoker() {
		return true
	}
	return c.Rank == other.Rank && c.Suit == other.Suit
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	if c.IsJoker() {
		return "JOKER"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// cardJSON is the wire form of a card: numeric rank plus suit symbol, or the
// JOKER sentinel rank with no suit.
type cardJSON struct {
	Rank json.RawMessage `json:"rank"`
	Suit string          `json:"suit,omitempty"`
}

// MarshalJSON encodes the card in the client wire format.
func (c Card) MarshalJSON() ([]byte, error) {
	if c.IsJoker() {
		return []byte(`{"rank":"JOKER"}`), nil
	}
	return []byte(fmt.Sprintf(`{"rank":%d,"suit":%q}`, int(c.Rank), c.Suit.String())), nil
}

// UnmarshalJSON decodes a card from the client wire format.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var asString string
	if err := json.Unmarshal(raw.Rank, &asString); err == nil {
		if asString != "JOKER" {
			return fmt.Errorf("unknown rank %q", asString)
		}
		*c = NewJoker()
		return nil
	}

	var asInt int
	if err := json.Unmarshal(raw.Rank, &asInt); err != nil {
		return fmt.Errorf("invalid rank: %w", err)
	}
	if asInt < int(Ace) || asInt > int(King) {
		return fmt.Errorf("rank %d out of range", asInt)
	}

	suit, err := ParseSuit(raw.Suit)
	if err != nil {
		return err
	}

	*c = Card{Rank: Rank(asInt), Suit: suit}
	return nil
}

// Contains reports whether cards holds card, by Same equality.
func Contains(cards []Card, card Card) bool {
	for _, c := range cards {
		if c.Same(card) {
			return true
		}
	}
	return false
}

// Remove returns cards with the first occurrence of card removed. The second
// return is false when the card was not present.
func Remove(cards []Card, card Card) ([]Card, bool) {
	for i, c := range cards {
		if c.Same(card) {
			out := make([]Card, 0, len(cards)-1)
			out = append(out, cards[:i]...)
			out = append(out, cards[i+1:]...)
			return out, true
		}
	}
	return cards, false
}
