package game

import "github.com/lox/kalooki/internal/deck"

// Player is one seat in a game. ID is the stable identity a reconnecting
// transport rebinds to; Hand order is UI-significant and preserved.
type Player struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Hand        []deck.Card   `json:"hand"`
	Drafts      [][]deck.Card `json:"drafts"`
	HasLaidDown bool          `json:"hasLaidDown"`
	IsBot       bool          `json:"isBot"`
}

// HasWon reports the win condition: hand and draft melds both empty.
func (p *Player) HasWon() bool {
	return len(p.Hand) == 0 && len(p.Drafts) == 0
}

// RemoveFromHand removes one occurrence of card from the hand.
func (p *Player) RemoveFromHand(card deck.Card) bool {
	hand, ok := deck.Remove(p.Hand, card)
	if !ok {
		return false
	}
	p.Hand = hand
	return true
}

// HoldsAll reports whether the hand contains every card in cards, counting
// multiplicity.
func (p *Player) HoldsAll(cards []deck.Card) bool {
	remaining := append([]deck.Card(nil), p.Hand...)
	for _, c := range cards {
		rest, ok := deck.Remove(remaining, c)
		if !ok {
			return false
		}
		remaining = rest
	}
	return true
}

// draftCardCount returns the number of cards across all draft melds.
func (p *Player) draftCardCount() int {
	n := 0
	for _, d := range p.Drafts {
		n += len(d)
	}
	return n
}
