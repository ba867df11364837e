package bot

import (
	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/game"
	"github.com/lox/kalooki/internal/meld"
)

// Extension is a proposal to add cards from the hand onto a table meld.
type Extension struct {
	MeldIndex int
	Cards     []deck.Card
}

// FindMeldExtensions scans the table melds for ones the hand can legally
// extend: matching ranks for sets, adjacent ranks of the same suit for
// runs. Each hand card is offered to at most one meld.
func FindMeldExtensions(hand []deck.Card, melds []game.TableMeld) []Extension {
	remaining := append([]deck.Card(nil), hand...)

	var out []Extension
	for i, tm := range melds {
		var cards []deck.Card
		switch {
		case meld.IsSetShaped(tm.Cards):
			cards = setAdditions(remaining, tm.Cards)
		case meld.IsRunShaped(tm.Cards):
			cards = runAdditions(remaining, tm.Cards)
		}
		if len(cards) == 0 {
			continue
		}
		for _, c := range cards {
			remaining, _ = deck.Remove(remaining, c)
		}
		out = append(out, Extension{MeldIndex: i, Cards: cards})
	}
	return out
}

// setAdditions returns hand cards whose rank matches the set's rank.
func setAdditions(hand []deck.Card, set []deck.Card) []deck.Card {
	var rank deck.Rank
	found := false
	for _, c := range set {
		if !c.IsJoker() {
			rank = c.Rank
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var out []deck.Card
	for _, c := range hand {
		if !c.IsJoker() && c.Rank == rank {
			out = append(out, c)
		}
	}
	return out
}

// runAdditions returns hand cards that extend the run downward or upward,
// chained so a 4 and a 5 both attach below a 6-7-8 run. Table runs are in
// canonical order with jokers occupying their gap positions, so the
// effective span is read off the first natural card's position.
func runAdditions(hand []deck.Card, run []deck.Card) []deck.Card {
	suit, low, high, ok := runSpan(run)
	if !ok {
		return nil
	}

	var out []deck.Card
	take := func(rank int) bool {
		if rank < int(deck.Ace) || rank > int(deck.King) {
			return false
		}
		for _, c := range hand {
			if c.IsJoker() || c.Suit != suit || int(c.Rank) != rank {
				continue
			}
			if deck.Contains(out, c) {
				continue
			}
			out = append(out, c)
			return true
		}
		return false
	}

	for r := low - 1; take(r); r-- {
	}
	for r := high + 1; take(r); r++ {
	}
	return out
}

// runSpan derives the suit and inclusive rank range a run covers. Returns
// ok=false when the natural cards disagree about the span, as happens with
// ace-high runs whose canonical order is not strictly consecutive.
func runSpan(run []deck.Card) (deck.Suit, int, int, bool) {
	var suit deck.Suit
	start := 0
	found := false
	for i, c := range run {
		if c.IsJoker() {
			continue
		}
		if !found {
			suit = c.Suit
			start = int(c.Rank) - i
			found = true
			continue
		}
		if int(c.Rank)-i != start {
			return suit, 0, 0, false
		}
	}
	if !found || start < int(deck.Ace) {
		return suit, 0, 0, false
	}
	return suit, start, start + len(run) - 1, true
}
