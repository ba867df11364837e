// Package meld implements the set and run validity rules shared by the game
// state, the transport layer and the bot heuristics. A meld is a slice of
// cards; jokers substitute for any card and aces may sit at either end of a
// run (but not both, and never wrapping past the king).
package meld

import (
	"sort"

	"github.com/lox/kalooki/internal/deck"
)

// MinSize is the minimum number of cards in any valid set or run.
const MinSize = 3

// IsValidSet reports whether cards form a valid set: at least MinSize cards
// whose non-joker members all share one rank. Jokers count toward the size
// unconditionally.
func IsValidSet(cards []deck.Card) bool {
	if len(cards) < MinSize {
		return false
	}

	var rank deck.Rank
	seen := false
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if !seen {
			rank = c.Rank
			seen = true
			continue
		}
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// IsValidRun reports whether cards form a valid run: at least MinSize cards
// of one suit with strictly increasing ranks once jokers are assigned to the
// gaps. An ace may count as 1 or as 14, not both; a run of only jokers has
// no anchor and is invalid.
func IsValidRun(cards []deck.Card) bool {
	return isValidRunMin(cards, MinSize)
}

func isValidRunMin(cards []deck.Card, minLength int) bool {
	if len(cards) < minLength {
		return false
	}

	jokers := 0
	nonJokers := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
		} else {
			nonJokers = append(nonJokers, c)
		}
	}
	if len(nonJokers) == 0 {
		return false
	}

	suit := nonJokers[0].Suit
	for _, c := range nonJokers[1:] {
		if c.Suit != suit {
			return false
		}
	}

	return runGapsFit(nonJokers, jokers, false) || runGapsFit(nonJokers, jokers, true)
}

// runGapsFit sorts the non-joker ranks (aces high when aceHigh) and checks
// that the jokers can bridge every gap between consecutive ranks.
func runGapsFit(nonJokers []deck.Card, jokers int, aceHigh bool) bool {
	ranks := make([]int, 0, len(nonJokers))
	for _, c := range nonJokers {
		r := int(c.Rank)
		if aceHigh && c.Rank == deck.Ace {
			r = deck.AceHigh
		}
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	gaps := 0
	for i := 1; i < len(ranks); i++ {
		diff := ranks[i] - ranks[i-1]
		if diff == 0 {
			return false
		}
		gaps += diff - 1
	}
	return jokers >= gaps
}

// IsValid reports whether cards form a valid set or run.
func IsValid(cards []deck.Card) bool {
	return IsValidSet(cards) || IsValidRun(cards)
}

// IsSetShaped reports whether every non-joker card shares one rank. Unlike
// IsValidSet this ignores the size requirement; the bot uses it to classify
// drafts against the lay-down requirements.
func IsSetShaped(cards []deck.Card) bool {
	var rank deck.Rank
	seen := false
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if !seen {
			rank = c.Rank
			seen = true
			continue
		}
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// IsRunShaped reports whether every non-joker card shares one suit.
func IsRunShaped(cards []deck.Card) bool {
	var suit deck.Suit
	seen := false
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if !seen {
			suit = c.Suit
			seen = true
			continue
		}
		if c.Suit != suit {
			return false
		}
	}
	return true
}

// Sort returns the canonical display order of a meld: sets sort by suit with
// jokers trailing, runs sort by rank with jokers slotted into their gap
// positions and leftovers trailing. The input is not modified.
func Sort(cards []deck.Card) []deck.Card {
	jokers := make([]deck.Card, 0, len(cards))
	nonJokers := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokers = append(jokers, c)
		} else {
			nonJokers = append(nonJokers, c)
		}
	}
	if len(nonJokers) == 0 {
		return jokers
	}

	isSet := IsSetShaped(cards)
	isRun := IsRunShaped(cards)

	switch {
	case isSet:
		sorted := append([]deck.Card(nil), nonJokers...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Suit < sorted[j].Suit
		})
		return append(sorted, jokers...)

	case isRun:
		sorted := append([]deck.Card(nil), nonJokers...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Rank < sorted[j].Rank
		})

		out := make([]deck.Card, 0, len(cards))
		remaining := len(jokers)
		for i, c := range sorted {
			out = append(out, c)
			if i == len(sorted)-1 {
				break
			}
			gap := int(sorted[i+1].Rank) - int(c.Rank) - 1
			for g := 0; g < gap && remaining > 0; g++ {
				out = append(out, deck.NewJoker())
				remaining--
			}
		}
		for i := 0; i < remaining; i++ {
			out = append(out, deck.NewJoker())
		}
		return out

	default:
		sorted := append([]deck.Card(nil), nonJokers...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Rank < sorted[j].Rank
		})
		return append(sorted, jokers...)
	}
}

// Same reports multiset equality of two melds, ignoring order.
func Same(a, b []deck.Card) bool {
	if len(a) != len(b) {
		return false
	}

	sortedA := sortForCompare(a)
	sortedB := sortForCompare(b)
	for i := range sortedA {
		if !sortedA[i].Same(sortedB[i]) {
			return false
		}
	}
	return true
}

func sortForCompare(cards []deck.Card) []deck.Card {
	sorted := append([]deck.Card(nil), cards...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})
	return sorted
}
