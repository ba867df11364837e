package bot

import (
	"sort"

	"github.com/lox/kalooki/internal/deck"
)

// Card scores used when ranking discard candidates. Higher means more
// worth keeping.
const (
	scoreCompleteSet  = 5
	scorePair         = 3
	scoreRunNeighbor  = 2
	scoreRunTwoAway   = 1
	scoreRunSandwich  = 3
	scoreJoker        = 99
	duplicatePenalty  = 2
	maxSuggestionGap  = 3
	nearSuggestionGap = 2
)

// Suggestion is a card that would advance an unmet set or run requirement.
// A zero Suit with a non-joker Rank means any suit of that rank helps.
type Suggestion struct {
	Card    deck.Card
	AnySuit bool
}

// SuggestNeededCards lists cards that would complete or extend melds the
// hand is still missing. Set suggestions cover every rank the hand holds
// fewer than three of; run suggestions cover ranks within reach of the
// hand's near-sequences, with the ace counted both low and high.
func SuggestNeededCards(hand []deck.Card, remainingSets, remainingRuns int, sets, runs [][]deck.Card) []Suggestion {
	var suggestions []Suggestion

	if len(sets) < remainingSets {
		counts := make(map[deck.Rank]int)
		for _, c := range hand {
			if !c.IsJoker() {
				counts[c.Rank]++
			}
		}
		ranks := make([]deck.Rank, 0, len(counts))
		for r := range counts {
			ranks = append(ranks, r)
		}
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
		for _, r := range ranks {
			if counts[r] < 3 {
				suggestions = append(suggestions, Suggestion{Card: deck.Card{Rank: r}, AnySuit: true})
			}
		}
	}

	if len(runs) < remainingRuns {
		for _, suit := range deck.Suits {
			suggestions = append(suggestions, suggestRunCards(hand, suit)...)
		}
	}

	// A joker is suggested unconditionally, even once every requirement is
	// met: it substitutes into any meld, so a discarded joker is always
	// worth taking.
	suggestions = append(suggestions, Suggestion{Card: deck.Card{Rank: deck.Joker}})

	return suggestions
}

// suggestRunCards finds ranks close to the hand's cards of one suit.
// Adjacent pairs and near-pairs generate suggestions for the gaps between
// and around them.
func suggestRunCards(hand []deck.Card, suit deck.Suit) []Suggestion {
	seen := make(map[int]bool)
	for _, c := range hand {
		if !c.IsJoker() && c.Suit == suit {
			seen[int(c.Rank)] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	if seen[int(deck.Ace)] {
		seen[deck.AceHigh] = true
	}

	ranks := make([]int, 0, len(seen))
	for r := range seen {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	var out []Suggestion
	add := func(rank int) {
		if rank < 1 || rank > deck.AceHigh {
			return
		}
		if rank == deck.AceHigh {
			rank = int(deck.Ace)
		}
		if seen[rank] {
			return
		}
		out = append(out, Suggestion{Card: deck.Card{Rank: deck.Rank(rank), Suit: suit}})
	}

	for i := 0; i < len(ranks)-1; i++ {
		lo, hi := ranks[i], ranks[i+1]
		gap := hi - lo
		if gap > maxSuggestionGap {
			continue
		}
		for r := lo + 1; r < hi; r++ {
			add(r)
		}
		if gap <= nearSuggestionGap {
			add(lo - 1)
			add(hi + 1)
		}
		if gap == 1 {
			add(lo - 2)
			add(hi + 2)
		}
	}
	return out
}

// ContainsSuggested reports whether card satisfies one of the suggestions.
// Jokers satisfy the joker suggestion; rank-only suggestions match any suit.
func ContainsSuggested(suggestions []Suggestion, card deck.Card) bool {
	for _, s := range suggestions {
		if s.Card.IsJoker() {
			if card.IsJoker() {
				return true
			}
			continue
		}
		if card.IsJoker() || card.Rank != s.Card.Rank {
			continue
		}
		if s.AnySuit || card.Suit == s.Card.Suit {
			return true
		}
	}
	return false
}

// SuggestDiscards scores every card in the hand by how much it contributes
// to the melds still required and returns the cards sharing the lowest
// score. Jokers score high enough that they are never suggested; identical
// duplicates beyond the first are penalised so redundant copies go first.
func SuggestDiscards(hand []deck.Card, remainingSets, remainingRuns int) []deck.Card {
	if len(hand) == 0 {
		return nil
	}

	scores := make([]int, len(hand))
	for i, c := range hand {
		if c.IsJoker() {
			scores[i] = scoreJoker
			continue
		}
		if remainingSets > 0 {
			scores[i] += scoreForSets(hand, c)
		}
		if remainingRuns > 0 {
			scores[i] += scoreForRuns(hand, c)
		}
	}

	copies := make(map[deck.Card]int)
	for i, c := range hand {
		if c.IsJoker() {
			continue
		}
		copies[c]++
		if copies[c] > 1 {
			scores[i] -= duplicatePenalty
		}
	}

	min := scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
	}

	var out []deck.Card
	for i, c := range hand {
		if scores[i] == min {
			out = append(out, c)
		}
	}
	return out
}

func scoreForSets(hand []deck.Card, card deck.Card) int {
	count := 0
	for _, c := range hand {
		if !c.IsJoker() && c.Rank == card.Rank {
			count++
		}
	}
	switch {
	case count >= 3:
		return scoreCompleteSet
	case count == 2:
		return scorePair
	default:
		return 0
	}
}

func scoreForRuns(hand []deck.Card, card deck.Card) int {
	seen := make(map[deck.Rank]bool)
	for _, c := range hand {
		if !c.IsJoker() && c.Suit == card.Suit && c.Rank != card.Rank {
			seen[c.Rank] = true
		}
	}

	score := 0
	above := seen[card.Rank+1]
	below := seen[card.Rank-1]
	if above {
		score += scoreRunNeighbor
	}
	if below {
		score += scoreRunNeighbor
	}
	if above && below {
		score += scoreRunSandwich
	}
	if seen[card.Rank+2] {
		score += scoreRunTwoAway
	}
	if seen[card.Rank-2] {
		score += scoreRunTwoAway
	}
	return score
}

// ChooseWorstCard picks the discard from the candidates, preferring the
// highest rank and never a joker unless nothing else remains. Falls back
// to the whole hand when no candidates were suggested.
func ChooseWorstCard(hand, candidates []deck.Card) deck.Card {
	if len(candidates) == 0 {
		candidates = hand
	}

	var worst deck.Card
	found := false
	for _, c := range candidates {
		if c.IsJoker() {
			continue
		}
		if !found || c.Rank > worst.Rank {
			worst = c
			found = true
		}
	}
	if !found {
		return candidates[0]
	}
	return worst
}
