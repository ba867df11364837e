// Package bot implements hand analysis heuristics and the per-phase
// strategy that drives autonomous players. The strategy issues the same
// game commands a human would; it holds no private state of its own.
package bot

import (
	"sort"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/meld"
)

// ExtractSets greedily extracts non-overlapping sets from the hand: cards
// grouped by rank, topped up with unused jokers. Indices recorded in used
// are skipped and extracted cards are added to it; pass nil for a fresh
// extraction.
func ExtractSets(hand []deck.Card, used map[int]bool) [][]deck.Card {
	if used == nil {
		used = make(map[int]bool)
	}

	byRank := make(map[deck.Rank][]int)
	var jokerIdx []int
	for i, c := range hand {
		if used[i] {
			continue
		}
		if c.IsJoker() {
			jokerIdx = append(jokerIdx, i)
		} else {
			byRank[c.Rank] = append(byRank[c.Rank], i)
		}
	}

	ranks := make([]deck.Rank, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	var melds [][]deck.Card
	for _, r := range ranks {
		group := availableIndices(byRank[r], used)
		jokers := availableIndices(jokerIdx, used)
		if len(group)+len(jokers) < meld.MinSize {
			continue
		}

		combined := append(append([]int(nil), group...), jokers...)
		cards := make([]deck.Card, 0, len(combined))
		for _, i := range combined {
			cards = append(cards, hand[i])
			used[i] = true
		}
		melds = append(melds, cards)
	}
	return melds
}

// ExtractRuns greedily extracts non-overlapping runs from the hand: cards
// grouped by suit (in order of first appearance), sorted by rank, extended
// across gaps by consuming available jokers. A run closes when a gap cannot
// be bridged or would duplicate a rank; leftover jokers pad the trailing
// run. Runs shorter than the minimum are discarded.
func ExtractRuns(hand []deck.Card, used map[int]bool) [][]deck.Card {
	if used == nil {
		used = make(map[int]bool)
	}

	bySuit := make(map[deck.Suit][]int)
	var suitOrder []deck.Suit
	var jokerIdx []int
	for i, c := range hand {
		if used[i] {
			continue
		}
		if c.IsJoker() {
			jokerIdx = append(jokerIdx, i)
			continue
		}
		if _, seen := bySuit[c.Suit]; !seen {
			suitOrder = append(suitOrder, c.Suit)
		}
		bySuit[c.Suit] = append(bySuit[c.Suit], i)
	}

	var melds [][]deck.Card
	for _, suit := range suitOrder {
		indices := availableIndices(bySuit[suit], used)
		sort.Slice(indices, func(a, b int) bool {
			return hand[indices[a]].Rank < hand[indices[b]].Rank
		})

		var run []int
		jokers := availableIndices(jokerIdx, used)

		commit := func() {
			if len(run) < meld.MinSize {
				return
			}
			cards := make([]deck.Card, 0, len(run))
			for _, i := range run {
				cards = append(cards, hand[i])
				used[i] = true
			}
			melds = append(melds, cards)
		}

		for _, idx := range indices {
			if len(run) == 0 {
				run = append(run, idx)
				continue
			}

			last := hand[run[len(run)-1]].Rank
			gap := int(hand[idx].Rank) - int(last)

			switch {
			case gap == 1:
				run = append(run, idx)
			case gap > 1 && len(jokers) >= gap-1:
				for g := 1; g < gap; g++ {
					run = append(run, jokers[len(jokers)-1])
					jokers = jokers[:len(jokers)-1]
				}
				run = append(run, idx)
			default:
				// Unbridgeable gap or duplicate rank; close out and restart.
				commit()
				run = []int{idx}
				jokers = availableIndices(jokerIdx, used)
			}
		}

		for len(jokers) > 0 {
			run = append(run, jokers[len(jokers)-1])
			jokers = jokers[:len(jokers)-1]
		}
		commit()
	}
	return melds
}

// ExtractMelds builds the bot's lay-down proposal: runs first, then sets,
// truncated to what the requirements still need, sharing one used set so
// melds never overlap.
func ExtractMelds(hand []deck.Card, remainingSets, remainingRuns int) [][]deck.Card {
	used := make(map[int]bool)

	var runs, sets [][]deck.Card
	if remainingRuns > 0 {
		runs = ExtractRuns(hand, used)
		if len(runs) > remainingRuns {
			runs = runs[:remainingRuns]
		}
	}
	if remainingSets > 0 {
		sets = ExtractSets(hand, used)
		if len(sets) > remainingSets {
			sets = sets[:remainingSets]
		}
	}

	return append(sets, runs...)
}

// availableIndices filters out indices already consumed by other melds.
func availableIndices(indices []int, used map[int]bool) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if !used[i] {
			out = append(out, i)
		}
	}
	return out
}
