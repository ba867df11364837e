package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/kalooki/internal/deck"
)

func card(suit deck.Suit, rank deck.Rank) deck.Card {
	return deck.NewCard(suit, rank)
}

func TestExtractRunsGreedy(t *testing.T) {
	hand := []deck.Card{
		card(deck.Diamonds, deck.Ace),
		card(deck.Spades, deck.Jack),
		card(deck.Clubs, deck.Seven),
		card(deck.Spades, deck.Two),
		card(deck.Spades, deck.Seven),
		card(deck.Clubs, deck.Queen),
		card(deck.Clubs, deck.Nine),
		card(deck.Spades, deck.Three),
		card(deck.Diamonds, deck.King),
		card(deck.Diamonds, deck.Five),
		card(deck.Hearts, deck.Six),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Three),
		card(deck.Spades, deck.Four),
	}

	runs := ExtractRuns(hand, nil)
	require.Len(t, runs, 2)
	assert.Equal(t, []deck.Card{
		card(deck.Diamonds, deck.Ace),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Three),
	}, runs[0])
	assert.Equal(t, []deck.Card{
		card(deck.Spades, deck.Two),
		card(deck.Spades, deck.Three),
		card(deck.Spades, deck.Four),
	}, runs[1])
}

func TestExtractRunsJokerBridging(t *testing.T) {
	hand := []deck.Card{
		card(deck.Hearts, deck.Four),
		deck.NewJoker(),
		card(deck.Hearts, deck.Six),
		card(deck.Hearts, deck.Seven),
	}

	runs := ExtractRuns(hand, nil)
	require.Len(t, runs, 1)
	require.Len(t, runs[0], 4)
	assert.True(t, runs[0][1].IsJoker())
	assert.Equal(t, card(deck.Hearts, deck.Four), runs[0][0])
	assert.Equal(t, card(deck.Hearts, deck.Seven), runs[0][3])
}

func TestExtractRunsGapTooWide(t *testing.T) {
	hand := []deck.Card{
		card(deck.Clubs, deck.Two),
		card(deck.Clubs, deck.Five),
		card(deck.Clubs, deck.Eight),
	}
	assert.Empty(t, ExtractRuns(hand, nil))
}

func TestExtractSets(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Hearts, deck.Eight),
		card(deck.Diamonds, deck.Two),
		card(deck.Spades, deck.Queen),
	}

	sets := ExtractSets(hand, nil)
	require.Len(t, sets, 1)
	assert.Len(t, sets[0], 3)
	for _, c := range sets[0] {
		assert.Equal(t, deck.Eight, c.Rank)
	}
}

func TestExtractSetsJokerTopUp(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.King),
		card(deck.Clubs, deck.King),
		deck.NewJoker(),
		card(deck.Diamonds, deck.Two),
	}

	sets := ExtractSets(hand, nil)
	require.Len(t, sets, 1)
	require.Len(t, sets[0], 3)
	assert.True(t, sets[0][2].IsJoker())
}

func TestExtractSetsRespectsUsed(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Hearts, deck.Eight),
	}
	used := map[int]bool{1: true}
	assert.Empty(t, ExtractSets(hand, used))
}

func TestExtractMeldsSharesCards(t *testing.T) {
	// The diamond ace could seed either a set or a run; runs extract first
	// and the set extraction must not reuse it.
	hand := []deck.Card{
		card(deck.Diamonds, deck.Ace),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Three),
		card(deck.Spades, deck.Ace),
		card(deck.Clubs, deck.Ace),
		card(deck.Hearts, deck.Queen),
	}

	melds := ExtractMelds(hand, 1, 1)
	require.Len(t, melds, 1)
	assert.Equal(t, []deck.Card{
		card(deck.Diamonds, deck.Ace),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Three),
	}, melds[0])
}

func TestExtractMeldsTruncatesToRequirements(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Two),
		card(deck.Clubs, deck.Two),
		card(deck.Hearts, deck.Two),
		card(deck.Spades, deck.Nine),
		card(deck.Clubs, deck.Nine),
		card(deck.Hearts, deck.Nine),
	}

	melds := ExtractMelds(hand, 1, 0)
	require.Len(t, melds, 1)

	assert.Empty(t, ExtractMelds(hand, 0, 0))
}
