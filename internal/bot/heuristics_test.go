package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/kalooki/internal/deck"
)

func TestSuggestDiscards(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Five),
		card(deck.Spades, deck.Nine),
	}

	// Only a run is still needed, so the eight pair scores nothing and the
	// spade neighbours are the cards worth keeping.
	out := SuggestDiscards(hand, 0, 1)
	assert.Equal(t, []deck.Card{
		card(deck.Clubs, deck.Eight),
		card(deck.Diamonds, deck.Two),
		card(deck.Diamonds, deck.Five),
	}, out)
}

func TestSuggestDiscardsKeepsPairsForSets(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Diamonds, deck.Two),
	}

	out := SuggestDiscards(hand, 1, 0)
	assert.Equal(t, []deck.Card{card(deck.Diamonds, deck.Two)}, out)
}

func TestSuggestDiscardsNeverJoker(t *testing.T) {
	hand := []deck.Card{
		deck.NewJoker(),
		card(deck.Diamonds, deck.Two),
	}
	out := SuggestDiscards(hand, 1, 1)
	assert.Equal(t, []deck.Card{card(deck.Diamonds, deck.Two)}, out)
}

func TestSuggestDiscardsPenalisesDuplicates(t *testing.T) {
	hand := []deck.Card{
		card(deck.Hearts, deck.Six),
		card(deck.Hearts, deck.Six),
		card(deck.Hearts, deck.Seven),
	}

	// The second six has a neighbour too, but the duplicate penalty makes
	// it the cheapest card to shed.
	out := SuggestDiscards(hand, 0, 1)
	assert.Equal(t, []deck.Card{card(deck.Hearts, deck.Six)}, out)
}

func TestChooseWorstCard(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Two),
		card(deck.Clubs, deck.King),
		card(deck.Hearts, deck.Nine),
	}

	assert.Equal(t, card(deck.Clubs, deck.King), ChooseWorstCard(hand, hand))

	// Empty candidates fall back to the whole hand.
	assert.Equal(t, card(deck.Clubs, deck.King), ChooseWorstCard(hand, nil))

	// Jokers only go when there is no alternative.
	assert.Equal(t, card(deck.Hearts, deck.Nine),
		ChooseWorstCard(hand, []deck.Card{deck.NewJoker(), card(deck.Hearts, deck.Nine)}))
	assert.True(t, ChooseWorstCard(hand, []deck.Card{deck.NewJoker()}).IsJoker())
}

func TestSuggestNeededCardsForSets(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
	}

	suggestions := SuggestNeededCards(hand, 1, 0, nil, nil)
	require.NotEmpty(t, suggestions)

	assert.True(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Eight)))
	assert.True(t, ContainsSuggested(suggestions, card(deck.Diamonds, deck.Eight)))
	assert.True(t, ContainsSuggested(suggestions, deck.NewJoker()))
	assert.False(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Nine)))
}

func TestSuggestNeededCardsForRuns(t *testing.T) {
	hand := []deck.Card{
		card(deck.Hearts, deck.Five),
		card(deck.Hearts, deck.Six),
	}

	suggestions := SuggestNeededCards(hand, 0, 1, nil, nil)

	// Neighbours and two-away ranks of the same suit help; other suits do
	// not.
	assert.True(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Four)))
	assert.True(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Seven)))
	assert.True(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Three)))
	assert.True(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Eight)))
	assert.False(t, ContainsSuggested(suggestions, card(deck.Spades, deck.Four)))
	assert.False(t, ContainsSuggested(suggestions, card(deck.Hearts, deck.Jack)))
}

func TestSuggestNeededCardsAceHigh(t *testing.T) {
	hand := []deck.Card{
		card(deck.Spades, deck.Queen),
		card(deck.Spades, deck.King),
	}

	suggestions := SuggestNeededCards(hand, 0, 1, nil, nil)

	// The ace above the king is suggested at its natural rank.
	assert.True(t, ContainsSuggested(suggestions, card(deck.Spades, deck.Ace)))
	assert.True(t, ContainsSuggested(suggestions, card(deck.Spades, deck.Jack)))
}

func TestSuggestNeededCardsSatisfiedRequirements(t *testing.T) {
	hand := []deck.Card{
		card(deck.Hearts, deck.Five),
		card(deck.Hearts, deck.Six),
	}

	// With both requirements met, only the standing joker suggestion is left.
	suggestions := SuggestNeededCards(hand, 0, 0, nil, nil)
	require.Len(t, suggestions, 1)
	assert.True(t, suggestions[0].Card.IsJoker())
}
