package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/game"
)

func testStrategy() *Strategy {
	return NewStrategy(log.New(io.Discard))
}

// discardGame builds a minimal game whose discard top and player hand are
// under test control. The strategy only reads these fields for its call and
// draw decisions.
func discardGame(top deck.Card, hand []deck.Card) (*game.Game, *game.Player) {
	p := &game.Player{ID: "bot", Name: "Bot 1", Hand: hand, IsBot: true}
	g := game.New("test", game.DefaultRules(), deck.NewRand(1))
	g.Players = append(g.Players, p)
	g.DiscardPile = []deck.Card{top}
	return g, p
}

func TestShouldCallWhenTopHelps(t *testing.T) {
	s := testStrategy()

	// A third eight completes the set the pair is waiting on.
	g, p := discardGame(card(deck.Hearts, deck.Eight), []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Diamonds, deck.Two),
	})
	assert.True(t, s.ShouldCall(g, p))

	// An unrelated card is left alone.
	g, p = discardGame(card(deck.Hearts, deck.King), []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Diamonds, deck.Two),
	})
	assert.False(t, s.ShouldCall(g, p))
}

func TestShouldCallNeverAfterLayDown(t *testing.T) {
	s := testStrategy()
	g, p := discardGame(card(deck.Hearts, deck.Eight), []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
	})
	p.HasLaidDown = true
	assert.False(t, s.ShouldCall(g, p))
}

func TestShouldCallAlwaysWantsJoker(t *testing.T) {
	s := testStrategy()
	g, p := discardGame(deck.NewJoker(), []deck.Card{
		card(deck.Diamonds, deck.Two),
		card(deck.Hearts, deck.Nine),
	})
	assert.True(t, s.ShouldCall(g, p))
}

func TestAllowCall(t *testing.T) {
	s := testStrategy()

	// The current player refuses when it wants the top card itself.
	g, p := discardGame(card(deck.Hearts, deck.Eight), []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
	})
	assert.False(t, s.AllowCall(g, p))

	// A useless top card is let go.
	g, p = discardGame(card(deck.Hearts, deck.King), []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
	})
	assert.True(t, s.AllowCall(g, p))

	// Laid-down players have nothing to gain and always approve.
	g, p = discardGame(deck.NewJoker(), nil)
	p.HasLaidDown = true
	assert.True(t, s.AllowCall(g, p))
}

func TestPlayDrawFallsBackToDiscardWhenShoeEmpty(t *testing.T) {
	s := testStrategy()

	// No decks means an empty shoe from the start, and a king the bot
	// would normally leave on the pile.
	rules := game.DefaultRules()
	rules.NumDecks = 0
	rules.Jokers = 0
	g := game.New("test", rules, deck.NewRand(1))
	p := &game.Player{ID: "bot", Name: "Bot 1", IsBot: true, Hand: []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
	}}
	g.Players = append(g.Players, p)
	g.Phase = game.PhaseDrawing
	g.DiscardPile = []deck.Card{card(deck.Hearts, deck.King)}

	assert.NoError(t, s.PlayDraw(g, p))
	assert.Empty(t, g.DiscardPile)
	assert.Len(t, p.Hand, 3)
	assert.Equal(t, game.PhaseMeld, g.Phase)
}

func TestRemainingRequirements(t *testing.T) {
	s := testStrategy()
	g, p := discardGame(card(deck.Hearts, deck.Two), nil)

	sets, runs := s.remainingRequirements(g, p)
	assert.Equal(t, g.Rules.RequiredSets, sets)
	assert.Equal(t, g.Rules.RequiredRuns, runs)

	// A set-shaped draft covers the set requirement.
	p.Drafts = append(p.Drafts, []deck.Card{
		card(deck.Spades, deck.Eight),
		card(deck.Clubs, deck.Eight),
		card(deck.Hearts, deck.Eight),
	})
	sets, runs = s.remainingRequirements(g, p)
	assert.Equal(t, g.Rules.RequiredSets-1, sets)
	assert.Equal(t, g.Rules.RequiredRuns, runs)

	p.HasLaidDown = true
	sets, runs = s.remainingRequirements(g, p)
	assert.Zero(t, sets)
	assert.Zero(t, runs)
}
