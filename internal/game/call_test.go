package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/game"
)

// openCallWindow drives a four player game to the point where p0 has
// discarded: p1 is current, p0 just discarded, p2 and p3 may call.
func openCallWindow(t *testing.T) *game.Game {
	t.Helper()
	g := newStartedGame(t, 4)
	require.NoError(t, g.Draw("p0", false))
	require.NoError(t, g.ReadyToDiscard("p0"))
	require.NoError(t, g.Discard("p0", g.Players[0].Hand[0]))
	require.Equal(t, game.PhaseWaitingOnCall, g.Phase)
	return g
}

func TestCallEligibility(t *testing.T) {
	g := openCallWindow(t)

	// The current player and the previous discarder cannot call.
	assert.ErrorIs(t, g.Call("p1"), game.ErrCallIneligible)
	assert.ErrorIs(t, g.Call("p0"), game.ErrCallIneligible)
	assert.ErrorIs(t, g.Call("nobody"), game.ErrPlayerNotFound)

	assert.False(t, g.CallEligible("p0"))
	assert.False(t, g.CallEligible("p1"))
	assert.True(t, g.CallEligible("p2"))
	assert.True(t, g.CallEligible("p3"))

	require.NoError(t, g.Call("p2"))
	assert.True(t, g.CallRequest.Pending())
	assert.Equal(t, "p2", g.CallRequest.CallerID)
	assert.False(t, g.CallAvailable)

	// Only one call per window.
	assert.ErrorIs(t, g.Call("p3"), game.ErrCallPending)
	assert.False(t, g.CallEligible("p3"))
}

func TestCallWrongPhase(t *testing.T) {
	g := newStartedGame(t, 4)
	assert.ErrorIs(t, g.Call("p2"), game.ErrWrongPhase)
}

func TestRespondToCallApproved(t *testing.T) {
	g := openCallWindow(t)
	require.NoError(t, g.Call("p2"))

	caller := g.Players[2]
	callerCards := len(caller.Hand)
	deckBefore := g.DeckLen()
	top, _ := g.DiscardTop()

	resolved, fromDiscard, err := g.RespondToCall(true)
	require.NoError(t, err)
	assert.Equal(t, "p2", resolved.CallerID)
	require.NotNil(t, resolved.Approved)
	assert.True(t, *resolved.Approved)

	// Caller takes the discard top plus a penalty card from the deck.
	assert.Len(t, caller.Hand, callerCards+2)
	assert.True(t, deck.Contains(caller.Hand, top))
	assert.Equal(t, deckBefore-1, g.DeckLen())

	// The current player's forced draw comes from the deck.
	assert.False(t, fromDiscard)
	assert.Equal(t, game.PhaseDrawingAfterCall, g.Phase)
	assert.False(t, g.CallRequest.Pending())

	require.NoError(t, g.Draw("p1", fromDiscard))
	assert.Equal(t, game.PhaseMeld, g.Phase)
	assert.Equal(t, g.Rules.TotalCards(), g.CardsInPlay())
}

func TestRespondToCallDenied(t *testing.T) {
	g := openCallWindow(t)
	require.NoError(t, g.Call("p2"))

	caller := g.Players[2]
	callerCards := len(caller.Hand)
	discardBefore := len(g.DiscardPile)
	top, _ := g.DiscardTop()

	resolved, fromDiscard, err := g.RespondToCall(false)
	require.NoError(t, err)
	require.NotNil(t, resolved.Approved)
	assert.False(t, *resolved.Approved)

	// Nothing moved; the caller gets nothing.
	assert.Len(t, caller.Hand, callerCards)
	assert.Len(t, g.DiscardPile, discardBefore)

	// The current player's forced draw takes the denied discard top.
	assert.True(t, fromDiscard)
	assert.Equal(t, game.PhaseDrawingAfterCall, g.Phase)

	require.NoError(t, g.Draw("p1", fromDiscard))
	assert.True(t, deck.Contains(g.Players[1].Hand, top))
	assert.Equal(t, game.PhaseMeld, g.Phase)
	assert.Equal(t, g.Rules.TotalCards(), g.CardsInPlay())
}

func TestRespondWithoutPendingCall(t *testing.T) {
	g := openCallWindow(t)
	_, _, err := g.RespondToCall(true)
	assert.ErrorIs(t, err, game.ErrNoCallPending)
}

func TestExpireCallWindow(t *testing.T) {
	g := openCallWindow(t)
	deckBefore := g.DeckLen()
	discardBefore := len(g.DiscardPile)

	require.NoError(t, g.ExpireCallWindow())
	assert.Equal(t, game.PhaseDrawing, g.Phase)
	assert.False(t, g.CallAvailable)
	assert.Equal(t, deckBefore, g.DeckLen())
	assert.Len(t, g.DiscardPile, discardBefore)

	// Expiry with a pending call is rejected; the response path wins.
	g2 := openCallWindow(t)
	require.NoError(t, g2.Call("p2"))
	assert.ErrorIs(t, g2.ExpireCallWindow(), game.ErrCallPending)
}

func TestCallIneligibleAfterWindowCloses(t *testing.T) {
	g := openCallWindow(t)
	require.NoError(t, g.ExpireCallWindow())
	assert.ErrorIs(t, g.Call("p2"), game.ErrWrongPhase)
}
