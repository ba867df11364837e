package game

// The call protocol lets a waiting player claim the just-discarded card
// ahead of the normal draw order. Eligibility excludes the player who just
// discarded and the player about to draw; approval authority rests with the
// current player. The timers racing over this window live in the session
// scheduler; this file holds only the state transitions.

// Call opens a call request on behalf of playerID. Only one request is
// accepted per window; a second attempt is rejected until resolved.
func (g *Game) Call(playerID string) error {
	if g.Phase != PhaseWaitingOnCall {
		return ErrWrongPhase
	}
	if g.CallRequest.Pending() {
		return ErrCallPending
	}
	if !g.CallAvailable {
		return ErrCallNotAvailable
	}

	caller := g.PlayerByID(playerID)
	if caller == nil {
		return ErrPlayerNotFound
	}
	if playerID == g.CurrentPlayer().ID || playerID == g.Players[g.PreviousPlayerIndex()].ID {
		return ErrCallIneligible
	}

	g.CallRequest = CallRequest{CallerID: caller.ID, CallerName: caller.Name}
	g.CallAvailable = false
	return nil
}

// RespondToCall resolves the pending call with the current player's verdict.
// Approved: the caller takes the discard top plus one penalty card from the
// shoe, and the current player's turn resumes with a forced deck draw.
// Denied: the discard top stays put and the current player's forced draw
// takes it directly. Either way the phase moves to the drawing_after_call
// sub-state; the forced draw itself is a Draw call whose source is the
// second return value. The resolved request is returned for event emission.
func (g *Game) RespondToCall(allow bool) (resolved CallRequest, drawFromDiscard bool, err error) {
	if !g.CallRequest.Pending() {
		return CallRequest{}, false, ErrNoCallPending
	}

	caller := g.PlayerByID(g.CallRequest.CallerID)
	if caller == nil || g.CurrentPlayer() == nil {
		return CallRequest{}, false, ErrPlayerNotFound
	}

	// Validate every card source up front so a failure leaves state intact:
	// the caller's two cards plus the current player's forced draw.
	if len(g.DiscardPile) == 0 {
		return CallRequest{}, false, ErrEmptyPile
	}
	if allow && g.shoe.Len() < 2 {
		return CallRequest{}, false, ErrEmptyPile
	}

	resolved = g.CallRequest
	resolved.Approved = &allow

	if allow {
		top := g.DiscardPile[len(g.DiscardPile)-1]
		g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
		penalty, _ := g.shoe.Draw()
		caller.Hand = append(caller.Hand, top, penalty)
	}

	g.CallRequest = CallRequest{}
	g.CallAvailable = false
	g.Phase = PhaseDrawingAfterCall
	return resolved, !allow, nil
}

// ExpireCallWindow closes an uncalled window: the turn simply proceeds to
// the drawing phase with no card movement.
func (g *Game) ExpireCallWindow() error {
	if g.Phase != PhaseWaitingOnCall {
		return ErrWrongPhase
	}
	if g.CallRequest.Pending() {
		return ErrCallPending
	}
	g.CallAvailable = false
	g.Phase = PhaseDrawing
	return nil
}

// CallEligible reports whether the player may open a call right now.
func (g *Game) CallEligible(playerID string) bool {
	if g.Phase != PhaseWaitingOnCall || !g.CallAvailable || g.CallRequest.Pending() {
		return false
	}
	cur := g.CurrentPlayer()
	if cur == nil {
		return false
	}
	return playerID != cur.ID && playerID != g.Players[g.PreviousPlayerIndex()].ID
}
