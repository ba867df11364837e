package game

import (
	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/meld"
)

// Draw moves one card from the shoe or the discard pile into the current
// player's hand and advances to the meld phase. PhaseDrawingAfterCall covers
// the single draw performed when a call resolves.
func (g *Game) Draw(playerID string, fromDiscard bool) error {
	p, err := g.requireCurrent(playerID, PhaseDrawing, PhaseDrawingAfterCall)
	if err != nil {
		return err
	}

	var card deck.Card
	if fromDiscard {
		top, ok := g.DiscardTop()
		if !ok {
			return ErrEmptyPile
		}
		card = top
		g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	} else {
		drawn, ok := g.shoe.Draw()
		if !ok {
			return ErrEmptyPile
		}
		card = drawn
	}

	p.Hand = append(p.Hand, card)
	g.Phase = PhaseMeld
	return nil
}

// ReadyToDiscard closes the meld phase without card movement, letting the
// player finish drafting before committing to a discard.
func (g *Game) ReadyToDiscard(playerID string) error {
	if _, err := g.requireCurrent(playerID, PhaseMeld); err != nil {
		return err
	}
	g.Phase = PhaseDiscarding
	return nil
}

// Discard moves one card from the current player's hand to the discard pile.
// An empty hand and empty drafts immediately after the discard wins the
// game; otherwise the turn passes and the call window opens.
func (g *Game) Discard(playerID string, card deck.Card) error {
	p, err := g.requireCurrent(playerID, PhaseDiscarding)
	if err != nil {
		return err
	}
	if !p.RemoveFromHand(card) {
		return ErrCardNotInHand
	}
	g.DiscardPile = append(g.DiscardPile, card)

	if p.HasWon() {
		g.finishWith(p)
		return nil
	}

	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	g.Phase = PhaseWaitingOnCall
	g.CallAvailable = true
	g.CallRequest = CallRequest{}
	return nil
}

// LayDownDrafts commits every draft meld to the table. Each draft must be
// individually valid; the first lay-down additionally has to meet the
// set/run/meld count requirements of the rules.
func (g *Game) LayDownDrafts(playerID string) error {
	p, err := g.requireCurrent(playerID, PhaseMeld)
	if err != nil {
		return err
	}

	for _, d := range p.Drafts {
		if !validDraft(d) {
			return ErrInvalidMeld
		}
	}

	if !p.HasLaidDown {
		sets, runs := 0, 0
		for _, d := range p.Drafts {
			if meld.IsValidSet(d) {
				sets++
			}
			if meld.IsValidRun(d) {
				runs++
			}
		}
		if sets < g.Rules.RequiredSets || runs < g.Rules.RequiredRuns || len(p.Drafts) < g.Rules.RequiredMelds {
			return ErrMeldRequirements
		}
	}

	for _, d := range p.Drafts {
		g.TableMelds = append(g.TableMelds, TableMeld{
			OwnerID: p.ID,
			Cards:   meld.Sort(d),
		})
	}
	p.Drafts = nil
	p.HasLaidDown = true

	if p.HasWon() {
		g.finishWith(p)
	}
	return nil
}

// AddToTableMeld moves cards from the current player's hand onto an existing
// table meld, provided the extended meld is still valid.
func (g *Game) AddToTableMeld(playerID string, meldIndex int, cards []deck.Card) error {
	p, err := g.requireCurrent(playerID, PhaseMeld, PhaseDiscarding)
	if err != nil {
		return err
	}
	if meldIndex < 0 || meldIndex >= len(g.TableMelds) {
		return ErrNoSuchMeld
	}
	if len(cards) == 0 {
		return ErrCardNotInHand
	}
	if !p.HoldsAll(cards) {
		return ErrCardNotInHand
	}

	extended := append(append([]deck.Card(nil), g.TableMelds[meldIndex].Cards...), cards...)
	if !meld.IsValid(extended) {
		return ErrInvalidMeld
	}

	for _, c := range cards {
		p.RemoveFromHand(c)
	}
	g.TableMelds[meldIndex].Cards = meld.Sort(extended)

	if p.HasWon() {
		g.finishWith(p)
	}
	return nil
}

// requireEditor validates draft/hand editing commands: any seated player may
// edit their own cards while the game is live.
func (g *Game) requireEditor(playerID string) (*Player, error) {
	if g.Phase == PhaseFinished {
		return nil, ErrWrongPhase
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// AddDraftMeld moves cards from the player's hand into a new draft meld.
// Drafts need not be valid yet; validity is enforced at lay-down.
func (g *Game) AddDraftMeld(playerID string, cards []deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}
	if len(cards) == 0 || !p.HoldsAll(cards) {
		return ErrCardNotInHand
	}

	for _, c := range cards {
		p.RemoveFromHand(c)
	}
	p.Drafts = append(p.Drafts, append([]deck.Card(nil), cards...))
	return nil
}

// RemoveDraftMeld dissolves the draft matching cards (multiset equality) and
// returns its cards to the hand.
func (g *Game) RemoveDraftMeld(playerID string, cards []deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}

	for i, d := range p.Drafts {
		if meld.Same(d, cards) {
			p.Hand = append(p.Hand, d...)
			p.Drafts = append(p.Drafts[:i], p.Drafts[i+1:]...)
			return nil
		}
	}
	return ErrNoSuchDraft
}

// RemoveCardFromDraft returns one card from a draft to the hand, dissolving
// the draft when it empties.
func (g *Game) RemoveCardFromDraft(playerID string, draftIndex int, card deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}
	if draftIndex < 0 || draftIndex >= len(p.Drafts) {
		return ErrNoSuchDraft
	}

	rest, ok := deck.Remove(p.Drafts[draftIndex], card)
	if !ok {
		return ErrCardNotInHand
	}
	p.Hand = append(p.Hand, card)
	if len(rest) == 0 {
		p.Drafts = append(p.Drafts[:draftIndex], p.Drafts[draftIndex+1:]...)
	} else {
		p.Drafts[draftIndex] = rest
	}
	return nil
}

// ReorderDraftMeld replaces a draft's card order. The new order must be a
// permutation of the existing draft.
func (g *Game) ReorderDraftMeld(playerID string, draftIndex int, newOrder []deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}
	if draftIndex < 0 || draftIndex >= len(p.Drafts) {
		return ErrNoSuchDraft
	}
	if !meld.Same(p.Drafts[draftIndex], newOrder) {
		return ErrInvalidDraftOrder
	}
	p.Drafts[draftIndex] = append([]deck.Card(nil), newOrder...)
	return nil
}

// AddCardsToDraft moves cards from the hand into an existing draft.
func (g *Game) AddCardsToDraft(playerID string, draftIndex int, cards []deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}
	if draftIndex < 0 || draftIndex >= len(p.Drafts) {
		return ErrNoSuchDraft
	}
	if len(cards) == 0 || !p.HoldsAll(cards) {
		return ErrCardNotInHand
	}

	for _, c := range cards {
		p.RemoveFromHand(c)
	}
	p.Drafts[draftIndex] = append(p.Drafts[draftIndex], cards...)
	return nil
}

// ReorderHand replaces the player's hand order. The new order must be a
// permutation of the existing hand; the order is preserved for the UI.
func (g *Game) ReorderHand(playerID string, newOrder []deck.Card) error {
	p, err := g.requireEditor(playerID)
	if err != nil {
		return err
	}
	if !meld.Same(p.Hand, newOrder) {
		return ErrInvalidHandOrder
	}
	p.Hand = append([]deck.Card(nil), newOrder...)
	return nil
}
