package game

import "errors"

// Sentinel errors returned by the game mutators. The transport layer maps
// these onto error events; none of them leave state modified.
var (
	ErrWrongTurn         = errors.New("not your turn")
	ErrWrongPhase        = errors.New("action not allowed in current phase")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrInvalidMeld       = errors.New("not a valid set or run")
	ErrMeldRequirements  = errors.New("lay down does not meet meld requirements")
	ErrNoSuchMeld        = errors.New("no such table meld")
	ErrNoSuchDraft       = errors.New("no such draft meld")
	ErrEmptyPile         = errors.New("no cards left to draw")
	ErrCallNotAvailable  = errors.New("call not available")
	ErrCallIneligible    = errors.New("player not eligible to call")
	ErrCallPending       = errors.New("a call is already pending")
	ErrNoCallPending     = errors.New("no call pending")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerNameTaken   = errors.New("player name already taken")
	ErrInvalidHandOrder  = errors.New("new hand order must be a permutation of the hand")
	ErrInvalidDraftOrder = errors.New("new draft order must be a permutation of the draft")
	ErrNotEnoughPlayers  = errors.New("need at least two players")
	ErrGameStarted       = errors.New("game already started")
)
