// Package game implements the authoritative Kalooki game state: the single
// root aggregate per session and the pure mutators the transport and bot
// layers drive it with. All mutators validate before touching state; a
// returned error means nothing changed.
package game

import (
	"encoding/json"
	rand "math/rand/v2"
	"time"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/meld"
)

// TableMeld is a meld committed to the shared table. Membership is immutable
// once laid; it grows only through the add-to-meld operation.
type TableMeld struct {
	OwnerID string      `json:"playerId"`
	Cards   []deck.Card `json:"cards"`
}

// CallRequest tracks the single outstanding call, if any. Approved is nil
// while the request awaits the current player's decision.
type CallRequest struct {
	CallerID   string `json:"callerId,omitempty"`
	CallerName string `json:"callerName,omitempty"`
	Approved   *bool  `json:"approved,omitempty"`
}

// Pending reports whether a call awaits a response.
func (cr CallRequest) Pending() bool {
	return cr.CallerID != "" && cr.Approved == nil
}

// Game is the root aggregate for one session. Turn order is player slice
// order; CurrentPlayerIndex always indexes an existing player once started.
type Game struct {
	ID                 string
	Players            []*Player
	DiscardPile        []deck.Card
	TableMelds         []TableMeld
	Phase              Phase
	CurrentPlayerIndex int
	WinnerID           string
	CallAvailable      bool
	CallRequest        CallRequest
	Rules              Rules

	shoe *deck.Deck
	rng  *rand.Rand
}

// New creates an empty game in the waiting phase. The rng may be nil, in
// which case shuffles are time-seeded.
func New(id string, rules Rules, rng *rand.Rand) *Game {
	if rng == nil {
		rng = deck.NewRand(time.Now().UnixNano())
	}
	return &Game{
		ID:    id,
		Phase: PhaseWaiting,
		Rules: rules,
		shoe:  deck.New(rules.NumDecks, rules.Jokers, rng),
		rng:   rng,
	}
}

// Join seats a new human player. Names must be unique; they are the stable
// identity a reconnect rebinds to.
func (g *Game) Join(id, name string) error {
	return g.seat(id, name, false)
}

// AddBot seats an autonomous player.
func (g *Game) AddBot(id, name string) error {
	return g.seat(id, name, true)
}

func (g *Game) seat(id, name string, isBot bool) error {
	if g.Phase != PhaseWaiting {
		return ErrGameStarted
	}
	if g.PlayerByName(name) != nil {
		return ErrPlayerNameTaken
	}
	g.Players = append(g.Players, &Player{ID: id, Name: name, IsBot: isBot})
	return nil
}

// Rejoin rebinds the named seat to a new transport identity and returns the
// seat. The game state is untouched beyond the identity swap.
func (g *Game) Rejoin(name, newID string) (*Player, error) {
	p := g.PlayerByName(name)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	p.ID = newID
	return p, nil
}

// Start shuffles, deals a hand to every player, seeds the discard pile with
// one card and enters the drawing phase.
func (g *Game) Start() error {
	if g.Phase != PhaseWaiting {
		return ErrGameStarted
	}
	if len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	g.deal()
	return nil
}

// Reset re-deals the same roster from a freshly shuffled shoe, clearing all
// melds, drafts and the winner.
func (g *Game) Reset() error {
	if len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	g.shoe = deck.New(g.Rules.NumDecks, g.Rules.Jokers, g.rng)
	g.DiscardPile = nil
	g.TableMelds = nil
	g.WinnerID = ""
	g.CallAvailable = false
	g.CallRequest = CallRequest{}
	for _, p := range g.Players {
		p.Hand = nil
		p.Drafts = nil
		p.HasLaidDown = false
	}
	g.deal()
	return nil
}

// deal distributes HandSize cards round-robin and seeds the discard pile.
func (g *Game) deal() {
	for i := 0; i < g.Rules.HandSize; i++ {
		for _, p := range g.Players {
			if card, ok := g.shoe.Draw(); ok {
				p.Hand = append(p.Hand, card)
			}
		}
	}
	if card, ok := g.shoe.Draw(); ok {
		g.DiscardPile = append(g.DiscardPile, card)
	}
	g.Phase = PhaseDrawing
	g.CurrentPlayerIndex = 0
}

// CurrentPlayer returns the player whose turn it is, or nil before start.
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// PreviousPlayerIndex returns the index of the player before the current one
// in turn order: the player who discarded last.
func (g *Game) PreviousPlayerIndex() int {
	n := len(g.Players)
	if n == 0 {
		return 0
	}
	return (g.CurrentPlayerIndex - 1 + n) % n
}

// PlayerByID returns the seat with the given transport identity, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the seat with the given name, or nil.
func (g *Game) PlayerByName(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// DeckLen returns the number of cards left in the shoe.
func (g *Game) DeckLen() int {
	return g.shoe.Len()
}

// DiscardTop returns the most recent discard without removing it.
func (g *Game) DiscardTop() (deck.Card, bool) {
	if len(g.DiscardPile) == 0 {
		return deck.Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// Finished reports whether the game reached its terminal phase.
func (g *Game) Finished() bool {
	return g.Phase == PhaseFinished
}

// CardsInPlay counts every card across the shoe, discard pile, hands, draft
// melds and table melds. It equals Rules.TotalCards() at every observable
// point after Start.
func (g *Game) CardsInPlay() int {
	total := g.shoe.Len() + len(g.DiscardPile)
	for _, p := range g.Players {
		total += len(p.Hand) + p.draftCardCount()
	}
	for _, m := range g.TableMelds {
		total += len(m.Cards)
	}
	return total
}

// finishWith marks the game won by the given player.
func (g *Game) finishWith(p *Player) {
	g.WinnerID = p.ID
	g.Phase = PhaseFinished
	g.CallAvailable = false
	g.CallRequest = CallRequest{}
}

// requireCurrent validates that playerID is the current player and the game
// is in one of the wanted phases.
func (g *Game) requireCurrent(playerID string, phases ...Phase) (*Player, error) {
	p := g.CurrentPlayer()
	if p == nil || p.ID != playerID {
		return nil, ErrWrongTurn
	}
	for _, ph := range phases {
		if g.Phase == ph {
			return p, nil
		}
	}
	return nil, ErrWrongPhase
}

// validDraft reports whether cards would still be a valid set or run.
func validDraft(cards []deck.Card) bool {
	return meld.IsValid(cards)
}

// gameJSON is the serializable form of the aggregate: the full-state
// snapshot broadcast on every mutation and persisted by the storage layer.
type gameJSON struct {
	ID                 string        `json:"id"`
	Players            []*Player     `json:"players"`
	Deck               []deck.Card   `json:"deck"`
	DiscardPile        []deck.Card   `json:"discardPile"`
	TableMelds         []TableMeld   `json:"melds"`
	Phase              Phase         `json:"phase"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	WinnerID           string        `json:"winner,omitempty"`
	CallAvailable      bool          `json:"callAvailable"`
	CallRequest        CallRequest   `json:"callRequest"`
	Rules              Rules         `json:"rules"`
}

// MarshalJSON encodes the whole aggregate, shoe included.
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameJSON{
		ID:                 g.ID,
		Players:            g.Players,
		Deck:               g.shoe.Cards(),
		DiscardPile:        g.DiscardPile,
		TableMelds:         g.TableMelds,
		Phase:              g.Phase,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		WinnerID:           g.WinnerID,
		CallAvailable:      g.CallAvailable,
		CallRequest:        g.CallRequest,
		Rules:              g.Rules,
	})
}

// UnmarshalJSON restores an aggregate saved by MarshalJSON. The shoe rng is
// re-seeded from the clock; saved games do not replay shuffle streams.
func (g *Game) UnmarshalJSON(data []byte) error {
	var raw gameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rng := deck.NewRand(time.Now().UnixNano())
	shoe := deck.New(0, 0, rng)
	shoe.Restore(raw.Deck)

	*g = Game{
		ID:                 raw.ID,
		Players:            raw.Players,
		DiscardPile:        raw.DiscardPile,
		TableMelds:         raw.TableMelds,
		Phase:              raw.Phase,
		CurrentPlayerIndex: raw.CurrentPlayerIndex,
		WinnerID:           raw.WinnerID,
		CallAvailable:      raw.CallAvailable,
		CallRequest:        raw.CallRequest,
		Rules:              raw.Rules,
		shoe:               shoe,
		rng:                rng,
	}
	return nil
}
