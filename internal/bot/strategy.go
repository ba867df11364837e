package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/kalooki/internal/game"
	"github.com/lox/kalooki/internal/meld"
)

// Strategy plays a bot's turn using the same game commands a human player
// issues. It is stateless and safe to share across sessions; everything it
// needs is read from the game on each decision.
type Strategy struct {
	logger *log.Logger
}

func NewStrategy(logger *log.Logger) *Strategy {
	return &Strategy{logger: logger}
}

// PlayDraw draws from the discard pile when its top card advances an unmet
// requirement, otherwise from the deck. Once laid down the bot always
// draws blind. An exhausted shoe forces the discard pile regardless so the
// turn can still complete.
func (s *Strategy) PlayDraw(g *game.Game, p *game.Player) error {
	fromDiscard := !p.HasLaidDown && s.wantsDiscard(g, p)
	if g.DeckLen() == 0 {
		fromDiscard = true
	}
	s.logger.Debug("bot drawing", "player", p.Name, "from_discard", fromDiscard)
	return g.Draw(p.ID, fromDiscard)
}

// PlayMelds lays down the initial melds when the hand supports the
// requirements, or extends table melds once already down, then advances to
// the discard phase. Meld failures are logged and skipped; the bot still
// has to discard.
func (s *Strategy) PlayMelds(g *game.Game, p *game.Player) error {
	if p.HasLaidDown {
		s.extendTableMelds(g, p)
	} else {
		s.layDownInitialMelds(g, p)
	}

	if g.Finished() {
		return nil
	}
	return g.ReadyToDiscard(p.ID)
}

// PlayDiscard throws away the least useful card in the hand.
func (s *Strategy) PlayDiscard(g *game.Game, p *game.Player) error {
	remSets, remRuns := s.remainingRequirements(g, p)
	candidates := SuggestDiscards(p.Hand, remSets, remRuns)
	card := ChooseWorstCard(p.Hand, candidates)
	s.logger.Debug("bot discarding", "player", p.Name, "card", card)
	return g.Discard(p.ID, card)
}

// ShouldCall decides whether the bot wants to interrupt for the discard
// top. A bot that has already laid down never calls.
func (s *Strategy) ShouldCall(g *game.Game, p *game.Player) bool {
	if p.HasLaidDown {
		return false
	}
	return s.wantsDiscard(g, p)
}

// AllowCall decides whether the bot, as current player, approves another
// player's call. It refuses only when it wants the discard top for itself.
func (s *Strategy) AllowCall(g *game.Game, p *game.Player) bool {
	if p.HasLaidDown {
		return true
	}
	return !s.wantsDiscard(g, p)
}

// wantsDiscard reports whether the discard top would advance one of the
// bot's unmet meld requirements.
func (s *Strategy) wantsDiscard(g *game.Game, p *game.Player) bool {
	top, ok := g.DiscardTop()
	if !ok {
		return false
	}

	remSets, remRuns := s.remainingRequirements(g, p)
	if remSets <= 0 && remRuns <= 0 {
		return false
	}

	used := make(map[int]bool)
	runs := ExtractRuns(p.Hand, used)
	sets := ExtractSets(p.Hand, used)
	needed := SuggestNeededCards(p.Hand, remSets, remRuns, sets, runs)
	return ContainsSuggested(needed, top)
}

func (s *Strategy) layDownInitialMelds(g *game.Game, p *game.Player) {
	remSets, remRuns := s.remainingRequirements(g, p)
	for _, cards := range ExtractMelds(p.Hand, remSets, remRuns) {
		if err := g.AddDraftMeld(p.ID, cards); err != nil {
			s.logger.Warn("bot draft rejected", "player", p.Name, "err", err)
		}
	}

	if len(p.Drafts) < g.Rules.RequiredMelds {
		return
	}
	if err := g.LayDownDrafts(p.ID); err != nil {
		s.logger.Debug("bot lay down rejected", "player", p.Name, "err", err)
	}
}

func (s *Strategy) extendTableMelds(g *game.Game, p *game.Player) {
	for _, ext := range FindMeldExtensions(p.Hand, g.TableMelds) {
		if err := g.AddToTableMeld(p.ID, ext.MeldIndex, ext.Cards); err != nil {
			s.logger.Warn("bot meld extension rejected", "player", p.Name, "err", err)
			continue
		}
		if g.Finished() {
			return
		}
	}
}

// remainingRequirements counts how many sets and runs the player still
// needs beyond what their drafts already cover.
func (s *Strategy) remainingRequirements(g *game.Game, p *game.Player) (sets, runs int) {
	sets = g.Rules.RequiredSets
	runs = g.Rules.RequiredRuns
	if p.HasLaidDown {
		return 0, 0
	}
	for _, d := range p.Drafts {
		switch {
		case meld.IsSetShaped(d):
			sets--
		case meld.IsRunShaped(d):
			runs--
		}
	}
	if sets < 0 {
		sets = 0
	}
	if runs < 0 {
		runs = 0
	}
	return sets, runs
}
