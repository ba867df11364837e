package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/kalooki/internal/bot"
	"github.com/lox/kalooki/internal/game"
	"github.com/lox/kalooki/internal/gameid"
	"github.com/lox/kalooki/internal/storage"
)

// Session owns one game: it serializes every command onto the aggregate,
// runs the bot strategy for autonomous seats, and schedules the timers
// that drive the call window. Each mutation is followed by a full state
// broadcast and a snapshot write; commands run to completion under a
// single lock so observers never see a half-applied transition.
type Session struct {
	mu        sync.Mutex
	game      *game.Game
	logger    *log.Logger
	clock     quartz.Clock
	store     storage.Store
	strategy  *bot.Strategy
	broadcast func(*Message)
	closed    bool
	lastPhase game.Phase

	// One timer slot per purpose; always cancelled before rescheduling.
	botTimer     *quartz.Timer
	callTimer    *quartz.Timer
	botCallTimer *quartz.Timer
}

// NewSession wraps a game. The broadcast func receives every event and
// state update for the game's connections; it may be nil in tests.
func NewSession(g *game.Game, logger *log.Logger, clock quartz.Clock, store storage.Store, broadcast func(*Message)) *Session {
	if store == nil {
		store = storage.NopStore{}
	}
	s := &Session{
		game:      g,
		logger:    logger.WithPrefix("session").With("game", g.ID),
		clock:     clock,
		store:     store,
		strategy:  bot.NewStrategy(logger.WithPrefix("bot").With("game", g.ID)),
		broadcast: broadcast,
		lastPhase: g.Phase,
	}
	return s
}

// ID returns the game's identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ID
}

// Resume reschedules timers for a restored game. A game saved mid call
// window picks up with a fresh window rather than a partial one.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked()
}

// Close cancels all timers and detaches the session from its game.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimersLocked()
}

// Join seats a human player and returns their transport identity.
func (s *Session) Join(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := gameid.New()
	if err := s.game.Join(id, name); err != nil {
		return "", err
	}
	s.emitLocked(MessageTypePlayerJoined, PlayerJoinedData{GameID: s.game.ID, PlayerName: name})
	s.afterMutationLocked()
	return id, nil
}

// Rejoin rebinds the named seat to a fresh transport identity, returning
// the new player ID. Game state is untouched; a state update follows so
// the reconnecting client can resync.
func (s *Session) Rejoin(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := gameid.New()
	if _, err := s.game.Rejoin(name, id); err != nil {
		return "", err
	}
	s.afterMutationLocked()
	return id, nil
}

// AddBot seats an autonomous player with a generated name.
func (s *Session) AddBot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	for n := 1; ; n++ {
		name = fmt.Sprintf("Bot %d", n)
		if s.game.PlayerByName(name) == nil {
			break
		}
	}
	if err := s.game.AddBot(gameid.New(), name); err != nil {
		return "", err
	}
	s.emitLocked(MessageTypePlayerJoined, PlayerJoinedData{GameID: s.game.ID, PlayerName: name, IsBot: true})
	s.afterMutationLocked()
	return name, nil
}

// Apply runs one game command under the session lock. On success the new
// state is broadcast, persisted and timers rescheduled; on failure nothing
// is emitted.
func (s *Session) Apply(cmd func(*game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := cmd(s.game); err != nil {
		return err
	}
	s.afterMutationLocked()
	return nil
}

// Call opens a call request for playerID and announces it.
func (s *Session) Call(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.Call(playerID); err != nil {
		return err
	}
	s.emitLocked(MessageTypeCallRequested, CallEventData{
		GameID:     s.game.ID,
		CallerID:   s.game.CallRequest.CallerID,
		CallerName: s.game.CallRequest.CallerName,
	})
	s.afterMutationLocked()
	return nil
}

// RespondToCall resolves the pending call with the current player's
// verdict. Only the current player may respond.
func (s *Session) RespondToCall(playerID string, allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.game.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return game.ErrWrongTurn
	}
	return s.resolveCallLocked(allow)
}

// State returns the current full-state update message.
func (s *Session) State() (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewMessage(MessageTypeGameUpdate, s.game)
}

// resolveCallLocked applies the verdict, then performs the current
// player's forced draw: from the deck when the call was approved, from
// the discard top when it was denied.
func (s *Session) resolveCallLocked(allow bool) error {
	resolved, fromDiscard, err := s.game.RespondToCall(allow)
	if err != nil {
		return err
	}

	verdict := MessageTypeCallDenied
	if allow {
		verdict = MessageTypeCallApproved
	}
	s.emitLocked(verdict, CallEventData{
		GameID:     s.game.ID,
		CallerID:   resolved.CallerID,
		CallerName: resolved.CallerName,
	})
	s.broadcastStateLocked()

	cur := s.game.CurrentPlayer()
	if err := s.game.Draw(cur.ID, fromDiscard); err != nil {
		// Sources were validated before the verdict was applied.
		s.logger.Error("forced draw failed after call", "err", err)
	}
	s.afterMutationLocked()
	return nil
}

// afterMutationLocked is the epilogue of every successful command:
// persist, broadcast, reschedule. Entering the call window also gets a
// discrete event so clients need not diff snapshots to notice it.
func (s *Session) afterMutationLocked() {
	if s.game.Phase == game.PhaseWaitingOnCall && s.game.CallAvailable && s.lastPhase != game.PhaseWaitingOnCall {
		s.emitLocked(MessageTypeCallWindowOpen, GameRefData{GameID: s.game.ID})
	}
	s.lastPhase = s.game.Phase

	s.persistLocked()
	s.broadcastStateLocked()
	s.scheduleLocked()
}

func (s *Session) persistLocked() {
	data, err := json.Marshal(s.game)
	if err != nil {
		s.logger.Error("failed to marshal game state", "err", err)
		return
	}
	ctx := context.Background()
	if err := s.store.SaveGame(ctx, s.game.ID, data); err != nil {
		s.logger.Error("failed to persist game state", "err", err)
		return
	}
	if s.game.Finished() {
		if err := s.store.MarkInactive(ctx, s.game.ID); err != nil {
			s.logger.Error("failed to mark game inactive", "err", err)
		}
	}
}

func (s *Session) broadcastStateLocked() {
	msg, err := NewMessage(MessageTypeGameUpdate, s.game)
	if err != nil {
		s.logger.Error("failed to encode game update", "err", err)
		return
	}
	s.emitMsgLocked(msg)
}

func (s *Session) emitLocked(t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		s.logger.Error("failed to encode event", "type", t, "err", err)
		return
	}
	s.emitMsgLocked(msg)
}

func (s *Session) emitMsgLocked(msg *Message) {
	if s.broadcast != nil {
		s.broadcast(msg)
	}
}

// scheduleLocked arms the timers the current phase needs and cancels the
// rest. Timer callbacks re-validate state under the lock before acting;
// a stale callback that lost the race is a no-op.
func (s *Session) scheduleLocked() {
	s.stopTimersLocked()
	if s.closed || s.game.Finished() {
		return
	}

	g := s.game
	switch g.Phase {
	case game.PhaseDrawing, game.PhaseMeld, game.PhaseDiscarding:
		if p := g.CurrentPlayer(); p != nil && p.IsBot {
			s.botTimer = s.clock.AfterFunc(g.Rules.BotTurnDelay(), s.botStep)
		}

	case game.PhaseWaitingOnCall:
		if g.CallRequest.Pending() {
			if p := g.CurrentPlayer(); p != nil && p.IsBot {
				s.botCallTimer = s.clock.AfterFunc(g.Rules.BotCallDecision(), s.botRespondToCall)
			}
		} else {
			s.callTimer = s.clock.AfterFunc(g.Rules.CallWindow(), s.expireCallWindow)
			if s.hasEligibleBotLocked() {
				s.botCallTimer = s.clock.AfterFunc(g.Rules.BotCallDecision(), s.botConsiderCall)
			}
		}
	}
}

func (s *Session) stopTimersLocked() {
	for _, t := range []*quartz.Timer{s.botTimer, s.callTimer, s.botCallTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.botTimer, s.callTimer, s.botCallTimer = nil, nil, nil
}

func (s *Session) hasEligibleBotLocked() bool {
	for _, p := range s.game.Players {
		if p.IsBot && s.game.CallEligible(p.ID) {
			return true
		}
	}
	return false
}

// botStep advances the bot's turn by one phase. Each step broadcasts and
// reschedules, so a full bot turn unfolds as a sequence of delayed steps
// rather than one burst.
func (s *Session) botStep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	p := s.game.CurrentPlayer()
	if p == nil || !p.IsBot {
		return
	}

	var err error
	switch s.game.Phase {
	case game.PhaseDrawing:
		err = s.strategy.PlayDraw(s.game, p)
	case game.PhaseMeld:
		err = s.strategy.PlayMelds(s.game, p)
	case game.PhaseDiscarding:
		err = s.strategy.PlayDiscard(s.game, p)
	default:
		return
	}
	if err != nil {
		// Log and fall through. The epilogue must still run so the turn
		// timer re-arms; otherwise the session stalls with a bot on the
		// clock and nothing scheduled to move it.
		s.logger.Error("bot turn step failed", "player", p.Name, "phase", s.game.Phase, "err", err)
	}
	s.afterMutationLocked()
}

// expireCallWindow closes an uncalled window when the long timer fires.
func (s *Session) expireCallWindow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err := s.game.ExpireCallWindow(); err != nil {
		// A call slipped in ahead of the expiry; the pending-call
		// schedule takes over.
		s.logger.Debug("call window expiry skipped", "err", err)
		return
	}
	s.afterMutationLocked()
}

// botConsiderCall lets bots race for the open window. The first eligible
// bot in seat order after the current player that wants the discard wins.
func (s *Session) botConsiderCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.game.Phase != game.PhaseWaitingOnCall {
		return
	}

	n := len(s.game.Players)
	for i := 1; i < n; i++ {
		p := s.game.Players[(s.game.CurrentPlayerIndex+i)%n]
		if !p.IsBot || !s.game.CallEligible(p.ID) {
			continue
		}
		if !s.strategy.ShouldCall(s.game, p) {
			continue
		}
		if err := s.game.Call(p.ID); err != nil {
			s.logger.Debug("bot call rejected", "player", p.Name, "err", err)
			return
		}
		s.emitLocked(MessageTypeCallRequested, CallEventData{
			GameID:     s.game.ID,
			CallerID:   s.game.CallRequest.CallerID,
			CallerName: s.game.CallRequest.CallerName,
		})
		s.afterMutationLocked()
		return
	}
}

// botRespondToCall rules on a pending call when the current player is a
// bot.
func (s *Session) botRespondToCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.game.CallRequest.Pending() {
		return
	}

	p := s.game.CurrentPlayer()
	if p == nil || !p.IsBot {
		return
	}

	allow := s.strategy.AllowCall(s.game, p)
	err := s.resolveCallLocked(allow)
	if err != nil && allow {
		// Approval hands out a penalty card on top of the discard, so it
		// can fail on an exhausted shoe where a denial cannot. Deny
		// instead of leaving the call pending forever.
		s.logger.Warn("bot call approval failed, denying instead", "player", p.Name, "err", err)
		err = s.resolveCallLocked(false)
	}
	if err != nil {
		s.logger.Error("bot call response failed", "player", p.Name, "err", err)
		s.afterMutationLocked()
	}
}
