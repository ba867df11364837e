package server

import (
	"context"
	"encoding/json"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/kalooki/internal/deck"
	"github.com/lox/kalooki/internal/game"
	"github.com/lox/kalooki/internal/gameid"
	"github.com/lox/kalooki/internal/storage"
)

// Registry tracks every live session and restores persisted games on
// startup.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	logger    *log.Logger
	clock     quartz.Clock
	store     storage.Store
	broadcast func(gameID string, msg *Message)

	seed    *int64
	created int64
}

// NewRegistry creates a registry. The broadcast func fans a game's events
// out to its connections; it may be nil in tests.
func NewRegistry(logger *log.Logger, clock quartz.Clock, store storage.Store, broadcast func(string, *Message)) *Registry {
	if store == nil {
		store = storage.NopStore{}
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		logger:    logger.WithPrefix("registry"),
		clock:     clock,
		store:     store,
		broadcast: broadcast,
	}
}

// SetSeed makes game shuffles deterministic. Each created game derives its
// rng from the seed plus a creation counter, so a seeded server replays the
// same sequence of deals across runs.
func (r *Registry) SetSeed(seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seed = &seed
}

func (r *Registry) nextRand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seed == nil {
		return nil
	}
	r.created++
	return deck.NewRand(*r.seed + r.created - 1)
}

// Create starts a new session with the given rules and returns it.
func (r *Registry) Create(rules game.Rules) *Session {
	id := gameid.New()
	g := game.New(id, rules, r.nextRand())
	s := NewSession(g, r.logger, r.clock, r.store, r.broadcastFunc(id))

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Info("created game", "game", id)
	return s
}

// Get returns the session for a game ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes and drops a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
		r.logger.Info("removed game", "game", id)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Restore loads every active snapshot from the store and resumes each
// game's timers. Snapshots that fail to decode are skipped, not fatal.
func (r *Registry) Restore(ctx context.Context) error {
	snaps, err := r.store.LoadActiveGames(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, snap := range snaps {
		g := &game.Game{}
		if err := json.Unmarshal(snap.State, g); err != nil {
			r.logger.Warn("skipping undecodable snapshot", "game", snap.GameID, "err", err)
			continue
		}

		s := NewSession(g, r.logger, r.clock, r.store, r.broadcastFunc(g.ID))
		r.mu.Lock()
		r.sessions[g.ID] = s
		r.mu.Unlock()
		s.Resume()
		restored++
	}

	if restored > 0 {
		r.logger.Info("restored games from storage", "count", restored)
	}
	return nil
}

// Cleanup drops finished sessions and sweeps stale snapshots from the
// store.
func (r *Registry) Cleanup(ctx context.Context, olderThan time.Duration) {
	r.mu.Lock()
	var finished []string
	for id, s := range r.sessions {
		s.mu.Lock()
		done := s.game.Finished()
		s.mu.Unlock()
		if done {
			finished = append(finished, id)
		}
	}
	for _, id := range finished {
		r.sessions[id].Close()
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	n, err := r.store.CleanupOldGames(ctx, olderThan)
	if err != nil {
		r.logger.Error("storage cleanup failed", "err", err)
		return
	}
	if n > 0 || len(finished) > 0 {
		r.logger.Info("cleaned up games", "sessions", len(finished), "snapshots", n)
	}
}

func (r *Registry) broadcastFunc(gameID string) func(*Message) {
	if r.broadcast == nil {
		return nil
	}
	return func(msg *Message) {
		r.broadcast(gameID, msg)
	}
}
