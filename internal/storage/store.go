// Package storage defines how game snapshots are persisted between
// sessions. Implementations store the full JSON snapshot of a game keyed
// by its ID so active games survive a server restart.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for the requested game.
var ErrNotFound = errors.New("storage: game not found")

// Snapshot is one persisted game.
type Snapshot struct {
	GameID    string
	State     []byte
	Active    bool
	UpdatedAt time.Time
}

// Store persists game snapshots.
type Store interface {
	// SaveGame upserts the snapshot for a game and marks it active.
	SaveGame(ctx context.Context, gameID string, state []byte) error

	// LoadGame returns the snapshot for one game, or ErrNotFound.
	LoadGame(ctx context.Context, gameID string) (Snapshot, error)

	// LoadActiveGames returns snapshots for every game still marked active.
	LoadActiveGames(ctx context.Context) ([]Snapshot, error)

	// MarkInactive flags a finished or abandoned game so it is no longer
	// restored on startup.
	MarkInactive(ctx context.Context, gameID string) error

	// DeleteGame removes a game's snapshot entirely.
	DeleteGame(ctx context.Context, gameID string) error

	// CleanupOldGames deletes inactive games not updated since the cutoff
	// and returns how many were removed.
	CleanupOldGames(ctx context.Context, olderThan time.Duration) (int, error)

	Close() error
}

// NopStore discards all writes and loads nothing. Used when persistence
// is disabled.
type NopStore struct{}

func (NopStore) SaveGame(context.Context, string, []byte) error { return nil }

func (NopStore) LoadGame(context.Context, string) (Snapshot, error) {
	return Snapshot{}, ErrNotFound
}

func (NopStore) LoadActiveGames(context.Context) ([]Snapshot, error) { return nil, nil }

func (NopStore) MarkInactive(context.Context, string) error { return nil }

func (NopStore) DeleteGame(context.Context, string) error { return nil }

func (NopStore) CleanupOldGames(context.Context, time.Duration) (int, error) { return 0, nil }

func (NopStore) Close() error { return nil }

var _ Store = NopStore{}
