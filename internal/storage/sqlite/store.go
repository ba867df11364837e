// Package sqlite persists game snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/kalooki/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id    TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	is_active  INTEGER NOT NULL DEFAULT 1,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_active ON games (is_active, updated_at);
`

// Store provides SQLite-backed persistence for game snapshots.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveGame upserts a snapshot and marks the game active.
func (s *Store) SaveGame(ctx context.Context, gameID string, state []byte) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if len(state) == 0 {
		return fmt.Errorf("game state is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO games (game_id, state, is_active, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
		   state = excluded.state,
		   is_active = 1,
		   updated_at = excluded.updated_at`,
		gameID,
		string(state),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// LoadGame returns one game's snapshot.
func (s *Store) LoadGame(ctx context.Context, gameID string) (storage.Snapshot, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return storage.Snapshot{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT game_id, state, is_active, updated_at FROM games WHERE game_id = ?`,
		gameID,
	)
	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load game: %w", err)
	}
	return snap, nil
}

// LoadActiveGames returns every game still marked active, oldest first.
func (s *Store) LoadActiveGames(ctx context.Context) ([]storage.Snapshot, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT game_id, state, is_active, updated_at
		 FROM games
		 WHERE is_active = 1
		 ORDER BY updated_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("load active games: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var snaps []storage.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return snaps, nil
}

// MarkInactive flags a game so it is skipped on restore.
func (s *Store) MarkInactive(ctx context.Context, gameID string) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE games SET is_active = 0, updated_at = ? WHERE game_id = ?`,
		time.Now().UTC().UnixMilli(),
		gameID,
	)
	if err != nil {
		return fmt.Errorf("mark inactive: %w", err)
	}
	return nil
}

// DeleteGame removes a game's snapshot.
func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM games WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

// CleanupOldGames deletes inactive games not touched since the cutoff.
func (s *Store) CleanupOldGames(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan).UnixMilli()
	res, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM games WHERE is_active = 0 AND updated_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup old games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup old games: %w", err)
	}
	return int(n), nil
}

func scanSnapshot(scan func(dest ...any) error) (storage.Snapshot, error) {
	var snap storage.Snapshot
	var state string
	var active int64
	var updatedAt int64
	if err := scan(&snap.GameID, &state, &active, &updatedAt); err != nil {
		return storage.Snapshot{}, err
	}
	snap.State = []byte(state)
	snap.Active = active != 0
	snap.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return snap, nil
}

var _ storage.Store = (*Store)(nil)
