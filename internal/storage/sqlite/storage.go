// Package sqlite provides a file-backed implementation of the storage
// interface using the pure-Go modernc.org/sqlite driver, so single-node
// deployments persist matches across restarts without running Redis.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/storage"
)

// Storage manages the SQLite database connection.
type Storage struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path. It creates the
// parent directories if needed and runs migrations.
func Open(dbPath string) (*Storage, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sqlite: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: cannot connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}

	return s, nil
}

// migrate creates the database schema if it doesn't exist. Entities are
// stored as JSON blobs, matching the other backends; only the columns needed
// for lookups are broken out.
func (s *Storage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			data TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_matches_code ON matches(code);

		CREATE TABLE IF NOT EXISTS snapshots (
			match_id TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			data TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		string(player.ID), string(data),
	)
	if err != nil {
		return fmt.Errorf("sqlite: cannot save player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM players WHERE id = ?", string(id),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot query player: %w", err)
	}

	var player model.Player
	if err := json.Unmarshal([]byte(data), &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM players WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("sqlite: cannot delete player: %w", err)
	}
	return nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (id, code, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code = excluded.code, data = excluded.data`,
		string(match.ID), string(match.Code), string(data),
	)
	if err != nil {
		return fmt.Errorf("sqlite: cannot save match: %w", err)
	}
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM matches WHERE id = ?", string(id),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot query match: %w", err)
	}

	return unmarshalMatch(data)
}

func (s *Storage) GetMatchByCode(ctx context.Context, code model.MatchCode) (*model.Match, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM matches WHERE code = ?", string(code),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot query match by code: %w", err)
	}

	return unmarshalMatch(data)
}

func (s *Storage) MatchCodeExists(ctx context.Context, code model.MatchCode) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM matches WHERE code = ?", string(code),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: cannot check code: %w", err)
	}
	return count > 0, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: cannot begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", string(id)); err != nil {
		return fmt.Errorf("sqlite: cannot delete match: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE match_id = ?", string(id)); err != nil {
		return fmt.Errorf("sqlite: cannot delete snapshots: %w", err)
	}
	return tx.Commit()
}

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *model.MatchSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (match_id, version, data) VALUES (?, ?, ?)
		 ON CONFLICT(match_id) DO UPDATE SET version = excluded.version, data = excluded.data`,
		string(snapshot.MatchID), snapshot.Version, string(data),
	)
	if err != nil {
		return fmt.Errorf("sqlite: cannot save snapshot: %w", err)
	}
	return nil
}

func (s *Storage) LatestSnapshot(ctx context.Context, matchID model.MatchID) (*model.MatchSnapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM snapshots WHERE match_id = ?", string(matchID),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot query snapshot: %w", err)
	}

	var snapshot model.MatchSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, matchID model.MatchID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE match_id = ?", string(matchID))
	if err != nil {
		return fmt.Errorf("sqlite: cannot delete snapshot: %w", err)
	}
	return nil
}

func unmarshalMatch(data string) (*model.Match, error) {
	var match model.Match
	if err := json.Unmarshal([]byte(data), &match); err != nil {
		return nil, err
	}
	return &match, nil
}
