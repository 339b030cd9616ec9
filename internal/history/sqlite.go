package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens and migrates the results database at path. Use ":memory:"
// for an ephemeral archive.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps archive writes from stalling concurrent history reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteDB{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS game_results (
			room_id TEXT PRIMARY KEY,
			room_name TEXT NOT NULL,
			turns INTEGER NOT NULL,
			finished_at DATETIME NOT NULL,
			ranking_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_results_finished_at ON game_results(finished_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// SaveResult upserts a finished game.
func (s *SQLiteDB) SaveResult(ctx context.Context, res GameResult) error {
	ranking, err := json.Marshal(res.Ranking)
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO game_results (room_id, room_name, turns, finished_at, ranking_json)
		 VALUES (?, ?, ?, ?, ?)`,
		res.RoomID, res.RoomName, res.Turns, res.FinishedAt.UTC(), string(ranking),
	)
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}
	return nil
}

// ListResults returns the most recently finished games, newest first.
func (s *SQLiteDB) ListResults(ctx context.Context, limit int) ([]GameResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, room_name, turns, finished_at, ranking_json
		 FROM game_results ORDER BY finished_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var res GameResult
		var ranking string
		if err := rows.Scan(&res.RoomID, &res.RoomName, &res.Turns, &res.FinishedAt, &ranking); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		if err := json.Unmarshal([]byte(ranking), &res.Ranking); err != nil {
			return nil, fmt.Errorf("failed to decode ranking: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
