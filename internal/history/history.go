// Package history archives the outcome of finished games. Live room state is
// intentionally not persisted; only final rankings survive a restart.
package history

import (
	"context"
	"time"
)

// RankedPlayer is one row of a final ranking, best score first.
type RankedPlayer struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// GameResult is the archived outcome of one finished game.
type GameResult struct {
	RoomID     string         `json:"room_id"`
	RoomName   string         `json:"room_name"`
	Turns      int            `json:"turns"`
	FinishedAt time.Time      `json:"finished_at"`
	Ranking    []RankedPlayer `json:"ranking"`
}

// DB is the archive interface.
type DB interface {
	SaveResult(ctx context.Context, res GameResult) error
	ListResults(ctx context.Context, limit int) ([]GameResult, error)
	Close() error
}
