package room

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotInRoom = errors.New("player not found in this room")
)

// BudgetError rejects a move that would overspend the player's per-turn
// points budget. Remaining tells the client how much it can still spend.
type BudgetError struct {
	PlayerID  string
	Limit     int
	Remaining int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("player %s has exceeded their points limit for this round (limit %d, remaining %d)",
		e.PlayerID, e.Limit, e.Remaining)
}
