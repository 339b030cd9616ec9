package room

import (
	"context"
	"sort"
	"time"

	"markovarena/internal/graph"
	"markovarena/internal/history"
	"markovarena/internal/hub"
	"markovarena/internal/markov"
)

// RankedPlayer is one entry of a final ranking, best score first.
type RankedPlayer struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SubmitMove stages a weight change for the current turn. Validation runs
// fully before any state change; a rejected move leaves the room untouched.
func (reg *Registry) SubmitMove(roomID string, m Move) (Move, error) {
	r, err := reg.lookup(roomID)
	if err != nil {
		return Move{}, err
	}

	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return Move{}, ErrRoomNotFound
	}
	known := false
	for _, p := range r.players {
		if p.ID == m.PlayerID {
			known = true
			break
		}
	}
	if !known {
		r.mu.Unlock()
		return Move{}, ErrPlayerNotInRoom
	}

	cost := m.WeightChange
	if cost < 0 {
		cost = -cost
	}
	spent := r.spent[m.PlayerID]
	if limit := r.config.PointsPerRound; spent+cost > limit {
		r.mu.Unlock()
		return Move{}, &BudgetError{PlayerID: m.PlayerID, Limit: limit, Remaining: limit - spent}
	}

	r.spent[m.PlayerID] = spent + cost
	r.moves = append(r.moves, m)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	reg.hub.Publish(roomID, hub.Event{Type: hub.EventMoveSubmitted, Room: snap})
	return m, nil
}

// CalculateScores commits the turn: nets the staged moves into the graph,
// re-solves the chain, scores node-matching players, and advances or ends the
// game. The room is mutated only after the solver succeeds, so a numerical
// failure leaves it unchanged.
func (reg *Registry) CalculateScores(ctx context.Context, roomID string) (Snapshot, error) {
	r, err := reg.lookup(roomID)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return Snapshot{}, ErrRoomNotFound
	}

	deltas := make([]graph.Delta, len(r.moves))
	for i, m := range r.moves {
		deltas[i] = graph.Delta{Source: m.Source, Target: m.Target, Change: m.WeightChange}
	}
	next := r.graph.Clone()
	next.ApplyDeltas(graph.Consolidate(deltas))

	dist, err := markov.Stationary(next)
	if err != nil {
		r.mu.Unlock()
		return Snapshot{}, err
	}

	// Commit. Players without a matching node keep their previous score.
	index := next.NodeIndex()
	r.graph = next
	for _, p := range r.players {
		if i, ok := index[p.Name]; ok {
			p.Score = dist[i]
		}
	}
	r.moves = nil
	r.spent = make(map[string]int)
	r.turn++

	gameOver := r.turn > r.config.MaxTurns
	if gameOver {
		// Terminate inside the critical section: a concurrent scoring or
		// submission request that already holds the room pointer must see the
		// room as gone, not re-score a finished game.
		r.finished = true
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if !gameOver {
		reg.hub.Publish(roomID, hub.Event{Type: hub.EventScoresCalculated, Room: snap})
		return snap, nil
	}

	ranking := Rank(snap.Players)
	reg.hub.Publish(roomID, hub.Event{Type: hub.EventGameOver, Room: snap, Ranking: ranking})
	reg.archive(ctx, snap, ranking)

	// The game_over event is the terminal signal: the room is removed
	// without a second deletion notification.
	reg.mu.Lock()
	delete(reg.rooms, roomID)
	reg.mu.Unlock()
	reg.hub.CloseAll(roomID)

	reg.logger.Printf("game_over id=%s winner=%s", roomID, ranking[0].Name)
	return snap, nil
}

// ResetTurn discards the turn's staged moves and spent points without
// advancing the turn counter or touching the graph.
func (reg *Registry) ResetTurn(roomID string) (Snapshot, error) {
	r, err := reg.lookup(roomID)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return Snapshot{}, ErrRoomNotFound
	}
	r.moves = nil
	r.spent = make(map[string]int)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	reg.hub.Publish(roomID, hub.Event{Type: hub.EventTurnReset, Room: snap})
	return snap, nil
}

// Rank orders players by score descending. Equal scores keep the original
// player order; that stability is part of the contract.
func Rank(players []Player) []RankedPlayer {
	ranked := make([]RankedPlayer, len(players))
	for i, p := range players {
		ranked[i] = RankedPlayer{ID: p.ID, Name: p.Name, Score: p.Score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// archive records the finished game. Best-effort: the result was already
// broadcast, so a storage failure is logged and swallowed.
func (reg *Registry) archive(ctx context.Context, snap Snapshot, ranking []RankedPlayer) {
	if reg.history == nil {
		return
	}
	res := history.GameResult{
		RoomID:     snap.ID,
		RoomName:   snap.Name,
		Turns:      snap.MaxTurns,
		FinishedAt: time.Now().UTC(),
	}
	for _, rp := range ranking {
		res.Ranking = append(res.Ranking, history.RankedPlayer{ID: rp.ID, Name: rp.Name, Score: rp.Score})
	}
	if err := reg.history.SaveResult(ctx, res); err != nil {
		reg.logger.Printf("history_save_failed room=%s err=%v", snap.ID, err)
	}
}
