// Package room owns the game sessions: the room model, the registry that
// holds every live room, and the turn controller that advances them.
package room

import (
	"sync"

	"markovarena/internal/graph"
)

// Config describes a new room. Field names match the client wire contract.
type Config struct {
	Name            string `json:"name"`
	NumPlayers      int    `json:"num_players_N"`
	NumNeutralNodes int    `json:"num_non_player_nodes_M"`
	PointsPerRound  int    `json:"points_per_round_K"`
	MaxTurns        int    `json:"max_turns_S"`
}

func (c *Config) applyDefaults() {
	if c.NumPlayers <= 0 {
		c.NumPlayers = 2
	}
	if c.NumNeutralNodes <= 0 {
		c.NumNeutralNodes = 2
	}
	if c.PointsPerRound <= 0 {
		c.PointsPerRound = 10
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 10
	}
}

// Player is one configured player slot. The set of players is fixed at room
// creation; only Score changes, and only during score calculation.
type Player struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Move is one staged weight change. Moves do not touch the graph until
// scores are calculated; within a turn they are netted, not applied in order.
type Move struct {
	PlayerID     string `json:"player_id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	WeightChange int    `json:"weight_change"`
}

// Room is one isolated game session. Every mutating operation holds mu for
// its full duration, so concurrent submissions and scoring on the same room
// never interleave. Different rooms share nothing.
type Room struct {
	mu sync.Mutex

	id       string
	name     string
	config   Config
	players  []*Player
	graph    *graph.Graph
	moves    []Move
	turn     int
	spent    map[string]int // player id -> points committed this turn
	finished bool           // set under mu at game over or deletion; no operation runs after it
}

// Snapshot is the wire form of a room, deep-copied so callers and observers
// can never reach live state. Field names match the original client contract.
type Snapshot struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	NumPlayers      int            `json:"num_players_N"`
	NumNeutralNodes int            `json:"num_non_player_nodes_M"`
	PointsPerRound  int            `json:"points_per_round_K"`
	MaxTurns        int            `json:"max_turns_S"`
	Players         []Player       `json:"players"`
	Graph           *graph.Graph   `json:"graph"`
	Moves           []Move         `json:"moves"`
	Turn            int            `json:"turn"`
	Spent           map[string]int `json:"submitted_moves_points"`
}

func (r *Room) snapshotLocked() Snapshot {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	moves := make([]Move, len(r.moves))
	copy(moves, r.moves)
	spent := make(map[string]int, len(r.spent))
	for k, v := range r.spent {
		spent[k] = v
	}
	return Snapshot{
		ID:              r.id,
		Name:            r.name,
		NumPlayers:      r.config.NumPlayers,
		NumNeutralNodes: r.config.NumNeutralNodes,
		PointsPerRound:  r.config.PointsPerRound,
		MaxTurns:        r.config.MaxTurns,
		Players:         players,
		Graph:           r.graph.Clone(),
		Moves:           moves,
		Turn:            r.turn,
		Spent:           spent,
	}
}

func (r *Room) snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}
