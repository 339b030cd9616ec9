package room

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"markovarena/internal/graph"
	"markovarena/internal/history"
	"markovarena/internal/hub"
)

// Registry owns every live room. There is exactly one authoritative registry
// per process; it is injected into the api layer rather than held globally so
// tests can run isolated instances.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	hub     *hub.Hub
	history history.DB
	logger  *log.Logger
}

// NewRegistry creates an empty registry. archive may be nil to skip
// finished-game archiving.
func NewRegistry(h *hub.Hub, archive history.DB) *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		hub:     h,
		history: archive,
		logger:  log.New(os.Stdout, "[room] ", log.LstdFlags),
	}
}

// Create builds a room with its complete starting graph and deterministic
// player slots (Player-1..N), stores it, and returns its snapshot.
func (reg *Registry) Create(cfg Config) Snapshot {
	cfg.applyDefaults()

	playerNodes := make([]string, cfg.NumPlayers)
	for i := range playerNodes {
		playerNodes[i] = fmt.Sprintf("Player-%d", i+1)
	}
	neutralNodes := make([]string, cfg.NumNeutralNodes)
	for i := range neutralNodes {
		neutralNodes[i] = fmt.Sprintf("neutral_%d", i+1)
	}

	r := &Room{
		id:     uuid.New().String(),
		name:   cfg.Name,
		config: cfg,
		graph:  graph.NewComplete(playerNodes, neutralNodes),
		turn:   1,
		spent:  make(map[string]int),
	}
	for _, name := range playerNodes {
		r.players = append(r.players, &Player{ID: uuid.New().String(), Name: name})
	}

	reg.mu.Lock()
	reg.rooms[r.id] = r
	reg.mu.Unlock()

	reg.logger.Printf("room_created id=%s name=%q players=%d neutral=%d turns=%d",
		r.id, r.name, cfg.NumPlayers, cfg.NumNeutralNodes, cfg.MaxTurns)
	return r.snapshot()
}

func (reg *Registry) lookup(id string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Get returns the current snapshot of a room.
func (reg *Registry) Get(id string) (Snapshot, error) {
	r, err := reg.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return r.snapshot(), nil
}

// List snapshots every live room. Order is unspecified.
func (reg *Registry) List() []Snapshot {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		snaps = append(snaps, r.snapshot())
	}
	return snaps
}

// Delete removes a room, tells its observers why, and force-disconnects them.
func (reg *Registry) Delete(id string) error {
	reg.mu.Lock()
	r, ok := reg.rooms[id]
	if !ok {
		reg.mu.Unlock()
		return ErrRoomNotFound
	}
	delete(reg.rooms, id)
	reg.mu.Unlock()

	// A request that resolved the room before the delete still holds its
	// pointer; the flag makes its staged operation fail instead of mutating
	// a removed room.
	r.mu.Lock()
	r.finished = true
	r.mu.Unlock()

	reg.hub.Publish(id, hub.Event{
		Type:   hub.EventRoomDeleted,
		Detail: "This room has been deleted by the host.",
	})
	reg.hub.CloseAll(id)
	reg.logger.Printf("room_deleted id=%s", id)
	return nil
}
