// Package hub fans room state changes out to connected observers. It holds
// no game state and knows nothing about the transport; the api layer adapts
// websocket connections into Observers.
package hub

import "sync"

// Event types pushed over the room channel.
const (
	EventMoveSubmitted    = "move_submitted"
	EventScoresCalculated = "scores_calculated"
	EventTurnReset        = "turn_reset"
	EventRoomDeleted      = "room_deleted"
	EventGameOver         = "game_over"
)

// Event is the envelope delivered to every observer of a room.
type Event struct {
	Type    string `json:"type"`
	Room    any    `json:"room,omitempty"`
	Ranking any    `json:"ranking,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Observer is one connected watcher of a room. Send must not block the
// caller; a returned error marks the observer dead and prunes it.
type Observer interface {
	Send(Event) error
	Close()
}

// Hub keeps the per-room observer sets.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Observer]struct{}
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[Observer]struct{})}
}

// Subscribe registers obs for a room's events. Idempotent.
func (h *Hub) Subscribe(roomID string, obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.rooms[roomID]
	if set == nil {
		set = make(map[Observer]struct{})
		h.rooms[roomID] = set
	}
	set[obs] = struct{}{}
}

// Unsubscribe removes obs. Idempotent; the room entry is dropped once its
// last observer is gone.
func (h *Hub) Unsubscribe(roomID string, obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(set, obs)
	if len(set) == 0 {
		delete(h.rooms, roomID)
	}
}

// Subscribers reports how many observers a room currently has.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish delivers evt to every current observer of the room. A failed send
// prunes and closes that one observer without aborting delivery to the rest.
func (h *Hub) Publish(roomID string, evt Event) {
	h.mu.RLock()
	set := h.rooms[roomID]
	observers := make([]Observer, 0, len(set))
	for obs := range set {
		observers = append(observers, obs)
	}
	h.mu.RUnlock()

	for _, obs := range observers {
		if err := obs.Send(evt); err != nil {
			h.Unsubscribe(roomID, obs)
			obs.Close()
		}
	}
}

// CloseAll force-disconnects every observer of a room. Used on room deletion.
func (h *Hub) CloseAll(roomID string) {
	h.mu.Lock()
	set := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	for obs := range set {
		obs.Close()
	}
}
