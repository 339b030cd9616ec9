package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"markovarena/internal/hub"
)

const (
	writeWait      = 5 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 16
)

// wsObserver adapts one websocket connection to a hub observer. Events are
// queued on a buffered channel and a single writer goroutine owns the
// connection, so a slow client never blocks the room operation that
// published the event.
type wsObserver struct {
	conn      *websocket.Conn
	send      chan hub.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newWSObserver(conn *websocket.Conn) *wsObserver {
	o := &wsObserver{
		conn: conn,
		send: make(chan hub.Event, sendBufferSize),
		done: make(chan struct{}),
	}
	go o.writeLoop()
	return o
}

// Send queues an event without blocking. A full queue means the client has
// stopped reading; report it dead so the hub prunes it.
func (o *wsObserver) Send(evt hub.Event) error {
	select {
	case <-o.done:
		return errors.New("observer closed")
	default:
	}
	select {
	case o.send <- evt:
		return nil
	default:
		return errors.New("observer send queue full")
	}
}

func (o *wsObserver) Close() {
	o.closeOnce.Do(func() { close(o.done) })
}

func (o *wsObserver) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case <-o.done:
			// Drain queued events before the close frame so a terminal
			// notification (room_deleted, game_over) is not lost.
			for {
				select {
				case evt := <-o.send:
					o.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := o.conn.WriteJSON(evt); err != nil {
						return
					}
				default:
					o.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = o.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case evt := <-o.send:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ping.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket subscribes the caller to a room's event stream. The room
// must exist at connect time. The client is a pure observer: incoming frames
// are read only to detect disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, err := s.registry.Get(roomID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}

	obs := newWSObserver(conn)
	s.hub.Subscribe(roomID, obs)
	s.logger.Printf("ws_connected room=%s remote=%s subscribers=%d", roomID, r.RemoteAddr, s.hub.Subscribers(roomID))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unsubscribe(roomID, obs)
	obs.Close()
	s.logger.Printf("ws_disconnected room=%s remote=%s", roomID, r.RemoteAddr)
}
