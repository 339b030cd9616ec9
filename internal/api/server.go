// Package api exposes the room engine over HTTP and a per-room websocket
// push channel.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"markovarena/internal/history"
	"markovarena/internal/hub"
	"markovarena/internal/room"
)

// Server handles HTTP requests.
type Server struct {
	registry      *room.Registry
	hub           *hub.Hub
	history       history.DB
	logger        *log.Logger
	allowedOrigin string
	upgrader      websocket.Upgrader
}

// NewServer creates an API server. allowedOrigin "" means "*"; archive may be
// nil when finished-game archiving is disabled.
func NewServer(registry *room.Registry, h *hub.Hub, archive history.DB, allowedOrigin string) *Server {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Server{
		registry:      registry,
		hub:           h,
		history:       archive,
		logger:        log.New(os.Stdout, "[api] ", log.LstdFlags),
		allowedOrigin: allowedOrigin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Heartbeat("/health"))

	// Request timeouts stay off the websocket route; a push channel lives
	// as long as the observer does.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", s.handleCreateRoom)
			r.Get("/", s.handleListRooms)
			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", s.handleGetRoom)
				r.Delete("/", s.handleDeleteRoom)
				r.Post("/moves", s.handleSubmitMove)
				r.Post("/calculate-scores", s.handleCalculateScores)
				r.Post("/reset-turn", s.handleResetTurn)
			})
		})
		r.Get("/history", s.handleHistory)
	})

	r.Get("/ws/{roomID}", s.handleWebSocket)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if s.allowedOrigin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, context map[string]any) {
	s.writeJSON(w, status, APIError{Type: errType, Message: message, Context: context})
}
