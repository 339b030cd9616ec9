package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"markovarena/internal/room"
)

// handleCreateRoom builds a new room from the posted config. Missing fields
// fall back to the standard defaults (2 players, 2 neutral nodes, 10 points,
// 10 turns).
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var cfg room.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, ErrTypeValidation, "invalid JSON", nil)
		return
	}

	snap := s.registry.Create(cfg)
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	snap, err := s.registry.Get(chi.URLParam(r, "roomID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(chi.URLParam(r, "roomID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	var m room.Move
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, ErrTypeValidation, "invalid JSON", nil)
		return
	}

	accepted, err := s.registry.SubmitMove(chi.URLParam(r, "roomID"), m)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accepted)
}

func (s *Server) handleCalculateScores(w http.ResponseWriter, r *http.Request) {
	snap, err := s.registry.CalculateScores(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResetTurn(w http.ResponseWriter, r *http.Request) {
	snap, err := s.registry.ResetTurn(chi.URLParam(r, "roomID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleHistory lists recently finished games, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"results": []any{}, "count": 0})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.history.ListResults(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, "failed to list game history", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}
