package api

import (
	"errors"
	"net/http"

	"markovarena/internal/markov"
	"markovarena/internal/room"
)

// Error type taxonomy for structured error responses.
const (
	ErrTypeValidation     = "VALIDATION_ERROR"
	ErrTypeNotFound       = "NOT_FOUND"
	ErrTypeBudgetExceeded = "BUDGET_EXCEEDED"
	ErrTypeInternal       = "SERVER_ERROR"
)

// APIError is the JSON error body.
type APIError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// handleDomainError maps engine errors to HTTP responses. NotFound errors are
// client-caused and precise; budget rejections carry the remaining budget so
// the client can self-correct; a solver failure is a server fault.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	var budgetErr *room.BudgetError
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrPlayerNotInRoom):
		s.writeError(w, http.StatusNotFound, ErrTypeNotFound, err.Error(), nil)
	case errors.As(err, &budgetErr):
		s.writeError(w, http.StatusBadRequest, ErrTypeBudgetExceeded, err.Error(), map[string]any{
			"player_id": budgetErr.PlayerID,
			"limit":     budgetErr.Limit,
			"remaining": budgetErr.Remaining,
		})
	case errors.Is(err, markov.ErrNoStationaryDistribution):
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
	default:
		s.writeError(w, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
	}
}
