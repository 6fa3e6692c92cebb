package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/natak-game/natak-server-go/internal/game"
)

// errBadRequest marks malformed request bodies and path values.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var conflictErrors = []error{
	game.ErrInvalidAction,
	game.ErrNotPlayersTurn,
	game.ErrGameOver,
	game.ErrTradeOfferPending,
	game.ErrTradeOfferNotFound,
}

var ruleErrors = []error{
	game.ErrInvalidPlacement,
	game.ErrInsufficientResources,
	game.ErrInsufficientStock,
	game.ErrBankExhausted,
	game.ErrTradeEmbargoed,
	game.ErrInvalidTrade,
	game.ErrCardNotPlayable,
	game.ErrInvalidTarget,
	game.ErrInvalidDiscard,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// httpStatus maps an engine or request error onto a response code.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errBadRequest),
		errors.Is(err, game.ErrInvalidPlayer),
		errors.Is(err, game.ErrInvalidPlayerCount):
		return http.StatusBadRequest, "bad_request"
	case isAny(err, conflictErrors):
		return http.StatusConflict, "conflict"
	case isAny(err, ruleErrors):
		return http.StatusUnprocessableEntity, "rule_violation"
	case errors.Is(err, game.ErrStorageDisabled):
		return http.StatusNotImplemented, "storage_disabled"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
