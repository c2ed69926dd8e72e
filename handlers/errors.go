// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/middleware"
	"github.com/danielhkuo/hacknight/votestate"
)

// writeEngineError maps an engine error to its HTTP status. Unknown errors
// are logged and reported as 500.
func writeEngineError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, engine.Reason(err))
	case errors.Is(err, engine.ErrLocked):
		middleware.ErrorResponse(w, http.StatusLocked, engine.Reason(err))
	case errors.Is(err, engine.ErrPrecondition):
		middleware.ErrorResponse(w, http.StatusConflict, engine.Reason(err))
	case errors.Is(err, votestate.ErrVersionConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "state changed, retry")
	default:
		slog.Error("request failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
