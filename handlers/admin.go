// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/middleware"
	"github.com/danielhkuo/hacknight/models"
)

// AdminHandler serves the operations behind X-Admin-Key. Authentication is
// done by middleware.RequireAdmin at routing time.
type AdminHandler struct {
	eng *engine.Engine
}

func NewAdminHandler(eng *engine.Engine) *AdminHandler {
	return &AdminHandler{eng: eng}
}

// Trigger handles POST /xadow/trigger
func (h *AdminHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req models.TriggerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Stage == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "stage is required")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	st, err := h.eng.Trigger(ctx, eventDate, engine.TriggerInput{
		Stage:      req.Stage,
		Duration:   time.Duration(req.DurationMinutes * float64(time.Minute)),
		ResetVotes: req.ResetVotes,
		AdminID:    req.AdminID,
	})
	if err != nil {
		writeEngineError(w, err, "trigger stage")
		return
	}

	slog.Info("xad0w.b1ts triggered", "event_date", eventDate, "stage", req.Stage, "admin_id", req.AdminID)
	middleware.JSONResponse(w, http.StatusOK, st)
}

// SetTarget handles POST /xadow/set-target
func (h *AdminHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req models.SetTargetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	st, err := h.eng.SetTarget(ctx, eventDate, req.TeamID)
	if err != nil {
		writeEngineError(w, err, "set target")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// RetryPenalty handles POST /xadow/retry-penalty
func (h *AdminHandler) RetryPenalty(w http.ResponseWriter, r *http.Request) {
	var req models.RetryPenaltyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	st, err := h.eng.RetryPenalty(ctx, eventDate)
	if err != nil {
		writeEngineError(w, err, "retry penalty")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// UpdateState handles POST /state
func (h *AdminHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req models.StateCommandRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	st, err := h.eng.ApplyCommand(ctx, eventDate, req.Command)
	if err != nil {
		writeEngineError(w, err, "apply state command")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}

// Reset handles POST /reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	st, err := h.eng.Reset(ctx, eventDate, req.NextEventDate)
	if err != nil {
		writeEngineError(w, err, "reset event")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, st)
}
