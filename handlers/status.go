// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/hacknight/cliparse"
	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/middleware"
)

type StatusHandler struct {
	eng *engine.Engine
	cfg cliparse.Config
}

func NewStatusHandler(eng *engine.Engine, cfg cliparse.Config) *StatusHandler {
	return &StatusHandler{eng: eng, cfg: cfg}
}

// GetStatus handles GET /status?eventDate=&voterId=
//
// The target team is only shown to admins until the game is complete.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, r.URL.Query().Get("eventDate"))
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	status, err := h.eng.Status(ctx, eventDate, r.URL.Query().Get("voterId"))
	if err != nil {
		writeEngineError(w, err, "get status")
		return
	}

	target := status.State.XadowTargetTeam
	status.State = status.State.Redacted()
	if middleware.IsAdmin(r, h.cfg.AdminKeySalt) {
		status.State.XadowTargetTeam = target
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// GetResults handles GET /results?eventDate=
func (h *StatusHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, r.URL.Query().Get("eventDate"))
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	results, err := h.eng.Results(ctx, eventDate)
	if err != nil {
		writeEngineError(w, err, "compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
