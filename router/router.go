// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/hacknight/cliparse"
	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/handlers"
	"github.com/danielhkuo/hacknight/middleware"
)

// NewRouter wires every endpoint. hub serves the websocket stream and
// gatherer the /metrics endpoint; either may be nil to leave it out.
func NewRouter(eng *engine.Engine, hub http.Handler, gatherer prometheus.Gatherer, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(eng)
	statusHandler := handlers.NewStatusHandler(eng, cfg)
	adminHandler := handlers.NewAdminHandler(eng)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Read side (public)
	mux.HandleFunc("GET /status", middleware.WithLogging(statusHandler.GetStatus))
	mux.HandleFunc("GET /results", middleware.WithLogging(statusHandler.GetResults))

	// Participation (public)
	mux.HandleFunc("POST /check-in", middleware.WithLogging(votingHandler.CheckIn))
	mux.HandleFunc("POST /pre-checkin", middleware.WithLogging(votingHandler.PreCheckIn))
	mux.HandleFunc("POST /vote/pitch", middleware.WithLogging(votingHandler.SubmitPitch))
	mux.HandleFunc("POST /vote/challenge", middleware.WithLogging(votingHandler.SubmitChallenge))
	mux.HandleFunc("POST /vote/xadow/decision", middleware.WithLogging(votingHandler.SubmitDecision))
	mux.HandleFunc("POST /vote/xadow/guess", middleware.WithLogging(votingHandler.SubmitGuess))

	// Admin operations (X-Admin-Key)
	mux.HandleFunc("POST /xadow/trigger", admin(adminHandler.Trigger))
	mux.HandleFunc("POST /xadow/set-target", admin(adminHandler.SetTarget))
	mux.HandleFunc("POST /xadow/retry-penalty", admin(adminHandler.RetryPenalty))
	mux.HandleFunc("POST /state", admin(adminHandler.UpdateState))
	mux.HandleFunc("POST /reset", admin(adminHandler.Reset))

	// Real-time stream; not wrapped so the connection can be hijacked
	if hub != nil {
		mux.Handle("GET /ws", hub)
	}
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hacknight API v1"))
	})

	return mux
}
