// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/middleware"
	"github.com/danielhkuo/hacknight/models"
)

type VotingHandler struct {
	eng *engine.Engine
}

func NewVotingHandler(eng *engine.Engine) *VotingHandler {
	return &VotingHandler{eng: eng}
}

// CheckIn handles POST /check-in
func (h *VotingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Once accepted, the write completes even if the client goes away
	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	checkIn, err := h.eng.CheckIn(ctx, eventDate, req.MemberID, req.TeamID)
	if err != nil {
		writeEngineError(w, err, "check in")
		return
	}

	slog.Info("member checked in", "event_date", eventDate, "member_id", req.MemberID, "team_id", req.TeamID)
	middleware.JSONResponse(w, http.StatusOK, checkIn)
}

// PreCheckIn handles POST /pre-checkin
func (h *VotingHandler) PreCheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.PreCheckInRequest
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

	attending, err := h.eng.TogglePreCheckIn(ctx, eventDate, req.MemberID)
	if err != nil {
		writeEngineError(w, err, "toggle pre-check-in")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PreCheckInResponse{
		MemberID:  req.MemberID,
		Attending: attending,
	})
}

// SubmitPitch handles POST /vote/pitch
func (h *VotingHandler) SubmitPitch(w http.ResponseWriter, r *http.Request) {
	var req models.PitchVoteRequest
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

	res, err := h.eng.SubmitPitch(ctx, eventDate, req.VoterID, req.Votes)
	if err != nil {
		writeEngineError(w, err, "submit pitch votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, batchResponse(res))
}

// SubmitChallenge handles POST /vote/challenge
func (h *VotingHandler) SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	var req models.ChallengeVoteRequest
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

	res, err := h.eng.SubmitChallenge(ctx, eventDate, req.VoterID, req.Orderings)
	if err != nil {
		writeEngineError(w, err, "submit challenge votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, batchResponse(res))
}

// SubmitDecision handles POST /vote/xadow/decision
func (h *VotingHandler) SubmitDecision(w http.ResponseWriter, r *http.Request) {
	var req models.DecisionVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Participate == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "participate is required")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	eventDate, err := h.eng.ResolveEvent(ctx, req.EventDate)
	if err != nil {
		writeEngineError(w, err, "resolve event")
		return
	}

	if err := h.eng.SubmitDecisionVote(ctx, eventDate, req.VoterID, *req.Participate); err != nil {
		writeEngineError(w, err, "submit decision vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "vote recorded"})
}

// SubmitGuess handles POST /vote/xadow/guess
func (h *VotingHandler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req models.GuessVoteRequest
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

	if err := h.eng.SubmitGuessVote(ctx, eventDate, req.VoterID, req.TeamID); err != nil {
		writeEngineError(w, err, "submit guess vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "vote recorded"})
}

func batchResponse(res engine.BatchResult) models.VoteBatchResponse {
	msg := "votes stored"
	if res.Skipped > 0 {
		msg = "votes stored; votes for your own team were ignored"
	}
	return models.VoteBatchResponse{Stored: res.Stored, Skipped: res.Skipped, Message: msg}
}
