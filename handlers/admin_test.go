// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/testutil"
)

func TestTrigger(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)

	tests := []struct {
		name           string
		body           models.TriggerRequest
		expectedStatus int
		expectedStage  string
	}{
		{"missing stage", models.TriggerRequest{EventDate: event}, http.StatusBadRequest, ""},
		{"unknown stage", models.TriggerRequest{EventDate: event, Stage: "party"}, http.StatusBadRequest, ""},
		{"negative duration", models.TriggerRequest{EventDate: event, Stage: models.StageDecision, DurationMinutes: -1}, http.StatusBadRequest, ""},
		{"guess without target", models.TriggerRequest{EventDate: event, Stage: models.StageGuess}, http.StatusConflict, ""},
		{"complete outside guess", models.TriggerRequest{EventDate: event, Stage: models.StageComplete}, http.StatusConflict, ""},
		{"start decision", models.TriggerRequest{EventDate: event, Stage: models.StageDecision, DurationMinutes: 2.5}, http.StatusOK, models.StageDecision},
		{"close", models.TriggerRequest{EventDate: event, Stage: "close"}, http.StatusOK, models.StageIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(handler.Trigger, "POST", "/xadow/trigger", tt.body, nil)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var st models.VotingState
				testutil.AssertJSON(t, w, &st)
				if st.XadowStage != tt.expectedStage {
					t.Errorf("Expected stage %s, got %s", tt.expectedStage, st.XadowStage)
				}
			}
		})
	}
}

func TestTriggerSetsDeadline(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)

	w := do(handler.Trigger, "POST", "/xadow/trigger", models.TriggerRequest{EventDate: event, Stage: models.StageDecision, DurationMinutes: 2}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var st models.VotingState
	testutil.AssertJSON(t, w, &st)
	if st.DecisionDeadline == nil {
		t.Fatal("Expected a decision deadline")
	}
	if d := st.DecisionDeadline.Sub(st.UpdatedAt); d < 119e9 || d > 121e9 {
		t.Errorf("Expected deadline about 2 minutes out, got %v", d)
	}
}

func TestSetTarget(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)

	w := do(handler.SetTarget, "POST", "/xadow/set-target", models.SetTargetRequest{EventDate: event}, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = do(handler.SetTarget, "POST", "/xadow/set-target", models.SetTargetRequest{EventDate: event, TeamID: "A"}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var st models.VotingState
	testutil.AssertJSON(t, w, &st)
	if st.XadowTargetTeam != "A" {
		t.Errorf("Expected target 'A', got '%s'", st.XadowTargetTeam)
	}
}

func TestUpdateState(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)

	tests := []struct {
		command        string
		expectedStatus int
		check          func(st models.VotingState) bool
	}{
		{"close-checkins", http.StatusOK, func(st models.VotingState) bool { return !st.CheckinsOpen }},
		{"open-checkins", http.StatusOK, func(st models.VotingState) bool { return st.CheckinsOpen }},
		{"lock-pitch", http.StatusOK, func(st models.VotingState) bool { return st.PitchLocked }},
		{"unlock-pitch", http.StatusOK, func(st models.VotingState) bool { return !st.PitchLocked }},
		{"lock-challenge", http.StatusOK, func(st models.VotingState) bool { return st.ChallengeLocked }},
		{"unlock-challenge", http.StatusOK, func(st models.VotingState) bool { return !st.ChallengeLocked }},
		{"explode", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			w := do(handler.UpdateState, "POST", "/state", models.StateCommandRequest{EventDate: event, Command: tt.command}, nil)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.check != nil {
				var st models.VotingState
				testutil.AssertJSON(t, w, &st)
				if !tt.check(st) {
					t.Errorf("Command %s not applied: %+v", tt.command, st)
				}
			}
		})
	}
}

func TestRetryPenaltyNotComplete(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)

	w := do(handler.RetryPenalty, "POST", "/xadow/retry-penalty", models.RetryPenaltyRequest{EventDate: event}, nil)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestReset(t *testing.T) {
	eng, conn := newTestEngine(t, nil)
	handler := NewAdminHandler(eng)
	testutil.CheckInMember(t, conn, event, "alice", "A")

	w := do(handler.Reset, "POST", "/reset", models.ResetRequest{EventDate: event, NextEventDate: "2025-04-11"}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var st models.VotingState
	testutil.AssertJSON(t, w, &st)
	if st.LastResetAt == nil {
		t.Error("Expected lastResetAt to be set")
	}
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM check_in`); n != 0 {
		t.Errorf("Expected ledger to be wiped, found %d check-ins", n)
	}

	var current string
	if err := conn.QueryRow(`SELECT current_event_date FROM event_setting WHERE id = 1`).Scan(&current); err != nil {
		t.Fatalf("Failed to read current event: %v", err)
	}
	if current != "2025-04-11" {
		t.Errorf("Expected current event 2025-04-11, got %s", current)
	}
}
