// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/penalty"
	"github.com/danielhkuo/hacknight/testutil"
)

// crowd is 10 members across three teams.
var crowd = []struct{ member, team string }{
	{"a0", "TeamA"}, {"a1", "TeamA"}, {"a2", "TeamA"},
	{"b0", "TeamB"}, {"b1", "TeamB"}, {"b2", "TeamB"}, {"b3", "TeamB"},
	{"c0", "TeamC"}, {"c1", "TeamC"}, {"c2", "TeamC"},
}

type flow struct {
	t      *testing.T
	voting *VotingHandler
	admin  *AdminHandler
	status *StatusHandler
}

func newFlow(t *testing.T, applier engine.PenaltyApplier) *flow {
	t.Helper()

	eng, _ := newTestEngine(t, applier)
	cfg := testutil.GetTestConfig()
	f := &flow{
		t:      t,
		voting: NewVotingHandler(eng),
		admin:  NewAdminHandler(eng),
		status: NewStatusHandler(eng, cfg),
	}

	for _, m := range crowd {
		w := do(f.voting.CheckIn, "POST", "/check-in", models.CheckInRequest{EventDate: event, MemberID: m.member, TeamID: m.team}, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	}
	return f
}

func (f *flow) trigger(stage string) models.VotingState {
	f.t.Helper()
	w := do(f.admin.Trigger, "POST", "/xadow/trigger", models.TriggerRequest{EventDate: event, Stage: stage, AdminID: "host"}, nil)
	if w.Code != http.StatusOK {
		f.t.Fatalf("Trigger %s failed: %d - %s", stage, w.Code, w.Body.String())
	}
	var st models.VotingState
	testutil.AssertJSON(f.t, w, &st)
	return st
}

// decide opens the decision stage and casts yes/no votes.
func (f *flow) decide(yes, no int) {
	f.t.Helper()
	f.trigger(models.StageDecision)
	for i := 0; i < yes+no; i++ {
		participate := i < yes
		w := do(f.voting.SubmitDecision, "POST", "/vote/xadow/decision",
			models.DecisionVoteRequest{EventDate: event, VoterID: crowd[i].member, Participate: &participate}, nil)
		testutil.AssertStatus(f.t, w, http.StatusOK)
	}
}

func (f *flow) setTarget(team string) {
	f.t.Helper()
	w := do(f.admin.SetTarget, "POST", "/xadow/set-target", models.SetTargetRequest{EventDate: event, TeamID: team}, nil)
	testutil.AssertStatus(f.t, w, http.StatusOK)
}

func (f *flow) guess(member, team string) {
	f.t.Helper()
	w := do(f.voting.SubmitGuess, "POST", "/vote/xadow/guess", models.GuessVoteRequest{EventDate: event, VoterID: member, TeamID: team}, nil)
	if w.Code != http.StatusOK {
		f.t.Fatalf("Guess by %s failed: %d - %s", member, w.Code, w.Body.String())
	}
}

// otherTeam returns a wrong guess that is never the member's own team.
func otherTeam(own string) string {
	if own == "TeamC" {
		return "TeamB"
	}
	return "TeamC"
}

func (f *flow) decision() *models.XadowDecision {
	f.t.Helper()
	w := do(f.status.GetStatus, "GET", "/status?eventDate="+event, nil, nil)
	testutil.AssertStatus(f.t, w, http.StatusOK)
	var status models.Status
	testutil.AssertJSON(f.t, w, &status)
	return status.XadowDecision
}

// TestXadowSuccessWorkflow: 6 yes, 2 no; 9 of 10 guess and 7 find TeamA.
func TestXadowSuccessWorkflow(t *testing.T) {
	f := newFlow(t, nil)

	f.decide(6, 2)
	f.setTarget("TeamA")
	st := f.trigger(models.StageGuess)
	if st.DecisionResults == nil || st.DecisionResults.Majority != models.MajorityYes {
		t.Fatalf("Expected yes majority, got %+v", st.DecisionResults)
	}

	for _, m := range crowd[3:] {
		f.guess(m.member, "TeamA")
	}
	f.guess("a0", "TeamB")
	f.guess("a1", "TeamC")

	st = f.trigger(models.StageComplete)
	r := st.GuessResults
	if r == nil {
		t.Fatal("Expected guess results")
	}
	if !r.Success || !r.HasEnoughVotes {
		t.Errorf("Expected success with quorum, got %+v", r)
	}
	if r.LeadingTeam != "TeamA" || r.LeadingVotes != 7 || r.VotesCast != 9 {
		t.Errorf("Unexpected tally: %+v", r)
	}
	if r.PenaltyApplied {
		t.Error("No penalty expected on success")
	}
	if d := f.decision(); d == nil || !d.IsXadowTeam || d.AdminID != "host" {
		t.Errorf("Unexpected decision record: %+v", d)
	}
}

// TestXadowNoQuorumWorkflow: only 5 of 10 guess.
func TestXadowNoQuorumWorkflow(t *testing.T) {
	f := newFlow(t, nil)

	f.decide(6, 2)
	f.setTarget("TeamA")
	f.trigger(models.StageGuess)
	for _, m := range crowd[3:8] {
		f.guess(m.member, otherTeam(m.team))
	}

	st := f.trigger(models.StageComplete)
	r := st.GuessResults
	if r.HasEnoughVotes || r.Success || r.PenaltyApplied {
		t.Errorf("Expected no quorum, no success and no penalty, got %+v", r)
	}
	if r.VotesCast != 5 || r.Eligible != 10 || r.Required != 8 {
		t.Errorf("Expected 5 of 10 votes against 8 required, got %+v", r)
	}
	if d := f.decision(); d == nil || d.IsXadowTeam || d.TeamID != "TeamA" {
		t.Errorf("Expected a losing decision record for TeamA, got %+v", d)
	}
}

// TestXadowPenaltyWorkflow: quorum reached on the wrong team charges every
// participating member of the scoring ledger once.
func TestXadowPenaltyWorkflow(t *testing.T) {
	scoring := testutil.SetupScoringDB(t)
	for _, m := range crowd {
		testutil.AddScoringMember(t, scoring, m.member, 1)
	}
	applier := penalty.NewApplier(scoring, penalty.Config{Points: 10, Category: "penalty"})
	f := newFlow(t, applier)

	f.decide(10, 0)
	f.setTarget("TeamA")
	f.trigger(models.StageGuess)
	for _, m := range crowd {
		f.guess(m.member, otherTeam(m.team))
	}

	st := f.trigger(models.StageComplete)
	r := st.GuessResults
	if !r.HasEnoughVotes || r.Success {
		t.Fatalf("Expected a lost game with quorum, got %+v", r)
	}
	if !r.PenaltyApplied || r.Penalty == nil || r.Penalty.Applied != len(crowd) {
		t.Fatalf("Expected penalty for %d members, got %+v", len(crowd), r.Penalty)
	}

	// Completing again and retrying are both no-ops
	f.trigger(models.StageComplete)
	w := do(f.admin.RetryPenalty, "POST", "/xadow/retry-penalty", models.RetryPenaltyRequest{EventDate: event}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	n := testutil.CountRows(t, scoring, `SELECT COUNT(*) FROM points_entry WHERE category = 'penalty'`)
	if n != len(crowd) {
		t.Errorf("Expected %d penalty entries, got %d", len(crowd), n)
	}
	for _, m := range crowd[:1] {
		got := testutil.CountRows(t, scoring, `SELECT COALESCE(SUM(points), 0) FROM points_entry WHERE member_id = $1`, m.member)
		if got != -5 {
			t.Errorf("Expected %s at -5 points, got %d", m.member, got)
		}
	}
}
