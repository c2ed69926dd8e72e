// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/hacknight/models"
)

func decisionVotes(values ...string) []models.XadowVote {
	votes := make([]models.XadowVote, len(values))
	for i, v := range values {
		votes[i] = models.XadowVote{Stage: models.StageDecision, Value: v}
	}
	return votes
}

func guessVotes(teams ...string) []models.XadowVote {
	votes := make([]models.XadowVote, len(teams))
	for i, team := range teams {
		team := team
		votes[i] = models.XadowVote{Stage: models.StageGuess, TeamID: &team, Value: team}
	}
	return votes
}

func TestTallyDecision(t *testing.T) {
	tests := []struct {
		name     string
		votes    []string
		yes, no  int
		majority string
	}{
		{"no votes", nil, 0, 0, models.MajorityTie},
		{"yes wins", []string{"yes", "yes", "no"}, 2, 1, models.MajorityYes},
		{"no wins", []string{"no", "no", "yes"}, 1, 2, models.MajorityNo},
		{"tie", []string{"yes", "yes", "no", "no"}, 2, 2, models.MajorityTie},
		{"unknown values ignored", []string{"yes", "maybe"}, 1, 0, models.MajorityYes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := TallyDecision(decisionVotes(tt.votes...))
			assert.Equal(t, tt.yes, r.Yes)
			assert.Equal(t, tt.no, r.No)
			assert.Equal(t, tt.yes+tt.no, r.Total)
			assert.Equal(t, tt.majority, r.Majority)
		})
	}
}

func TestRequiredVotes(t *testing.T) {
	tests := []struct {
		eligible int
		ratio    float64
		want     int
	}{
		{0, 0.8, 0},
		{1, 0.8, 1},
		{2, 0.1, 1},
		{10, 0.8, 8},
		{10, 0.7, 7},
		{9, 0.8, 7},
		{5, 1, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiredVotes(tt.eligible, tt.ratio), "eligible=%d ratio=%v", tt.eligible, tt.ratio)
	}
}

func TestTallyGuessQuorum(t *testing.T) {
	seven := make([]string, 7)
	for i := range seven {
		seven[i] = "A"
	}

	r := TallyGuess(guessVotes(seven...), 10, "A", 0.8)
	assert.Equal(t, 8, r.Required)
	assert.Equal(t, 7, r.VotesCast)
	assert.False(t, r.HasEnoughVotes)
	assert.False(t, r.Success, "a correct guess without quorum is not a success")
	assert.False(t, r.PenaltyDue())

	r = TallyGuess(guessVotes(append(seven, "B")...), 10, "A", 0.8)
	assert.True(t, r.HasEnoughVotes)
	assert.True(t, r.Success)
	assert.False(t, r.PenaltyDue())
}

func TestTallyGuessTieBreaksLexicographically(t *testing.T) {
	r := TallyGuess(guessVotes("B", "A", "B", "A"), 4, "B", 0.5)

	assert.Equal(t, "A", r.LeadingTeam)
	assert.Equal(t, 2, r.LeadingVotes)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, r.Tally)
	assert.True(t, r.HasEnoughVotes)
	assert.False(t, r.Success)
	assert.True(t, r.PenaltyDue())
}

func TestTallyGuessNobodyCheckedIn(t *testing.T) {
	r := TallyGuess(nil, 0, "A", 0.8)

	assert.Zero(t, r.Required)
	assert.False(t, r.HasEnoughVotes)
	assert.Empty(t, r.LeadingTeam)
	assert.False(t, r.PenaltyDue())
}

func TestTallyGuessWithoutTarget(t *testing.T) {
	r := TallyGuess(guessVotes("A"), 1, "", 0.8)

	assert.True(t, r.HasEnoughVotes)
	assert.False(t, r.Success)
}
