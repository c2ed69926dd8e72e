// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/testutil"
)

const event = testutil.TestEventDate

var at = time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCheckInOverwritesTeam(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCheckIn(ctx, models.CheckIn{EventDate: event, MemberID: "m1", TeamID: "A", CheckedInAt: at}))
	require.NoError(t, s.UpsertCheckIn(ctx, models.CheckIn{EventDate: event, MemberID: "m1", TeamID: "B", CheckedInAt: at.Add(time.Minute)}))

	team, err := s.TeamOf(ctx, event, "m1")
	require.NoError(t, err)
	assert.Equal(t, "B", team)

	n, err := s.CountCheckedIn(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	team, err = s.TeamOf(ctx, event, "nobody")
	require.NoError(t, err)
	assert.Empty(t, team)
}

func TestCountCheckedInIsPerEvent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, m := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.UpsertCheckIn(ctx, models.CheckIn{EventDate: event, MemberID: m, TeamID: "A", CheckedInAt: at}))
	}
	require.NoError(t, s.UpsertCheckIn(ctx, models.CheckIn{EventDate: "2025-04-11", MemberID: "m4", TeamID: "A", CheckedInAt: at}))

	n, err := s.CountCheckedIn(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTogglePreCheckIn(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	p := models.PreCheckIn{EventDate: event, MemberID: "m1", CreatedAt: at}

	attending, err := s.TogglePreCheckIn(ctx, p)
	require.NoError(t, err)
	assert.True(t, attending)

	list, err := s.PreCheckIns(ctx, event)
	require.NoError(t, err)
	require.Len(t, list, 1)

	attending, err = s.TogglePreCheckIn(ctx, p)
	require.NoError(t, err)
	assert.False(t, attending)

	list, err = s.PreCheckIns(ctx, event)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPitchVoteUpsertDerivesTotal(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	v := models.PitchVote{EventDate: event, TeamID: "A", VoterID: "m1", Appeal: 1, Surprise: 1, Time: 1, Content: 1, Effort: 1, Total: 99, UpdatedAt: at}
	require.NoError(t, s.UpsertPitchVote(ctx, v))

	v.Appeal, v.Effort = 5, 5
	require.NoError(t, s.UpsertPitchVote(ctx, v))

	votes, err := s.PitchVotes(ctx, event)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, 13, votes[0].Total)
	assert.Equal(t, 5, votes[0].Appeal)
}

func TestChallengeVoteNullablePosition(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChallengeVote(ctx, models.ChallengeVote{EventDate: event, TeamID: "A", VoterID: "m1", OrderPosition: intPtr(2), UpdatedAt: at}))
	require.NoError(t, s.UpsertChallengeVote(ctx, models.ChallengeVote{EventDate: event, TeamID: "B", VoterID: "m1", UpdatedAt: at}))
	require.NoError(t, s.UpsertChallengeVote(ctx, models.ChallengeVote{EventDate: event, TeamID: "A", VoterID: "m1", OrderPosition: intPtr(1), UpdatedAt: at}))

	votes, err := s.ChallengeVotes(ctx, event)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	require.NotNil(t, votes[0].OrderPosition)
	assert.Equal(t, 1, *votes[0].OrderPosition)
	assert.Nil(t, votes[1].OrderPosition)
}

func TestXadowVotesFilterByStage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertXadowVote(ctx, models.XadowVote{EventDate: event, Stage: models.StageDecision, VoterID: "m1", Value: models.DecisionYes, UpdatedAt: at}))
	require.NoError(t, s.UpsertXadowVote(ctx, models.XadowVote{EventDate: event, Stage: models.StageDecision, VoterID: "m1", Value: models.DecisionNo, UpdatedAt: at}))
	require.NoError(t, s.UpsertXadowVote(ctx, models.XadowVote{EventDate: event, Stage: models.StageGuess, VoterID: "m1", TeamID: strPtr("B"), Value: "B", UpdatedAt: at}))

	decision, err := s.XadowVotes(ctx, event, models.StageDecision)
	require.NoError(t, err)
	require.Len(t, decision, 1)
	assert.Equal(t, models.DecisionNo, decision[0].Value)
	assert.Nil(t, decision[0].TeamID)

	guess, err := s.XadowVotes(ctx, event, models.StageGuess)
	require.NoError(t, err)
	require.Len(t, guess, 1)
	require.NotNil(t, guess[0].TeamID)
	assert.Equal(t, "B", *guess[0].TeamID)

	all, err := s.XadowVotes(ctx, event, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDecisionRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	d, err := s.Decision(ctx, event)
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, s.UpsertDecision(ctx, models.XadowDecision{EventDate: event, TeamID: "A", AdminID: "admin", DecidedAt: at}))
	require.NoError(t, s.UpsertDecision(ctx, models.XadowDecision{EventDate: event, TeamID: "A", AdminID: "system", IsXadowTeam: true, DecidedAt: at}))

	d, err = s.Decision(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "system", d.AdminID)
	assert.True(t, d.IsXadowTeam)
}

func seed(t *testing.T, s *Store, eventDate string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpsertCheckIn(ctx, models.CheckIn{EventDate: eventDate, MemberID: "m1", TeamID: "A", CheckedInAt: at}))
	_, err := s.TogglePreCheckIn(ctx, models.PreCheckIn{EventDate: eventDate, MemberID: "m1", CreatedAt: at})
	require.NoError(t, err)
	require.NoError(t, s.UpsertPitchVote(ctx, models.PitchVote{EventDate: eventDate, TeamID: "B", VoterID: "m1", Appeal: 3, Surprise: 4, Time: 2, Content: 5, Effort: 1, UpdatedAt: at}))
	require.NoError(t, s.UpsertChallengeVote(ctx, models.ChallengeVote{EventDate: eventDate, TeamID: "B", VoterID: "m1", OrderPosition: intPtr(1), UpdatedAt: at}))
	require.NoError(t, s.UpsertXadowVote(ctx, models.XadowVote{EventDate: eventDate, Stage: models.StageDecision, VoterID: "m1", Value: models.DecisionYes, UpdatedAt: at}))
	require.NoError(t, s.UpsertDecision(ctx, models.XadowDecision{EventDate: eventDate, TeamID: "B", AdminID: "admin", DecidedAt: at}))
}

func TestDeleteXadowKeepsOtherVotes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seed(t, s, event)

	require.NoError(t, s.DeleteXadow(ctx, event))

	snap, err := s.Snapshot(ctx, event)
	require.NoError(t, err)
	assert.Empty(t, snap.XadowVotes)
	assert.Nil(t, snap.Decision)
	assert.Len(t, snap.CheckIns, 1)
	assert.Len(t, snap.PitchVotes, 1)
	assert.Len(t, snap.ChallengeVotes, 1)
}

func TestClearGuessesKeepsDecisionVotes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seed(t, s, event)
	require.NoError(t, s.UpsertXadowVote(ctx, models.XadowVote{EventDate: event, Stage: models.StageGuess, VoterID: "m1", TeamID: strPtr("B"), Value: "B", UpdatedAt: at}))

	require.NoError(t, s.ClearGuesses(ctx, event))

	snap, err := s.Snapshot(ctx, event)
	require.NoError(t, err)
	require.Len(t, snap.XadowVotes, 1)
	assert.Equal(t, models.StageDecision, snap.XadowVotes[0].Stage)
	assert.Nil(t, snap.Decision)
}

func TestWipeOnlyTouchesEvent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seed(t, s, event)
	seed(t, s, "2025-04-11")

	require.NoError(t, s.Wipe(ctx, event))

	wiped, err := s.Snapshot(ctx, event)
	require.NoError(t, err)
	assert.Empty(t, wiped.CheckIns)
	assert.Empty(t, wiped.PreCheckIns)
	assert.Empty(t, wiped.PitchVotes)
	assert.Empty(t, wiped.ChallengeVotes)
	assert.Empty(t, wiped.XadowVotes)
	assert.Nil(t, wiped.Decision)

	other, err := s.Snapshot(ctx, "2025-04-11")
	require.NoError(t, err)
	assert.Len(t, other.CheckIns, 1)
	assert.NotNil(t, other.Decision)
}

func TestSnapshotInsideTransaction(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	seed(t, New(conn), event)

	tx, err := conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	snap, err := New(tx).Snapshot(ctx, event)
	require.NoError(t, err)
	assert.Len(t, snap.CheckIns, 1)
	assert.Len(t, snap.PreCheckIns, 1)
	assert.Len(t, snap.XadowVotes, 1)
	require.NoError(t, tx.Commit())
}

func TestComputeStandings(t *testing.T) {
	pitch := []models.PitchVote{
		{TeamID: "A", Total: 10},
		{TeamID: "A", Total: 20},
		{TeamID: "B", Total: 20},
		{TeamID: "B", Total: 10},
		{TeamID: "C", Total: 25},
	}
	challenge := []models.ChallengeVote{
		{TeamID: "A", OrderPosition: intPtr(2)},
		{TeamID: "B", OrderPosition: intPtr(1)},
		{TeamID: "D"},
	}

	standings := ComputeStandings(pitch, challenge)
	require.Len(t, standings, 4)

	order := make([]string, len(standings))
	for i, s := range standings {
		order[i] = s.TeamID
		assert.Equal(t, i+1, s.Rank)
	}
	// A and B tie on pitch; B has the better challenge position.
	assert.Equal(t, []string{"C", "B", "A", "D"}, order)

	assert.Equal(t, 15.0, standings[1].PitchMean)
	assert.Equal(t, 15.0, standings[1].PitchMedian)
	assert.Equal(t, 1, standings[3].ChallengeVotes)
	assert.Zero(t, standings[3].ChallengeMeanPosition)
}

func TestComputeStandingsEmpty(t *testing.T) {
	assert.Empty(t, ComputeStandings(nil, nil))
}

func TestPercentile(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 30.0, percentile(data, 0.5))
	assert.InDelta(t, 14.0, percentile(data, 0.1), 1e-9)
	assert.Equal(t, 50.0, percentile(data, 1))
	assert.Zero(t, percentile(nil, 0.5))
}
