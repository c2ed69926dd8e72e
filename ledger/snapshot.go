// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/hacknight/models"
)

// Snapshot is every ledger row for one event.
type Snapshot struct {
	CheckIns       []models.CheckIn
	PreCheckIns    []models.PreCheckIn
	PitchVotes     []models.PitchVote
	ChallengeVotes []models.ChallengeVote
	XadowVotes     []models.XadowVote
	Decision       *models.XadowDecision
}

// Snapshot reads all ledger tables for the event. Reads run in parallel on a
// pool and one at a time on a transaction.
func (s *Store) Snapshot(ctx context.Context, eventDate string) (*Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	if _, ok := s.q.(*sql.Tx); ok {
		g.SetLimit(1)
	}

	g.Go(func() (err error) {
		snap.CheckIns, err = s.CheckIns(ctx, eventDate)
		return err
	})
	g.Go(func() (err error) {
		snap.PreCheckIns, err = s.PreCheckIns(ctx, eventDate)
		return err
	})
	g.Go(func() (err error) {
		snap.PitchVotes, err = s.PitchVotes(ctx, eventDate)
		return err
	})
	g.Go(func() (err error) {
		snap.ChallengeVotes, err = s.ChallengeVotes(ctx, eventDate)
		return err
	})
	g.Go(func() (err error) {
		snap.XadowVotes, err = s.XadowVotes(ctx, eventDate, "")
		return err
	})
	g.Go(func() (err error) {
		snap.Decision, err = s.Decision(ctx, eventDate)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
