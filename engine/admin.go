// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/hacknight/ledger"
	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/votestate"
)

// State commands accepted by ApplyCommand.
const (
	CommandOpenCheckins    = "open-checkins"
	CommandCloseCheckins   = "close-checkins"
	CommandLockPitch       = "lock-pitch"
	CommandUnlockPitch     = "unlock-pitch"
	CommandLockChallenge   = "lock-challenge"
	CommandUnlockChallenge = "unlock-challenge"
)

// ApplyCommand flips one of the event's gates.
func (e *Engine) ApplyCommand(ctx context.Context, eventDate, command string) (models.VotingState, error) {
	var apply func(st *models.VotingState)
	switch command {
	case CommandOpenCheckins:
		apply = func(st *models.VotingState) { st.CheckinsOpen = true }
	case CommandCloseCheckins:
		apply = func(st *models.VotingState) { st.CheckinsOpen = false }
	case CommandLockPitch:
		apply = func(st *models.VotingState) { st.PitchLocked = true }
	case CommandUnlockPitch:
		apply = func(st *models.VotingState) { st.PitchLocked = false }
	case CommandLockChallenge:
		apply = func(st *models.VotingState) { st.ChallengeLocked = true }
	case CommandUnlockChallenge:
		apply = func(st *models.VotingState) { st.ChallengeLocked = false }
	default:
		return models.VotingState{}, validation("unknown-command")
	}

	return e.withEvent(ctx, eventDate, true, func(s *session) error {
		err := e.update(ctx, s, func(_ *ledger.Store, next *models.VotingState) error {
			apply(next)
			return nil
		})
		if err != nil {
			return err
		}
		slog.Info("voting state updated", "event_date", eventDate, "command", command)
		s.publish("state-updated", s.state.Redacted())
		return nil
	})
}

// Reset wipes the event's ledger and restores its state to defaults in one
// transaction. Pending deadlines are discarded, not applied. A non-empty
// nextEventDate becomes the current event.
func (e *Engine) Reset(ctx context.Context, eventDate, nextEventDate string) (models.VotingState, error) {
	return e.withEvent(ctx, eventDate, false, func(s *session) error {
		now := e.now()
		var st models.VotingState
		err := e.inTx(ctx, func(votes *ledger.Store, states *votestate.Store) error {
			if err := votes.Wipe(ctx, eventDate); err != nil {
				return err
			}
			var err error
			if st, err = states.Reset(ctx, eventDate, now); err != nil {
				return err
			}
			if nextEventDate != "" {
				return states.SetCurrentEvent(ctx, nextEventDate, now)
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.state = st
		slog.Info("event reset", "event_date", eventDate, "next_event_date", nextEventDate)
		s.publish("event-reset", map[string]string{"nextEventDate": nextEventDate})
		return nil
	})
}
