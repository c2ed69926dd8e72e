// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/hacknight/ledger"
	"github.com/danielhkuo/hacknight/metrics"
	"github.com/danielhkuo/hacknight/models"
)

// Trigger stages accepted by Engine.Trigger on top of the game stages.
const (
	TriggerClose = "close"
)

// TriggerInput is an admin request to move the game.
type TriggerInput struct {
	Stage      string
	Duration   time.Duration // zero means no deadline
	ResetVotes bool
	AdminID    string
}

var errNoApplier = errors.New("no scoring ledger configured")

// Trigger moves the xad0w.b1ts game to the requested stage.
//
// decision may be started from any stage and clears previous results;
// guess needs a target and may not follow guess or complete; complete is
// only reachable from guess and is a no-op once complete. close stops the
// game and idle also forgets results and target.
func (e *Engine) Trigger(ctx context.Context, eventDate string, in TriggerInput) (models.VotingState, error) {
	if in.Duration < 0 {
		return models.VotingState{}, validation("negative-duration")
	}
	if in.AdminID == "" {
		in.AdminID = "admin"
	}

	return e.withEvent(ctx, eventDate, true, func(s *session) error {
		switch in.Stage {
		case models.StageDecision:
			return e.startDecision(ctx, s, in.Duration, in.ResetVotes)
		case models.StageGuess:
			switch s.state.XadowStage {
			case models.StageGuess:
				return precondition("already-guessing")
			case models.StageComplete:
				return precondition("already-complete")
			}
			return e.startGuess(ctx, s, in.Duration, TriggerAdmin)
		case models.StageComplete:
			switch s.state.XadowStage {
			case models.StageComplete:
				return nil
			case models.StageGuess:
				return e.complete(ctx, s, in.AdminID, TriggerAdmin)
			}
			return precondition("not-guessing")
		case TriggerClose, models.StageIdle:
			return e.stop(ctx, s, in.Stage == models.StageIdle)
		default:
			return validation("unknown-stage")
		}
	})
}

func (e *Engine) startDecision(ctx context.Context, s *session, d time.Duration, resetVotes bool) error {
	from := s.state.XadowStage
	now := e.now()
	err := e.update(ctx, s, func(votes *ledger.Store, next *models.VotingState) error {
		// A new game never inherits the previous outcome or guesses
		drop := votes.ClearGuesses
		if resetVotes {
			drop = votes.DeleteXadow
		}
		if err := drop(ctx, s.eventDate); err != nil {
			return err
		}
		next.XadowStage = models.StageDecision
		next.DecisionDeadline = deadlineAfter(now, d)
		next.GuessDeadline = nil
		next.DecisionResults = nil
		next.GuessResults = nil
		return nil
	})
	if err != nil {
		return err
	}

	e.observeTransition(s, from, TriggerAdmin)
	return nil
}

// startGuess closes the decision stage: the decision votes are tallied and
// the guess stage opens.
func (e *Engine) startGuess(ctx context.Context, s *session, d time.Duration, trigger string) error {
	if s.state.XadowTargetTeam == "" {
		return precondition("target-required")
	}

	from := s.state.XadowStage
	now := e.now()
	err := e.update(ctx, s, func(votes *ledger.Store, next *models.VotingState) error {
		decisions, err := votes.XadowVotes(ctx, s.eventDate, models.StageDecision)
		if err != nil {
			return err
		}
		results := TallyDecision(decisions)
		next.XadowStage = models.StageGuess
		next.DecisionResults = &results
		next.GuessResults = nil
		next.GuessDeadline = deadlineAfter(now, d)
		return nil
	})
	if err != nil {
		return err
	}

	e.observeTransition(s, from, trigger)
	return nil
}

// complete finalizes the guess stage. The transition commits before the
// penalty runs, so a concurrent caller that loads the state afterwards sees
// complete and does nothing.
func (e *Engine) complete(ctx context.Context, s *session, adminID, trigger string) error {
	if s.state.XadowStage == models.StageComplete {
		return nil
	}

	from := s.state.XadowStage
	now := e.now()
	err := e.update(ctx, s, func(votes *ledger.Store, next *models.VotingState) error {
		guesses, err := votes.XadowVotes(ctx, s.eventDate, models.StageGuess)
		if err != nil {
			return err
		}
		eligible, err := votes.CountCheckedIn(ctx, s.eventDate)
		if err != nil {
			return err
		}

		results := TallyGuess(guesses, eligible, next.XadowTargetTeam, e.policy.QuorumRatio)
		results.ComputedAt = now.UTC()
		next.XadowStage = models.StageComplete
		next.GuessResults = &results

		return votes.UpsertDecision(ctx, models.XadowDecision{
			EventDate:   s.eventDate,
			TeamID:      next.XadowTargetTeam,
			AdminID:     adminID,
			IsXadowTeam: results.Success,
			DecidedAt:   now,
		})
	})
	if err != nil {
		return err
	}

	e.observeTransition(s, from, trigger)
	if s.state.GuessResults.PenaltyDue() {
		return e.applyPenalty(ctx, s)
	}
	return nil
}

// applyPenalty runs the applier and records its outcome in the guess
// results. A failing applier is recorded, not returned.
func (e *Engine) applyPenalty(ctx context.Context, s *session) error {
	// The outcome must be recorded once the applier has run
	ctx = context.WithoutCancel(ctx)

	var (
		summary  *models.PenaltySummary
		applyErr = errNoApplier
	)
	if e.penalty != nil {
		summary, applyErr = e.penalty.Apply(ctx, s.eventDate)
	}

	err := e.update(ctx, s, func(_ *ledger.Store, next *models.VotingState) error {
		results := *next.GuessResults
		if applyErr != nil {
			results.PenaltyApplied = false
			results.PenaltyError = applyErr.Error()
			results.Penalty = nil
		} else {
			results.PenaltyApplied = true
			results.PenaltyError = ""
			results.Penalty = summary
		}
		next.GuessResults = &results
		return nil
	})
	if err != nil {
		return err
	}

	if applyErr != nil {
		e.metrics.ObservePenalty(metrics.PenaltyFailed)
		slog.Error("penalty not applied", "event_date", s.eventDate, "error", applyErr)
	} else {
		e.metrics.ObservePenalty(metrics.PenaltyApplied)
		slog.Info("penalty applied", "event_date", s.eventDate, "applied", summary.Applied, "skipped", summary.Skipped)
	}
	s.publish("xadow-penalty", s.state.Redacted())
	return nil
}

// stop ends the game without computing anything. With forget the results
// and the target are cleared too.
func (e *Engine) stop(ctx context.Context, s *session, forget bool) error {
	from := s.state.XadowStage
	err := e.update(ctx, s, func(_ *ledger.Store, next *models.VotingState) error {
		next.XadowStage = models.StageIdle
		next.DecisionDeadline = nil
		next.GuessDeadline = nil
		if forget {
			next.DecisionResults = nil
			next.GuessResults = nil
			next.XadowTargetTeam = ""
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.observeTransition(s, from, TriggerAdmin)
	return nil
}

func (e *Engine) observeTransition(s *session, from, trigger string) {
	to := s.state.XadowStage
	e.metrics.ObserveTransition(from, to, trigger)
	logTransition(s.eventDate, from, to, trigger)
	s.publish("xadow-stage", s.state.Redacted())
}

// SetTarget chooses the secret team. It cannot change once the game is
// complete.
func (e *Engine) SetTarget(ctx context.Context, eventDate, teamID string) (models.VotingState, error) {
	if teamID == "" {
		return models.VotingState{}, validation("team-required")
	}
	return e.withEvent(ctx, eventDate, true, func(s *session) error {
		if s.state.XadowStage == models.StageComplete {
			return precondition("already-complete")
		}
		err := e.update(ctx, s, func(_ *ledger.Store, next *models.VotingState) error {
			next.XadowTargetTeam = teamID
			return nil
		})
		if err != nil {
			return err
		}
		s.publish("xadow-target", map[string]bool{"targetSet": true})
		return nil
	})
}

// RetryPenalty re-runs the applier for a completed game whose penalty is
// due but was not applied. It is a no-op once the penalty is applied.
func (e *Engine) RetryPenalty(ctx context.Context, eventDate string) (models.VotingState, error) {
	return e.withEvent(ctx, eventDate, true, func(s *session) error {
		if s.state.XadowStage != models.StageComplete {
			return precondition("not-complete")
		}
		if !s.state.GuessResults.PenaltyDue() {
			return precondition("no-penalty-due")
		}
		if s.state.GuessResults.PenaltyApplied {
			return nil
		}
		return e.applyPenalty(ctx, s)
	})
}
