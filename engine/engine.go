// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package engine owns the voting state machine of a HackNight event.
//
// Every operation on an event runs under that event's lock: the stored state
// is loaded, expired deadlines are applied, the operation runs, and the
// resulting messages are published. Deadlines are only ever observed lazily,
// so there is no background timer.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/hacknight/keylock"
	"github.com/danielhkuo/hacknight/ledger"
	"github.com/danielhkuo/hacknight/metrics"
	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/votestate"
)

// SystemAdmin is recorded as the decider of transitions caused by deadlines.
const SystemAdmin = "system"

// Transition triggers reported to metrics.
const (
	TriggerAdmin    = "admin"
	TriggerDeadline = "deadline"
)

// PenaltyApplier charges the community penalty for an event. Applying twice
// must not charge anyone twice.
type PenaltyApplier interface {
	Apply(ctx context.Context, eventDate string) (*models.PenaltySummary, error)
}

// Publisher delivers messages to observers without blocking.
type Publisher interface {
	Publish(msg models.Message)
}

// Policy holds the tunables of the game.
type Policy struct {
	DefaultEventDate  string
	QuorumRatio       float64
	AutoGuessDuration time.Duration
}

type Engine struct {
	db      *sql.DB
	penalty PenaltyApplier
	pub     Publisher
	metrics *metrics.Metrics
	policy  Policy
	now     func() time.Time
	locks   keylock.Map
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. applier, pub and m may be nil.
func New(conn *sql.DB, applier PenaltyApplier, pub Publisher, m *metrics.Metrics, policy Policy, opts ...Option) *Engine {
	if policy.QuorumRatio <= 0 {
		policy.QuorumRatio = 0.8
	}
	e := &Engine{
		db:      conn,
		penalty: applier,
		pub:     pub,
		metrics: m,
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// session is an event's state while its lock is held.
type session struct {
	eventDate string
	state     models.VotingState
	outbox    []models.Message
}

func (s *session) publish(kind string, payload any) {
	s.outbox = append(s.outbox, models.Message{Type: kind, EventDate: s.eventDate, Payload: payload})
}

// withEvent locks the event, loads its state, applies expired deadlines when
// advance is set and runs fn. Messages queued by committed work are published
// even if fn fails afterwards.
func (e *Engine) withEvent(ctx context.Context, eventDate string, advance bool, fn func(s *session) error) (models.VotingState, error) {
	unlock := e.locks.Lock(eventDate)
	defer unlock()

	s := &session{eventDate: eventDate}
	defer func() { e.flush(s.outbox) }()

	st, err := votestate.New(e.db).Load(ctx, eventDate, e.now())
	if err != nil {
		return models.VotingState{}, err
	}
	s.state = st

	if advance {
		if err := e.advance(ctx, s); err != nil {
			return s.state, err
		}
	}
	if fn != nil {
		if err := fn(s); err != nil {
			return s.state, err
		}
	}
	return s.state, nil
}

func (e *Engine) flush(msgs []models.Message) {
	if e.pub == nil {
		return
	}
	for _, msg := range msgs {
		e.pub.Publish(msg)
	}
}

// inTx runs fn in a transaction over the vote ledger and the state store.
func (e *Engine) inTx(ctx context.Context, fn func(votes *ledger.Store, states *votestate.Store) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ledger.New(tx), votestate.New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// update applies mutate to a copy of the session state and saves it in the
// same transaction as any ledger writes mutate makes. The session state only
// changes once the transaction commits.
func (e *Engine) update(ctx context.Context, s *session, mutate func(votes *ledger.Store, next *models.VotingState) error) error {
	now := e.now()
	var saved models.VotingState
	err := e.inTx(ctx, func(votes *ledger.Store, states *votestate.Store) error {
		next := s.state
		if err := mutate(votes, &next); err != nil {
			return err
		}
		var err error
		saved, err = states.Save(ctx, next, now)
		return err
	})
	if err != nil {
		return err
	}
	s.state = saved
	return nil
}

// advance applies every deadline that has passed: an expired decision stage
// with a target moves to guess, an expired guess stage completes.
func (e *Engine) advance(ctx context.Context, s *session) error {
	err := e.advanceOnce(ctx, s)
	if errors.Is(err, votestate.ErrVersionConflict) {
		// another process advanced the event first
		st, loadErr := votestate.New(e.db).Load(ctx, s.eventDate, e.now())
		if loadErr != nil {
			return loadErr
		}
		s.state = st
		return nil
	}
	return err
}

func (e *Engine) advanceOnce(ctx context.Context, s *session) error {
	now := e.now()
	if s.state.XadowStage == models.StageDecision && expired(s.state.DecisionDeadline, now) && s.state.XadowTargetTeam != "" {
		if err := e.startGuess(ctx, s, e.policy.AutoGuessDuration, TriggerDeadline); err != nil {
			return err
		}
	}
	if s.state.XadowStage == models.StageGuess && expired(s.state.GuessDeadline, e.now()) {
		if err := e.complete(ctx, s, SystemAdmin, TriggerDeadline); err != nil {
			return err
		}
	}
	return nil
}

func expired(deadline *time.Time, now time.Time) bool {
	return deadline != nil && !now.Before(*deadline)
}

// deadlineAfter returns nil for a non-positive duration, meaning no deadline.
func deadlineAfter(now time.Time, d time.Duration) *time.Time {
	if d <= 0 {
		return nil
	}
	t := now.Add(d).UTC()
	return &t
}

// CurrentEvent returns the stored current event or the configured default.
func (e *Engine) CurrentEvent(ctx context.Context) (string, error) {
	return votestate.New(e.db).CurrentEvent(ctx, e.policy.DefaultEventDate)
}

// ResolveEvent returns eventDate, or the current event when it is empty.
func (e *Engine) ResolveEvent(ctx context.Context, eventDate string) (string, error) {
	if eventDate != "" {
		return eventDate, nil
	}
	return e.CurrentEvent(ctx)
}

// Status returns the event's ledger and state after applying expired
// deadlines. When voterID is checked in, BlockedTeamID is their own team.
// The state is not redacted.
func (e *Engine) Status(ctx context.Context, eventDate, voterID string) (*models.Status, error) {
	var status *models.Status
	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		votes := ledger.New(e.db)
		snap, err := votes.Snapshot(ctx, eventDate)
		if err != nil {
			return err
		}
		blocked := ""
		if voterID != "" {
			if blocked, err = votes.TeamOf(ctx, eventDate, voterID); err != nil {
				return err
			}
		}
		status = &models.Status{
			EventDate:      eventDate,
			CheckIns:       snap.CheckIns,
			PreCheckIns:    snap.PreCheckIns,
			PitchVotes:     snap.PitchVotes,
			ChallengeVotes: snap.ChallengeVotes,
			XadowVotes:     snap.XadowVotes,
			XadowDecision:  snap.Decision,
			State:          s.state,
			BlockedTeamID:  blocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Results ranks the event's teams from pitch and challenge votes.
func (e *Engine) Results(ctx context.Context, eventDate string) (*models.ResultsResponse, error) {
	votes := ledger.New(e.db)
	pitch, err := votes.PitchVotes(ctx, eventDate)
	if err != nil {
		return nil, err
	}
	challenge, err := votes.ChallengeVotes(ctx, eventDate)
	if err != nil {
		return nil, err
	}
	return &models.ResultsResponse{
		EventDate: eventDate,
		Standings: ledger.ComputeStandings(pitch, challenge),
	}, nil
}

func logTransition(eventDate, from, to, trigger string) {
	slog.Info("xad0w.b1ts stage changed", "event_date", eventDate, "from", from, "to", to, "trigger", trigger)
}
