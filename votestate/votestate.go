// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package votestate persists the per-event VotingState row.
//
// The row is created lazily with defaults on first read and saved with a
// compare-and-set on its version, so a writer holding a stale copy fails
// with ErrVersionConflict instead of overwriting a newer state.
package votestate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/hacknight/db"
	"github.com/danielhkuo/hacknight/models"
)

var ErrVersionConflict = errors.New("voting state was modified concurrently")

type Store struct {
	q db.Querier
}

func New(q db.Querier) *Store {
	return &Store{q: q}
}

// Defaults returns the state of an event nobody has touched yet.
func Defaults(eventDate string, now time.Time) models.VotingState {
	return models.VotingState{
		EventDate:    eventDate,
		Version:      1,
		CheckinsOpen: true,
		XadowStage:   models.StageIdle,
		UpdatedAt:    now.UTC(),
	}
}

// Load returns the event's state, creating the default row if missing.
func (s *Store) Load(ctx context.Context, eventDate string, now time.Time) (models.VotingState, error) {
	st, err := s.get(ctx, eventDate)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.VotingState{}, err
	}

	def := Defaults(eventDate, now)
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO voting_state (event_date, version, checkins_open, pitch_locked, challenge_locked, xadow_stage, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_date) DO NOTHING
	`, def.EventDate, def.Version, def.CheckinsOpen, def.PitchLocked, def.ChallengeLocked, def.XadowStage, def.UpdatedAt)
	if err != nil {
		return models.VotingState{}, fmt.Errorf("create voting state: %w", err)
	}

	st, err = s.get(ctx, eventDate)
	if err != nil {
		return models.VotingState{}, err
	}
	return st, nil
}

func (s *Store) get(ctx context.Context, eventDate string) (models.VotingState, error) {
	var (
		st               models.VotingState
		decisionDeadline sql.NullTime
		guessDeadline    sql.NullTime
		target           sql.NullString
		decisionResults  sql.NullString
		guessResults     sql.NullString
		lastResetAt      sql.NullTime
	)

	err := s.q.QueryRowContext(ctx, `
		SELECT event_date, version, checkins_open, pitch_locked, challenge_locked, xadow_stage,
		       decision_deadline, guess_deadline, xadow_target_team, decision_results, guess_results,
		       last_reset_at, updated_at
		FROM voting_state
		WHERE event_date = $1
	`, eventDate).Scan(
		&st.EventDate, &st.Version, &st.CheckinsOpen, &st.PitchLocked, &st.ChallengeLocked, &st.XadowStage,
		&decisionDeadline, &guessDeadline, &target, &decisionResults, &guessResults,
		&lastResetAt, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VotingState{}, err
	}
	if err != nil {
		return models.VotingState{}, fmt.Errorf("query voting state: %w", err)
	}

	st.DecisionDeadline = timePtr(decisionDeadline)
	st.GuessDeadline = timePtr(guessDeadline)
	st.LastResetAt = timePtr(lastResetAt)
	st.XadowTargetTeam = target.String
	st.TargetSet = st.XadowTargetTeam != ""

	if decisionResults.Valid {
		st.DecisionResults = &models.DecisionResults{}
		if err := json.Unmarshal([]byte(decisionResults.String), st.DecisionResults); err != nil {
			return models.VotingState{}, fmt.Errorf("decode decision results: %w", err)
		}
	}
	if guessResults.Valid {
		st.GuessResults = &models.GuessResults{}
		if err := json.Unmarshal([]byte(guessResults.String), st.GuessResults); err != nil {
			return models.VotingState{}, fmt.Errorf("decode guess results: %w", err)
		}
	}
	return st, nil
}

// Save writes st if the stored version still equals st.Version and returns
// the state with its new version.
func (s *Store) Save(ctx context.Context, st models.VotingState, now time.Time) (models.VotingState, error) {
	decisionResults, err := encode(st.DecisionResults)
	if err != nil {
		return models.VotingState{}, fmt.Errorf("encode decision results: %w", err)
	}
	guessResults, err := encode(st.GuessResults)
	if err != nil {
		return models.VotingState{}, fmt.Errorf("encode guess results: %w", err)
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE voting_state
		SET version = version + 1, checkins_open = $1, pitch_locked = $2, challenge_locked = $3,
		    xadow_stage = $4, decision_deadline = $5, guess_deadline = $6, xadow_target_team = $7,
		    decision_results = $8, guess_results = $9, last_reset_at = $10, updated_at = $11
		WHERE event_date = $12 AND version = $13
	`, st.CheckinsOpen, st.PitchLocked, st.ChallengeLocked,
		st.XadowStage, nullTime(st.DecisionDeadline), nullTime(st.GuessDeadline), nullString(st.XadowTargetTeam),
		decisionResults, guessResults, nullTime(st.LastResetAt), now.UTC(),
		st.EventDate, st.Version)
	if err != nil {
		return models.VotingState{}, fmt.Errorf("update voting state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.VotingState{}, fmt.Errorf("update voting state: %w", err)
	}
	if n == 0 {
		return models.VotingState{}, ErrVersionConflict
	}

	st.Version++
	st.UpdatedAt = now.UTC()
	st.TargetSet = st.XadowTargetTeam != ""
	return st, nil
}

// Reset restores the event to its defaults and stamps lastResetAt. The
// version keeps increasing so stale writers still conflict.
func (s *Store) Reset(ctx context.Context, eventDate string, now time.Time) (models.VotingState, error) {
	cur, err := s.Load(ctx, eventDate, now)
	if err != nil {
		return models.VotingState{}, err
	}

	st := Defaults(eventDate, now)
	st.Version = cur.Version
	resetAt := now.UTC()
	st.LastResetAt = &resetAt
	return s.Save(ctx, st, now)
}

// CurrentEvent returns the stored current event, or fallback when unset.
func (s *Store) CurrentEvent(ctx context.Context, fallback string) (string, error) {
	var eventDate string
	err := s.q.QueryRowContext(ctx, `
		SELECT current_event_date FROM event_setting WHERE id = 1
	`).Scan(&eventDate)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("query current event: %w", err)
	}
	return eventDate, nil
}

// SetCurrentEvent rotates the current event.
func (s *Store) SetCurrentEvent(ctx context.Context, eventDate string, now time.Time) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO event_setting (id, current_event_date, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET current_event_date = excluded.current_event_date, updated_at = excluded.updated_at
	`, eventDate, now.UTC())
	if err != nil {
		return fmt.Errorf("set current event: %w", err)
	}
	return nil
}

func encode(v any) (sql.NullString, error) {
	switch r := v.(type) {
	case *models.DecisionResults:
		if r == nil {
			return sql.NullString{}, nil
		}
	case *models.GuessResults:
		if r == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
