// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/hacknight/db"
	"github.com/danielhkuo/hacknight/models"
)

// Store reads and writes the vote ledger. Every write is an upsert keyed by
// the record's natural key, so resubmissions overwrite instead of duplicating.
type Store struct {
	q db.Querier
}

// New returns a Store over a *sql.DB or a *sql.Tx.
func New(q db.Querier) *Store {
	return &Store{q: q}
}

// UpsertCheckIn records the member's team, replacing an earlier check-in.
func (s *Store) UpsertCheckIn(ctx context.Context, c models.CheckIn) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO check_in (event_date, member_id, team_id, checked_in_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_date, member_id)
		DO UPDATE SET team_id = excluded.team_id, checked_in_at = excluded.checked_in_at
	`, c.EventDate, c.MemberID, c.TeamID, c.CheckedInAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert check-in: %w", err)
	}
	return nil
}

// TogglePreCheckIn flips the member's attendance and reports the new value.
func (s *Store) TogglePreCheckIn(ctx context.Context, p models.PreCheckIn) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM pre_check_in WHERE event_date = $1 AND member_id = $2
	`, p.EventDate, p.MemberID)
	if err != nil {
		return false, fmt.Errorf("delete pre-check-in: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pre-check-in: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO pre_check_in (event_date, member_id, created_at)
		VALUES ($1, $2, $3)
	`, p.EventDate, p.MemberID, p.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert pre-check-in: %w", err)
	}
	return true, nil
}

// UpsertPitchVote stores one voter's scores for one team. Total is derived
// from the criteria, never taken from the caller.
func (s *Store) UpsertPitchVote(ctx context.Context, v models.PitchVote) error {
	total := v.Appeal + v.Surprise + v.Time + v.Content + v.Effort
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO pitch_vote (event_date, team_id, voter_id, appeal, surprise, time_score, content, effort, total, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_date, team_id, voter_id)
		DO UPDATE SET appeal = excluded.appeal, surprise = excluded.surprise,
			time_score = excluded.time_score, content = excluded.content,
			effort = excluded.effort, total = excluded.total, updated_at = excluded.updated_at
	`, v.EventDate, v.TeamID, v.VoterID, v.Appeal, v.Surprise, v.Time, v.Content, v.Effort, total, v.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert pitch vote: %w", err)
	}
	return nil
}

// UpsertChallengeVote stores one voter's ranking position for one team.
func (s *Store) UpsertChallengeVote(ctx context.Context, v models.ChallengeVote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO challenge_vote (event_date, team_id, voter_id, order_position, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_date, team_id, voter_id)
		DO UPDATE SET order_position = excluded.order_position, updated_at = excluded.updated_at
	`, v.EventDate, v.TeamID, v.VoterID, nullInt(v.OrderPosition), v.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert challenge vote: %w", err)
	}
	return nil
}

// UpsertXadowVote stores the voter's single vote for a stage.
func (s *Store) UpsertXadowVote(ctx context.Context, v models.XadowVote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO xadow_vote (event_date, stage, voter_id, team_id, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_date, stage, voter_id)
		DO UPDATE SET team_id = excluded.team_id, value = excluded.value, updated_at = excluded.updated_at
	`, v.EventDate, v.Stage, v.VoterID, nullString(v.TeamID), v.Value, v.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert xadow vote: %w", err)
	}
	return nil
}

// UpsertDecision writes the event's xad0w.b1ts outcome.
func (s *Store) UpsertDecision(ctx context.Context, d models.XadowDecision) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO xadow_decision (event_date, team_id, admin_id, is_xadow_team, decided_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_date)
		DO UPDATE SET team_id = excluded.team_id, admin_id = excluded.admin_id,
			is_xadow_team = excluded.is_xadow_team, decided_at = excluded.decided_at
	`, d.EventDate, d.TeamID, d.AdminID, d.IsXadowTeam, d.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert xadow decision: %w", err)
	}
	return nil
}

// DeleteXadow removes every xad0w.b1ts vote and the decision record.
func (s *Store) DeleteXadow(ctx context.Context, eventDate string) error {
	for _, stmt := range []string{
		`DELETE FROM xadow_vote WHERE event_date = $1`,
		`DELETE FROM xadow_decision WHERE event_date = $1`,
	} {
		if _, err := s.q.ExecContext(ctx, stmt, eventDate); err != nil {
			return fmt.Errorf("delete xadow records: %w", err)
		}
	}
	return nil
}

// ClearGuesses removes the guess votes and the decision record of the last
// game. Decision votes are kept.
func (s *Store) ClearGuesses(ctx context.Context, eventDate string) error {
	_, err := s.q.ExecContext(ctx, `
		DELETE FROM xadow_vote WHERE event_date = $1 AND stage = $2
	`, eventDate, models.StageGuess)
	if err != nil {
		return fmt.Errorf("delete guess votes: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM xadow_decision WHERE event_date = $1`, eventDate); err != nil {
		return fmt.Errorf("delete xadow decision: %w", err)
	}
	return nil
}

// Wipe deletes the whole ledger for an event.
func (s *Store) Wipe(ctx context.Context, eventDate string) error {
	for _, table := range []string{
		"check_in", "pre_check_in", "pitch_vote", "challenge_vote", "xadow_vote", "xadow_decision",
	} {
		if _, err := s.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE event_date = $1", eventDate); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return nil
}

// TeamOf returns the member's checked-in team, or "" when not checked in.
func (s *Store) TeamOf(ctx context.Context, eventDate, memberID string) (string, error) {
	var teamID string
	err := s.q.QueryRowContext(ctx, `
		SELECT team_id FROM check_in WHERE event_date = $1 AND member_id = $2
	`, eventDate, memberID).Scan(&teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query team of member: %w", err)
	}
	return teamID, nil
}

// CountCheckedIn returns the number of distinct checked-in members.
func (s *Store) CountCheckedIn(ctx context.Context, eventDate string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT member_id) FROM check_in WHERE event_date = $1
	`, eventDate).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count check-ins: %w", err)
	}
	return n, nil
}

func (s *Store) CheckIns(ctx context.Context, eventDate string) ([]models.CheckIn, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT event_date, member_id, team_id, checked_in_at
		FROM check_in WHERE event_date = $1
		ORDER BY checked_in_at, member_id
	`, eventDate)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	out := []models.CheckIn{}
	for rows.Next() {
		var c models.CheckIn
		if err := rows.Scan(&c.EventDate, &c.MemberID, &c.TeamID, &c.CheckedInAt); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PreCheckIns(ctx context.Context, eventDate string) ([]models.PreCheckIn, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT event_date, member_id, created_at
		FROM pre_check_in WHERE event_date = $1
		ORDER BY created_at, member_id
	`, eventDate)
	if err != nil {
		return nil, fmt.Errorf("query pre-check-ins: %w", err)
	}
	defer rows.Close()

	out := []models.PreCheckIn{}
	for rows.Next() {
		var p models.PreCheckIn
		if err := rows.Scan(&p.EventDate, &p.MemberID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pre-check-in: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) PitchVotes(ctx context.Context, eventDate string) ([]models.PitchVote, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT event_date, team_id, voter_id, appeal, surprise, time_score, content, effort, total, updated_at
		FROM pitch_vote WHERE event_date = $1
		ORDER BY team_id, voter_id
	`, eventDate)
	if err != nil {
		return nil, fmt.Errorf("query pitch votes: %w", err)
	}
	defer rows.Close()

	out := []models.PitchVote{}
	for rows.Next() {
		var v models.PitchVote
		if err := rows.Scan(&v.EventDate, &v.TeamID, &v.VoterID, &v.Appeal, &v.Surprise,
			&v.Time, &v.Content, &v.Effort, &v.Total, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pitch vote: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ChallengeVotes(ctx context.Context, eventDate string) ([]models.ChallengeVote, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT event_date, team_id, voter_id, order_position, updated_at
		FROM challenge_vote WHERE event_date = $1
		ORDER BY team_id, voter_id
	`, eventDate)
	if err != nil {
		return nil, fmt.Errorf("query challenge votes: %w", err)
	}
	defer rows.Close()

	out := []models.ChallengeVote{}
	for rows.Next() {
		var v models.ChallengeVote
		var pos sql.NullInt64
		if err := rows.Scan(&v.EventDate, &v.TeamID, &v.VoterID, &pos, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan challenge vote: %w", err)
		}
		if pos.Valid {
			p := int(pos.Int64)
			v.OrderPosition = &p
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// XadowVotes returns the event's xad0w.b1ts votes; an empty stage returns all.
func (s *Store) XadowVotes(ctx context.Context, eventDate, stage string) ([]models.XadowVote, error) {
	query := `
		SELECT event_date, stage, voter_id, team_id, value, updated_at
		FROM xadow_vote WHERE event_date = $1`
	args := []any{eventDate}
	if stage != "" {
		query += ` AND stage = $2`
		args = append(args, stage)
	}
	query += ` ORDER BY stage, voter_id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query xadow votes: %w", err)
	}
	defer rows.Close()

	out := []models.XadowVote{}
	for rows.Next() {
		var v models.XadowVote
		var teamID sql.NullString
		if err := rows.Scan(&v.EventDate, &v.Stage, &v.VoterID, &teamID, &v.Value, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan xadow vote: %w", err)
		}
		if teamID.Valid {
			t := teamID.String
			v.TeamID = &t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Decision returns the event's outcome record, or nil if none was written.
func (s *Store) Decision(ctx context.Context, eventDate string) (*models.XadowDecision, error) {
	var d models.XadowDecision
	err := s.q.QueryRowContext(ctx, `
		SELECT event_date, team_id, admin_id, is_xadow_team, decided_at
		FROM xadow_decision WHERE event_date = $1
	`, eventDate).Scan(&d.EventDate, &d.TeamID, &d.AdminID, &d.IsXadowTeam, &d.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query xadow decision: %w", err)
	}
	return &d, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
