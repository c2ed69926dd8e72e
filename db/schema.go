// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of *sql.DB and *sql.Tx used by the stores, so the
// same store code runs inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateSchema creates all voting tables.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateScoringSchema creates the external scoring ledger tables.
// Only used when this service owns the scoring database (dev and tests).
func CreateScoringSchema(db *sql.DB) error {
	if _, err := db.Exec(scoringSchema); err != nil {
		return fmt.Errorf("failed to create scoring schema: %w", err)
	}
	return nil
}

// Statements are kept portable between postgres and sqlite: ON CONFLICT
// upserts, explicit timestamps, no NOW().
const schema = `
-- Check-ins: one active team per member per event
CREATE TABLE IF NOT EXISTS check_in (
    event_date TEXT NOT NULL,
    member_id TEXT NOT NULL,
    team_id TEXT NOT NULL,
    checked_in_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_date, member_id)
);

CREATE INDEX IF NOT EXISTS idx_check_in_team ON check_in(event_date, team_id);

-- Pre-check-ins: existence means attending
CREATE TABLE IF NOT EXISTS pre_check_in (
    event_date TEXT NOT NULL,
    member_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_date, member_id)
);

-- Pitch votes
CREATE TABLE IF NOT EXISTS pitch_vote (
    event_date TEXT NOT NULL,
    team_id TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    appeal INTEGER NOT NULL CHECK (appeal BETWEEN 1 AND 5),
    surprise INTEGER NOT NULL CHECK (surprise BETWEEN 1 AND 5),
    time_score INTEGER NOT NULL CHECK (time_score BETWEEN 1 AND 5),
    content INTEGER NOT NULL CHECK (content BETWEEN 1 AND 5),
    effort INTEGER NOT NULL CHECK (effort BETWEEN 1 AND 5),
    total INTEGER NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_date, team_id, voter_id)
);

-- Challenge ranking votes
CREATE TABLE IF NOT EXISTS challenge_vote (
    event_date TEXT NOT NULL,
    team_id TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    order_position INTEGER,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_date, team_id, voter_id)
);

-- xad0w.b1ts votes, one per voter per stage
CREATE TABLE IF NOT EXISTS xadow_vote (
    event_date TEXT NOT NULL,
    stage TEXT NOT NULL CHECK (stage IN ('decision', 'guess')),
    voter_id TEXT NOT NULL,
    team_id TEXT,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_date, stage, voter_id)
);

-- xad0w.b1ts outcome, written only on the transition to complete
CREATE TABLE IF NOT EXISTS xadow_decision (
    event_date TEXT PRIMARY KEY,
    team_id TEXT NOT NULL,
    admin_id TEXT NOT NULL,
    is_xadow_team BOOLEAN NOT NULL,
    decided_at TIMESTAMP NOT NULL
);

-- Voting state, one versioned row per event
CREATE TABLE IF NOT EXISTS voting_state (
    event_date TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    checkins_open BOOLEAN NOT NULL,
    pitch_locked BOOLEAN NOT NULL,
    challenge_locked BOOLEAN NOT NULL,
    xadow_stage TEXT NOT NULL CHECK (xadow_stage IN ('idle', 'decision', 'guess', 'complete')),
    decision_deadline TIMESTAMP,
    guess_deadline TIMESTAMP,
    xadow_target_team TEXT,
    decision_results TEXT,
    guess_results TEXT,
    last_reset_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL
);

-- Current event pointer (singleton row)
CREATE TABLE IF NOT EXISTS event_setting (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    current_event_date TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const scoringSchema = `
CREATE TABLE IF NOT EXISTS member (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS points_entry (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
    event_date TEXT NOT NULL,
    category TEXT NOT NULL,
    points INTEGER NOT NULL,
    description TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_points_entry_member ON points_entry(member_id);
CREATE INDEX IF NOT EXISTS idx_points_entry_category ON points_entry(category, description);
`
