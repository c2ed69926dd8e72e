// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database handles and creates the schema.

# Drivers

Open accepts "sqlite" (modernc.org/sqlite, pure Go) and "postgres"
(github.com/lib/pq). Queries use $N placeholders and ON CONFLICT upserts,
which both engines understand. A sqlite handle is limited to one
connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

Voting schema:

  - check_in, pre_check_in: attendance per event
  - pitch_vote, challenge_vote: one row per (event, team, voter)
  - xadow_vote: one row per (event, stage, voter)
  - xadow_decision: outcome record per event
  - voting_state: versioned state per event
  - event_setting: the current event

Scoring schema (CreateScoringSchema), used when the scoring ledger lives
in the same database:

  - member
  - points_entry
*/
package db
