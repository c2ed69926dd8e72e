// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the HackNight voting server.

HackNight runs the live side of a hackathon evening: members check in with
their team, vote on pitches and challenges, and play xad0w.b1ts, a social
deduction game where the room tries to identify a secret team. Losing the
game with enough votes cast costs every participating member points in the
scoring ledger.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	ADMIN_KEY_SALT=... DATABASE_URL=hacknight.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt ...

Print the admin key for the configured salt:

	go run . -print-admin-key

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): secret for the admin key HMAC

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SCORING_DATABASE_URL / SCORING_DATABASE_TYPE: external scoring ledger
  - EVENT_DATE (-event): fallback current event
  - PENALTY_POINTS, PENALTY_CATEGORY, QUORUM_RATIO, GUESS_MINUTES
  - CORS_ORIGINS (-cors): comma separated allowed origins

# Architecture

  - engine: stage machine, vote validation, tallies
  - ledger: vote ledger storage and standings
  - votestate: per-event voting state with versioned saves
  - penalty: idempotent penalty writes to the scoring ledger
  - broadcast: websocket fan-out of changes
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus collectors
  - keylock: per-key mutexes
  - db, models, auth, cliparse: plumbing
*/
package main
