// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the HackNight API.

# Handler Types

Each handler is a struct wrapping the stage engine:

  - VotingHandler: check-ins and every kind of vote
  - StatusHandler: event status and standings
  - AdminHandler: xad0w.b1ts control, state commands and reset

	votingHandler := handlers.NewVotingHandler(eng)

Admin handlers assume X-Admin-Key was checked by middleware.RequireAdmin.

# Event Resolution

Requests may omit eventDate; the current event is used instead. The
current event rotates when an admin resets with nextEventDate.

# Error Mapping

Engine errors map to statuses:

	engine.ErrValidation   → 400
	engine.ErrLocked       → 423
	engine.ErrPrecondition → 409

The error message is the engine's short reason, for example
"self-vote-only" or "target-required".

# Secrecy

The xad0w.b1ts target team is hidden from GET /status until the game is
complete, unless the request carries a valid admin key.
*/
package handlers
