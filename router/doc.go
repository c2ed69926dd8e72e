// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the HackNight API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, hub, registry, cfg)

# Endpoints

Health and observability:

	GET /health
	GET /metrics - Prometheus exposition
	GET /ws      - websocket stream, optional ?eventDate=

Read side (public):

	GET /status?eventDate=&voterId= - ledger and voting state
	GET /results?eventDate=         - team standings

Participation (public):

	POST /check-in
	POST /pre-checkin
	POST /vote/pitch
	POST /vote/challenge
	POST /vote/xadow/decision
	POST /vote/xadow/guess

Admin (requires X-Admin-Key):

	POST /xadow/trigger       - move the game to a stage
	POST /xadow/set-target    - choose the secret team
	POST /xadow/retry-penalty - re-run a failed penalty
	POST /state               - open/close check-ins, lock/unlock voting
	POST /reset               - wipe the event, optionally rotate it
*/
package router
