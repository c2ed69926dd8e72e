// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	if err := cliparse.LoadEnvFile(".env"); err != nil { ... }
	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnvFile uses github.com/joho/godotenv and never overrides variables
already set in the environment.

# CLI Flags

	-p                 Server port
	-d, -t             Database URL and type
	-scoring-d         Scoring ledger URL
	-scoring-t         Scoring ledger type
	-event             Fallback current event
	-penalty-points    Points deducted per member
	-penalty-category  Scoring category of penalties
	-quorum            Guess quorum ratio, in (0, 1]
	-guess-minutes     Automatic guess stage length
	-cors              Allowed origins
	-admin-salt        Admin key salt
	-print-admin-key   Print the admin key and exit

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE,
	SCORING_DATABASE_URL, SCORING_DATABASE_TYPE,
	EVENT_DATE, PENALTY_POINTS, PENALTY_CATEGORY,
	QUORUM_RATIO, GUESS_MINUTES, CORS_ORIGINS, ADMIN_KEY_SALT

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL or ADMIN_KEY_SALT is missing,
or if a numeric setting is out of range.
*/
package cliparse
