// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package penalty deducts points in the external scoring ledger when the
// community loses xad0w.b1ts.
package penalty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/hacknight/keylock"
	"github.com/danielhkuo/hacknight/models"
)

// ErrStoreUnavailable means the scoring ledger could not be reached.
var ErrStoreUnavailable = errors.New("scoring ledger unavailable")

// sampleSize bounds the member samples kept in a summary.
const sampleSize = 5

type Config struct {
	Points   int
	Category string
}

// Applier runs the penalty as one transaction against the scoring ledger.
type Applier struct {
	db    *sql.DB
	cfg   Config
	now   func() time.Time
	locks keylock.Map
}

func NewApplier(db *sql.DB, cfg Config) *Applier {
	return &Applier{db: db, cfg: cfg, now: time.Now}
}

// Description is the text every penalty entry for the event carries. It is
// also the idempotency key: members who already have an entry with this
// description are skipped.
func Description(eventDate string) string {
	return "xad0w.b1ts penalty " + eventDate
}

// Apply deducts the configured points from every participating member who
// has not been penalized for the event yet. On error nothing is written.
func (a *Applier) Apply(ctx context.Context, eventDate string) (*models.PenaltySummary, error) {
	unlock := a.locks.Lock(eventDate)
	defer unlock()

	desc := Description(eventDate)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	members, err := queryIDs(ctx, tx, `SELECT id FROM member ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}

	participants, err := queryIDs(ctx, tx, `
		SELECT DISTINCT member_id FROM points_entry WHERE category <> $1
	`, a.cfg.Category)
	if err != nil {
		return nil, fmt.Errorf("read participations: %w", err)
	}

	penalized, err := queryIDs(ctx, tx, `
		SELECT DISTINCT member_id FROM points_entry WHERE category = $1 AND description = $2
	`, a.cfg.Category, desc)
	if err != nil {
		return nil, fmt.Errorf("read existing penalties: %w", err)
	}

	participated := toSet(participants)
	already := toSet(penalized)

	summary := &models.PenaltySummary{
		Points:        a.cfg.Points,
		Category:      a.cfg.Category,
		Description:   desc,
		AppliedSample: []string{},
		SkippedSample: []string{},
	}

	now := a.now().UTC()
	for _, memberID := range members {
		switch {
		case !participated[memberID]:
			summary.SkippedNoParticipation++
			summary.SkippedSample = sample(summary.SkippedSample, memberID)
			continue
		case already[memberID]:
			summary.SkippedAlreadyPenalized++
			summary.SkippedSample = sample(summary.SkippedSample, memberID)
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO points_entry (id, member_id, event_date, category, points, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), memberID, eventDate, a.cfg.Category, -a.cfg.Points, desc, now)
		if err != nil {
			return nil, fmt.Errorf("insert penalty for %s: %w", memberID, err)
		}
		summary.Applied++
		summary.AppliedSample = sample(summary.AppliedSample, memberID)
	}
	summary.Skipped = summary.SkippedNoParticipation + summary.SkippedAlreadyPenalized

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit penalties: %w", err)
	}

	slog.Info("penalty applied",
		"event_date", eventDate,
		"applied", summary.Applied,
		"skipped", summary.Skipped,
		"points", summary.Points,
	)
	return summary, nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sample(s []string, id string) []string {
	if len(s) >= sampleSize {
		return s
	}
	return append(s, id)
}
