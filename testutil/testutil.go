// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/hacknight/cliparse"
	"github.com/danielhkuo/hacknight/db"
)

// TestEventDate is the event used by tests unless they need several.
const TestEventDate = "2025-03-14"

// SetupTestDB creates a fresh sqlite database with the voting schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, "voting.db", db.CreateSchema)
}

// SetupScoringDB creates a fresh sqlite database with the scoring schema.
func SetupScoringDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, "scoring.db", db.CreateScoringSchema)
}

func openTestDB(t *testing.T, name string, create func(*sql.DB) error) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := create(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    db.TypeSQLite,
		AdminKeySalt:    "test-admin-salt",
		EventDate:       TestEventDate,
		PenaltyPoints:   10,
		PenaltyCategory: "penalty",
		QuorumRatio:     0.8,
		GuessMinutes:    5,
	}
}

// CheckInMember inserts a check-in row directly.
func CheckInMember(t *testing.T, conn *sql.DB, eventDate, memberID, teamID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO check_in (event_date, member_id, team_id, checked_in_at)
		VALUES ($1, $2, $3, $4)
	`, eventDate, memberID, teamID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to check in member: %v", err)
	}
}

// AddScoringMember creates a member in the scoring ledger with the given
// non-penalty participation entries.
func AddScoringMember(t *testing.T, conn *sql.DB, memberID string, participations int) {
	t.Helper()

	now := time.Now().UTC()
	if _, err := conn.Exec(`
		INSERT INTO member (id, display_name, created_at) VALUES ($1, $2, $3)
	`, memberID, memberID, now); err != nil {
		t.Fatalf("Failed to create scoring member: %v", err)
	}

	for i := 0; i < participations; i++ {
		_, err := conn.Exec(`
			INSERT INTO points_entry (id, member_id, event_date, category, points, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, memberID+"-p"+string(rune('a'+i)), memberID, TestEventDate, "attendance", 5, "showed up", now)
		if err != nil {
			t.Fatalf("Failed to create participation: %v", err)
		}
	}
}

// CountRows returns COUNT(*) for a query with arguments.
func CountRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
