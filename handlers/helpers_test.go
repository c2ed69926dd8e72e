// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/hacknight/auth"
	"github.com/danielhkuo/hacknight/cliparse"
	"github.com/danielhkuo/hacknight/engine"
	"github.com/danielhkuo/hacknight/testutil"
)

const event = testutil.TestEventDate

func newTestEngine(t *testing.T, applier engine.PenaltyApplier) (*engine.Engine, *sql.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	eng := engine.New(conn, applier, nil, nil, engine.Policy{
		DefaultEventDate: cfg.EventDate,
		QuorumRatio:      cfg.QuorumRatio,
	})
	return eng, conn
}

func adminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{auth.HeaderAdminKey: auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt)}
}

// do runs a handler against a JSON request.
func do(handler http.HandlerFunc, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, headers)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
