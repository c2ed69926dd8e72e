// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /status", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (status,
duration_ms).

# Admin Authentication

	mux.HandleFunc("POST /reset", middleware.RequireAdmin(cfg.AdminKeySalt, handler))

IsAdmin checks the X-Admin-Key header without rejecting the request.

# CORS

	server := http.Server{Handler: middleware.CORS(cfg.CORSOrigins)(mux)}

Built on github.com/rs/cors. An empty origin list allows any origin.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusLocked, "pitch-locked")

ParseJSONBody decodes a request body of at most 1 MiB.
*/
package middleware
