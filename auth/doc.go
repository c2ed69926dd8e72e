// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives and checks the operator admin key.

# Admin Keys

Admin keys use HMAC-SHA256 over a fixed scope to create deterministic,
verifiable keys:

	adminKey := auth.GenerateAdminKey(auth.AdminScope, salt)
	err := auth.ValidateAdminKey(auth.AdminScope, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same scope and salt always produce the same key, so nothing is stored in
the database. Operators print it once with the -print-admin-key flag and send
it in the X-Admin-Key header.

Validation uses a constant-time comparison. An empty salt or key never
validates.
*/
package auth
