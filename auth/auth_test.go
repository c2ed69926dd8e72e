// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name  string
		scope string
		salt  string
	}{
		{"standard", AdminScope, "secret-salt"},
		{"empty scope", "", "salt"},
		{"empty salt", AdminScope, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateAdminKey(tt.scope, tt.salt)

			if key == "" {
				t.Error("GenerateAdminKey() returned empty string")
			}

			// Should be deterministic
			if key != GenerateAdminKey(tt.scope, tt.salt) {
				t.Error("GenerateAdminKey() is not deterministic")
			}

			if tt.scope != "" && tt.salt != "" {
				if key == GenerateAdminKey(tt.scope+"x", tt.salt) {
					t.Error("GenerateAdminKey() produced same key for different scopes")
				}
			}

			// URL-safe, no padding
			if strings.Contains(key, "=") {
				t.Error("GenerateAdminKey() contains padding characters")
			}
		})
	}
}

func TestValidateAdminKey(t *testing.T) {
	salt := "test-salt"
	validKey := GenerateAdminKey(AdminScope, salt)

	tests := []struct {
		name     string
		scope    string
		adminKey string
		salt     string
		wantErr  bool
	}{
		{"valid key", AdminScope, validKey, salt, false},
		{"wrong key", AdminScope, "wrong-key", salt, true},
		{"wrong scope", "other-scope", validKey, salt, true},
		{"wrong salt", AdminScope, validKey, "different-salt", true},
		{"empty key", AdminScope, "", salt, true},
		{"empty salt", AdminScope, GenerateAdminKey(AdminScope, ""), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.scope, tt.adminKey, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidAdminKey {
				t.Errorf("ValidateAdminKey() error = %v, want %v", err, ErrInvalidAdminKey)
			}
		})
	}
}

func BenchmarkValidateAdminKey(b *testing.B) {
	salt := "test-salt"
	key := GenerateAdminKey(AdminScope, salt)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateAdminKey(AdminScope, key, salt)
	}
}
