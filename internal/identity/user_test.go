// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple lowercase", "alice", false},
		{"mixed case with digits", "Alice42", false},
		{"underscores", "al_ice_", false},
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("a", 30), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"starts with digit", "1alice", true},
		{"starts with underscore", "_alice", true},
		{"contains hyphen", "al-ice", true},
		{"contains space", "al ice", true},
		{"non-ascii", "ålice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentialRecord_User(t *testing.T) {
	record := &identity.CredentialRecord{
		ID:           ids.New(),
		Username:     "alice",
		PasswordHash: []byte("secret-hash"),
		Salt:         []byte("secret-salt"),
		Iterations:   100_000,
		CreatedAt:    time.Now(),
	}

	user := record.User()
	assert.Equal(t, record.ID, user.ID)
	assert.Equal(t, record.Username, user.Username)
	assert.Equal(t, record.CreatedAt, user.CreatedAt)
}

func TestUser_JSONNeverLeaksCredentials(t *testing.T) {
	record := &identity.CredentialRecord{
		ID:           ids.New(),
		Username:     "alice",
		PasswordHash: []byte("secret-hash"),
		Salt:         []byte("secret-salt"),
		Iterations:   100_000,
		CreatedAt:    time.Now(),
	}

	payload, err := json.Marshal(record.User())
	require.NoError(t, err)

	body := string(payload)
	assert.Contains(t, body, `"username":"alice"`)
	assert.NotContains(t, body, "secret-hash")
	assert.NotContains(t, body, "secret-salt")
	assert.NotContains(t, body, "hash")
	assert.NotContains(t, body, "salt")
}
