// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity_test

import (
	"encoding/hex"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

func TestGenerateSessionToken(t *testing.T) {
	t.Run("token is 32 random bytes hex encoded", func(t *testing.T) {
		token, hash, err := identity.GenerateSessionToken()
		require.NoError(t, err)

		raw, decodeErr := hex.DecodeString(token)
		require.NoError(t, decodeErr)
		assert.Len(t, raw, identity.SessionTokenBytes)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, token, hash)
	})

	t.Run("hash matches HashSessionToken", func(t *testing.T) {
		token, hash, err := identity.GenerateSessionToken()
		require.NoError(t, err)

		assert.Equal(t, hash, identity.HashSessionToken(token))
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, _, err := identity.GenerateSessionToken()
			require.NoError(t, err)
			assert.False(t, seen[token], "duplicate token generated")
			seen[token] = true
		}
	})
}

func TestNewSession(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		userID := ids.New()
		session, err := identity.NewSession(userID, "somehash")
		require.NoError(t, err)

		assert.NotZero(t, session.ID)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, "somehash", session.TokenHash)
		assert.False(t, session.CreatedAt.IsZero())
	})

	t.Run("zero user id is rejected", func(t *testing.T) {
		_, err := identity.NewSession(ulid.ULID{}, "somehash")
		assert.Error(t, err)
	})

	t.Run("empty token hash is rejected", func(t *testing.T) {
		_, err := identity.NewSession(ids.New(), "")
		assert.Error(t, err)
	})
}
