// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

func memoryRecord(username string) *identity.CredentialRecord {
	return &identity.CredentialRecord{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: []byte("hash"),
		Salt:         []byte("salt"),
		Iterations:   1_000,
		CreatedAt:    time.Now(),
	}
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		repo := identity.NewMemoryUserRepository()
		record := memoryRecord("alice")
		require.NoError(t, repo.Create(ctx, record))

		byID, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record, byID)

		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, record, byName)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		repo := identity.NewMemoryUserRepository()
		require.NoError(t, repo.Create(ctx, memoryRecord("alice")))

		err := repo.Create(ctx, memoryRecord("alice"))
		assert.ErrorIs(t, err, identity.ErrUsernameTaken)
	})

	t.Run("unknown lookups return ErrNotFound", func(t *testing.T) {
		repo := identity.NewMemoryUserRepository()

		_, err := repo.GetByID(ctx, ids.New())
		assert.ErrorIs(t, err, identity.ErrNotFound)

		_, err = repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		repo := identity.NewMemoryUserRepository()
		record := memoryRecord("alice")
		require.NoError(t, repo.Create(ctx, record))

		got, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		got.Username = "mallory"

		again, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", again.Username)
	})

	t.Run("concurrent registrations admit exactly one per username", func(t *testing.T) {
		repo := identity.NewMemoryUserRepository()

		const attempts = 32
		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- repo.Create(ctx, memoryRecord("contested"))
			}()
		}
		wg.Wait()
		close(results)

		var succeeded int
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, identity.ErrUsernameTaken)
			}
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get by token hash", func(t *testing.T) {
		repo := identity.NewMemorySessionRepository()
		session, err := identity.NewSession(ids.New(), "hash-1")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, session))

		got, err := repo.GetByTokenHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, session, got)
	})

	t.Run("unknown token hash returns ErrNotFound", func(t *testing.T) {
		repo := identity.NewMemorySessionRepository()

		_, err := repo.GetByTokenHash(ctx, "unknown")
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})
}
