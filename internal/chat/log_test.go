// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package chat_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumachat/lumachat/internal/chat"
	"github.com/lumachat/lumachat/internal/ids"
)

// countingMetrics records calls for assertions.
type countingMetrics struct {
	mu       sync.Mutex
	appended int
	evicted  int
}

func (m *countingMetrics) MessageAppended() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended++
}

func (m *countingMetrics) MessagesEvicted(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evicted += count
}

// failingRepo returns an error from every operation.
type failingRepo struct{}

func (failingRepo) Window(context.Context, ulid.ULID) ([]chat.Message, error) {
	return nil, errors.New("storage unavailable")
}

func (failingRepo) Append(context.Context, chat.Message, int) ([]chat.Message, int, error) {
	return nil, 0, errors.New("storage unavailable")
}

func TestNewLog(t *testing.T) {
	t.Run("nil repo is rejected", func(t *testing.T) {
		_, err := chat.NewLog(nil, 10, nil)
		assert.Error(t, err)
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, chat.DefaultMaxMessages, log.Limit())
	})
}

func TestLog_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("never-posted user gets empty window, not an error", func(t *testing.T) {
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 10, nil)
		require.NoError(t, err)

		window, err := log.Get(ctx, ids.New())
		require.NoError(t, err)
		require.NotNil(t, window)
		assert.Empty(t, window)
	})

	t.Run("storage failure surfaces as error", func(t *testing.T) {
		log, err := chat.NewLog(failingRepo{}, 10, nil)
		require.NoError(t, err)

		_, err = log.Get(ctx, ids.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage unavailable")
	})
}

func TestLog_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("append returns the post-append window", func(t *testing.T) {
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 10, nil)
		require.NoError(t, err)

		userID := ids.New()
		window, err := log.Append(ctx, userID, "alice", "hello")
		require.NoError(t, err)
		require.Len(t, window, 1)

		msg := window[0]
		assert.NotZero(t, msg.ID)
		assert.Equal(t, "alice", msg.Sender)
		assert.Equal(t, "hello", msg.Text)
		assert.Positive(t, msg.Timestamp)
		assert.Equal(t, userID, msg.UserID)
	})

	t.Run("window is ordered oldest to newest", func(t *testing.T) {
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 10, nil)
		require.NoError(t, err)

		userID := ids.New()
		for i := 0; i < 3; i++ {
			_, err := log.Append(ctx, userID, "alice", fmt.Sprintf("msg-%d", i))
			require.NoError(t, err)
		}

		window, err := log.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, window, 3)
		for i, msg := range window {
			assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.Text)
		}
		assert.True(t, window[0].ID.Compare(window[1].ID) < 0)
	})

	t.Run("exceeding the cap evicts oldest first, silently", func(t *testing.T) {
		const limit = 3
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), limit, nil)
		require.NoError(t, err)

		userID := ids.New()
		for i := 0; i < limit+2; i++ {
			window, appendErr := log.Append(ctx, userID, "alice", fmt.Sprintf("msg-%d", i))
			require.NoError(t, appendErr)
			assert.LessOrEqual(t, len(window), limit)
		}

		window, err := log.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, window, limit)
		assert.Equal(t, "msg-2", window[0].Text)
		assert.Equal(t, "msg-4", window[limit-1].Text)
	})

	t.Run("metrics record appends and evictions", func(t *testing.T) {
		metrics := &countingMetrics{}
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 2, metrics)
		require.NoError(t, err)

		userID := ids.New()
		for i := 0; i < 5; i++ {
			_, err := log.Append(ctx, userID, "alice", "x")
			require.NoError(t, err)
		}

		assert.Equal(t, 5, metrics.appended)
		assert.Equal(t, 3, metrics.evicted)
	})

	t.Run("users have independent windows", func(t *testing.T) {
		log, err := chat.NewLog(chat.NewMemoryMessageRepository(), 10, nil)
		require.NoError(t, err)

		alice, bob := ids.New(), ids.New()
		_, err = log.Append(ctx, alice, "alice", "hers")
		require.NoError(t, err)

		window, err := log.Get(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, window)
	})

	t.Run("storage failure surfaces as error", func(t *testing.T) {
		log, err := chat.NewLog(failingRepo{}, 10, nil)
		require.NoError(t, err)

		_, err = log.Append(ctx, ids.New(), "alice", "hello")
		assert.Error(t, err)
	})
}

func TestLog_ConcurrentAppendsLoseNothing(t *testing.T) {
	ctx := context.Background()

	const (
		writers = 8
		perUser = 5
		limit   = writers * perUser // large enough that nothing evicts
	)

	log, err := chat.NewLog(chat.NewMemoryMessageRepository(), limit, nil)
	require.NoError(t, err)

	userID := ids.New()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				_, appendErr := log.Append(ctx, userID, "alice", fmt.Sprintf("w%d-%d", w, i))
				assert.NoError(t, appendErr)
			}
		}(w)
	}
	wg.Wait()

	window, err := log.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, window, writers*perUser)
}
