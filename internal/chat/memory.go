// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package chat

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryMessageRepository is an in-memory MessageRepository holding one
// bounded window per user.
type MemoryMessageRepository struct {
	mu      sync.RWMutex
	windows map[ulid.ULID][]Message
}

// NewMemoryMessageRepository creates an empty in-memory message repository.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		windows: make(map[ulid.ULID][]Message),
	}
}

// Window returns the retained window for a user, oldest first.
func (r *MemoryMessageRepository) Window(_ context.Context, userID ulid.ULID) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	window := r.windows[userID]
	out := make([]Message, len(window))
	copy(out, window)
	return out, nil
}

// Append stores msg and trims the user's window to limit entries.
func (r *MemoryMessageRepository) Append(_ context.Context, msg Message, limit int) ([]Message, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := append(r.windows[msg.UserID], msg)
	evicted := 0
	if limit > 0 && len(window) > limit {
		evicted = len(window) - limit
		window = window[evicted:]
	}
	r.windows[msg.UserID] = window

	out := make([]Message, len(window))
	copy(out, window)
	return out, evicted, nil
}
