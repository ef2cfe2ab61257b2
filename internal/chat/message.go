// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package chat owns the per-user bounded message log.
package chat

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxMessages is the default retention cap for one user's log.
const DefaultMaxMessages = 100

// Message is one chat entry. Messages are created by an authenticated append
// and never individually mutated or deleted; they may be evicted silently
// once their owner's log exceeds the cap.
type Message struct {
	ID        ulid.ULID `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp int64     `json:"timestamp"` // milliseconds since epoch
	UserID    ulid.ULID `json:"-"`
}

// MessageRepository persists per-user message windows. Each user's log is an
// independent bounded sequence keyed by user ID.
type MessageRepository interface {
	// Window returns the retained window for a user, oldest first. A user
	// with no messages yields an empty window, not an error.
	Window(ctx context.Context, userID ulid.ULID) ([]Message, error)

	// Append stores msg and trims its owner's window to the most recent
	// limit entries, returning the post-append window oldest first along
	// with the number of entries the trim evicted. The append and trim must
	// be atomic with respect to other appends for the same user.
	Append(ctx context.Context, msg Message, limit int) (window []Message, evicted int, err error)
}
