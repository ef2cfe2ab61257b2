// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package chat

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/ids"
)

// MetricsRecorder receives message log events. Implementations must be safe
// for concurrent use.
type MetricsRecorder interface {
	// MessageAppended records one successful append.
	MessageAppended()

	// MessagesEvicted records entries dropped from a window by an append.
	MessagesEvicted(count int)
}

// noopMetrics is used when no recorder is configured.
type noopMetrics struct{}

func (noopMetrics) MessageAppended()    {}
func (noopMetrics) MessagesEvicted(int) {}

// Log is the message log service. Every read-modify-write cycle for one
// user's window runs under that user's lock, so appends for a user are
// one-at-a-time: N concurrent appends yield exactly N durable messages
// (modulo eviction), with no lost updates. Distinct users do not contend.
type Log struct {
	repo    MessageRepository
	limit   int
	metrics MetricsRecorder

	mu    sync.Mutex
	locks map[ulid.ULID]*sync.Mutex
}

// NewLog creates a message log service. A non-positive limit falls back to
// DefaultMaxMessages. metrics may be nil.
func NewLog(repo MessageRepository, limit int, metrics MetricsRecorder) (*Log, error) {
	if repo == nil {
		return nil, oops.Errorf("message repository is required")
	}
	if limit <= 0 {
		limit = DefaultMaxMessages
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Log{
		repo:    repo,
		limit:   limit,
		metrics: metrics,
		locks:   make(map[ulid.ULID]*sync.Mutex),
	}, nil
}

// Limit returns the retention cap.
func (l *Log) Limit() int {
	return l.limit
}

// userLock returns the mutex serializing operations for one user.
func (l *Log) userLock(userID ulid.ULID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Get returns the current retained window for a user, oldest to newest. A
// user who has never sent anything gets an empty window, never an error.
func (l *Log) Get(ctx context.Context, userID ulid.ULID) ([]Message, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	window, err := l.repo.Window(ctx, userID)
	if err != nil {
		return nil, oops.Code("CHAT_GET_FAILED").
			With("operation", "load message window").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if window == nil {
		window = []Message{}
	}
	return window, nil
}

// Append constructs a message with a fresh ID and the current timestamp,
// appends it to the user's window, truncates to the cap (oldest first,
// silently), and returns the post-append window.
func (l *Log) Append(ctx context.Context, userID ulid.ULID, sender, text string) ([]Message, error) {
	msg := Message{
		ID:        ids.New(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		UserID:    userID,
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	window, evicted, err := l.repo.Append(ctx, msg, l.limit)
	if err != nil {
		return nil, oops.Code("CHAT_APPEND_FAILED").
			With("operation", "append message").
			With("user_id", userID.String()).
			With("message_id", msg.ID.String()).
			Wrap(err)
	}

	l.metrics.MessageAppended()
	if evicted > 0 {
		l.metrics.MessagesEvicted(evicted)
	}

	return window, nil
}
