// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryUserRepository is an in-memory UserRepository. A single mutex
// serializes every operation, so the check-then-insert in Create cannot
// interleave with another registration: this is the explicit stand-in for
// the one-invocation-at-a-time guarantee the storage layer must provide.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[ulid.ULID]*CredentialRecord
	byName map[string]*CredentialRecord
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[ulid.ULID]*CredentialRecord),
		byName: make(map[string]*CredentialRecord),
	}
}

// Create stores a new credential record, rejecting duplicates atomically.
func (r *MemoryUserRepository) Create(_ context.Context, record *CredentialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[record.Username]; ok {
		return ErrUsernameTaken
	}

	cp := *record
	r.byID[record.ID] = &cp
	r.byName[record.Username] = &cp
	return nil
}

// GetByID retrieves a record by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id ulid.ULID) (*CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// GetByUsername retrieves a record by exact username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// MemorySessionRepository is an in-memory SessionRepository.
type MemorySessionRepository struct {
	mu          sync.RWMutex
	byTokenHash map[string]*Session
}

// NewMemorySessionRepository creates an empty in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		byTokenHash: make(map[string]*Session),
	}
}

// Create stores a new session.
func (r *MemorySessionRepository) Create(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.byTokenHash[session.TokenHash] = &cp
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *MemorySessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.byTokenHash[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *session
	return &cp, nil
}
