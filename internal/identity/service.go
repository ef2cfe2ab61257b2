// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/ids"
)

// Service provides registration, login, and session verification. Every
// authenticated operation elsewhere in the system passes through
// VerifySession before touching state.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
}

// NewService creates a new Service.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{users: users, sessions: sessions, hasher: hasher}, nil
}

// Dummy credentials used when a user doesn't exist, so the full derivation
// still runs and response time does not leak username existence. These never
// match any real password.
var (
	dummySalt = make([]byte, kdfSaltLen)
	dummyHash = make([]byte, kdfKeyLen)
)

// Register creates a credential record and a session, so registration
// doubles as login. Returns the public user view and the plaintext session
// token. A duplicate username yields ErrUsernameTaken with no state mutated.
func (s *Service) Register(ctx context.Context, username, password string) (*User, string, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, "", err
	}

	hash, salt, iterations, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	record := &CredentialRecord{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Iterations:   iterations,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, record); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, "", oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(err)
		}
		return nil, "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create credential record").
			Wrap(err)
	}

	token, err := s.issueSession(ctx, record.ID)
	if err != nil {
		return nil, "", err
	}

	return record.User(), token, nil
}

// Login verifies a password and creates a new session. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials; the KDF runs in both
// cases so the two are indistinguishable by timing as well as by response.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	record, lookupErr := s.users.GetByUsername(ctx, username)

	// The dummy derivation uses the hasher's configured count so the
	// unknown-user path costs the same as a real verification.
	salt, hash, iterations := dummySalt, dummyHash, s.hasher.Iterations()
	exists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		salt, hash, iterations = record.Salt, record.PasswordHash, record.Iterations
		exists = true
	}

	valid := s.hasher.Verify(password, salt, hash, iterations)
	if !exists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.issueSession(ctx, record.ID)
	if err != nil {
		return nil, "", err
	}

	return record.User(), token, nil
}

// VerifySession resolves a bearer token to its session. Any issued token
// remains valid indefinitely; there is no expiry to check.
func (s *Service) VerifySession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidSession)
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidSession)
		}
		return nil, oops.Code("SESSION_VERIFY_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	return session, nil
}

// UserByID returns the public view of a user.
func (s *Service) UserByID(ctx context.Context, id ulid.ULID) (*User, error) {
	record, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("user_id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_GET_USER_FAILED").
			With("operation", "get user by id").
			With("user_id", id.String()).
			Wrap(err)
	}
	return record.User(), nil
}

func (s *Service) issueSession(ctx context.Context, userID ulid.ULID) (string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(userID, tokenHash)
	if err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err)
	}

	return token, nil
}
