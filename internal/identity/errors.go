// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package identity

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when registration names an existing user.
	// No state is mutated when this is returned.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so that callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSession is returned when a session token is missing, empty,
	// or unknown.
	ErrInvalidSession = errors.New("invalid session token")
)
