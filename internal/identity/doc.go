// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package identity owns user credentials and session tokens.
//
// # Domain Types
//
// CredentialRecord holds a user's PBKDF2-derived password hash and its salt;
// it is created once at registration and never mutated or deleted. Session
// maps an opaque bearer token (stored as a SHA-256 hash) to a user ID;
// sessions never expire and cannot be revoked server-side.
//
// # Service
//
// Service coordinates the two: Register and Login both end by issuing a
// session, and VerifySession is the gate every authenticated operation in
// the system passes through. Unknown-user and wrong-password failures are
// indistinguishable, by response and by timing.
package identity
