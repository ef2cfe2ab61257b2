// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/pkg/errutil"
)

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type authEnvelope struct {
	Success bool           `json:"success"`
	User    *identity.User `json:"user,omitempty"`
	Token   string         `json:"token,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg})
}

func writeAuth(w http.ResponseWriter, user *identity.User, token string) {
	writeJSON(w, http.StatusOK, authEnvelope{Success: true, User: user, Token: token})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, authEnvelope{Success: false, Error: msg})
}

// mapError converts a service error to an HTTP status and client-safe
// message. Anything unrecognized is reported as a generic internal error
// so storage details never leak to clients.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrUsernameTaken):
		return http.StatusBadRequest, "username already taken"
	case errors.Is(err, identity.ErrEmptyPassword):
		return http.StatusBadRequest, "password cannot be empty"
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, identity.ErrInvalidSession):
		return http.StatusUnauthorized, "invalid session"
	}

	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() == "AUTH_INVALID_USERNAME" {
		return http.StatusBadRequest, oopsErr.Error()
	}

	errutil.LogError(slog.Default(), "request failed", err)
	return http.StatusInternalServerError, "internal error"
}
