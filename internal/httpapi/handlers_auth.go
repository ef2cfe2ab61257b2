// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, token, err := s.identity.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.metrics.RecordAuth("register", "failure")
		status, msg := mapError(err)
		writeAuthError(w, status, msg)
		return
	}

	s.metrics.RecordAuth("register", "success")
	writeAuth(w, user, token)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, token, err := s.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.metrics.RecordAuth("login", "failure")
		status, msg := mapError(err)
		writeAuthError(w, status, msg)
		return
	}

	s.metrics.RecordAuth("login", "success")
	writeAuth(w, user, token)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	writeData(w, http.StatusOK, user)
}
