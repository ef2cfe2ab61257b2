// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
)

type postMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	window, err := s.messages.Get(r.Context(), user.ID)
	if err != nil {
		status, msg := mapError(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, window)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	window, err := s.messages.Append(r.Context(), user.ID, user.Username, req.Text)
	if err != nil {
		status, msg := mapError(err)
		writeError(w, status, msg)
		return
	}

	writeData(w, http.StatusOK, window)
}
