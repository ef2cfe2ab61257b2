// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package httpapi exposes the authentication and chat services over a
// JSON HTTP API.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/chat"
	"github.com/lumachat/lumachat/internal/identity"
)

// RequestMetrics records API request and authentication outcomes.
type RequestMetrics interface {
	RecordRequest(route, method string, status int)
	RecordAuth(operation, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string, int) {}
func (noopMetrics) RecordAuth(string, string)         {}

// Server serves the LumaChat JSON API.
type Server struct {
	addr       string
	identity   *identity.Service
	messages   *chat.Log
	metrics    RequestMetrics
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil.
func NewServer(addr string, svc *identity.Service, log *chat.Log, metrics RequestMetrics) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("identity service is required")
	}
	if log == nil {
		return nil, oops.Errorf("message log is required")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Server{
		addr:     addr,
		identity: svc,
		messages: log,
		metrics:  metrics,
	}, nil
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/auth/me", s.requireSession(http.HandlerFunc(s.handleMe)))
	mux.Handle("GET /api/chat/messages", s.requireSession(http.HandlerFunc(s.handleGetMessages)))
	mux.Handle("POST /api/chat/messages", s.requireSession(http.HandlerFunc(s.handlePostMessage)))
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.observe(mux)
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after it starts; the channel is closed
// when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	slog.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
