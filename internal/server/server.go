// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/tutor/internal/help"
	"github.com/jeranaias/tutor/internal/logging"
	"github.com/jeranaias/tutor/internal/model"
	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/session"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8501"

	// MaxRequestBodySize bounds POST /api/turn bodies (64KB).
	MaxRequestBodySize = 64 * 1024

	// healthCheckTimeout bounds the Ollama ping in /health.
	healthCheckTimeout = 2 * time.Second

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

//go:embed static
var staticFiles embed.FS

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats counts turns served over HTTP.
type Stats struct {
	Turns       atomic.Int64
	FailedTurns atomic.Int64
	Rejected    atomic.Int64
	StartTime   time.Time
}

// StatsSnapshot is the JSON form of Stats.
type StatsSnapshot struct {
	Turns       int64  `json:"turns"`
	FailedTurns int64  `json:"failed_turns"`
	Rejected    int64  `json:"rejected"`
	Uptime      string `json:"uptime"`
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Turns:       s.Turns.Load(),
		FailedTurns: s.FailedTurns.Load(),
		Rejected:    s.Rejected.Load(),
		Uptime:      session.FormatDuration(time.Since(s.StartTime)),
	}
}

// ============================================================================
// SERVER
// ============================================================================

// StatusChecker pings the inference server. *ollama.Client satisfies it.
type StatusChecker interface {
	CheckRunning(ctx context.Context) error
}

// Server serves the web UI for exactly one session.
type Server struct {
	addr    string
	version string
	mux     *http.ServeMux
	session *session.Session
	checker StatusChecker
	logger  *slog.Logger
	stats   *Stats

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithChecker sets the client /health pings.
func WithChecker(c StatusChecker) Option {
	return func(s *Server) {
		s.checker = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.With("component", "server")
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a Server bound to sess. If addr is empty, DefaultAddr is used.
func New(addr string, sess *session.Session, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{
		addr:    addr,
		version: "dev",
		mux:     http.NewServeMux(),
		session: sess,
		logger:  logging.Discard(),
		stats:   &Stats{StartTime: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	s.mux.HandleFunc("GET /api/transcript", s.handleTranscript)
	s.mux.HandleFunc("POST /api/turn", s.handleTurn)
	s.mux.HandleFunc("GET /api/help", s.handleHelp)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routes wrapped in recovery, security headers and
// request logging, outermost first.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
	)(s.mux)
}

// ============================================================================
// API TYPES
// ============================================================================

// TurnRequest is the body of POST /api/turn.
type TurnRequest struct {
	Text string `json:"text"`
}

// TurnResponse holds the two messages a turn appends.
type TurnResponse struct {
	User  model.Message `json:"user"`
	Reply model.Message `json:"reply"`
}

// TranscriptResponse is the body of GET /api/transcript.
type TranscriptResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []model.Message `json:"messages"`
}

// HelpResponse is the body of GET /api/help.
type HelpResponse struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	PanelTitle  string `json:"panel_title"`
	Placeholder string `json:"placeholder"`
	Text        string `json:"text"`
	Markdown    string `json:"markdown"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string         `json:"status"`
	Version      string         `json:"version"`
	OllamaStatus string         `json:"ollama_status"`
	Session      session.Status `json:"session"`
	Stats        StatsSnapshot  `json:"stats"`
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "page not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleTranscript handles GET /api/transcript.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	msgs := s.session.Messages()
	if msgs == nil {
		msgs = []model.Message{}
	}
	s.writeJSON(w, http.StatusOK, TranscriptResponse{
		SessionID: s.session.ID(),
		Messages:  msgs,
	})
}

// handleTurn handles POST /api/turn. The turn runs to completion even if
// the client goes away, so the transcript never holds an unanswered
// question.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", MaxRequestBodySize))
			return
		}
		s.logger.Debug("invalid turn body", "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	user, reply, err := s.session.Turn(context.WithoutCancel(r.Context()), req.Text)
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		s.stats.Rejected.Add(1)
		s.writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	case errors.Is(err, session.ErrBusy):
		s.stats.Rejected.Add(1)
		s.writeError(w, http.StatusConflict, "a question is already being answered")
		return
	case errors.Is(err, session.ErrClosed):
		s.writeError(w, http.StatusServiceUnavailable, "session closed")
		return
	case err != nil:
		s.logger.Error("turn failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	s.stats.Turns.Add(1)
	if ollamaFailure(reply) {
		s.stats.FailedTurns.Add(1)
	}
	s.writeJSON(w, http.StatusOK, TurnResponse{User: user, Reply: reply})
}

// handleHelp handles GET /api/help.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HelpResponse{
		Title:       help.Title,
		Subtitle:    help.Subtitle,
		PanelTitle:  help.PanelTitle,
		Placeholder: help.Placeholder,
		Text:        help.Plain(),
		Markdown:    help.Markdown(),
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Session: s.session.GetStatus(),
		Stats:   s.stats.Snapshot(),
	}

	if s.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.checker.CheckRunning(ctx); err == nil {
			health.OllamaStatus = "ok"
		} else {
			health.OllamaStatus = "unavailable"
			health.Status = "degraded"
		}
	} else {
		health.OllamaStatus = "not_configured"
	}

	s.writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Listen binds the listen address. Run calls it if it has not been called.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address once listening, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Run listens (if Listen was not called) and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	listening := s.listener != nil
	s.mu.Unlock()
	if !listening {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	srv, ln := s.server, s.listener
	s.mu.Unlock()

	s.logger.Info("server started", "addr", ln.Addr().String(), "session_id", s.session.ID())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server, waiting for in-flight turns up to
// the shutdown timeout.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("server shutting down", "turns", s.stats.Turns.Load())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

// ollamaFailure reports whether reply carries the error marker.
func ollamaFailure(reply model.Message) bool {
	return strings.HasPrefix(reply.Text, ollama.ErrorMarker)
}
