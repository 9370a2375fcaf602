// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/tutor/internal/model"
	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/prompt"
)

// Sentinel errors returned by Submit and Turn.
var (
	ErrEmptyInput = errors.New("input is empty")
	ErrBusy       = errors.New("a reply is already pending")
	ErrClosed     = errors.New("session is closed")
)

// Asker sends one composed prompt to an inference backend.
// *ollama.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, prompt string) ollama.Result
}

// =============================================================================
// STATE
// =============================================================================

// State is the turn state of a session.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one conversation with the tutor.
type Session struct {
	mu sync.Mutex

	id          string
	startTime   time.Time
	instruction string
	asker       Asker
	logger      *slog.Logger

	transcript *model.Transcript
	state      State
	pending    string
	turns      int
	closed     bool
}

// Option configures a Session.
type Option func(*Session)

// WithInstruction replaces the default tutoring instruction.
func WithInstruction(instruction string) Option {
	return func(s *Session) {
		s.instruction = instruction
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an idle session with an empty transcript.
func New(asker Asker, opts ...Option) *Session {
	s := &Session{
		id:          generateSessionID(),
		startTime:   time.Now(),
		instruction: prompt.SystemInstruction,
		asker:       asker,
		logger:      slog.New(slog.DiscardHandler),
		transcript:  model.NewTranscript(),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.logger.Debug("session started")
	return s
}

func generateSessionID() string {
	return "sess_" + uuid.NewString()
}

// Submit records the user's input and moves the session to
// StateAwaitingResponse. Surrounding whitespace is trimmed.
func (s *Session) Submit(input string) (model.Message, error) {
	text := strings.TrimSpace(input)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return model.Message{}, ErrClosed
	case s.state == StateAwaitingResponse:
		return model.Message{}, ErrBusy
	case text == "":
		return model.Message{}, ErrEmptyInput
	}

	msg, err := s.transcript.Append(model.RoleUser, text)
	if err != nil {
		return model.Message{}, err
	}
	s.pending = text
	s.state = StateAwaitingResponse
	return msg, nil
}

// Resolve asks the backend about the pending input and appends the reply.
// Failures become the reply text. The session is Idle on return.
//
// With nothing pending, Resolve returns an assistant message without
// touching the transcript.
func (s *Session) Resolve(ctx context.Context) model.Message {
	s.mu.Lock()
	if s.state != StateAwaitingResponse {
		s.mu.Unlock()
		return model.NewMessage(model.RoleAssistant, "")
	}
	userText := s.pending
	instruction := s.instruction
	s.mu.Unlock()

	start := time.Now()
	res := s.asker.Ask(ctx, prompt.Compose(instruction, userText))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = ""
	s.state = StateIdle
	s.turns++

	s.logger.Info("turn resolved",
		"turn", s.turns,
		"kind", res.Kind(),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if s.closed {
		return model.NewMessage(model.RoleAssistant, res.Display())
	}
	msg, err := s.transcript.Append(model.RoleAssistant, res.Display())
	if err != nil {
		return model.NewMessage(model.RoleAssistant, res.Display())
	}
	return msg
}

// Turn runs Submit then Resolve.
func (s *Session) Turn(ctx context.Context, input string) (user, reply model.Message, err error) {
	user, err = s.Submit(input)
	if err != nil {
		return model.Message{}, model.Message{}, err
	}
	return user, s.Resolve(ctx), nil
}

// Close ends the session and discards its transcript.
// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.transcript = model.NewTranscript()
	s.logger.Debug("session closed", "turns", s.turns, "duration", FormatDuration(time.Since(s.startTime)))
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session started.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Duration returns how long the session has been active.
func (s *Session) Duration() time.Duration {
	return time.Since(s.startTime)
}

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// TurnCount returns the number of resolved turns.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// Transcript returns the session transcript. Readers may iterate it while
// a turn is in flight.
func (s *Session) Transcript() *model.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []model.Message {
	return s.Transcript().All()
}
