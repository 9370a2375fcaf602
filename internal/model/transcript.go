// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidRole is returned when appending a message with an unknown role.
var ErrInvalidRole = errors.New("invalid message role")

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered, append-only record of a session's messages.
// There is no removal or edit operation.
//
// A Transcript is safe for concurrent use: the TUI renders from its main
// goroutine while a turn resolves in a command goroutine.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		messages: make([]Message, 0, 16),
	}
}

// Append adds one message to the end of the transcript and returns it.
func (t *Transcript) Append(role Role, text string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	msg := NewMessage(role, text)

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()

	return msg, nil
}

// All returns a copy of the full ordered sequence.
func (t *Transcript) All() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// IsEmpty reports whether nothing has been appended yet.
func (t *Transcript) IsEmpty() bool {
	return t.Len() == 0
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastAssistant returns the most recent assistant message.
func (t *Transcript) LastAssistant() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant {
			return t.messages[i], true
		}
	}
	return Message{}, false
}
