// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/tutor/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the transcript roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Tutor"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are passed by value and
// never modified after they are appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant reports whether the message is an assistant reply.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// Preview returns the message text on one line, truncated to maxLen runes.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.OneLine(m.Text), maxLen)
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "msg_" + hex.EncodeToString(b)
}
