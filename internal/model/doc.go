// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Role: Message role enumeration (user, assistant)
//   - Message: Single immutable message with role, text and timestamp
//   - Transcript: Append-only, ordered record of one session's messages
//
// # Usage
//
//	t := model.NewTranscript()
//	t.Append(model.RoleUser, "2+3")
//	t.Append(model.RoleAssistant, "5")
//	for _, msg := range t.All() {
//	    fmt.Printf("%s: %s\n", msg.Role.DisplayName(), msg.Text)
//	}
package model
