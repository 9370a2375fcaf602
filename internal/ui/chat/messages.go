// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/tutor/internal/model"

// =============================================================================
// TEA MESSAGES
// =============================================================================

// ReplyMsg carries the assistant message produced by Session.Resolve.
type ReplyMsg struct {
	Message model.Message
}

// OllamaStatusMsg reports the startup reachability check.
type OllamaStatusMsg struct {
	Err          error
	ModelMissing bool
}

// copyResultMsg reports the outcome of a clipboard write.
type copyResultMsg struct {
	err     error
	chars   int
	preview string
}
