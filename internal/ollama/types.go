// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /api/generate endpoint.
// Stream is always false; the client reads a single JSON object.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE KEYS
// =============================================================================

// Answer keys in the order they are consulted. Some Ollama-compatible
// servers reply with "result"; stock Ollama uses "response".
const (
	KeyResult   = "result"
	KeyResponse = "response"
)

// keyError is the field Ollama sets on failed requests. It is only logged.
const keyError = "error"
