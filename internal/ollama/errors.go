// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// String returns the log label for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeNotRunning:
		return "not_running"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// classifyTransport maps an error from http.Client.Do or a body read onto
// a ClientError.
func classifyTransport(err error) *ClientError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running", Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	return hasType(err, ErrTypeNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return hasType(err, ErrTypeTimeout)
}

// IsInvalidResponse checks if the server answered with a non-JSON body.
func IsInvalidResponse(err error) bool {
	return hasType(err, ErrTypeInvalidResponse)
}

func hasType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}
