// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a configuration, startup or runtime error
	ExitError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrInferenceFailed is returned by one-shot commands whose answer was an
// error reply. The reply itself has already been printed.
var ErrInferenceFailed = errors.New("inference failed")

// ErrOllamaUnavailable is returned by status when Ollama cannot be reached.
var ErrOllamaUnavailable = errors.New("ollama is not reachable")

// UsageError reports a malformed command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// TTYRequiredError is returned when an operation requires a TTY but none is available.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively (try `tutor ask`)"
	}
	return "stdin is not a terminal; interactive input not available"
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	return ExitError
}

// DisplayError writes err to w. Errors whose output was already printed
// are not repeated. Usage errors get a pointer to the help text.
func DisplayError(w io.Writer, err error) {
	if err == nil || errors.Is(err, ErrInferenceFailed) {
		return
	}
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Error:"), err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(w, MutedStyle.Render("Run `tutor help` for usage."))
	}
}
