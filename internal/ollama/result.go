// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

// ErrorMarker prefixes every user-visible failure text.
const ErrorMarker = "❌"

// =============================================================================
// RESULT VARIANTS
// =============================================================================

// Result is the outcome of one Ask call. It is exactly one of Answer,
// UnrecognizedShape or TransportError.
type Result interface {
	// Display returns the text shown to the user and stored in the transcript.
	Display() string
	// Kind returns a stable label for logs.
	Kind() string

	isResult()
}

// Answer is a successful reply.
type Answer struct {
	Text string
}

// UnrecognizedShape is a JSON reply without a usable answer key. Raw is the
// body in compact form.
type UnrecognizedShape struct {
	Raw    string
	Status int
}

// TransportError is a failed request or an unparseable body.
type TransportError struct {
	Err *ClientError
}

func (Answer) isResult()            {}
func (UnrecognizedShape) isResult() {}
func (TransportError) isResult()    {}

func (a Answer) Display() string { return a.Text }

func (u UnrecognizedShape) Display() string {
	return ErrorMarker + " Unexpected Ollama format:\n" + u.Raw
}

func (e TransportError) Display() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return ErrorMarker + " Error: " + msg
}

func (Answer) Kind() string            { return "answer" }
func (UnrecognizedShape) Kind() string { return "unrecognized_shape" }
func (TransportError) Kind() string    { return "transport_error" }

// IsFailure reports whether r is anything other than an Answer.
func IsFailure(r Result) bool {
	_, ok := r.(Answer)
	return !ok
}
