// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server running handler and returns a client
// pointed at its /api/generate path.
func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClientWithConfig(&ClientConfig{
		Endpoint: srv.URL + "/api/generate",
		Model:    "test-model",
		Timeout:  timeout,
	})
}

func replyWith(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{Model: "phi3"})
	cfg := c.Config()

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, "phi3", cfg.Model)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestNewClientWithConfig_Nil(t *testing.T) {
	c := NewClientWithConfig(nil)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, "http://localhost:11434", c.BaseURL())
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_SendsGenerateRequest(t *testing.T) {
	var got GenerateRequest
	var contentType, method, path string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"response":"5","done":true}`)
	}, time.Second)

	res := c.Ask(context.Background(), "INSTR\nUser: 2+3\nAI:")

	assert.Equal(t, Answer{Text: "5"}, res)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/generate", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, GenerateRequest{Model: "test-model", Prompt: "INSTR\nUser: 2+3\nAI:", Stream: false}, got)
}

func TestAsk_BodyShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind string
		wantText string
	}{
		{"response key", `{"response":"7"}`, "answer", "7"},
		{"result preferred", `{"result":"A","response":"B"}`, "answer", "A"},
		{"trimmed", `{"response":"  whitespace \n"}`, "answer", "whitespace"},
		{"empty answer", `{"response":""}`, "answer", ""},
		{"non-string result falls back", `{"result":42,"response":"B"}`, "answer", "B"},
		{"null result falls back", `{"result":null,"response":"B"}`, "answer", "B"},
		{"null result alone", `{"result":null}`, "unrecognized_shape", "❌ Unexpected Ollama format:\n{\"result\":null}"},
		{"unexpected", `{"unexpected":true}`, "unrecognized_shape", "❌ Unexpected Ollama format:\n{\"unexpected\":true}"},
		{"array", `["response"]`, "unrecognized_shape", "❌ Unexpected Ollama format:\n[\"response\"]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, replyWith(tc.body), time.Second)
			res := c.Ask(context.Background(), "p")

			assert.Equal(t, tc.wantKind, res.Kind())
			assert.Equal(t, tc.wantText, res.Display())
		})
	}
}

func TestAsk_UnrecognizedShapeIncludesRawBody(t *testing.T) {
	c := newTestClient(t, replyWith(`{ "unexpected" : true }`), time.Second)
	res := c.Ask(context.Background(), "p")

	shape, ok := res.(UnrecognizedShape)
	require.True(t, ok, "got %T", res)
	assert.Contains(t, res.Display(), "Unexpected")
	assert.Contains(t, res.Display(), `{"unexpected":true}`)
	assert.Equal(t, http.StatusOK, shape.Status)
}

func TestAsk_ErrorStatusWithJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"model 'test-model' not found"}`)
	}, time.Second)

	res := c.Ask(context.Background(), "p")

	shape, ok := res.(UnrecognizedShape)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, http.StatusNotFound, shape.Status)
	assert.Contains(t, res.Display(), "not found")
}

func TestAsk_InvalidJSON(t *testing.T) {
	c := newTestClient(t, replyWith(`<html>502 Bad Gateway</html>`), time.Second)
	res := c.Ask(context.Background(), "p")

	te, ok := res.(TransportError)
	require.True(t, ok, "got %T", res)
	assert.True(t, IsInvalidResponse(te.Err))
	assert.True(t, strings.HasPrefix(res.Display(), ErrorMarker+" Error: "))
}

func TestAsk_Timeout(t *testing.T) {
	done := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	// Registered after the server's cleanup, so it runs first.
	t.Cleanup(func() { close(done) })

	start := time.Now()
	res := c.Ask(context.Background(), "p")
	elapsed := time.Since(start)

	te, ok := res.(TransportError)
	require.True(t, ok, "got %T", res)
	assert.True(t, IsTimeout(te.Err), "err = %v", te.Err)
	assert.True(t, strings.HasPrefix(res.Display(), ErrorMarker))
	assert.Less(t, elapsed, 2*time.Second)
}

func TestAsk_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/generate"
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{Endpoint: endpoint, Timeout: time.Second})
	res := c.Ask(context.Background(), "p")

	te, ok := res.(TransportError)
	require.True(t, ok, "got %T", res)
	assert.True(t, IsNotRunning(te.Err), "err = %v", te.Err)
	assert.Contains(t, res.Display(), "Ollama is not running")
}

func TestAsk_BadEndpoint(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{Endpoint: "://nope"})
	res := c.Ask(context.Background(), "p")

	te, ok := res.(TransportError)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, ErrTypeConnection, te.Err.Type)
}

// =============================================================================
// RESULT TESTS
// =============================================================================

func TestResult_Display(t *testing.T) {
	assert.Equal(t, "5", Answer{Text: "5"}.Display())
	assert.Equal(t, "❌ Unexpected Ollama format:\n{}", UnrecognizedShape{Raw: "{}"}.Display())
	assert.Equal(t, "❌ Error: request timed out", TransportError{Err: ErrTimeout}.Display())
	assert.Equal(t, "❌ Error: unknown error", TransportError{}.Display())
}

func TestIsFailure(t *testing.T) {
	assert.False(t, IsFailure(Answer{}))
	assert.True(t, IsFailure(UnrecognizedShape{}))
	assert.True(t, IsFailure(TransportError{Err: ErrNotRunning}))
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestClientError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: cause}

	assert.Equal(t, "request failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsTimeout(err))
	assert.False(t, IsNotRunning(errors.New("plain")))
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "timeout", ErrTypeTimeout.String())
	assert.Equal(t, "not_running", ErrTypeNotRunning.String())
	assert.Equal(t, "unknown", ErrorType(99).String())
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, "Ollama is running")
	}, time.Second)

	require.NoError(t, c.CheckRunning(context.Background()))
	assert.Equal(t, "/", path)
}

func TestCheckRunning_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, time.Second)

	err := c.CheckRunning(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestListModelsAndHasModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"models":[{"name":"llama3.2:latest"},{"name":"phi3:mini"}]}`)
	}, time.Second)

	names, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "phi3:mini"}, names)

	assert.False(t, c.HasModel(names))
	assert.True(t, NewClientWithConfig(&ClientConfig{Model: "llama3.2"}).HasModel(names))
	assert.True(t, NewClientWithConfig(&ClientConfig{Model: "phi3:mini"}).HasModel(names))
}
