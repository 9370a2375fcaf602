// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	DefaultEndpoint = "http://localhost:11434/api/generate"
	DefaultModel    = "llama3.2"
	DefaultTimeout  = 60 * time.Second

	// maxBodyBytes caps how much of a reply is read.
	maxBodyBytes = 4 << 20
)

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// Endpoint is the full generate URL (default: http://localhost:11434/api/generate)
	Endpoint string

	// Model is sent with every request (default: "llama3.2")
	Model string

	// Timeout bounds a whole request including the body read (default: 60s)
	Timeout time.Duration

	// Logger receives one record per request. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint: DefaultEndpoint,
		Model:    DefaultModel,
		Timeout:  DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends prompts to an Ollama server.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client. Zero fields of config
// are filled with defaults; config itself is not modified.
func NewClientWithConfig(config *ClientConfig) *Client {
	cfg := DefaultConfig()
	if config != nil {
		if config.Endpoint != "" {
			cfg.Endpoint = config.Endpoint
		}
		if config.Model != "" {
			cfg.Model = config.Model
		}
		if config.Timeout > 0 {
			cfg.Timeout = config.Timeout
		}
		cfg.Logger = config.Logger
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With("component", "ollama"),
	}
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.config.Model
}

// =============================================================================
// GENERATE
// =============================================================================

// Ask sends prompt to the generate endpoint and waits for the full reply.
// It never returns an error value or panics; failures are encoded in the
// returned Result.
func (c *Client) Ask(ctx context.Context, prompt string) Result {
	start := time.Now()
	res, status := c.ask(ctx, prompt)
	c.logResult(res, status, time.Since(start), len(prompt))
	return res
}

func (c *Client) ask(ctx context.Context, prompt string) (Result, int) {
	body, err := json.Marshal(GenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return TransportError{Err: &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}}, 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return TransportError{Err: &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}}, 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportError{Err: classifyTransport(err)}, 0
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return TransportError{Err: classifyTransport(err)}, resp.StatusCode
	}

	return interpret(data, resp.StatusCode), resp.StatusCode
}

// interpret maps a reply body onto a Result. "result" wins over
// "response"; either must be a JSON string.
func interpret(data []byte, status int) Result {
	if !gjson.ValidBytes(data) {
		return TransportError{Err: &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: fmt.Sprintf("invalid JSON from Ollama (HTTP %d)", status),
		}}
	}

	doc := gjson.ParseBytes(data)
	for _, key := range []string{KeyResult, KeyResponse} {
		if v := doc.Get(key); v.Type == gjson.String {
			return Answer{Text: strings.TrimSpace(v.String())}
		}
	}

	return UnrecognizedShape{
		Raw:    string(pretty.Ugly(data)),
		Status: status,
	}
}

func (c *Client) logResult(res Result, status int, latency time.Duration, promptLen int) {
	attrs := []any{
		"model", c.config.Model,
		"kind", res.Kind(),
		"status", status,
		"latency_ms", latency.Milliseconds(),
		"prompt_bytes", promptLen,
	}

	switch r := res.(type) {
	case Answer:
		c.logger.Info("generate", append(attrs, "answer_bytes", len(r.Text))...)
	case UnrecognizedShape:
		if msg := gjson.Get(r.Raw, keyError); msg.Exists() {
			attrs = append(attrs, "server_error", msg.String())
		}
		c.logger.Warn("generate", append(attrs, "raw", r.Raw)...)
	case TransportError:
		c.logger.Error("generate", append(attrs, "error_type", r.Err.Type.String(), "error", r.Err.Error())...)
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// BaseURL returns scheme://host of the endpoint.
func (c *Client) BaseURL() string {
	u, err := url.Parse(c.config.Endpoint)
	if err != nil || u.Host == "" {
		return c.config.Endpoint
	}
	return u.Scheme + "://" + u.Host
}

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL(), nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}

	return nil
}

// ListModels returns the names of locally available models from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if !gjson.ValidBytes(data) {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid JSON from /api/tags"}
	}

	var names []string
	for _, name := range gjson.GetBytes(data, "models.#.name").Array() {
		names = append(names, name.String())
	}
	return names, nil
}

// HasModel reports whether the configured model is in names. A name without
// a tag matches its ":latest" variant.
func (c *Client) HasModel(names []string) bool {
	want := c.config.Model
	for _, n := range names {
		if n == want || n == want+":latest" || strings.TrimSuffix(n, ":latest") == want {
			return true
		}
	}
	return false
}

func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
