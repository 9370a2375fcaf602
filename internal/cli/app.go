// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/tutor/internal/config"
	"github.com/jeranaias/tutor/internal/logging"
	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/session"
)

// DotEnvFile is read from the working directory before configuration loads.
const DotEnvFile = ".env"

// App holds what every front-end needs: the effective configuration, the
// logger and the Ollama client.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Client *ollama.Client

	closer io.Closer
}

// Setup loads .env, the config file, environment overrides and flags, in
// that order, then opens the logger and builds the client.
func Setup(args Args) (*App, error) {
	if err := config.LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}

	return NewApp(cfg, logger, closer), nil
}

// LoadConfig returns the configuration with flags applied and validated.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	ApplyFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// NewApp wires a client to cfg. closer may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, closer io.Closer) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		Endpoint: cfg.Inference.Endpoint,
		Model:    cfg.Inference.Model,
		Timeout:  cfg.Inference.Timeout(),
		Logger:   logger,
	})
	return &App{
		Config: cfg,
		Logger: logger,
		Client: client,
		closer: closer,
	}
}

// NewSession starts a UI session answered by the app's client.
func (a *App) NewSession() *session.Session {
	return session.New(a.Client, session.WithLogger(a.Logger))
}

// Close releases the log destination.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
