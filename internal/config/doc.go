// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates tutor configuration.
//
// Values are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. ~/.tutor/config.toml, or the file given with --config
//  3. Environment variables, including any set by a .env file
//  4. Command-line flags (applied by the cli package)
//
// # Environment Variables
//
//   - TUTOR_ENDPOINT: overrides inference.endpoint
//   - TUTOR_MODEL: overrides inference.model
//   - TUTOR_TIMEOUT_SECS: overrides inference.timeout_secs
//   - TUTOR_MODE: overrides ui.mode
//   - TUTOR_ADDR: overrides server.addr
//   - TUTOR_LOG_LEVEL, TUTOR_LOG_FILE: override log.level and log.file
//   - OLLAMA_HOST: rewrites the host of inference.endpoint
//
// # Usage
//
//	config.LoadDotEnv(".env")
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    Endpoint: cfg.Inference.Endpoint,
//	    Model:    cfg.Inference.Model,
//	    Timeout:  cfg.Inference.Timeout(),
//	})
package config
