// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the local web UI for a single tutor session.
//
// # Endpoints
//
//   - GET  /               - Embedded chat page
//   - GET  /static/...     - Page script and stylesheet
//   - GET  /api/transcript - Messages of the session so far
//   - POST /api/turn       - Ask a question: {"text": "..."}
//   - GET  /api/help       - Instructions panel text
//   - GET  /health         - Session and Ollama status
//
// POST /api/turn answers 400 for blank input and 409 while another turn is
// in flight. A failed inference is still a 200: the reply text carries
// the error marker, exactly as in the terminal front-ends.
//
// # Usage
//
//	srv := server.New(cfg.Server.Addr, sess,
//		server.WithChecker(client),
//		server.WithLogger(logger),
//	)
//	if err := srv.Run(ctx); err != nil {
//		return err
//	}
package server
