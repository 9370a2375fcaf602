// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns one chat session: its transcript and the turn
// state machine shared by the TUI, the line REPL and the web UI.
//
// # States
//
//	Idle ──Submit──▶ AwaitingResponse ──Resolve──▶ Idle
//
// A session holds at most one turn in flight. Submitting while a reply is
// pending returns ErrBusy. Resolve always returns the session to Idle,
// whatever the inference outcome.
//
// # Usage
//
//	s := session.New(ollama.NewClient(), session.WithLogger(logger))
//	defer s.Close()
//
//	user, reply, err := s.Turn(ctx, "2+3")
//	if err != nil {
//	    // ErrEmptyInput, ErrBusy or ErrClosed
//	}
//	fmt.Println(reply.Text)
package session
