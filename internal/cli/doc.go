// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for tutor.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed command-line arguments with global and command flags
//   - ArgParser: Flag and positional argument splitting
//   - App: Loaded configuration, logger and Ollama client shared by commands
//   - REPL: Line-oriented chat loop over a session
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	app, err := cli.Setup(args)
//	defer app.Close()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, app, args, os.Stdout)
//	case cli.CmdChat:
//	    err = cli.HandleChat(ctx, app, os.Stdout)
//	}
//
// # Commands Overview
//
//   - (none): Start the front-end selected by ui.mode (TUI by default)
//   - tui: Full-screen chat
//   - chat: Line REPL
//   - serve: Local web UI
//   - ask: Single question, print the answer, exit
//   - status: Ollama reachability and model check
//   - config: Show, locate, create, read and write the config file
//   - version, help
package cli
