// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for the tutor TUI.

# Key Components

## Model (model.go)

The Model wraps a session.Session and holds only presentation state:
the viewport, the single-line input, the spinner and the help toggle.
The transcript lives in the session.

A submitted question runs as a tea.Cmd that calls Session.Resolve. Until
its ReplyMsg arrives the model is awaiting: the spinner shows in place of
the input and further submissions are dropped.

## Rendering (render.go, view.go)

TranscriptRenderer turns messages into styled text. Assistant replies are
rendered as markdown with glamour; failure replies are shown verbatim in
an error bubble. Rendering never touches the session.

## Keys (keys.go)

	Enter        submit
	? / f1       toggle the instructions panel
	ctrl+y       copy the last answer
	PgUp/PgDn    scroll
	esc/ctrl+c   quit

# Usage

	sess := session.New(client)
	m := chat.New(sess, chat.Options{Theme: styles.NewTheme(), Markdown: true})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
