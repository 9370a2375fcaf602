// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/tutor/internal/help"
	"github.com/jeranaias/tutor/internal/model"
	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/ui/styles"
)

const (
	minBubbleWidth = 20
	timeFormat     = "15:04"
)

// =============================================================================
// TRANSCRIPT RENDERER
// =============================================================================

// TranscriptRenderer renders messages into styled terminal text.
// Render output depends only on its arguments and the renderer settings.
type TranscriptRenderer struct {
	theme    *styles.Theme
	markdown bool

	// glamour renderers are built per wrap width
	md      *glamour.TermRenderer
	mdWidth int
}

// NewTranscriptRenderer creates a renderer. With markdown false, replies
// are shown as plain wrapped text.
func NewTranscriptRenderer(theme *styles.Theme, markdown bool) *TranscriptRenderer {
	if theme == nil {
		theme = styles.NewThemeWith(true, termenv.Ascii)
	}
	return &TranscriptRenderer{theme: theme, markdown: markdown}
}

// RenderTranscript renders messages at width with the plain ASCII theme.
func RenderTranscript(messages []model.Message, width int) string {
	return NewTranscriptRenderer(nil, false).Render(messages, width)
}

// Render returns the full transcript. An empty transcript renders a short
// welcome hint.
func (r *TranscriptRenderer) Render(messages []model.Message, width int) string {
	if len(messages) == 0 {
		return r.theme.Muted.Render("Ask anything about math or science. Press ? for instructions.")
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, r.RenderMessage(msg, width))
	}
	return strings.Join(parts, "\n\n")
}

// RenderMessage renders one message: a label line and a bubble.
func (r *TranscriptRenderer) RenderMessage(msg model.Message, width int) string {
	bubbleWidth := width - 2
	if bubbleWidth < minBubbleWidth {
		bubbleWidth = minBubbleWidth
	}

	stamp := ""
	if !msg.Timestamp.IsZero() {
		stamp = r.theme.Timestamp.Render(" · " + msg.Timestamp.Format(timeFormat))
	}

	switch {
	case msg.IsUser():
		label := r.theme.UserLabel.Render(msg.Role.DisplayName()) + stamp
		return label + "\n" + r.theme.UserBubble.Width(bubbleWidth).Render(msg.Text)

	case strings.HasPrefix(msg.Text, ollama.ErrorMarker):
		label := r.theme.AssistantLabel.Render(msg.Role.DisplayName()) + stamp
		return label + "\n" + r.theme.ErrorBubble.Width(bubbleWidth).Render(msg.Text)

	default:
		label := r.theme.AssistantLabel.Render(msg.Role.DisplayName()) + stamp
		body := msg.Text
		if r.markdown {
			// bubble border and padding take four columns
			body = r.renderMarkdown(msg.Text, bubbleWidth-4)
		}
		return label + "\n" + r.theme.AssistantBubble.Width(bubbleWidth).Render(body)
	}
}

// RenderHelp renders the instructions panel body.
func (r *TranscriptRenderer) RenderHelp(width int) string {
	if !r.markdown {
		return help.Plain()
	}
	return r.renderMarkdown(help.Markdown(), width)
}

// renderMarkdown returns the glamour rendering of text, or text itself if
// glamour fails.
func (r *TranscriptRenderer) renderMarkdown(text string, width int) string {
	if width < 10 {
		width = 10
	}
	if r.md == nil || r.mdWidth != width {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		r.md, r.mdWidth = md, width
	}

	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
