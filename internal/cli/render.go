// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/tutor/internal/ollama"
)

// answerRenderer formats tutor replies for line output.
type answerRenderer struct {
	md *glamour.TermRenderer // nil for plain output
}

// newAnswerRenderer returns a renderer that uses glamour when markdown is
// set and falls back to plain text if glamour cannot be initialized.
func newAnswerRenderer(markdown bool, width int) *answerRenderer {
	r := &answerRenderer{}
	if !markdown {
		return r
	}

	style := "notty"
	if ColorsEnabled() {
		style = "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.md = md
	}
	return r
}

// Render returns text ready to print. Error replies are never run through
// markdown so the raw diagnostic stays intact.
func (r *answerRenderer) Render(text string) string {
	if strings.HasPrefix(text, ollama.ErrorMarker) {
		return ErrorStyle.Render(text)
	}
	if r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
