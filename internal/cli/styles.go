// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for non-TUI output.

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle is used for command titles and the REPL banner
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(12)

	// ValueStyle is used for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// PromptStyle colors role labels in the REPL
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// TutorStyle labels assistant replies in the REPL
	TutorStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	// SuccessStyle marks healthy status lines
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// WarningStyle marks degraded status lines
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// ErrorStyle marks errors and error replies
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// MutedStyle is used for hints and separators
	MutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// RenderField renders "label value" with the shared label width.
func RenderField(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}
