// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Divider        lipgloss.Style

	// Messages
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	Timestamp       lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Placeholder    lipgloss.Style
	Spinner        lipgloss.Style

	// Help panel
	HelpPanel lipgloss.Style
	HelpTitle lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	Footer    lipgloss.Style
	Muted     lipgloss.Style
}

// NewTheme detects terminal capabilities and builds the styles.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// NewThemeWith builds the styles for a fixed background without probing
// the terminal.
func NewThemeWith(isDark bool, profile termenv.Profile) *Theme {
	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Align(lipgloss.Center).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ErrorBubbleBorder).
		Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Amber)

	t.HelpPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.HelpTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GlamourStyle names the glamour standard style that matches the
// detected background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// =============================================================================
// SPINNER
// =============================================================================

// ThinkingSpinner is shown while a reply is pending.
var ThinkingSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    spinner.Line.FPS,
}
