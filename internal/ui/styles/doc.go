// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tutor TUI.
//
// All colors use Lip Gloss AdaptiveColor so light and dark terminals are
// handled without configuration. NewTheme detects the color profile once,
// before the Bubble Tea program takes over the terminal.
//
// # Usage
//
//	theme := styles.NewTheme()
//	header := theme.HeaderTitle.Render(help.Title)
//	reply := theme.AssistantBubble.Width(60).Render(text)
package styles
