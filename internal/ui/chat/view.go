// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor/internal/help"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders header, optional help panel, transcript, input and status.
// It reads model state only.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sections := []string{m.renderHeader()}
	if m.showHelp {
		sections = append(sections, m.renderHelpPanel())
	}
	sections = append(sections,
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("🤖 " + help.Title + " 📘")
	subtitle := m.theme.HeaderSubtitle.Render(help.Subtitle)
	divider := m.theme.Divider.Render(strings.Repeat("─", max(m.width, 1)))

	header := m.theme.Header.Width(m.width).Render(title + "\n" + subtitle)
	return header + "\n" + divider
}

func (m Model) renderHelpPanel() string {
	width := max(m.width-4, 20)
	title := m.theme.HelpTitle.Render(help.PanelTitle)
	body := m.renderer.RenderHelp(width)
	return m.theme.HelpPanel.Width(m.width - 2).Render(title + "\n" + strings.TrimRight(body, "\n"))
}

func (m Model) renderInput() string {
	var line string
	if m.awaiting {
		line = m.spinner.View() + " " + m.theme.Muted.Render("Thinking...")
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(max(m.width-2, 10)).Render(line)
}

func (m Model) renderStatusBar() string {
	var parts []string
	if m.modelName != "" {
		parts = append(parts, m.theme.StatusKey.Render("model")+" "+m.modelName)
	}
	if m.ollamaStatus != "" {
		parts = append(parts, m.ollamaStatus)
	}
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.StatusKey.Render(h.Key)+" "+h.Desc)
	}

	line := strings.Join(parts, m.theme.Muted.Render(" • "))
	if m.statusMsg != "" {
		line = m.statusMsg + m.theme.Muted.Render(" • ") + line
	}
	return m.theme.StatusBar.MaxWidth(max(m.width, 1)).Render(line)
}
