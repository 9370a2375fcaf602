// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewThemeWith_GlamourStyle(t *testing.T) {
	assert.Equal(t, "dark", NewThemeWith(true, termenv.TrueColor).GlamourStyle())
	assert.Equal(t, "light", NewThemeWith(false, termenv.ANSI256).GlamourStyle())
	assert.Equal(t, "notty", NewThemeWith(true, termenv.Ascii).GlamourStyle())
}

func TestTheme_SetSize(t *testing.T) {
	theme := NewThemeWith(true, termenv.Ascii)
	theme.SetSize(120, 40)
	assert.Equal(t, 120, theme.Width)
	assert.Equal(t, 40, theme.Height)
}

func TestRenderStatus_IncludesIndicators(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("ready"), "[OK] ready"))
	assert.True(t, strings.Contains(RenderError("down"), "[X] down"))
	assert.True(t, strings.Contains(RenderWarning("slow"), "[!] slow"))
	assert.True(t, strings.Contains(RenderInfo("note"), "[i] note"))
}

func TestThinkingSpinner(t *testing.T) {
	assert.NotEmpty(t, ThinkingSpinner.Frames)
	assert.Greater(t, int64(ThinkingSpinner.FPS), int64(0))
}
