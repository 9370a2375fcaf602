// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tutor/internal/help"
	"github.com/jeranaias/tutor/internal/model"
	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/session"
	"github.com/jeranaias/tutor/internal/ui/styles"
)

type stubAsker struct {
	result ollama.Result
	calls  int
}

func (s *stubAsker) Ask(ctx context.Context, prompt string) ollama.Result {
	s.calls++
	if s.result == nil {
		return ollama.Answer{Text: "5"}
	}
	return s.result
}

type stubChecker struct {
	err    error
	models []string
	has    bool
}

func (c stubChecker) CheckRunning(ctx context.Context) error { return c.err }

func (c stubChecker) ListModels(ctx context.Context) ([]string, error) { return c.models, nil }

func (c stubChecker) HasModel(names []string) bool { return c.has }

func newTestModel(t *testing.T, asker session.Asker) Model {
	t.Helper()
	sess := session.New(asker)
	t.Cleanup(sess.Close)

	m := New(sess, Options{
		Theme:     styles.NewThemeWith(true, termenv.Ascii),
		ModelName: "llama3.2",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// =============================================================================
// TURN FLOW TESTS
// =============================================================================

func TestSubmit_FullTurn(t *testing.T) {
	asker := &stubAsker{}
	m := newTestModel(t, asker)

	m.input.SetValue("2+3")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, m.Awaiting())
	assert.Equal(t, session.StateAwaitingResponse, m.Session().State())
	assert.Equal(t, "", m.input.Value())
	assert.Contains(t, m.View(), "Thinking...")

	reply := m.resolveCmd()()
	m, _ = update(t, m, reply)

	assert.False(t, m.Awaiting())
	assert.Equal(t, session.StateIdle, m.Session().State())

	msgs := m.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "2+3", msgs[0].Text)
	assert.Equal(t, "5", msgs[1].Text)
	assert.Contains(t, m.View(), "Tutor")
}

func TestSubmit_IgnoredWhileAwaiting(t *testing.T) {
	asker := &stubAsker{}
	m := newTestModel(t, asker)

	m.input.SetValue("first")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.input.SetValue("second")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Len(t, m.Session().Messages(), 1)
	assert.Zero(t, asker.calls)

	// Typing is dropped while awaiting.
	before := m.input.Value()
	m, _ = update(t, m, runeKey('x'))
	assert.Equal(t, before, m.input.Value())
}

func TestSubmit_BlankInputIgnored(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	m.input.SetValue("   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.Awaiting())
	assert.Empty(t, m.Session().Messages())
}

func TestReply_FailureShownAsAssistantText(t *testing.T) {
	asker := &stubAsker{result: ollama.TransportError{Err: ollama.ErrNotRunning}}
	m := newTestModel(t, asker)

	m.input.SetValue("2+3")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.resolveCmd()())

	msgs := m.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.True(t, strings.HasPrefix(msgs[1].Text, ollama.ErrorMarker))
	assert.Contains(t, m.viewport.View(), "Ollama is not running")
}

// =============================================================================
// KEY TESTS
// =============================================================================

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &stubAsker{})
	require.False(t, m.HelpVisible())

	m, _ = update(t, m, runeKey('?'))
	assert.True(t, m.HelpVisible())
	assert.Contains(t, m.View(), "Instructions")
	assert.Contains(t, m.View(), "what is pH?")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.False(t, m.HelpVisible())
}

func TestHelpToggle_F1WhileTyping(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	m.input.SetValue("why")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF1})

	assert.True(t, m.HelpVisible())
	assert.Equal(t, "why", m.input.Value())
}

// Terminals that send ^H for Backspace report it as ctrl+h.
func TestCtrlHDeletesInsteadOfTogglingHelp(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	m.input.SetValue("why?")
	m.input.CursorEnd()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlH})

	assert.False(t, m.HelpVisible())
	assert.Equal(t, "why", m.input.Value())
}

func TestHelpToggle_QuestionMarkTypedInText(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	m.input.SetValue("why")
	m, _ = update(t, m, runeKey('?'))

	assert.False(t, m.HelpVisible())
	assert.Equal(t, "why?", m.input.Value())
}

func TestHelpExpandedOption(t *testing.T) {
	sess := session.New(&stubAsker{})
	m := New(sess, Options{Theme: styles.NewThemeWith(true, termenv.Ascii), HelpExpanded: true})
	assert.True(t, m.HelpVisible())
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "key %s should quit", k.String())
	}
}

func TestCopyLastAnswer(t *testing.T) {
	m := newTestModel(t, &stubAsker{})
	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	// Nothing to copy yet.
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.statusMsg, "Failed to copy")

	m.input.SetValue("2+3")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.resolveCmd()())

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(t, m, cmd())
	assert.Equal(t, "5", copied)
	assert.Equal(t, "Copied answer (1 chars): 5", m.statusMsg)
}

func TestCopyLastAnswer_StatusPreviewIsOneLine(t *testing.T) {
	answer := "Mitochondria make ATP.\nThey are the powerhouse of the cell and have their own DNA."
	m := newTestModel(t, &stubAsker{result: ollama.Answer{Text: answer}})
	m.copyFn = func(string) error { return nil }

	m.input.SetValue("function of mitochondria")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.resolveCmd()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(t, m, cmd())

	assert.NotContains(t, m.statusMsg, "\n")
	assert.Contains(t, m.statusMsg, "Mitochondria make ATP. They")
	assert.True(t, strings.HasSuffix(m.statusMsg, "..."))
}

func TestCopyLastAnswer_ClipboardError(t *testing.T) {
	m := newTestModel(t, &stubAsker{})
	m.copyFn = func(string) error { return errors.New("no clipboard utility") }

	m.input.SetValue("q")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.resolveCmd()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.statusMsg, "no clipboard utility")
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestCheckOllama(t *testing.T) {
	tests := []struct {
		name    string
		checker stubChecker
		want    string
	}{
		{"unreachable", stubChecker{err: ollama.ErrNotRunning}, "Ollama unreachable"},
		{"model missing", stubChecker{has: false}, "model not pulled"},
		{"ready", stubChecker{has: true}, "Ollama ready"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, &stubAsker{})
			m.checker = tc.checker

			m, _ = update(t, m, m.checkOllama()())
			assert.Contains(t, m.ollamaStatus, tc.want)
		})
	}
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func TestView_Idempotent(t *testing.T) {
	m := newTestModel(t, &stubAsker{})
	m.input.SetValue("q")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, m.resolveCmd()())

	first := m.View()
	second := m.View()
	assert.Equal(t, first, second)
	assert.Contains(t, first, help.Title)
	assert.Contains(t, first, help.Subtitle)
	assert.Len(t, m.Session().Messages(), 2)
}

func TestView_BeforeResize(t *testing.T) {
	m := New(session.New(&stubAsker{}), Options{Theme: styles.NewThemeWith(true, termenv.Ascii)})
	assert.Equal(t, "Loading...", m.View())
}

func TestRenderTranscript_PureAndOrdered(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)
	msgs := []model.Message{
		{Role: model.RoleUser, Text: "2+3", Timestamp: ts},
		{Role: model.RoleAssistant, Text: "5", Timestamp: ts},
		{Role: model.RoleUser, Text: "what is pH?", Timestamp: ts},
		{Role: model.RoleAssistant, Text: "❌ Error: request timed out", Timestamp: ts},
	}
	snapshot := append([]model.Message(nil), msgs...)

	first := RenderTranscript(msgs, 60)
	second := RenderTranscript(msgs, 60)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, msgs)

	iUser := strings.Index(first, "2+3")
	iPH := strings.Index(first, "what is pH?")
	iErr := strings.Index(first, "request timed out")
	assert.True(t, iUser >= 0 && iUser < iPH && iPH < iErr)
	assert.Contains(t, first, "15:04")
}

func TestRenderTranscript_Empty(t *testing.T) {
	assert.Contains(t, RenderTranscript(nil, 60), "Ask anything")
}

func TestTranscriptRenderer_Markdown(t *testing.T) {
	r := NewTranscriptRenderer(styles.NewThemeWith(true, termenv.Ascii), true)
	msgs := []model.Message{{Role: model.RoleAssistant, Text: "**Mitochondria** make ATP."}}

	out := r.Render(msgs, 60)
	assert.Contains(t, out, "Mitochondria")
	assert.Equal(t, out, r.Render(msgs, 60))
}
