// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor/internal/help"
	"github.com/jeranaias/tutor/internal/session"
	"github.com/jeranaias/tutor/internal/ui/styles"
)

const (
	inputCharLimit   = 2000
	statusCheckTTL   = 3 * time.Second
	copyPreviewRunes = 40
)

// StatusChecker probes the inference server at startup.
// *ollama.Client satisfies it.
type StatusChecker interface {
	CheckRunning(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	HasModel(names []string) bool
}

// Options configures a chat Model.
type Options struct {
	Theme        *styles.Theme
	Markdown     bool
	HelpExpanded bool
	ModelName    string

	// Checker is probed once from Init. Nil skips the check.
	Checker StatusChecker

	// Context is passed to Session.Resolve. Defaults to Background.
	Context context.Context
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	session  *session.Session
	theme    *styles.Theme
	renderer *TranscriptRenderer
	keyMap   KeyMap
	checker  StatusChecker
	ctx      context.Context

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	awaiting  bool
	showHelp  bool
	modelName string

	ollamaStatus string
	statusMsg    string

	copyFn func(string) error
}

// New creates a chat model bound to sess.
func New(sess *session.Session, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = help.Placeholder
	ti.CharLimit = inputCharLimit
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Placeholder
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(styles.ThinkingSpinner),
		spinner.WithStyle(theme.Spinner),
	)

	return Model{
		session:   sess,
		theme:     theme,
		renderer:  NewTranscriptRenderer(theme, opts.Markdown),
		keyMap:    DefaultKeyMap(),
		checker:   opts.Checker,
		ctx:       ctx,
		viewport:  viewport.New(80, 20),
		input:     ti,
		spinner:   sp,
		showHelp:  opts.HelpExpanded,
		modelName: opts.ModelName,
		copyFn:    clipboard.WriteAll,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the Ollama reachability check.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.checker != nil {
		cmds = append(cmds, m.checkOllama())
	}
	return tea.Batch(cmds...)
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case OllamaStatusMsg:
		return m.handleOllamaStatus(msg)

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "Failed to copy: " + msg.err.Error()
		} else {
			m.statusMsg = fmt.Sprintf("Copied answer (%d chars): %s", msg.chars, msg.preview)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.awaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.ready = true

	m.input.Width = max(msg.Width-8, 10)
	m.layout()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help) && (msg.String() != "?" || m.input.Value() == ""):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m, m.copyLastAnswer()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	if m.awaiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the session. While a reply is pending, and for
// blank input, it does nothing.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.awaiting {
		return m, nil
	}

	if _, err := m.session.Submit(m.input.Value()); err != nil {
		if errors.Is(err, session.ErrClosed) {
			return m, tea.Quit
		}
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.awaiting = true
	m.statusMsg = ""
	m.refreshTranscript()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.resolveCmd(), m.spinner.Tick)
}

// resolveCmd runs the pending turn off the UI goroutine.
func (m Model) resolveCmd() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		return ReplyMsg{Message: sess.Resolve(ctx)}
	}
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.awaiting = false
	m.input.Focus()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, textinput.Blink
}

func (m Model) handleOllamaStatus(msg OllamaStatusMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err != nil:
		m.ollamaStatus = styles.RenderWarning("Ollama unreachable")
		m.statusMsg = "Start Ollama with `ollama serve`; questions will fail until then"
	case msg.ModelMissing:
		m.ollamaStatus = styles.RenderWarning("model not pulled")
		m.statusMsg = "Run `ollama pull " + m.modelName + "`"
	default:
		m.ollamaStatus = styles.RenderSuccess("Ollama ready")
	}
	return m, nil
}

func (m Model) checkOllama() tea.Cmd {
	checker, ctx := m.checker, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, statusCheckTTL)
		defer cancel()

		if err := checker.CheckRunning(ctx); err != nil {
			return OllamaStatusMsg{Err: err}
		}
		names, err := checker.ListModels(ctx)
		if err != nil {
			return OllamaStatusMsg{}
		}
		return OllamaStatusMsg{ModelMissing: !checker.HasModel(names)}
	}
}

func (m Model) copyLastAnswer() tea.Cmd {
	transcript := m.session.Transcript()
	if transcript.IsEmpty() {
		return func() tea.Msg {
			return copyResultMsg{err: errors.New("no answer yet")}
		}
	}
	reply, ok := transcript.LastAssistant()
	if !ok || reply.Text == "" {
		return func() tea.Msg {
			return copyResultMsg{err: errors.New("no answer yet")}
		}
	}
	copyFn := m.copyFn
	return func() tea.Msg {
		return copyResultMsg{
			err:     copyFn(reply.Text),
			chars:   len([]rune(reply.Text)),
			preview: reply.Preview(copyPreviewRunes),
		}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport to the space left by the fixed sections.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	reserved := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	if m.showHelp {
		reserved += lipgloss.Height(m.renderHelpPanel())
	}

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)
}

// refreshTranscript re-renders the session transcript into the viewport.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderer.Render(m.session.Messages(), m.viewport.Width))
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Awaiting reports whether a reply is pending.
func (m Model) Awaiting() bool {
	return m.awaiting
}

// HelpVisible reports whether the instructions panel is open.
func (m Model) HelpVisible() bool {
	return m.showHelp
}

// Session returns the bound session.
func (m Model) Session() *session.Session {
	return m.session
}
