// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based chat for terminals where the TUI is unwanted.
//
// Command: chat (alias: repl)
//
// Interactive Commands (during chat):
//
//	/help, /h           Show instructions and commands
//	/history            Show this session's messages
//	/status, /s         Show session statistics
//	/quit, /q           Exit chat
//	Ctrl+C, Ctrl+D      Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/tutor/internal/help"
	"github.com/jeranaias/tutor/internal/model"
	"github.com/jeranaias/tutor/internal/session"
	"github.com/jeranaias/tutor/internal/util"
)

const historyPreviewWidth = 100

// LineReader reads one line of input. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// =============================================================================
// REPL
// =============================================================================

// REPL reads questions line by line and prints each reply.
type REPL struct {
	sess   *session.Session
	in     LineReader
	out    io.Writer
	render *answerRenderer
	model  string
}

// NewREPL creates a REPL over sess. Line history lives only in memory.
func NewREPL(sess *session.Session, in LineReader, out io.Writer, markdown bool, modelName string) *REPL {
	return &REPL{
		sess:   sess,
		in:     in,
		out:    out,
		render: newAnswerRenderer(markdown, GetTerminalWidth()),
		model:  modelName,
	}
}

// HandleChat runs the line REPL on the terminal.
func HandleChat(ctx context.Context, app *App, w io.Writer) error {
	if err := RequiresTTY("start chat"); err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	sess := app.NewSession()
	defer sess.Close()

	repl := NewREPL(sess, line, w, app.Config.UI.Markdown, app.Config.Inference.Model)
	return repl.Run(ctx)
}

// Run loops until /quit, end of input, Ctrl+C or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.printWelcome()

	for {
		if ctx.Err() != nil {
			break
		}

		input, err := r.in.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if !r.handleSlashCommand(input) {
				break
			}
			continue
		}

		r.turn(ctx, input)
	}

	fmt.Fprintln(r.out, MutedStyle.Render("Goodbye!"))
	return nil
}

// turn runs one question and prints the reply.
func (r *REPL) turn(ctx context.Context, input string) {
	fmt.Fprintln(r.out, MutedStyle.Render("Thinking..."))

	_, reply, err := r.sess.Turn(ctx, input)
	if err != nil {
		fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("Error:"), err)
		return
	}
	fmt.Fprintf(r.out, "%s\n%s\n\n", TutorStyle.Render(model.RoleAssistant.DisplayName()+":"), r.render.Render(reply.Text))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command and reports whether the
// loop should continue.
func (r *REPL) handleSlashCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?", "/":
		r.printHelp()
	case "/history":
		r.printHistory()
	case "/status", "/s":
		r.printStatus()
	case "/quit", "/q", "/exit":
		return false
	default:
		fmt.Fprintf(r.out, "%s unknown command %s (type /help for commands)\n",
			WarningStyle.Render("[Warning]"), parts[0])
	}
	return true
}

// =============================================================================
// DISPLAY
// =============================================================================

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, TitleStyle.Render(help.Title+" · "+help.Subtitle))
	fmt.Fprintln(r.out, MutedStyle.Render(strings.Repeat("─", 30)))
	if r.model != "" {
		fmt.Fprintln(r.out, RenderField("Model:", r.model))
	}
	fmt.Fprintln(r.out, MutedStyle.Render("Type a question and press Enter. Commands: /help, /quit"))
	fmt.Fprintln(r.out)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, TitleStyle.Render(help.PanelTitle))
	fmt.Fprint(r.out, help.Plain())
	fmt.Fprintln(r.out)

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show this session's messages"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Fprintf(r.out, "  %s  %s\n",
			ValueStyle.Render(util.PadRight(c.cmd, 12)),
			MutedStyle.Render(c.desc))
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) printHistory() {
	msgs := r.sess.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, MutedStyle.Render("[No messages yet]"))
		return
	}

	for i, msg := range msgs {
		label := PromptStyle.Render(msg.Role.DisplayName())
		if msg.IsAssistant() {
			label = TutorStyle.Render(msg.Role.DisplayName())
		}
		text := util.TruncateWidth(util.OneLine(msg.Text), historyPreviewWidth)
		fmt.Fprintf(r.out, "  %d. %s: %s\n", i+1, label, text)
	}
}

func (r *REPL) printStatus() {
	st := r.sess.GetStatus()
	fmt.Fprintln(r.out, RenderField("Session:", st.SessionID))
	fmt.Fprintln(r.out, RenderField("Duration:", st.Duration))
	fmt.Fprintln(r.out, RenderField("Turns:", fmt.Sprint(st.Turns)))
	fmt.Fprintln(r.out, RenderField("Model:", r.model))
}
