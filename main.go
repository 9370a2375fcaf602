// tutor - an offline math and science tutor backed by a local Ollama model.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor/internal/cli"
	"github.com/jeranaias/tutor/internal/server"
	"github.com/jeranaias/tutor/internal/ui/chat"
	"github.com/jeranaias/tutor/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches one invocation and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		cli.DisplayError(stderr, err)
		return cli.GetExitCode(err)
	}

	// Commands that never talk to Ollama.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(stdout)
		return cli.ExitSuccess
	case cli.CmdConfig:
		err := cli.HandleConfig(args, stdout)
		cli.DisplayError(stderr, err)
		return cli.GetExitCode(err)
	}

	app, err := cli.Setup(args)
	if err != nil {
		cli.DisplayError(stderr, err)
		return cli.GetExitCode(err)
	}
	defer app.Close()

	if cmd == cli.CmdDefault {
		cmd = cli.CommandForMode(app.Config.UI.Mode)
	}
	app.Logger.Debug("starting", "command", cmd.String(), "version", Version)

	switch cmd {
	case cli.CmdTUI:
		err = runTUI(ctx, app)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, app, stdout)
	case cli.CmdServe:
		err = runServe(ctx, app, stdout)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, app, args, stdout)
	case cli.CmdStatus:
		err = cli.HandleStatus(ctx, app, args, stdout)
	default:
		err = &cli.UsageError{Msg: fmt.Sprintf("command %s cannot run here", cmd)}
	}

	if err != nil {
		app.Logger.Error("command failed", "command", cmd.String(), "error", err)
		cli.DisplayError(stderr, err)
	}
	return cli.GetExitCode(err)
}

// =============================================================================
// FRONT-ENDS
// =============================================================================

// runTUI runs the full-screen chat until the user quits or ctx is done.
func runTUI(ctx context.Context, app *cli.App) error {
	if err := cli.RequiresTTY("start the TUI"); err != nil {
		return err
	}

	sess := app.NewSession()
	defer sess.Close()

	m := chat.New(sess, chat.Options{
		Theme:        styles.NewTheme(),
		Markdown:     app.Config.UI.Markdown,
		HelpExpanded: app.Config.UI.HelpExpanded,
		ModelName:    app.Config.Inference.Model,
		Checker:      app.Client,
		Context:      ctx,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// runServe serves the web UI for one session until ctx is done.
func runServe(ctx context.Context, app *cli.App, w io.Writer) error {
	sess := app.NewSession()
	defer sess.Close()

	srv := server.New(app.Config.Server.Addr, sess,
		server.WithChecker(app.Client),
		server.WithLogger(app.Logger),
		server.WithVersion(Version),
	)
	if err := srv.Listen(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s listening on %s\n",
		cli.TitleStyle.Render("Offline AI Tutor"),
		cli.ValueStyle.Render("http://"+srv.Addr()))
	fmt.Fprintln(w, cli.MutedStyle.Render("Press Ctrl+C to stop."))

	return srv.Run(ctx)
}
