// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command and flag parsing for tutor.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/tutor/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdDefault Command = iota // front-end chosen by ui.mode
	CmdTUI
	CmdChat
	CmdServe
	CmdAsk
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdDefault:
		return "default"
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdServe:
		return "serve"
	case CmdAsk:
		return "ask"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// CommandForMode maps a ui.mode value to its front-end command.
func CommandForMode(mode string) Command {
	switch mode {
	case config.ModeREPL:
		return CmdChat
	case config.ModeWeb:
		return CmdServe
	default:
		return CmdTUI
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model      string
	Endpoint   string
	Timeout    int // seconds, 0 when unset
	ConfigPath string
	Addr       string
	NoMarkdown bool
	Verbose    bool
	JSON       bool
	Force      bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args after the command word
	Raw []string
}

// valueFlags take an argument; boolFlags never do.
var (
	valueFlags = []string{"model", "m", "endpoint", "e", "timeout", "t", "config", "c", "addr"}
	boolFlags  = []string{"no-markdown", "verbose", "v", "json", "force", "help", "h", "version"}
)

const usageText = `tutor - offline math and science tutor backed by a local Ollama model

Usage:
  tutor                        Start the front-end set by ui.mode (TUI by default)
  tutor tui                    Full-screen chat
  tutor chat                   Line-based chat (requires a terminal)
  tutor serve                  Local web UI on --addr (default 127.0.0.1:8501)
  tutor ask "question"         Ask one question and print the answer
  tutor status                 Check that Ollama is running and the model is pulled
  tutor config show            Print the effective configuration
  tutor config path            Print the config file path
  tutor config init [--force]  Write a default config file
  tutor config get KEY         Print one setting (e.g. inference.model)
  tutor config set KEY VALUE   Change one setting in the config file
  tutor version                Show version information
  tutor help                   Show this help

Flags:
  -m, --model NAME             Ollama model (default llama3.2)
  -e, --endpoint URL           Generate endpoint (default http://localhost:11434/api/generate)
  -t, --timeout SECS           Request timeout in seconds (default 60)
  -c, --config PATH            Config file (default ~/.tutor/config.toml)
      --addr HOST:PORT         Listen address for serve
      --no-markdown            Show answers as plain text
  -v, --verbose                Debug logging
      --json                   JSON output for ask, status and config show

Environment:
  TUTOR_ENDPOINT, TUTOR_MODEL, TUTOR_TIMEOUT_SECS, TUTOR_MODE, TUTOR_ADDR,
  TUTOR_LOG_LEVEL, TUTOR_LOG_FILE, OLLAMA_HOST. A .env file in the working
  directory is read first.

Examples:
  tutor ask "what is 12 * 7"
  echo "balance H2 + O2 -> H2O" | tutor ask
  tutor --model phi3 chat
  tutor serve --addr 127.0.0.1:9000

Version: %s
`

// PrintUsage writes the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "tutor version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name).
// Flags may appear before or after the command word.
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlags...)

	args, err := parseFlags(p)
	if err != nil {
		return CmdHelp, args, err
	}

	if p.BoolFlag("help", "h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	if p.PositionalCount() == 0 {
		return CmdDefault, args, nil
	}

	word := strings.ToLower(p.Subcommand())
	rest := p.PositionalFrom(1)
	args.Raw = rest

	switch word {
	case "tui":
		return CmdTUI, args, nil

	case "chat", "repl":
		return CmdChat, args, nil

	case "serve", "web":
		return CmdServe, args, nil

	case "ask", "a":
		args.Query = strings.TrimSpace(strings.Join(rest, " "))
		return CmdAsk, args, nil

	case "status", "s":
		return CmdStatus, args, nil

	case "config":
		if err := parseConfigArgs(&args, rest); err != nil {
			return CmdConfig, args, err
		}
		return CmdConfig, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, &UsageError{Msg: fmt.Sprintf("unknown command %q", word)}
	}
}

// parseFlags fills the global flags and rejects unknown names.
func parseFlags(p *ArgParser) (Args, error) {
	known := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, n := range valueFlags {
		known[n] = true
	}
	for _, n := range boolFlags {
		known[n] = true
	}
	for _, name := range p.FlagNames() {
		if !known[name] {
			return Args{}, &UsageError{Msg: "unknown flag --" + name}
		}
	}

	for _, name := range valueFlags {
		if p.BoolFlag(name) {
			return Args{}, &UsageError{Msg: "flag --" + name + " requires a value"}
		}
	}

	timeout, err := p.FlagInt("timeout", "t")
	if err != nil {
		return Args{}, &UsageError{Msg: err.Error()}
	}

	return Args{
		Model:      p.Flag("model", "m"),
		Endpoint:   p.Flag("endpoint", "e"),
		Timeout:    timeout,
		ConfigPath: p.Flag("config", "c"),
		Addr:       p.Flag("addr"),
		NoMarkdown: p.BoolFlag("no-markdown"),
		Verbose:    p.BoolFlag("verbose", "v"),
		JSON:       p.BoolFlag("json"),
		Force:      p.BoolFlag("force"),
	}, nil
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, rest []string) error {
	if len(rest) == 0 {
		args.Subcommand = "show"
		return nil
	}
	args.Subcommand = strings.ToLower(rest[0])

	switch args.Subcommand {
	case "show", "path", "init":
		return nil
	case "get":
		if len(rest) < 2 {
			return &UsageError{Msg: "usage: tutor config get KEY"}
		}
		args.ConfigKey = rest[1]
		return nil
	case "set":
		if len(rest) < 3 {
			return &UsageError{Msg: "usage: tutor config set KEY VALUE"}
		}
		args.ConfigKey = rest[1]
		args.ConfigVal = strings.Join(rest[2:], " ")
		return nil
	default:
		return &UsageError{Msg: fmt.Sprintf("unknown config subcommand %q", args.Subcommand)}
	}
}

// ApplyFlags overlays command-line flags onto cfg. Flags win over the file
// and the environment.
func ApplyFlags(cfg *config.Config, args Args) {
	if args.Endpoint != "" {
		cfg.Inference.Endpoint = args.Endpoint
	}
	if args.Model != "" {
		cfg.Inference.Model = args.Model
	}
	if args.Timeout > 0 {
		cfg.Inference.TimeoutSecs = args.Timeout
	}
	if args.Addr != "" {
		cfg.Server.Addr = args.Addr
	}
	if args.NoMarkdown {
		cfg.UI.Markdown = false
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
}
