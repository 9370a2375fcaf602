// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Examples:
//
//	tutor ask "what is 12 * 7"
//	tutor ask --no-markdown what is pH
//	echo "2^10" | tutor ask
//	tutor ask --json "define inertia"
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/tutor/internal/ollama"
	"github.com/jeranaias/tutor/internal/session"
)

// maxStdinQuery bounds a question read from a pipe.
const maxStdinQuery = 64 * 1024

// stdin is the source for piped questions.
var stdin io.Reader = os.Stdin

// AskResult is the --json output of ask.
type AskResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Failed   bool   `json:"failed"`
	Model    string `json:"model"`
}

// HandleAsk runs a single turn and prints the reply to w. A reply carrying
// the error marker is printed and reported as ErrInferenceFailed.
func HandleAsk(ctx context.Context, app *App, args Args, w io.Writer) error {
	query, err := readQuery(args.Query)
	if err != nil {
		return err
	}

	sess := app.NewSession()
	defer sess.Close()

	_, reply, err := sess.Turn(ctx, query)
	if errors.Is(err, session.ErrEmptyInput) {
		return &UsageError{Msg: "ask needs a question, e.g. tutor ask \"what is 2+2\""}
	}
	if err != nil {
		return err
	}

	failed := strings.HasPrefix(reply.Text, ollama.ErrorMarker)

	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(AskResult{
			Question: query,
			Answer:   reply.Text,
			Failed:   failed,
			Model:    app.Config.Inference.Model,
		}); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	} else {
		r := newAnswerRenderer(app.Config.UI.Markdown, GetTerminalWidth())
		fmt.Fprintln(w, r.Render(reply.Text))
	}

	if failed {
		return ErrInferenceFailed
	}
	return nil
}

// readQuery returns the question from the arguments, or from stdin when
// no question was given and stdin is a pipe.
func readQuery(query string) (string, error) {
	if strings.TrimSpace(query) != "" || IsTTY() {
		return query, nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("failed to read question from stdin: %w", err)
	}
	return string(data), nil
}
