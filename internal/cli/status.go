// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Ollama reachability check.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// statusTimeout bounds each request made by status.
const statusTimeout = 5 * time.Second

// StatusReport is the --json output of status.
type StatusReport struct {
	Endpoint    string   `json:"endpoint"`
	Model       string   `json:"model"`
	Running     bool     `json:"running"`
	ModelPulled bool     `json:"model_pulled"`
	Models      []string `json:"models,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// CollectStatus queries Ollama for reachability and installed models.
func CollectStatus(ctx context.Context, app *App) StatusReport {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	report := StatusReport{
		Endpoint: app.Client.Config().Endpoint,
		Model:    app.Client.Model(),
	}

	if err := app.Client.CheckRunning(ctx); err != nil {
		report.Error = err.Error()
		return report
	}
	report.Running = true

	models, err := app.Client.ListModels(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Models = models
	report.ModelPulled = app.Client.HasModel(models)
	return report
}

// HandleStatus prints the status report. It fails when Ollama is not
// reachable.
func HandleStatus(ctx context.Context, app *App, args Args, w io.Writer) error {
	report := CollectStatus(ctx, app)

	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write status: %w", err)
		}
	} else {
		printStatusReport(w, report)
	}

	if !report.Running {
		return ErrOllamaUnavailable
	}
	return nil
}

func printStatusReport(w io.Writer, r StatusReport) {
	fmt.Fprintln(w, TitleStyle.Render("tutor status"))
	fmt.Fprintln(w, RenderField("Endpoint:", r.Endpoint))
	fmt.Fprintln(w, RenderField("Model:", r.Model))

	switch {
	case !r.Running:
		fmt.Fprintln(w, LabelStyle.Render("Ollama:")+" "+ErrorStyle.Render("not reachable"))
		fmt.Fprintln(w, MutedStyle.Render("Start it with `ollama serve`."))
	case r.Error != "":
		fmt.Fprintln(w, LabelStyle.Render("Ollama:")+" "+SuccessStyle.Render("running"))
		fmt.Fprintln(w, LabelStyle.Render("Models:")+" "+WarningStyle.Render(r.Error))
	default:
		fmt.Fprintln(w, LabelStyle.Render("Ollama:")+" "+SuccessStyle.Render("running"))
		if r.ModelPulled {
			fmt.Fprintln(w, LabelStyle.Render("Pulled:")+" "+SuccessStyle.Render("yes"))
		} else {
			fmt.Fprintln(w, LabelStyle.Render("Pulled:")+" "+WarningStyle.Render("no")+
				MutedStyle.Render(" (run `ollama pull "+r.Model+"`)"))
		}
		if len(r.Models) > 0 {
			fmt.Fprintln(w, RenderField("Installed:", strings.Join(r.Models, ", ")))
		}
	}
}
