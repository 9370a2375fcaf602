// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package help holds the static branding and instructions text shown by
// every front-end.
package help

import "strings"

// Branding.
const (
	Title       = "Offline AI Tutor"
	Subtitle    = "Math + Science • 100% Offline"
	Footer      = "Made with ❤️ • Offline AI Tutor"
	PoweredBy   = "Powered locally by Ollama"
	Placeholder = "Ask a math or science question..."
	PanelTitle  = "ℹ️ Instructions"
)

// Example is one kind of question the tutor handles.
type Example struct {
	Topic   string   `json:"topic"`
	Samples []string `json:"samples"`
}

// Examples lists the question kinds in display order.
var Examples = []Example{
	{Topic: "Math calculations", Samples: []string{"2+3", "10*(5-2)"}},
	{Topic: "Math steps", Samples: []string{"explain 25*4"}},
	{Topic: "Physics", Samples: []string{"why sky is blue?"}},
	{Topic: "Chemistry", Samples: []string{"what is pH?"}},
	{Topic: "Biology", Samples: []string{"function of mitochondria"}},
	{Topic: "Astronomy", Samples: []string{"what is a black hole?"}},
}

// Rules are the usage notes shown under the examples.
var Rules = []string{
	"Works 100% offline using Ollama.",
	"Ask only one question at a time for best results.",
	`For long, complex answers, mention "I want a long explanation" or "Explain step-by-step".`,
}

// MathRule explains the bare-expression behavior.
const MathRule = "If you enter only numbers/equations, bot gives only the final answer."

// OfflineNote describes where answers come from.
const OfflineNote = "Works without internet using Ollama."

// Markdown returns the instructions as markdown, for glamour and the web UI.
func Markdown() string {
	var sb strings.Builder
	sb.WriteString("**You can ask:**\n\n")
	for _, ex := range Examples {
		sb.WriteString("- " + ex.Topic + " → ")
		for i, s := range ex.Samples {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("`" + s + "`")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n**Math rule:**\n→ " + MathRule + "\n")
	sb.WriteString("\n**Offline:**\n→ " + OfflineNote + "\n")
	sb.WriteString("\n**General rules:**\n\n")
	for _, r := range Rules {
		sb.WriteString("- " + r + "\n")
	}
	return sb.String()
}

// Plain returns the instructions without markdown markup.
func Plain() string {
	var sb strings.Builder
	sb.WriteString("You can ask:\n")
	for _, ex := range Examples {
		sb.WriteString("  " + ex.Topic + ": " + strings.Join(ex.Samples, ", ") + "\n")
	}
	sb.WriteString("\nMath rule: " + MathRule + "\n")
	sb.WriteString("Offline: " + OfflineNote + "\n")
	sb.WriteString("\nGeneral rules:\n")
	for _, r := range Rules {
		sb.WriteString("  - " + r + "\n")
	}
	return sb.String()
}
