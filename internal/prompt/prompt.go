// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the text sent to the model for a single turn.
//
// Each turn is stateless: the fixed tutoring instruction is followed by
// the user's input and an open assistant cue. Earlier turns are never
// replayed.
package prompt

import "strings"

// SystemInstruction is the fixed tutoring instruction prepended to every
// turn. Its text, including the leading and trailing newline, is part of
// the model contract and must not be reformatted.
const SystemInstruction = `
You are an AI tutor specializing in Mathematics and Science.

RULES:
1. For math expressions such as:
   - 2+3
   - 10*(5-2)
   - (4^2) + 6 / 3
   ALWAYS answer ONLY with the final numeric answer. No words.

2. Do NOT explain math unless the user asks:
   - explain
   - why
   - show steps

3. For science questions (physics, chemistry, biology, astronomy):
   - Provide short, clear, accurate answers.
   - No long paragraphs.
   - No philosophical or random text.

4. If user asks "explain deeply", then give a longer explanation.

5. If the question is unclear, ask for clarification.
`

const (
	userLabel = "\nUser: "
	aiCue     = "\nAI:"
)

// Compose returns instruction + "\nUser: " + userText + "\nAI:".
// userText is embedded verbatim; no escaping or trimming is applied.
func Compose(instruction, userText string) string {
	var sb strings.Builder
	sb.Grow(len(instruction) + len(userLabel) + len(userText) + len(aiCue))
	sb.WriteString(instruction)
	sb.WriteString(userLabel)
	sb.WriteString(userText)
	sb.WriteString(aiCue)
	return sb.String()
}
