// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the Ollama generate API.
//
// The client issues one synchronous, non-streaming request per turn and
// never returns a Go error from Ask. Every outcome is a Result value:
//
//   - Answer: the model's reply text
//   - UnrecognizedShape: a JSON body with neither "result" nor "response"
//   - TransportError: the request failed, timed out, or the body was not JSON
//
// # Usage
//
//	client := ollama.NewClient()
//	res := client.Ask(ctx, prompt.Compose(prompt.SystemInstruction, "2+3"))
//	fmt.Println(res.Display())
//
// Callers that need to branch on the outcome use a type switch:
//
//	switch r := res.(type) {
//	case ollama.Answer:
//	    use(r.Text)
//	case ollama.TransportError:
//	    if ollama.IsNotRunning(r.Err) { ... }
//	}
package ollama
