// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument splitting shared by every tutor command.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits raw arguments into flags and positional arguments.
// It handles:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - "--" ends flag parsing; everything after it is positional
//
// Names registered as boolean never consume the following argument, so
// "--verbose what is pH" keeps "what" positional.
type ArgParser struct {
	subcommand string            // First positional arg
	flags      map[string]string // String flags (--key=value)
	boolFlags  map[string]bool   // Boolean flags (--verbose)
	order      []string          // Flag names in the order seen
	positional []string          // All positional arguments including subcommand
	raw        []string          // Original raw arguments
}

// NewArgParser parses raw. boolNames lists flags that never take a value.
//
// Example:
//
//	p := NewArgParser([]string{"ask", "--model", "phi3", "--no-markdown", "2+2"}, "no-markdown")
//	p.Subcommand()             // "ask"
//	p.Flag("model")            // "phi3"
//	p.BoolFlag("no-markdown")  // true
//	p.PositionalFrom(1)        // ["2+2"]
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	isBool := make(map[string]bool, len(boolNames))
	for _, name := range boolNames {
		isBool[name] = true
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}

		// A lone "-" or anything not starting with "-" is positional.
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			parser.positional = append(parser.positional, arg)
			i++
			continue
		}

		// --flag=value
		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			parser.order = append(parser.order, name)
			if isBool[name] || value == "true" || value == "false" {
				parser.boolFlags[name] = value != "false"
			} else {
				parser.flags[name] = value
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		parser.order = append(parser.order, name)

		if !isBool[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			parser.flags[name] = raw[i+1]
			i += 2
			continue
		}

		parser.boolFlags[name] = true
		i++
	}

	if len(parser.positional) > 0 {
		parser.subcommand = parser.positional[0]
	}

	return parser
}

// Subcommand returns the first positional argument.
// Returns empty string if no positional arguments.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, trying each name in turn.
// Returns empty string if none is set.
//
//	p.Flag("model", "m")  // --model phi3 or -m phi3
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if val, ok := p.flags[strings.TrimLeft(name, "-")]; ok {
			return val
		}
	}
	return ""
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns the first set flag of names as a positive integer.
// It returns 0 and a nil error when none is set.
func (p *ArgParser) FlagInt(names ...string) (int, error) {
	val := p.Flag(names...)
	if val == "" {
		return 0, nil
	}
	return ParseIntWithValidation(val, "--"+strings.TrimLeft(names[0], "-"))
}

// BoolFlag reports whether any of names was given as a boolean flag.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[strings.TrimLeft(name, "-")] {
			return true
		}
	}
	return false
}

// Positional returns the positional argument at the given index.
// Returns empty string if index out of bounds. Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting from index.
//
//	"ask what is pH" -> PositionalFrom(1) == ["what", "is", "pH"]
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag returns true if the flag exists (either as string or bool flag).
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// FlagNames returns every flag name seen, in order.
func (p *ArgParser) FlagNames() []string {
	return p.order
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// HELPERS
// =============================================================================

// ParseIntWithValidation parses a positive integer.
func ParseIntWithValidation(s string, fieldName string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", fieldName, err)
	}

	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", fieldName, val)
	}

	return val, nil
}

// JoinPositionalArgs joins positional arguments from startIndex into one string.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
