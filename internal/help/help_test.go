// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	md := Markdown()

	assert.Contains(t, md, "**You can ask:**")
	assert.Contains(t, md, "- Math calculations → `2+3`, `10*(5-2)`")
	assert.Contains(t, md, "- Astronomy → `what is a black hole?`")
	assert.Contains(t, md, MathRule)
	assert.Contains(t, md, "Explain step-by-step")
}

func TestPlain_HasNoMarkup(t *testing.T) {
	plain := Plain()

	assert.NotContains(t, plain, "**")
	assert.NotContains(t, plain, "`")
	assert.Contains(t, plain, "Chemistry: what is pH?")
	assert.Equal(t, Markdown(), Markdown())
}
