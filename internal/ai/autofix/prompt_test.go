package autofix

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func TestBuildFixPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildFixPrompt(promptData{
		Tool:         "ruff",
		Code:         "E501",
		File:         "src/app.py",
		Line:         12,
		Message:      "line too long (104 > 100)",
		Context:      "def main():\n    value = compute(argument_one, argument_two, argument_three)\n    return value",
		ContextStart: 10,
		ContextEnd:   14,
	})

	require.Contains(t, prompt, "Tool: ruff")
	require.Contains(t, prompt, "Error code: E501")
	require.Contains(t, prompt, "File: src/app.py")
	require.Contains(t, prompt, "Line: 12")
	require.Contains(t, prompt, "lines 10-14")
	require.Contains(t, prompt, `"risk_level"`)
	snaps.WithConfig(snaps.Ext(".md")).MatchStandaloneSnapshot(t, prompt)
}

func TestBuildFixPromptNormalizesContext(t *testing.T) {
	t.Parallel()

	prompt := buildFixPrompt(promptData{
		Tool:         "ruff",
		Code:         "W291",
		File:         "a.py",
		Line:         1,
		Message:      "trailing whitespace",
		Context:      "x = 1 \r\ny = 2 ",
		ContextStart: 1,
		ContextEnd:   2,
	})

	require.NotContains(t, prompt, "\r\n")
	// The fenced block always closes on its own line, even when the
	// context has no trailing newline.
	require.Contains(t, prompt, "x = 1 \ny = 2 \n```")
}

func TestBuildFixPromptEmptyContext(t *testing.T) {
	t.Parallel()

	prompt := buildFixPrompt(promptData{
		Tool:    "ruff",
		Code:    "F401",
		File:    "b.py",
		Line:    3,
		Message: "imported but unused",
	})

	require.Contains(t, prompt, "lines 0-0")
	require.Contains(t, prompt, "```\n```")
}

func TestFixSystemPrompt(t *testing.T) {
	t.Parallel()

	require.True(t, strings.Contains(fixSystemPrompt, "JSON"))
	require.False(t, strings.HasSuffix(fixSystemPrompt, "\n"))
}
