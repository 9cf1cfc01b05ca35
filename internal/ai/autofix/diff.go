package autofix

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/lintro-dev/lintro/internal/workspace"
)

// diffLines splits a snippet into newline-terminated lines. Trailing
// newlines do not produce a phantom empty line, so snippets differing
// only in final-newline presence diff clean.
func diffLines(s string) []string {
	lines := splitLines(s)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// generateDiff renders a unified diff between the original and
// suggested snippets with git-style a/ b/ headers.
func generateDiff(filePath, original, suggested string) string {
	rel := workspace.DisplayPath(filePath)
	ud := difflib.UnifiedDiff{
		A:        diffLines(original),
		B:        diffLines(suggested),
		FromFile: "a/" + rel,
		ToFile:   "b/" + rel,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(text, "\n")
}
