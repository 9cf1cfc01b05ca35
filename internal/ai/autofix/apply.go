package autofix

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lintro-dev/lintro/internal/workspace"
)

// DefaultSearchRadius bounds how many lines above and below the
// reported line ApplyFix searches for the original snippet.
const DefaultSearchRadius = 5

// ApplyOptions controls how fix suggestions are written back to disk.
type ApplyOptions struct {
	// WorkspaceRoot, when non-empty, restricts writes to files under it.
	WorkspaceRoot string

	// AutoApply disables the first-occurrence fallback so unattended
	// runs only ever patch the exact reported location.
	AutoApply bool

	// SearchRadius is the maximum number of lines above and below the
	// reported line to search for the original snippet. Zero or
	// negative means DefaultSearchRadius.
	SearchRadius int
}

// ApplyFix writes a single suggestion to its file and reports whether
// the write happened.
//
// The original snippet is matched at the closest position to the
// reported line so that identical code elsewhere in the file is left
// alone. When line targeting fails and AutoApply is off, the first
// occurrence of the snippet is replaced instead.
func ApplyFix(s *FixSuggestion, opts ApplyOptions) bool {
	radius := opts.SearchRadius
	if radius <= 0 {
		radius = DefaultSearchRadius
	}

	path := s.File
	if opts.WorkspaceRoot != "" {
		resolved, ok := workspace.ResolveFile(s.File, opts.WorkspaceRoot)
		if !ok {
			return false
		}
		path = resolved
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := string(data)
	lines := splitKeepEnds(content)

	originalLines := splitKeepEnds(s.OriginalCode)
	if len(originalLines) == 0 {
		return false
	}
	// Normalize the trailing newline so the last snippet line compares
	// equal to a full file line.
	if !strings.HasSuffix(originalLines[len(originalLines)-1], "\n") {
		originalLines[len(originalLines)-1] += "\n"
	}

	targetIdx := s.Line - 1 // 0-based
	if targetIdx < 0 {
		targetIdx = 0
	}
	searchOrder := []int{targetIdx}
	for offset := 1; offset <= radius; offset++ {
		if targetIdx-offset >= 0 {
			searchOrder = append(searchOrder, targetIdx-offset)
		}
		if targetIdx+offset < len(lines) {
			searchOrder = append(searchOrder, targetIdx+offset)
		}
	}

	for _, start := range searchOrder {
		end := start + len(originalLines)
		if end > len(lines) {
			continue
		}
		window := lines[start:end]
		if !windowMatches(window, originalLines) {
			continue
		}

		suggestedLines := splitKeepEnds(s.SuggestedCode)
		if len(suggestedLines) > 0 && len(window) > 0 &&
			strings.HasSuffix(window[len(window)-1], "\n") &&
			!strings.HasSuffix(suggestedLines[len(suggestedLines)-1], "\n") {
			suggestedLines[len(suggestedLines)-1] += "\n"
		}

		var b strings.Builder
		for _, l := range lines[:start] {
			b.WriteString(l)
		}
		for _, l := range suggestedLines {
			b.WriteString(l)
		}
		for _, l := range lines[end:] {
			b.WriteString(l)
		}
		return os.WriteFile(path, []byte(b.String()), 0o644) == nil
	}

	// Fallback: first-occurrence string replacement. This may patch the
	// wrong spot if the snippet appears earlier in the file, so
	// auto-apply paths skip it.
	if !opts.AutoApply && strings.Contains(content, s.OriginalCode) {
		slog.Debug("line-targeted replacement failed, falling back to first-occurrence string replacement",
			"file", s.File, "line", s.Line)
		replaced := strings.Replace(content, s.OriginalCode, s.SuggestedCode, 1)
		return os.WriteFile(path, []byte(replaced), 0o644) == nil
	}

	return false
}

// ApplyFixes applies each suggestion in order and returns the ones
// that were written successfully.
func ApplyFixes(suggestions []*FixSuggestion, opts ApplyOptions) []*FixSuggestion {
	var applied []*FixSuggestion
	for _, s := range suggestions {
		if ApplyFix(s, opts) {
			applied = append(applied, s)
		}
	}
	return applied
}

// windowMatches reports whether a window of file lines equals the
// snippet lines, tolerating a missing newline on the final file line.
func windowMatches(window, original []string) bool {
	if len(window) != len(original) {
		return false
	}
	for i, w := range window {
		if i == len(window)-1 && !strings.HasSuffix(w, "\n") {
			w += "\n"
		}
		if w != original[i] {
			return false
		}
	}
	return true
}

// splitKeepEnds splits s into lines with the trailing "\n" kept on
// each line, so joining the result reproduces s exactly.
func splitKeepEnds(s string) []string {
	var lines []string
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
