package autofix

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lintro-dev/lintro/internal/fileval"
)

// DefaultContextLines is the number of source lines included before and
// after the issue line in fix prompts.
const DefaultContextLines = 15

func normalizeLF(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// splitLines splits content into lines without a trailing empty entry
// for newline-terminated content.
func splitLines(s string) []string {
	s = normalizeLF(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// readFileSafely validates and reads a source file for prompt building.
// Returns false when the file is missing, unreadable, too large, or not
// UTF-8.
func readFileSafely(path string) (string, bool) {
	if err := fileval.ValidateFile(path, fileval.DefaultMaxFileSize); err != nil {
		slog.Debug("could not read file", "path", path, "error", err)
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("could not read file", "path", path, "error", err)
		return "", false
	}
	return string(data), true
}

// ExtractContext returns the source window around a 1-based issue line,
// plus the 1-based start and end line numbers of the window. The window
// spans contextLines lines on each side, clipped to the file bounds.
func ExtractContext(content string, line, contextLines int) (string, int, int) {
	lines := splitLines(content)
	total := len(lines)

	start := line - 1 - contextLines
	if start < 0 {
		start = 0
	}
	end := line + contextLines
	if end > total {
		end = total
	}

	window := ""
	if start < end {
		window = strings.Join(lines[start:end], "\n")
	}
	return window, start + 1, end
}
