// Package reporter provides output formatters for tool results.
//
// The package supports multiple output formats:
//   - terminal: human-readable output with colors
//   - json: machine-readable JSON output
//   - github: native GitHub Actions workflow annotations
//   - markdown: concise markdown tables for PR comments and AI agents
package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lintro-dev/lintro/internal/tool"
)

// ReportMetadata contains contextual information about the lint run.
type ReportMetadata struct {
	// Action is the operation that produced the results, "check" or "fix".
	Action string

	// FilesScanned is the number of files handed to the tools.
	FilesScanned int
}

// Reporter formats and outputs tool results.
type Reporter interface {
	// Report writes the results to the configured output.
	Report(results []*tool.Result, metadata ReportMetadata) error
}

// SortIssues sorts issues by file, line, column, and code for stable
// output. The input slice is not modified.
func SortIssues(issues []*tool.Issue) []*tool.Issue {
	sorted := make([]*tool.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		if sorted[i].Column != sorted[j].Column {
			return sorted[i].Column < sorted[j].Column
		}
		return sorted[i].Code < sorted[j].Code
	})
	return sorted
}

// Format represents an output format type.
type Format string

const (
	// FormatTerminal is human-readable terminal output.
	FormatTerminal Format = "terminal"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatGitHub is GitHub Actions workflow command output.
	FormatGitHub Format = "github"
	// FormatMarkdown is concise markdown tables.
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "terminal", "text", "":
		return FormatTerminal, nil
	case "json":
		return FormatJSON, nil
	case "github", "github-actions":
		return FormatGitHub, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %q (valid: terminal, json, github, markdown)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatTerminal, "":
		return NewTerminalReporter(opts.Writer), nil
	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil
	case FormatGitHub:
		return NewGitHubActionsReporter(opts.Writer), nil
	case FormatMarkdown:
		return NewMarkdownReporter(opts.Writer), nil
	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
