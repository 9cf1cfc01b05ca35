package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lintro-dev/lintro/internal/tool"
)

// MarkdownReporter formats results as markdown tables for PR comments
// and other places where terminal styling does not render.
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(results []*tool.Result, metadata ReportMetadata) error {
	for _, res := range results {
		if res == nil {
			continue
		}
		if _, err := fmt.Fprintf(r.writer, "### %s\n\n", res.ToolName); err != nil {
			return err
		}

		if metadata.Action == "fix" {
			if fixed := res.IssuesCount - res.RemainingIssuesCount; fixed > 0 {
				if _, err := fmt.Fprintf(r.writer, "**%d fixed**\n\n", fixed); err != nil {
					return err
				}
			}
		}

		if len(res.Issues) == 0 {
			if _, err := fmt.Fprintf(r.writer, "**No issues found**\n\n"); err != nil {
				return err
			}
			continue
		}

		if err := r.writeIssueTable(res.Issues); err != nil {
			return err
		}
	}
	return nil
}

// writeIssueTable writes one tool's issues, collapsing the file column
// when every issue lives in the same file.
func (r *MarkdownReporter) writeIssueTable(issues []*tool.Issue) error {
	sorted := SortIssues(issues)

	fileSet := make(map[string]struct{})
	for _, iss := range sorted {
		fileSet[filepath.ToSlash(iss.File)] = struct{}{}
	}

	if len(fileSet) == 1 {
		var filename string
		for f := range fileSet {
			filename = f
		}
		return r.writeSingleFileTable(sorted, filename)
	}
	return r.writeMultiFileTable(sorted, len(fileSet))
}

// writeSingleFileTable writes a markdown table for issues in a single file.
func (r *MarkdownReporter) writeSingleFileTable(sorted []*tool.Issue, filename string) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** in `%s`\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"), filename); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| Line | Code | Issue |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "|------|------|-------|"); err != nil {
		return err
	}

	for _, iss := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s | %s |\n",
			formatLineNumber(iss), escapeMarkdown(iss.Code), issueCell(iss)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.writer)
	return err
}

// writeMultiFileTable writes a markdown table for issues across multiple files.
func (r *MarkdownReporter) writeMultiFileTable(sorted []*tool.Issue, fileCount int) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** across %d %s\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"),
		fileCount, pluralize(fileCount, "file", "files")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| File | Line | Code | Issue |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "|------|------|------|-------|"); err != nil {
		return err
	}

	for _, iss := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s | %s | %s |\n",
			filepath.ToSlash(iss.File), formatLineNumber(iss),
			escapeMarkdown(iss.Code), issueCell(iss)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.writer)
	return err
}

// issueCell renders the message cell, marking fixable issues.
func issueCell(iss *tool.Issue) string {
	cell := escapeMarkdown(iss.Message)
	if iss.Fixable {
		cell += " 🔧"
	}
	return cell
}

// formatLineNumber returns the display string for an issue's line number.
func formatLineNumber(iss *tool.Issue) string {
	if iss.Line > 0 {
		return strconv.Itoa(iss.Line)
	}
	return "-"
}

// escapeMarkdown escapes special markdown characters in table cells.
func escapeMarkdown(s string) string {
	// Escape pipe characters which break table formatting
	s = strings.ReplaceAll(s, "|", "\\|")
	// Replace newlines with spaces
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
