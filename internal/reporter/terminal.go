package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/lintro-dev/lintro/internal/display"
	"github.com/lintro-dev/lintro/internal/tool"
	"github.com/lintro-dev/lintro/internal/workspace"
)

// toolEmojis give each tool section a recognizable header.
var toolEmojis = map[string]string{
	"ruff":      "🐍",
	"linecheck": "📏",
}

func toolEmoji(name string) string {
	if e, ok := toolEmojis[name]; ok {
		return e
	}
	return "🔍"
}

// TerminalReporter formats results for human-readable terminal output.
type TerminalReporter struct {
	writer io.Writer
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{writer: w}
}

// Report implements Reporter.
func (r *TerminalReporter) Report(results []*tool.Result, metadata ReportMetadata) error {
	var b strings.Builder
	totalIssues := 0

	for _, res := range results {
		if res == nil {
			continue
		}
		count := len(res.Issues)
		totalIssues += count

		b.WriteString(display.SectionHeader(toolEmoji(res.ToolName), res.ToolName, issueDetail(res, metadata.Action), ""))
		b.WriteString("\n")

		if count == 0 {
			b.WriteString(display.Green("  ✓ No issues found."))
			b.WriteString("\n\n")
			continue
		}

		for _, iss := range SortIssues(res.Issues) {
			b.WriteString("  ")
			b.WriteString(display.Dim(issueLocation(iss)))
			b.WriteString("  ")
			if iss.Code != "" {
				b.WriteString(display.Yellow(iss.Code))
				b.WriteString("  ")
			}
			b.WriteString(iss.Message)
			if iss.Fixable {
				b.WriteString(display.Cyan("  [fixable]"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(summaryLine(results, totalIssues, metadata.Action))
	b.WriteString("\n")

	_, err := io.WriteString(r.writer, b.String())
	return err
}

// issueDetail is the header annotation for one tool section.
func issueDetail(res *tool.Result, action string) string {
	count := len(res.Issues)
	if action == "fix" {
		fixed := res.IssuesCount - res.RemainingIssuesCount
		if fixed > 0 {
			return fmt.Sprintf("%d fixed · %d remaining", fixed, res.RemainingIssuesCount)
		}
		return fmt.Sprintf("%d remaining", res.RemainingIssuesCount)
	}
	if count == 0 {
		return "clean"
	}
	return fmt.Sprintf("%d %s", count, pluralize(count, "issue", "issues"))
}

// issueLocation renders "file:line:col" with zero positions elided.
func issueLocation(iss *tool.Issue) string {
	loc := workspace.DisplayPath(iss.File)
	if iss.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, iss.Line)
		if iss.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, iss.Column)
		}
	}
	return loc
}

func summaryLine(results []*tool.Result, totalIssues int, action string) string {
	toolCount := 0
	for _, res := range results {
		if res != nil {
			toolCount++
		}
	}
	if totalIssues == 0 {
		return display.Green(fmt.Sprintf("✓ All checks passed (%d %s).",
			toolCount, pluralize(toolCount, "tool", "tools")))
	}
	verb := "found"
	if action == "fix" {
		verb = "remaining"
	}
	return display.Red(fmt.Sprintf("✗ %d %s %s across %d %s.",
		totalIssues, pluralize(totalIssues, "issue", "issues"), verb,
		toolCount, pluralize(toolCount, "tool", "tools")))
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
