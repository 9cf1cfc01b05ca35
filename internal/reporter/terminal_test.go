package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lintro-dev/lintro/internal/tool"
)

func TestTerminalReporterCheck(t *testing.T) {
	t.Parallel()

	results := []*tool.Result{
		{
			ToolName: "ruff",
			Issues: []*tool.Issue{
				{File: "src/util.py", Line: 7, Column: 2, Code: "W291", Message: "trailing whitespace", Fixable: true},
				{File: "app.py", Line: 3, Column: 1, Code: "E501", Message: "line too long"},
			},
			IssuesCount:          2,
			RemainingIssuesCount: 2,
		},
		{
			ToolName: "linecheck",
			Success:  true,
		},
	}

	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	if err := reporter.Report(results, ReportMetadata{Action: "check"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "🐍  ruff — 2 issues") {
		t.Errorf("missing ruff section header in: %s", output)
	}
	if !strings.Contains(output, "app.py:3:1") {
		t.Errorf("missing issue location in: %s", output)
	}
	if !strings.Contains(output, "E501") {
		t.Errorf("missing issue code in: %s", output)
	}
	if !strings.Contains(output, "[fixable]") {
		t.Errorf("missing fixable marker in: %s", output)
	}
	if !strings.Contains(output, "📏  linecheck — clean") {
		t.Errorf("missing linecheck section header in: %s", output)
	}
	if !strings.Contains(output, "✓ No issues found.") {
		t.Errorf("missing clean tool line in: %s", output)
	}
	if !strings.Contains(output, "✗ 2 issues found across 2 tools.") {
		t.Errorf("missing summary line in: %s", output)
	}

	// Issues print sorted by file.
	appIdx := strings.Index(output, "app.py:3:1")
	utilIdx := strings.Index(output, "src/util.py:7:2")
	if utilIdx < 0 || appIdx < 0 || appIdx > utilIdx {
		t.Errorf("issues not sorted by file: app.py at %d, src/util.py at %d", appIdx, utilIdx)
	}
}

func TestTerminalReporterAllClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	results := []*tool.Result{{ToolName: "ruff", Success: true}}
	if err := reporter.Report(results, ReportMetadata{Action: "check"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if !strings.Contains(buf.String(), "✓ All checks passed (1 tool).") {
		t.Errorf("missing all-clean summary in: %s", buf.String())
	}
}

func TestTerminalReporterFixAction(t *testing.T) {
	t.Parallel()

	results := []*tool.Result{
		{
			ToolName: "ruff",
			Issues: []*tool.Issue{
				{File: "app.py", Line: 9, Code: "B101", Message: "assert used"},
			},
			IssuesCount:          3,
			RemainingIssuesCount: 1,
		},
	}

	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	if err := reporter.Report(results, ReportMetadata{Action: "fix"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "ruff — 2 fixed · 1 remaining") {
		t.Errorf("missing fix detail in: %s", output)
	}
	if !strings.Contains(output, "✗ 1 issue remaining across 1 tool.") {
		t.Errorf("missing fix summary in: %s", output)
	}
}

func TestTerminalReporterSkipsNilResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := NewTerminalReporter(&buf)

	results := []*tool.Result{nil, {ToolName: "custom", Success: true}}
	if err := reporter.Report(results, ReportMetadata{Action: "check"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "🔍  custom") {
		t.Errorf("missing fallback emoji header in: %s", output)
	}
	if !strings.Contains(output, "✓ All checks passed (1 tool).") {
		t.Errorf("nil result counted in summary: %s", output)
	}
}
