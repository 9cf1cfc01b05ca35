package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lintro-dev/lintro/internal/tool"
)

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	results := []*tool.Result{
		nil,
		{
			ToolName: "ruff",
			Issues: []*tool.Issue{
				{File: "sub/b.py", Line: 9, Code: "W291", Message: "trailing whitespace", Fixable: true},
				{File: "app.py", Line: 3, Column: 1, Code: "E501", Message: "line too long"},
			},
			IssuesCount:          2,
			RemainingIssuesCount: 2,
			AIMetadata: map[string]any{
				"fixed_count":      2,
				"applied_count":    2,
				"verified_count":   1,
				"unverified_count": 1,
				"internal_state":   "dropped",
			},
		},
		{
			ToolName: "linecheck",
			Issues: []*tool.Issue{
				{File: "app.py", Line: 12, Code: "LINE001", Message: "line exceeds limit"},
			},
			IssuesCount:          1,
			RemainingIssuesCount: 1,
		},
	}

	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	if err := reporter.Report(results, ReportMetadata{Action: "check", FilesScanned: 4}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if output.Action != "check" {
		t.Errorf("Action = %q, want %q", output.Action, "check")
	}
	if output.FilesScanned != 4 {
		t.Errorf("FilesScanned = %d, want 4", output.FilesScanned)
	}
	if len(output.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2 (nil skipped)", len(output.Results))
	}

	ruff := output.Results[0]
	if ruff.Tool != "ruff" {
		t.Errorf("Results[0].Tool = %q, want ruff", ruff.Tool)
	}
	if len(ruff.Issues) != 2 {
		t.Fatalf("len(ruff.Issues) = %d, want 2", len(ruff.Issues))
	}
	// Issues are sorted by file.
	if ruff.Issues[0].File != "app.py" || ruff.Issues[1].File != "sub/b.py" {
		t.Errorf("ruff issues not sorted: %q, %q", ruff.Issues[0].File, ruff.Issues[1].File)
	}
	if !ruff.Issues[1].Fixable {
		t.Error("fixable flag lost for sub/b.py issue")
	}

	if ruff.AI == nil {
		t.Fatal("ruff.AI missing")
	}
	if got, want := ruff.AI["applied_count"], float64(2); got != want {
		t.Errorf("ai.applied_count = %v, want %v", got, want)
	}
	if got, want := ruff.AI["verified_count"], float64(1); got != want {
		t.Errorf("ai.verified_count = %v, want %v", got, want)
	}
	if _, ok := ruff.AI["internal_state"]; ok {
		t.Error("unknown metadata key leaked into ai output")
	}

	if output.Results[1].AI != nil {
		t.Errorf("linecheck.AI = %v, want omitted", output.Results[1].AI)
	}

	sum := output.Summary
	if sum.Total != 3 || sum.Fixable != 1 || sum.Files != 2 || sum.Tools != 2 {
		t.Errorf("Summary = %+v, want total 3, fixable 1, files 2, tools 2", sum)
	}
}

func TestJSONReporterEmptyIssuesArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	results := []*tool.Result{{ToolName: "ruff", Success: true}}
	if err := reporter.Report(results, ReportMetadata{}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	// Clean tools serialize an empty array, not null.
	if !strings.Contains(buf.String(), `"issues": []`) {
		t.Errorf("expected empty issues array in: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"action"`) {
		t.Errorf("empty action should be omitted in: %s", buf.String())
	}
}
