package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/lintro-dev/lintro/internal/ai/autofix"
	"github.com/lintro-dev/lintro/internal/tool"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Action is the operation that produced the results.
	Action string `json:"action,omitempty"`
	// Results contains one entry per tool, in run order.
	Results []ToolJSON `json:"results"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the number of files handed to the tools.
	FilesScanned int `json:"files_scanned,omitempty"`
}

// ToolJSON is the serialized form of one tool result.
type ToolJSON struct {
	Tool                 string         `json:"tool"`
	Success              bool           `json:"success"`
	IssuesCount          int            `json:"issues_count"`
	RemainingIssuesCount int            `json:"remaining_issues_count"`
	Issues               []IssueJSON    `json:"issues"`
	AI                   map[string]any `json:"ai,omitempty"`
}

// IssueJSON is the serialized form of one issue.
type IssueJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Summary contains aggregate statistics across all tools.
type Summary struct {
	Total   int `json:"total"`
	Fixable int `json:"fixable"`
	Files   int `json:"files"`
	Tools   int `json:"tools"`
}

// JSONReporter formats results as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(results []*tool.Result, metadata ReportMetadata) error {
	output := JSONOutput{
		Action:       metadata.Action,
		Results:      make([]ToolJSON, 0, len(results)),
		FilesScanned: metadata.FilesScanned,
	}

	fileSet := make(map[string]struct{})
	for _, res := range results {
		if res == nil {
			continue
		}

		tj := ToolJSON{
			Tool:                 res.ToolName,
			Success:              res.Success,
			IssuesCount:          res.IssuesCount,
			RemainingIssuesCount: res.RemainingIssuesCount,
			Issues:               make([]IssueJSON, 0, len(res.Issues)),
		}
		for _, iss := range SortIssues(res.Issues) {
			// Forward slashes for cross-platform consistency.
			file := filepath.ToSlash(iss.File)
			fileSet[file] = struct{}{}
			tj.Issues = append(tj.Issues, IssueJSON{
				File:    file,
				Line:    iss.Line,
				Column:  iss.Column,
				Code:    iss.Code,
				Message: iss.Message,
				Fixable: iss.Fixable,
			})
			output.Summary.Total++
			if iss.Fixable {
				output.Summary.Fixable++
			}
		}
		if res.AIMetadata != nil {
			tj.AI = autofix.Normalize(res.AIMetadata)
		}

		output.Results = append(output.Results, tj)
		output.Summary.Tools++
	}
	output.Summary.Files = len(fileSet)

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
