// Package tool defines the linter adapter surface: the Tool interface,
// the Issue/Result data a run carries back, and a name-keyed registry.
package tool

import (
	"context"
	"os"
	"time"
)

// Issue is one finding produced by a linter adapter. Line and Column
// are 1-based; 0 means unknown. Issues are immutable once produced and
// owned by the originating Result.
type Issue struct {
	File    string
	Line    int
	Column  int
	Code    string
	Message string
	Fixable bool
}

// Result is the outcome of one tool invocation. The fix pipeline
// mutates Issues, the counts and AIMetadata in place; it is the
// hand-off artifact back to the CLI and reporting layer.
type Result struct {
	ToolName string
	Success  bool
	Output   string

	Issues      []*Issue
	IssuesCount int

	// RemainingIssuesCount is the length of the unresolved tail of
	// Issues after a fix run. Equal to IssuesCount after a plain check.
	RemainingIssuesCount int

	// Cwd is the working directory the tool ran in. Reruns resolve
	// relative issue paths against it.
	Cwd string

	// AIMetadata carries fix-pipeline payloads for reporting.
	AIMetadata map[string]any
}

// NewResult builds a Result whose counts reflect the issue list and
// whose Cwd records the current working directory.
func NewResult(toolName string, success bool, output string, issues []*Issue) *Result {
	cwd, _ := os.Getwd()
	return &Result{
		ToolName:             toolName,
		Success:              success,
		Output:               output,
		Issues:               issues,
		IssuesCount:          len(issues),
		RemainingIssuesCount: len(issues),
		Cwd:                  cwd,
	}
}

// RemainingIssues returns the unresolved tail of Issues: the trailing
// RemainingIssuesCount entries, with the count clamped to the slice
// bounds.
func (r *Result) RemainingIssues() []*Issue {
	n := r.RemainingIssuesCount
	if n < 0 {
		n = 0
	}
	if n > len(r.Issues) {
		n = len(r.Issues)
	}
	return r.Issues[len(r.Issues)-n:]
}

// DefaultRunTimeout bounds one external tool invocation.
const DefaultRunTimeout = 60 * time.Second

// CheckOptions bounds one tool invocation.
type CheckOptions struct {
	// Timeout caps the run. Zero means DefaultRunTimeout.
	Timeout time.Duration
}

func (o CheckOptions) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultRunTimeout
}

// Tool is one linter adapter.
type Tool interface {
	// Name is the registry key, e.g. "ruff".
	Name() string

	// CanFix reports whether the tool has a native fix operation.
	CanFix() bool

	// Check runs the tool on paths and reports its findings.
	Check(ctx context.Context, paths []string, opts CheckOptions) (*Result, error)

	// Fix applies the tool's native fixes to paths and reports what
	// remains. Tools without a fix operation return an error.
	Fix(ctx context.Context, paths []string, opts CheckOptions) (*Result, error)
}
