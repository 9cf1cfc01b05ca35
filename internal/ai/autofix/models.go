// Package autofix implements the AI fix pipeline: generating targeted
// fix suggestions for reported issues, classifying and applying them,
// re-running the originating tools, and verifying which issues the
// applied fixes actually resolved.
package autofix

import "strconv"

// FixSuggestion is an AI-generated fix with a unified diff, produced
// for issues the native tools cannot auto-fix.
type FixSuggestion struct {
	// File is the path to the file being fixed.
	File string

	// Line is the 1-based line number of the original issue.
	// 0 means unknown.
	Line int

	// Code is the error code of the issue being fixed.
	Code string

	// ToolName is the tool that reported this issue.
	ToolName string

	// OriginalCode is the exact lines the model proposes to replace.
	OriginalCode string

	// SuggestedCode is the proposed replacement.
	SuggestedCode string

	// Diff is a unified diff of the change.
	Diff string

	// Explanation is a brief imperative description of the fix.
	Explanation string

	// Confidence is the model's self-reported confidence:
	// "high", "medium", or "low".
	Confidence string

	// RiskLevel is the model's risk classification: "safe-style" or
	// "behavioral-risk". Empty if not classified.
	RiskLevel string

	// InputTokens is the token count consumed by the API call.
	InputTokens int

	// OutputTokens is the token count generated by the API call.
	OutputTokens int

	// CostEstimate is the estimated USD cost of the API call.
	CostEstimate float64
}

// Location renders "file:line" for display, omitting the line when
// unknown.
func (s *FixSuggestion) Location() string {
	if s.Line > 0 {
		return s.File + ":" + strconv.Itoa(s.Line)
	}
	return s.File
}

// ValidationResult reports what a post-apply verification pass found:
// how many applied fixes resolved their issue, how many issues are
// still present, and how many new issues the fixes introduced.
type ValidationResult struct {
	Verified   int
	Unverified int
	NewIssues  int

	// Details holds one human-readable line per still-present issue.
	Details []string

	// VerifiedByTool and UnverifiedByTool break the counts down per
	// originating tool.
	VerifiedByTool   map[string]int
	UnverifiedByTool map[string]int
}

// PatchStats summarizes the aggregate shape of a group of suggestions.
type PatchStats struct {
	Files        int
	Hunks        int
	LinesAdded   int
	LinesRemoved int
}
