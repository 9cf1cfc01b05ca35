package autofix

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/lintro-dev/lintro/internal/tool"
)

// issueMatchKey identifies a remaining issue for validation matching.
// Line 0 means the issue carries no usable line number.
type issueMatchKey struct {
	file string
	code string
	line int
}

// ValidateAppliedFixes re-checks the files touched by applied fixes
// and reports which originally reported issues are gone.
//
// Suggestions are grouped by tool and matched one-to-one against the
// remaining issues, so two fixes for the same code on the same line
// consume two remaining issues, not one. Returns nil when nothing was
// applied.
func ValidateAppliedFixes(ctx context.Context, applied []*FixSuggestion, registry *tool.Registry) *ValidationResult {
	if len(applied) == 0 {
		return nil
	}

	byTool := make(map[string][]*FixSuggestion)
	var toolOrder []string
	for _, s := range applied {
		name := s.ToolName
		if name == "" {
			name = "unknown"
		}
		if _, ok := byTool[name]; !ok {
			toolOrder = append(toolOrder, name)
		}
		byTool[name] = append(byTool[name], s)
	}

	result := &ValidationResult{
		VerifiedByTool:   make(map[string]int),
		UnverifiedByTool: make(map[string]int),
	}

	for _, toolName := range toolOrder {
		if toolName == "unknown" {
			continue
		}
		suggestions := byTool[toolName]

		seen := make(map[string]struct{})
		var filePaths []string
		for _, s := range suggestions {
			if _, ok := seen[s.File]; ok {
				continue
			}
			seen[s.File] = struct{}{}
			filePaths = append(filePaths, s.File)
		}

		remaining, ok := runToolCheck(ctx, registry, toolName, filePaths)
		if !ok {
			slog.Debug("validation skipped: tool check failed", "tool", toolName)
			continue
		}

		remainingCounts := make(map[issueMatchKey]int)
		for _, issue := range remaining {
			key := issueMatchKey{
				file: normalizeFilePath(issue.File),
				code: issue.Code,
				line: normalizeLine(issue.Line),
			}
			remainingCounts[key]++
		}

		for _, s := range suggestions {
			path := normalizeFilePath(s.File)
			line := normalizeLine(s.Line)
			if consumeMatchingRemainingIssue(remainingCounts, path, s.Code, line) {
				result.Unverified++
				result.UnverifiedByTool[toolName]++
				result.Details = append(result.Details,
					fmt.Sprintf("[%s] %s:%d — issue still present", s.Code, filepath.Base(s.File), s.Line))
			} else {
				result.Verified++
				result.VerifiedByTool[toolName]++
			}
		}

		// Remaining issues no suggestion consumed are pre-existing or
		// newly introduced ones.
		for _, count := range remainingCounts {
			if count > 0 {
				result.NewIssues += count
			}
		}
	}
	return result
}

// consumeMatchingRemainingIssue consumes one remaining issue matching
// the suggestion, preferring the exact line, then line-less issues,
// then (for line-less suggestions) any line with the same file/code.
func consumeMatchingRemainingIssue(remainingCounts map[issueMatchKey]int, filePath, code string, line int) bool {
	if line > 0 {
		exact := issueMatchKey{file: filePath, code: code, line: line}
		if remainingCounts[exact] > 0 {
			remainingCounts[exact]--
			return true
		}
	}

	unknownLine := issueMatchKey{file: filePath, code: code}
	if remainingCounts[unknownLine] > 0 {
		remainingCounts[unknownLine]--
		return true
	}

	if line == 0 {
		var candidates []issueMatchKey
		for key, count := range remainingCounts {
			if count > 0 && key.file == filePath && key.code == code {
				candidates = append(candidates, key)
			}
		}
		if len(candidates) > 0 {
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].line < candidates[j].line
			})
			remainingCounts[candidates[0]]--
			return true
		}
	}

	return false
}

func normalizeLine(line int) int {
	if line > 0 {
		return line
	}
	return 0
}

func normalizeFilePath(filePath string) string {
	if filePath == "" {
		return ""
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return filepath.Clean(filePath)
	}
	return abs
}

// runToolCheck runs one tool's check on the given files, returning
// ok=false when the tool is unavailable or the check errored.
func runToolCheck(ctx context.Context, registry *tool.Registry, toolName string, filePaths []string) ([]*tool.Issue, bool) {
	t, err := registry.Get(toolName)
	if err != nil {
		slog.Debug("validation: tool not available", "tool", toolName)
		return nil, false
	}
	result, err := t.Check(ctx, filePaths, tool.CheckOptions{})
	if err != nil || result == nil {
		slog.Debug("validation: tool check failed", "tool", toolName, "error", err)
		return nil, false
	}
	return result.Issues, true
}
