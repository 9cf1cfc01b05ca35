package autofix

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/lintro-dev/lintro/internal/ai"
	"github.com/lintro-dev/lintro/internal/display"
	"github.com/lintro-dev/lintro/internal/tool"
	"github.com/lintro-dev/lintro/internal/workspace"
)

// codeGroup collects the suggestions sharing one error code, in
// first-seen order.
type codeGroup struct {
	code  string
	fixes []*FixSuggestion
}

func groupSuggestionsByCode(suggestions []*FixSuggestion) []codeGroup {
	index := make(map[string]int)
	var groups []codeGroup
	for _, s := range suggestions {
		code := s.Code
		if code == "" {
			code = "unknown"
		}
		i, ok := index[code]
		if !ok {
			i = len(groups)
			index[code] = i
			groups = append(groups, codeGroup{code: code})
		}
		groups[i].fixes = append(groups[i].fixes, s)
	}
	return groups
}

// fixLocation formats a suggestion's position as "path:line" relative
// to the current directory.
func fixLocation(s *FixSuggestion) string {
	loc := workspace.DisplayPath(s.File)
	if s.Line > 0 {
		loc += ":" + strconv.Itoa(s.Line)
	}
	return loc
}

// RenderFixes formats fix suggestions for the active environment:
// Markdown when requested, GitHub Actions log groups inside CI, and
// styled terminal panels otherwise.
func RenderFixes(suggestions []*FixSuggestion, toolName string, showCost bool, outputFormat string) string {
	if outputFormat == "markdown" {
		return renderFixesMarkdown(suggestions, toolName, showCost)
	}
	if display.IsGitHubActions() {
		return renderFixesGitHub(suggestions, showCost)
	}
	return renderFixesTerminal(suggestions, toolName, showCost)
}

func renderFixesTerminal(suggestions []*FixSuggestion, toolName string, showCost bool) string {
	if len(suggestions) == 0 {
		return ""
	}

	var totalInput, totalOutput int
	var totalCost float64
	for _, s := range suggestions {
		totalInput += s.InputTokens
		totalOutput += s.OutputTokens
		totalCost += s.CostEstimate
	}

	plural := "s"
	if len(suggestions) == 1 {
		plural = ""
	}
	label := toolName
	if label == "" {
		label = "AI FIX SUGGESTIONS"
	}
	detail := fmt.Sprintf("%d fix suggestion%s", len(suggestions), plural)
	costInfo := ""
	if showCost {
		costInfo = display.CostString(totalInput, totalOutput, totalCost)
	}

	var b strings.Builder
	b.WriteString(display.SectionHeader("🤖", label, detail, costInfo))

	groups := groupSuggestionsByCode(suggestions)
	for gi, group := range groups {
		var parts []string
		if explanation := group.fixes[0].Explanation; explanation != "" {
			parts = append(parts, display.Cyan(explanation))
		}
		for _, fix := range group.fixes {
			parts = append(parts, display.InnerPanel(display.Green(fixLocation(fix))))
		}

		b.WriteString(display.PanelTitle(gi+1, len(groups), group.code, group.fixes[0].ToolName, len(group.fixes), "file"))
		b.WriteString("\n")
		b.WriteString(display.Panel(strings.Join(parts, "\n")))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderFixesGitHub(suggestions []*FixSuggestion, showCost bool) string {
	if len(suggestions) == 0 {
		return ""
	}

	var lines []string
	totalCost := 0.0
	for _, fix := range suggestions {
		totalCost += fix.CostEstimate

		codeLabel := ""
		if fix.Code != "" {
			codeLabel = fmt.Sprintf(" [%s]", fix.Code)
		}
		toolLabel := ""
		if fix.ToolName != "" {
			toolLabel = fmt.Sprintf(" (%s)", fix.ToolName)
		}
		lines = append(lines, fmt.Sprintf("::group::%s%s%s — %s", fixLocation(fix), codeLabel, toolLabel, fix.Explanation))

		if fix.Diff != "" {
			lines = append(lines, "```diff", display.DefuseBackticks(fix.Diff), "```")
		}
		lines = append(lines, "Confidence: "+fix.Confidence, "::endgroup::")
	}

	if showCost && totalCost > 0 {
		lines = append(lines, "AI cost: "+ai.FormatCost(totalCost))
	}
	return strings.Join(lines, "\n")
}

func renderFixesMarkdown(suggestions []*FixSuggestion, toolName string, showCost bool) string {
	if len(suggestions) == 0 {
		return ""
	}

	label := "AI Fix Suggestions"
	if toolName != "" {
		label = toolName + " — AI Fix Suggestions"
	}
	lines := []string{"### " + label, ""}

	totalCost := 0.0
	for _, fix := range suggestions {
		totalCost += fix.CostEstimate

		loc := "`" + workspace.DisplayPath(fix.File)
		if fix.Line > 0 {
			loc += ":" + strconv.Itoa(fix.Line)
		}
		loc += "`"

		codeLabel := ""
		if fix.Code != "" {
			codeLabel = fmt.Sprintf(" **[%s]**", html.EscapeString(fix.Code))
		}
		toolLabel := ""
		if fix.ToolName != "" {
			toolLabel = fmt.Sprintf(" (%s)", html.EscapeString(fix.ToolName))
		}
		explanation := ""
		if fix.Explanation != "" {
			explanation = html.EscapeString(fix.Explanation)
		}

		lines = append(lines, "<details>")
		lines = append(lines, fmt.Sprintf("<summary>%s%s%s — %s</summary>", loc, codeLabel, toolLabel, explanation))
		lines = append(lines, "")
		if fix.Diff != "" {
			lines = append(lines, "```diff", display.DefuseBackticks(fix.Diff), "```", "")
		}
		lines = append(lines, "Confidence: "+fix.Confidence, "", "</details>", "")
	}

	if showCost && totalCost > 0 {
		lines = append(lines, "*AI cost: "+ai.FormatCost(totalCost)+"*")
	}
	return strings.Join(lines, "\n")
}

// RenderValidation formats a validation result as a single summary
// line plus one detail line per still-present issue. Returns empty
// when no fixes were checked.
func RenderValidation(v *ValidationResult) string {
	if v == nil || v.Verified+v.Unverified == 0 {
		return ""
	}

	var parts []string
	if v.Verified > 0 {
		parts = append(parts, display.Green(fmt.Sprintf("%d resolved", v.Verified)))
	}
	if v.Unverified > 0 {
		parts = append(parts, display.Yellow(fmt.Sprintf("%d still present", v.Unverified)))
	}
	if v.NewIssues > 0 {
		parts = append(parts, display.Red(fmt.Sprintf("%d new issues introduced", v.NewIssues)))
	}

	lines := []string{"  " + display.Bold("Fix validation:") + " " + strings.Join(parts, " · ")}
	for _, detail := range v.Details {
		lines = append(lines, "    "+display.Yellow("!")+" "+detail)
	}
	return strings.Join(lines, "\n")
}

// renderPostFixSummary reports the post-fix state from fresh tool
// results: how many fixes were applied and rejected, and how many
// issues each tool still reports.
func renderPostFixSummary(applied, rejected int, results []*tool.Result) string {
	var b strings.Builder
	detail := fmt.Sprintf("%d applied · %d rejected", applied, rejected)
	b.WriteString(display.SectionHeader("🧠", "AI POST-FIX SUMMARY", detail, ""))

	totalRemaining := 0
	for _, r := range results {
		remaining := len(r.Issues)
		totalRemaining += remaining
		line := fmt.Sprintf("  %s: %d remaining", r.ToolName, remaining)
		if remaining == 0 {
			line = display.Green(line)
		} else {
			line = display.Yellow(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if totalRemaining == 0 {
		b.WriteString(display.Green("  All analyzed issues resolved."))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
