package autofix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lintro-dev/lintro/internal/ai"
	"github.com/lintro-dev/lintro/internal/config"
	"github.com/lintro-dev/lintro/internal/tool"
)

// FixIssue pairs a tool result with one issue selected for AI fixing.
type FixIssue struct {
	Result *tool.Result
	Issue  *tool.Issue
}

// PipelineOptions configures one fix pipeline run.
type PipelineOptions struct {
	// AI carries the fix pipeline knobs.
	AI config.AIConfig

	// Registry supplies tools for post-fix reruns and validation.
	Registry *tool.Registry

	// OutputFormat is the CLI output format. "json" suppresses console
	// messages and interactive review.
	OutputFormat string

	// WorkspaceRoot limits file access for generation and writes.
	WorkspaceRoot string

	// Out receives console messages. Defaults to os.Stdout.
	Out io.Writer
}

// RunFixPipeline generates AI fix suggestions for the given issues and
// applies them according to configuration:
//
//  1. Issues are grouped by tool and suggestions generated under the
//     global max-fix-issues budget.
//  2. Suggestions are classified safe-style or behavioral-risk.
//  3. Safe fixes are auto-applied in non-interactive runs; the rest
//     are auto-applied when configured, or reviewed interactively.
//  4. Touched tools are re-run, applied fixes validated, and per-tool
//     metadata attached for reporting.
func RunFixPipeline(ctx context.Context, provider ai.Provider, fixIssues []FixIssue, opts PipelineOptions) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	batchIndex := make(map[string]int)
	var batches []*ToolBatch
	for _, fi := range fixIssues {
		if fi.Result == nil || fi.Issue == nil {
			continue
		}
		name := fi.Result.ToolName
		i, ok := batchIndex[name]
		if !ok {
			i = len(batches)
			batchIndex[name] = i
			batches = append(batches, &ToolBatch{Name: name, Result: fi.Result})
		}
		batches[i].Issues = append(batches[i].Issues, fi.Issue)
	}

	aiCfg := opts.AI
	retry := ai.RetryPolicy{
		MaxRetries: aiCfg.MaxRetries,
		BaseDelay:  aiCfg.BaseDelay(),
		MaxDelay:   aiCfg.MaxDelay(),
		Factor:     aiCfg.RetryBackoffFactor,
	}

	var allSuggestions []*FixSuggestion
	remainingBudget := aiCfg.MaxFixIssues

	for _, batch := range batches {
		if remainingBudget <= 0 {
			break
		}
		if len(batch.Issues) == 0 {
			continue
		}

		slog.Debug("AI fix batch",
			"tool", batch.Name,
			"issues", len(batch.Issues),
			"budget", remainingBudget)

		suggestions := GenerateFixes(ctx, provider, batch.Issues, GenerateOptions{
			ToolName:      batch.Name,
			MaxIssues:     remainingBudget,
			MaxWorkers:    aiCfg.MaxParallelCalls,
			MaxTokens:     aiCfg.MaxTokens,
			Timeout:       aiCfg.Timeout(),
			ContextLines:  aiCfg.ContextLines,
			WorkspaceRoot: opts.WorkspaceRoot,
			RedactSecrets: aiCfg.RedactSecrets,
			Retry:         retry,
		})
		for _, s := range suggestions {
			if s.ToolName == "" {
				s.ToolName = batch.Name
			}
		}
		remainingBudget -= min(len(batch.Issues), remainingBudget)
		allSuggestions = append(allSuggestions, suggestions...)

		if len(suggestions) > 0 {
			AttachFixSuggestions(batch.Result, suggestions)
		}
	}

	if len(allSuggestions) == 0 {
		return
	}

	applied := 0
	rejected := 0
	isJSON := strings.EqualFold(opts.OutputFormat, "json")
	var appliedSuggestions []*FixSuggestion

	var safeSuggestions, riskySuggestions []*FixSuggestion
	for _, s := range allSuggestions {
		if IsSafeStyleFix(s) {
			safeSuggestions = append(safeSuggestions, s)
		} else {
			riskySuggestions = append(riskySuggestions, s)
		}
	}
	safeFailed := 0
	safeFastPathApplied := false

	applyOpts := ApplyOptions{
		WorkspaceRoot: opts.WorkspaceRoot,
		AutoApply:     true,
		SearchRadius:  aiCfg.FixSearchRadius,
	}

	// Fast path: style-only fixes need no review when the run is
	// non-interactive.
	if aiCfg.AutoApplySafeFixes && len(safeSuggestions) > 0 && (isJSON || !stdinIsTTY()) {
		safeFastPathApplied = true
		appliedSafe := ApplyFixes(safeSuggestions, applyOpts)
		appliedSuggestions = append(appliedSuggestions, appliedSafe...)
		applied += len(appliedSafe)
		safeFailed = len(safeSuggestions) - len(appliedSafe)
		if !isJSON {
			msg := fmt.Sprintf("  AI: auto-applied %d/%d safe-style fixes", len(appliedSafe), len(safeSuggestions))
			if safeFailed > 0 {
				msg += fmt.Sprintf(" (%d failed)", safeFailed)
			}
			fmt.Fprintln(out, msg)
		}
	}

	if aiCfg.AutoApply {
		// Safe fixes applied by the fast path are already counted, so
		// only risky fixes remain as candidates there.
		candidates := allSuggestions
		if safeFastPathApplied {
			candidates = riskySuggestions
		}
		autoApplied := ApplyFixes(candidates, applyOpts)
		appliedSuggestions = append(appliedSuggestions, autoApplied...)
		applied += len(autoApplied)
		rejected = len(candidates) - len(autoApplied) + safeFailed
		if !isJSON {
			fmt.Fprintf(out, "  AI: auto-applied %d/%d fixes\n", applied, len(allSuggestions))
		}
	} else if !isJSON {
		candidates := allSuggestions
		if safeFastPathApplied {
			candidates = riskySuggestions
		}
		acceptedCount, rejectedCount, interactiveApplied := ReviewFixes(ctx, candidates, ReviewOptions{
			ValidateAfterGroup: aiCfg.ValidateAfterGroup,
			WorkspaceRoot:      opts.WorkspaceRoot,
			SearchRadius:       aiCfg.FixSearchRadius,
			Registry:           opts.Registry,
			Out:                out,
		})
		applied += acceptedCount
		rejected += rejectedCount + safeFailed
		appliedSuggestions = append(appliedSuggestions, interactiveApplied...)
	}

	var freshResults []*tool.Result
	if len(appliedSuggestions) > 0 {
		freshResults = RerunTools(ctx, batches, opts.Registry)
		if len(freshResults) > 0 {
			ApplyRerunResults(batches, freshResults)
		}
	}

	var validation *ValidationResult
	if len(appliedSuggestions) > 0 {
		validation = ValidateAppliedFixes(ctx, appliedSuggestions, opts.Registry)
		if !isJSON && validation != nil && validation.Verified+validation.Unverified > 0 {
			if output := RenderValidation(validation); output != "" {
				fmt.Fprintln(out, output)
			}
		}
	}

	appliedByTool := make(map[string]int)
	for _, s := range appliedSuggestions {
		if s.ToolName == "" {
			continue
		}
		appliedByTool[s.ToolName]++
	}
	for _, batch := range batches {
		AttachFixedCount(batch.Result, appliedByTool[batch.Name])
		verified, unverified := 0, 0
		if validation != nil {
			verified = validation.VerifiedByTool[batch.Name]
			unverified = validation.UnverifiedByTool[batch.Name]
		}
		AttachValidationCounts(batch.Result, verified, unverified)
	}

	if (applied > 0 || rejected > 0) && !isJSON {
		appliedForSummary := applied
		if validation != nil && validation.Verified+validation.Unverified > 0 {
			appliedForSummary = validation.Verified
		}

		var summaryResults []*tool.Result
		if len(appliedSuggestions) > 0 {
			summaryResults = freshResults
			if len(summaryResults) == 0 {
				fmt.Fprintln(out, "  AI: post-fix summary unavailable")
			}
		} else {
			summaryResults = uniqueResults(fixIssues)
		}

		if len(summaryResults) > 0 {
			if output := renderPostFixSummary(appliedForSummary, rejected, summaryResults); output != "" {
				fmt.Fprintln(out, output)
			}
		}
	}
}

// uniqueResults returns each pair's result once, in first-seen order.
func uniqueResults(fixIssues []FixIssue) []*tool.Result {
	seen := make(map[string]struct{})
	var results []*tool.Result
	for _, fi := range fixIssues {
		if fi.Result == nil {
			continue
		}
		if _, ok := seen[fi.Result.ToolName]; ok {
			continue
		}
		seen[fi.Result.ToolName] = struct{}{}
		results = append(results, fi.Result)
	}
	return results
}
