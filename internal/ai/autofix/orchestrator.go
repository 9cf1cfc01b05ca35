package autofix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lintro-dev/lintro/internal/ai"
	"github.com/lintro-dev/lintro/internal/config"
	"github.com/lintro-dev/lintro/internal/tool"
	"github.com/lintro-dev/lintro/internal/workspace"
)

// Mode selects which enhancement flow runs.
type Mode int

const (
	// CheckMode proposes fixes for every issue the tools reported.
	CheckMode Mode = iota

	// FixMode proposes fixes only for issues still remaining after the
	// tools' native fixes ran.
	FixMode
)

// EnhanceOptions configures one AI enhancement run.
type EnhanceOptions struct {
	// Mode selects the check or fix flow.
	Mode Mode

	// Results are the tool results to enhance, mutated in place with
	// AI metadata and refreshed counts.
	Results []*tool.Result

	// Config is the loaded configuration.
	Config *config.Config

	// Registry supplies tools for post-fix reruns and validation.
	Registry *tool.Registry

	// OutputFormat is the CLI output format.
	OutputFormat string

	// AIFix enables fix suggestion generation in CheckMode. FixMode
	// always generates fixes.
	AIFix bool

	// Out receives console messages. Defaults to os.Stdout.
	Out io.Writer
}

// Enhance runs the AI fix pipeline over tool results. It never fails
// the surrounding lint run: any error or panic is logged and reported
// as a single console line.
func Enhance(ctx context.Context, opts EnhanceOptions) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("AI enhancement failed", "panic", r)
			fmt.Fprintln(out, "  AI: enhancement unavailable")
		}
	}()

	if err := enhance(ctx, opts, out); err != nil {
		slog.Debug("AI enhancement failed", "error", err)
		fmt.Fprintln(out, "  AI: enhancement unavailable")
	}
}

func enhance(ctx context.Context, opts EnhanceOptions, out io.Writer) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("missing configuration")
	}
	aiCfg := cfg.AI

	providerOpts := ai.Options{
		Provider:  aiCfg.Provider,
		Model:     aiCfg.Model,
		APIKeyEnv: aiCfg.APIKeyEnv,
		MaxTokens: aiCfg.MaxTokens,
	}
	if err := ai.RequireAvailable(providerOpts); err != nil {
		return err
	}
	provider, err := ai.NewProvider(providerOpts)
	if err != nil {
		return err
	}

	root := workspace.ResolveRoot(cfg.ConfigFile)
	isJSON := strings.EqualFold(opts.OutputFormat, "json")

	var fixIssues []FixIssue
	switch opts.Mode {
	case CheckMode:
		if !opts.AIFix {
			return nil
		}
		fixIssues = collectCheckIssues(opts.Results, root)
	case FixMode:
		fixIssues = collectFixIssues(opts.Results, root)
	}

	if len(fixIssues) > 0 {
		format := "terminal"
		if isJSON {
			format = "json"
		}
		RunFixPipeline(ctx, provider, fixIssues, PipelineOptions{
			AI:            aiCfg,
			Registry:      opts.Registry,
			OutputFormat:  format,
			WorkspaceRoot: root,
			Out:           out,
		})
	}

	if !isJSON {
		logFixLimitMessage(out, len(fixIssues), aiCfg.MaxFixIssues)
	}
	return nil
}

// collectCheckIssues gathers every reported issue whose file resolves
// inside the workspace root.
func collectCheckIssues(results []*tool.Result, root string) []FixIssue {
	var fixIssues []FixIssue
	for _, result := range results {
		if result == nil {
			continue
		}
		slog.Debug("AI fix candidates",
			"tool", result.ToolName, "issues", len(result.Issues))
		for _, issue := range result.Issues {
			if normalizeIssuePath(issue, root, result.Cwd) {
				fixIssues = append(fixIssues, FixIssue{Result: result, Issue: issue})
			}
		}
	}
	return fixIssues
}

// collectFixIssues gathers only the issues still remaining after
// native fixes. Tools append all detected issues in order, so the
// remaining ones occupy the tail of each result's issue list.
func collectFixIssues(results []*tool.Result, root string) []FixIssue {
	var fixIssues []FixIssue
	for _, result := range results {
		if result == nil {
			continue
		}
		remaining := result.RemainingIssues()
		slog.Debug("AI fix candidates",
			"tool", result.ToolName,
			"issues", len(result.Issues),
			"remaining", len(remaining))
		for _, issue := range remaining {
			if normalizeIssuePath(issue, root, result.Cwd) {
				fixIssues = append(fixIssues, FixIssue{Result: result, Issue: issue})
			}
		}
	}
	return fixIssues
}

// normalizeIssuePath rewrites the issue's file to an absolute
// workspace-local path, reporting false for issues the pipeline must
// not touch.
func normalizeIssuePath(issue *tool.Issue, root, cwd string) bool {
	if issue.File == "" {
		return false
	}

	candidate := issue.File
	if cwd != "" && !filepath.IsAbs(candidate) {
		candidate = filepath.Join(cwd, candidate)
	}

	resolved, ok := workspace.ResolveFile(candidate, root)
	if !ok {
		slog.Debug("skipping issue outside workspace root",
			"file", candidate, "root", root)
		return false
	}

	issue.File = resolved
	return true
}

func logFixLimitMessage(out io.Writer, totalIssues, maxFixIssues int) {
	if totalIssues <= maxFixIssues {
		return
	}
	skipped := totalIssues - maxFixIssues
	fmt.Fprintf(out, "\n  AI: analyzed %d of %d issues (%d skipped due to limit)\n   Increase ai.max-fix-issues in .lintro.toml to analyze more\n",
		maxFixIssues, totalIssues, skipped)
}
