package autofix

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lintro-dev/lintro/internal/tool"
)

// ToolBatch pairs a tool's result with the issues selected for AI
// fixing. The pipeline builds one batch per tool, in result order.
type ToolBatch struct {
	Name   string
	Result *tool.Result
	Issues []*tool.Issue
}

// rerunCwdMu serializes post-fix reruns. os.Chdir is process-wide and
// tools spawn subprocesses that inherit the working directory.
var rerunCwdMu sync.Mutex

// withToolCwd runs fn from cwd, restoring the previous working
// directory afterwards. An empty cwd runs fn in place.
func withToolCwd(cwd string, fn func() error) error {
	if cwd == "" {
		return fn()
	}

	rerunCwdMu.Lock()
	defer rerunCwdMu.Unlock()

	original, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(cwd); err != nil {
		return err
	}
	defer func() {
		if chErr := os.Chdir(original); chErr != nil {
			slog.Warn("could not restore working directory",
				"path", original, "error", chErr)
		}
	}()
	return fn()
}

// pathsForContext rewrites absolute file paths relative to the tool's
// original working directory where possible, so reruns see the same
// paths and config files as the first run.
func pathsForContext(filePaths []string, cwd string) []string {
	if cwd == "" {
		return filePaths
	}

	cwdPath, err := filepath.Abs(cwd)
	if err != nil {
		return filePaths
	}

	contextual := make([]string, 0, len(filePaths))
	for _, p := range filePaths {
		resolved, err := filepath.Abs(p)
		if err != nil {
			contextual = append(contextual, p)
			continue
		}
		rel, err := filepath.Rel(cwdPath, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			contextual = append(contextual, resolved)
			continue
		}
		contextual = append(contextual, rel)
	}
	return contextual
}

// RerunTools re-checks the files each batch analyzed and returns the
// fresh results. Each tool runs from its original working directory.
// Unavailable tools are skipped.
func RerunTools(ctx context.Context, batches []*ToolBatch, registry *tool.Registry) []*tool.Result {
	var rerunResults []*tool.Result
	for _, batch := range batches {
		seen := make(map[string]struct{})
		var filePaths []string
		for _, issue := range batch.Issues {
			if issue.File == "" {
				continue
			}
			if _, ok := seen[issue.File]; ok {
				continue
			}
			seen[issue.File] = struct{}{}
			filePaths = append(filePaths, issue.File)
		}
		if len(filePaths) == 0 {
			continue
		}
		sort.Strings(filePaths)

		cwd := ""
		if batch.Result != nil {
			cwd = batch.Result.Cwd
		}
		rerunPaths := pathsForContext(filePaths, cwd)

		t, err := registry.Get(batch.Name)
		if err != nil {
			slog.Debug("AI post-fix rerun skipped: tool not available",
				"tool", batch.Name)
			continue
		}

		var result *tool.Result
		runErr := withToolCwd(cwd, func() error {
			var checkErr error
			result, checkErr = t.Check(ctx, rerunPaths, tool.CheckOptions{})
			return checkErr
		})
		if runErr != nil || result == nil {
			slog.Warn("AI post-fix rerun failed",
				"tool", batch.Name, "error", runErr)
			continue
		}
		rerunResults = append(rerunResults, result)
	}
	return rerunResults
}

// ApplyRerunResults copies fresh rerun issue counts back onto the
// original results so reporting reflects the post-fix state.
func ApplyRerunResults(batches []*ToolBatch, rerunResults []*tool.Result) {
	rerunByName := make(map[string]*tool.Result, len(rerunResults))
	for _, r := range rerunResults {
		if r != nil {
			rerunByName[r.ToolName] = r
		}
	}

	for _, batch := range batches {
		rerun, ok := rerunByName[batch.Name]
		if !ok || batch.Result == nil {
			continue
		}

		refreshed := rerun.Issues
		if refreshed == nil {
			refreshed = []*tool.Issue{}
		}
		batch.Result.Issues = refreshed
		batch.Result.IssuesCount = len(refreshed)
		batch.Result.RemainingIssuesCount = len(refreshed)
		batch.Result.Success = rerun.Success
		if rerun.Output != "" {
			batch.Result.Output = rerun.Output
		}
	}
}
