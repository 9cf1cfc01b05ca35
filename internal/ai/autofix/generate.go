package autofix

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/lintro-dev/lintro/internal/ai"
	"github.com/lintro-dev/lintro/internal/tool"
	"github.com/lintro-dev/lintro/internal/workspace"
)

const (
	// DefaultMaxWorkers caps concurrent provider calls during fix
	// generation.
	DefaultMaxWorkers = 5

	// DefaultMaxIssues caps how many issues one generation run sends
	// to the provider.
	DefaultMaxIssues = 20
)

// GenerateOptions configures a fix generation run for one tool's
// issues.
type GenerateOptions struct {
	// ToolName is the tool that produced the issues.
	ToolName string

	// MaxIssues caps how many issues are processed. Zero or negative
	// means DefaultMaxIssues.
	MaxIssues int

	// MaxWorkers caps concurrent provider calls. Zero or negative
	// means DefaultMaxWorkers.
	MaxWorkers int

	// MaxTokens is the completion budget for each provider call.
	MaxTokens int

	// Timeout bounds each provider call.
	Timeout time.Duration

	// ContextLines is how many lines around the issue line are sent to
	// the provider. Zero or negative means DefaultContextLines.
	ContextLines int

	// WorkspaceRoot limits which files issues may reference. Empty
	// means the root discovered from the current directory.
	WorkspaceRoot string

	// RedactSecrets strips detected secrets from prompts before they
	// leave the process.
	RedactSecrets bool

	// Retry controls retries for transient provider failures.
	Retry ai.RetryPolicy
}

// fileCache shares file contents between generation workers. An
// unreadable file is cached as nil so it is read at most once.
type fileCache struct {
	mu    sync.Mutex
	files map[string]*string
}

func newFileCache() *fileCache {
	return &fileCache{files: make(map[string]*string)}
}

func (c *fileCache) get(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.files[path]
	if !ok {
		if s, readOK := readFileSafely(path); readOK {
			content = &s
		}
		c.files[path] = content
	}
	if content == nil {
		return "", false
	}
	return *content, true
}

// fixGenerator holds the shared state of one generation run.
type fixGenerator struct {
	provider ai.Provider
	opts     GenerateOptions
	cache    *fileCache

	gitleaksFactory func() (*detect.Detector, error)
	detOnce         sync.Once
	det             *detect.Detector
	detErr          error
}

// GenerateFixes asks the provider for fix suggestions for issues the
// tool could not fix natively. Provider calls run in parallel up to
// MaxWorkers, and suggestions come back in issue order. Failures are
// logged at debug level and yield fewer suggestions, never an error.
func GenerateFixes(ctx context.Context, provider ai.Provider, issues []*tool.Issue, opts GenerateOptions) []*FixSuggestion {
	if len(issues) == 0 {
		return nil
	}

	maxIssues := opts.MaxIssues
	if maxIssues <= 0 {
		maxIssues = DefaultMaxIssues
	}
	target := issues
	if len(target) > maxIssues {
		target = target[:maxIssues]
	}
	slog.Debug("generating AI fixes",
		"tool", opts.ToolName,
		"received", len(issues),
		"processing", len(target),
		"max", maxIssues)

	if opts.WorkspaceRoot == "" {
		opts.WorkspaceRoot = workspace.ResolveRoot("")
	}

	g := &fixGenerator{
		provider:        provider,
		opts:            opts,
		cache:           newFileCache(),
		gitleaksFactory: detect.NewDetectorDefaultConfig,
	}

	results := g.run(ctx, target)

	suggestions := make([]*FixSuggestion, 0, len(results))
	for _, s := range results {
		if s != nil {
			suggestions = append(suggestions, s)
		}
	}
	slog.Debug("AI fix generation finished",
		"tool", opts.ToolName,
		"suggestions", len(suggestions),
		"processed", len(target))
	return suggestions
}

func (g *fixGenerator) run(ctx context.Context, issues []*tool.Issue) []*FixSuggestion {
	workers := g.opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if workers > len(issues) {
		workers = len(issues)
	}

	results := make([]*FixSuggestion, len(issues))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, issue := range issues {
		wg.Add(1)
		go func(i int, issue *tool.Issue) {
			defer wg.Done()

			// Acquire semaphore (respects context cancellation).
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			results[i] = g.generateSingleFix(ctx, issue)
		}(i, issue)
	}
	wg.Wait()
	return results
}

func (g *fixGenerator) generateSingleFix(ctx context.Context, issue *tool.Issue) *FixSuggestion {
	if issue.File == "" || issue.Line <= 0 {
		slog.Debug("skipping issue without file/line",
			"file", issue.File, "line", issue.Line)
		return nil
	}

	resolved, ok := workspace.ResolveFile(issue.File, g.opts.WorkspaceRoot)
	if !ok {
		slog.Debug("skipping issue outside workspace root",
			"file", issue.File, "root", g.opts.WorkspaceRoot)
		return nil
	}

	content, ok := g.cache.get(resolved)
	if !ok {
		slog.Debug("cannot read file", "path", resolved)
		return nil
	}

	contextLines := g.opts.ContextLines
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	window, start, end := ExtractContext(content, issue.Line, contextLines)

	prompt := buildFixPrompt(promptData{
		Tool:         g.opts.ToolName,
		Code:         issue.Code,
		File:         workspace.ProviderPath(resolved, g.opts.WorkspaceRoot),
		Line:         issue.Line,
		Message:      issue.Message,
		Context:      window,
		ContextStart: start,
		ContextEnd:   end,
	})

	if g.opts.RedactSecrets {
		redacted, err := g.redactPrompt(prompt)
		if err != nil {
			slog.Debug("AI fix generation failed",
				"file", issue.File, "line", issue.Line, "error", err)
			return nil
		}
		prompt = redacted
	}

	resp, err := ai.CompleteWithRetry(ctx, g.provider, ai.Request{
		Prompt:    prompt,
		System:    fixSystemPrompt,
		MaxTokens: g.opts.MaxTokens,
		Timeout:   g.opts.Timeout,
	}, g.opts.Retry)
	if err != nil {
		slog.Debug("AI fix generation failed",
			"file", issue.File, "line", issue.Line, "error", err)
		return nil
	}

	suggestion := parseFixResponse(resp.Content, resolved, issue.Line, issue.Code)
	if suggestion == nil {
		return nil
	}
	suggestion.ToolName = g.opts.ToolName
	suggestion.InputTokens = resp.InputTokens
	suggestion.OutputTokens = resp.OutputTokens
	suggestion.CostEstimate = resp.CostEstimate
	return suggestion
}
