// Package config provides configuration loading and discovery for lintro.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (LINTRO_* prefix)
//  3. Config file (closest .lintro.toml or lintro.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern similar to Ruff:
// starting from the working directory, walk up the filesystem until a
// config file is found. The closest config wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".lintro.toml", "lintro.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "LINTRO_"

// Config represents the complete lintro configuration.
type Config struct {
	// Output configures output format and verbosity.
	Output OutputConfig `json:"output" koanf:"output"`

	// Tools configures which linting tools run and their shared knobs.
	Tools ToolsConfig `json:"tools" koanf:"tools"`

	// AI configures the opt-in AI fix pipeline.
	AI AIConfig `json:"ai" koanf:"ai"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text, json, or markdown.
	Format string `json:"format,omitempty" koanf:"format"`

	// Debug enables debug-level logging on stderr.
	Debug bool `json:"debug,omitempty" koanf:"debug"`
}

// ToolsConfig configures the tool registry.
//
// Example TOML configuration:
//
//	[tools]
//	only = ["ruff"]
//	line-length = 100
type ToolsConfig struct {
	// Only restricts runs to the named tools. Empty runs every registered tool.
	Only []string `json:"only,omitempty" koanf:"only"`

	// LineLength is the maximum line length enforced by linecheck.
	LineLength int `json:"line-length,omitempty" koanf:"line-length"`
}

// AIConfig configures the opt-in AI fix pipeline.
//
// All AI behavior is disabled by default and additionally requires a
// provider API key in the environment.
type AIConfig struct {
	// Enabled toggles all AI features in lintro. Disabled by default.
	Enabled bool `json:"enabled,omitempty" koanf:"enabled"`

	// Provider selects the AI backend: "anthropic" or "openai".
	Provider string `json:"provider,omitempty" koanf:"provider"`

	// Model overrides the provider's default model identifier.
	Model string `json:"model,omitempty" koanf:"model"`

	// APIKeyEnv overrides the provider-specific API key environment
	// variable (ANTHROPIC_API_KEY, OPENAI_API_KEY).
	APIKeyEnv string `json:"api-key-env,omitempty" koanf:"api-key-env"`

	// DefaultFix enables AI fix suggestions on check runs that did not
	// pass --ai-fix. Equivalent to always passing the flag.
	DefaultFix bool `json:"default-fix,omitempty" koanf:"default-fix"`

	// AutoApply applies every generated fix without confirmation.
	AutoApply bool `json:"auto-apply,omitempty" koanf:"auto-apply"`

	// AutoApplySafeFixes applies style-only fixes without confirmation
	// when running non-interactively.
	AutoApplySafeFixes bool `json:"auto-apply-safe-fixes,omitempty" koanf:"auto-apply-safe-fixes"`

	// RedactSecrets redacts detected secrets from prompts before
	// sending file content to the provider.
	RedactSecrets bool `json:"redact-secrets,omitempty" koanf:"redact-secrets"`

	// MaxTokens is the maximum number of tokens requested per AI call.
	MaxTokens int `json:"max-tokens,omitempty" koanf:"max-tokens"`

	// MaxFixIssues caps how many issues receive AI fixes per run.
	MaxFixIssues int `json:"max-fix-issues,omitempty" koanf:"max-fix-issues"`

	// MaxParallelCalls caps concurrent API calls during fix generation.
	MaxParallelCalls int `json:"max-parallel-calls,omitempty" koanf:"max-parallel-calls"`

	// MaxRetries is the retry budget for transient API failures.
	// 0 disables retries.
	MaxRetries int `json:"max-retries,omitempty" koanf:"max-retries"`

	// APITimeout is the per-call timeout (e.g. "60s"). Parsed with
	// time.ParseDuration at runtime.
	APITimeout string `json:"api-timeout,omitempty" koanf:"api-timeout"`

	// ValidateAfterGroup re-runs tools immediately after each accepted
	// group during interactive review.
	ValidateAfterGroup bool `json:"validate-after-group,omitempty" koanf:"validate-after-group"`

	// ShowCostEstimate displays token counts and estimated cost.
	ShowCostEstimate bool `json:"show-cost-estimate,omitempty" koanf:"show-cost-estimate"`

	// ContextLines is the number of source lines included before and
	// after the issue line in fix prompts.
	ContextLines int `json:"context-lines,omitempty" koanf:"context-lines"`

	// FixSearchRadius is the number of lines searched above and below
	// the reported line when applying a fix.
	FixSearchRadius int `json:"fix-search-radius,omitempty" koanf:"fix-search-radius"`

	// RetryBaseDelay is the delay before the first retry (e.g. "1s").
	RetryBaseDelay string `json:"retry-base-delay,omitempty" koanf:"retry-base-delay"`

	// RetryMaxDelay caps the delay between retries (e.g. "30s").
	RetryMaxDelay string `json:"retry-max-delay,omitempty" koanf:"retry-max-delay"`

	// RetryBackoffFactor is the multiplier applied to the retry delay
	// after each attempt.
	RetryBackoffFactor float64 `json:"retry-backoff-factor,omitempty" koanf:"retry-backoff-factor"`
}

// Timeout returns the per-call API timeout.
func (c AIConfig) Timeout() time.Duration {
	return parseDurationOr(c.APITimeout, 60*time.Second)
}

// BaseDelay returns the delay before the first retry attempt.
func (c AIConfig) BaseDelay() time.Duration {
	return parseDurationOr(c.RetryBaseDelay, time.Second)
}

// MaxDelay returns the maximum delay between retry attempts.
func (c AIConfig) MaxDelay() time.Duration {
	return parseDurationOr(c.RetryMaxDelay, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
		},
		Tools: ToolsConfig{
			LineLength: 100,
		},
		AI: AIConfig{
			Enabled:            false,
			Provider:           "anthropic",
			AutoApply:          false,
			AutoApplySafeFixes: true,
			RedactSecrets:      true,
			MaxTokens:          4096,
			MaxFixIssues:       20,
			MaxParallelCalls:   5,
			MaxRetries:         2,
			APITimeout:         "60s",
			ShowCostEstimate:   true,
			ContextLines:       15,
			FixSearchRadius:    5,
			RetryBaseDelay:     "1s",
			RetryMaxDelay:      "30s",
			RetryBackoffFactor: 2.0,
		},
	}
}

// Load loads configuration for a start path (usually the working
// directory). It discovers the closest config file, loads it, and
// applies environment variable overrides.
func Load(startPath string) (*Config, error) {
	return loadWithConfigPath(Discover(startPath))
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath)
}

// loadWithConfigPath is an internal helper that loads config with an optional config file path.
func loadWithConfigPath(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if err := loadConfigFile(k, configPath); err != nil {
		return nil, err
	}

	// 3. Load environment variables (LINTRO_* prefix)
	// LINTRO_AI_MAX_FIX_ISSUES -> ai.max-fix-issues
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	// 4. Validate the merged config and decode.
	cfg, err := decodeConfig(k)
	if err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// knownHyphenatedKeys lists dot-separated patterns with their hyphenated
// equivalents, ordered longest first so a shorter replacement never splits
// a longer key it is a prefix of.
var knownHyphenatedKeys = [][2]string{
	{"auto.apply.safe.fixes", "auto-apply-safe-fixes"},
	{"validate.after.group", "validate-after-group"},
	{"retry.backoff.factor", "retry-backoff-factor"},
	{"show.cost.estimate", "show-cost-estimate"},
	{"fix.search.radius", "fix-search-radius"},
	{"max.parallel.calls", "max-parallel-calls"},
	{"retry.base.delay", "retry-base-delay"},
	{"retry.max.delay", "retry-max-delay"},
	{"max.fix.issues", "max-fix-issues"},
	{"redact.secrets", "redact-secrets"},
	{"context.lines", "context-lines"},
	{"api.key.env", "api-key-env"},
	{"api.timeout", "api-timeout"},
	{"default.fix", "default-fix"},
	{"line.length", "line-length"},
	{"max.retries", "max-retries"},
	{"max.tokens", "max-tokens"},
	{"auto.apply", "auto-apply"},
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"output": {},
	"tools":  {},
	"ai":     {},
}

// envKeyTransform converts environment variable names to config keys.
// LINTRO_OUTPUT_FORMAT -> output.format
// LINTRO_AI_MAX_FIX_ISSUES -> ai.max-fix-issues
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	// Convert to lowercase and replace _ with . for nesting
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	// Fix known hyphenated keys using the lookup table
	for _, kv := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, kv[0], kv[1])
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

// Discover finds the closest config file for a start path.
// A directory is searched directly; a file path starts the search in its
// parent directory. The search walks up the directory tree, checking for
// config files at each level.
// Returns empty string if no config file is found.
func Discover(startPath string) string {
	// Get absolute path to handle relative paths correctly
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		// Check each config file name in priority order
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		// Move up to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
