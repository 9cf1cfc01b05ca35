package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output.Format != "text" {
		t.Errorf("Default Output.Format = %q, want %q", cfg.Output.Format, "text")
	}

	if cfg.Tools.LineLength != 100 {
		t.Errorf("Default Tools.LineLength = %d, want 100", cfg.Tools.LineLength)
	}

	if cfg.AI.Enabled {
		t.Error("Default AI.Enabled = true, want false")
	}

	if cfg.AI.Provider != "anthropic" {
		t.Errorf("Default AI.Provider = %q, want %q", cfg.AI.Provider, "anthropic")
	}

	if cfg.AI.AutoApply {
		t.Error("Default AI.AutoApply = true, want false")
	}

	if !cfg.AI.AutoApplySafeFixes {
		t.Error("Default AI.AutoApplySafeFixes = false, want true")
	}

	if cfg.AI.MaxTokens != 4096 {
		t.Errorf("Default AI.MaxTokens = %d, want 4096", cfg.AI.MaxTokens)
	}

	if cfg.AI.MaxFixIssues != 20 {
		t.Errorf("Default AI.MaxFixIssues = %d, want 20", cfg.AI.MaxFixIssues)
	}

	if cfg.AI.MaxParallelCalls != 5 {
		t.Errorf("Default AI.MaxParallelCalls = %d, want 5", cfg.AI.MaxParallelCalls)
	}

	if cfg.AI.MaxRetries != 2 {
		t.Errorf("Default AI.MaxRetries = %d, want 2", cfg.AI.MaxRetries)
	}

	if cfg.AI.ContextLines != 15 {
		t.Errorf("Default AI.ContextLines = %d, want 15", cfg.AI.ContextLines)
	}

	if cfg.AI.FixSearchRadius != 5 {
		t.Errorf("Default AI.FixSearchRadius = %d, want 5", cfg.AI.FixSearchRadius)
	}

	if !cfg.AI.ShowCostEstimate {
		t.Error("Default AI.ShowCostEstimate = false, want true")
	}
}

func TestAIConfigDurations(t *testing.T) {
	cfg := Default().AI

	if got := cfg.Timeout(); got != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", got)
	}
	if got := cfg.BaseDelay(); got != time.Second {
		t.Errorf("BaseDelay() = %v, want 1s", got)
	}
	if got := cfg.MaxDelay(); got != 30*time.Second {
		t.Errorf("MaxDelay() = %v, want 30s", got)
	}

	cfg.APITimeout = "90s"
	if got := cfg.Timeout(); got != 90*time.Second {
		t.Errorf("Timeout() = %v, want 90s", got)
	}

	// Unset or unparsable values fall back to the defaults.
	cfg.APITimeout = ""
	if got := cfg.Timeout(); got != 60*time.Second {
		t.Errorf("Timeout() with empty value = %v, want 60s", got)
	}
	cfg.RetryBaseDelay = "not-a-duration"
	if got := cfg.BaseDelay(); got != time.Second {
		t.Errorf("BaseDelay() with bad value = %v, want 1s", got)
	}
}

func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested directories
	subDir := filepath.Join(tmpDir, "project", "src")
	if err := os.MkdirAll(subDir, 0o750); err != nil {
		t.Fatal(err)
	}

	// Create a source file in the deepest directory
	sourcePath := filepath.Join(subDir, "app.py")
	if err := os.WriteFile(sourcePath, []byte("print('hi')\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("no config file", func(t *testing.T) {
		result := Discover(subDir)
		if result != "" {
			t.Errorf("Discover() = %q, want empty string", result)
		}
	})

	t.Run("config in same directory", func(t *testing.T) {
		configPath := filepath.Join(subDir, ".lintro.toml")
		if err := os.WriteFile(configPath, []byte("[output]\nformat = \"json\""), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		result := Discover(subDir)
		if result != configPath {
			t.Errorf("Discover() = %q, want %q", result, configPath)
		}
	})

	t.Run("file path starts search in its parent directory", func(t *testing.T) {
		configPath := filepath.Join(subDir, ".lintro.toml")
		if err := os.WriteFile(configPath, []byte("[output]\nformat = \"json\""), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		result := Discover(sourcePath)
		if result != configPath {
			t.Errorf("Discover() = %q, want %q", result, configPath)
		}
	})

	t.Run("config in parent directory", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "project", "lintro.toml")
		if err := os.WriteFile(configPath, []byte("[output]\nformat = \"json\""), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		result := Discover(subDir)
		if result != configPath {
			t.Errorf("Discover() = %q, want %q", result, configPath)
		}
	})

	t.Run("prefers .lintro.toml over lintro.toml", func(t *testing.T) {
		hiddenConfig := filepath.Join(subDir, ".lintro.toml")
		visibleConfig := filepath.Join(subDir, "lintro.toml")

		if err := os.WriteFile(hiddenConfig, []byte("# hidden"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(hiddenConfig)

		if err := os.WriteFile(visibleConfig, []byte("# visible"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(visibleConfig)

		result := Discover(subDir)
		if result != hiddenConfig {
			t.Errorf("Discover() = %q, want %q (should prefer .lintro.toml)", result, hiddenConfig)
		}
	})

	t.Run("closer config wins", func(t *testing.T) {
		// Config in project root
		rootConfig := filepath.Join(tmpDir, "project", "lintro.toml")
		if err := os.WriteFile(rootConfig, []byte("# root"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(rootConfig)

		// Config in src directory (closer to the working directory)
		srcConfig := filepath.Join(subDir, "lintro.toml")
		if err := os.WriteFile(srcConfig, []byte("# src"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(srcConfig)

		result := Discover(subDir)
		if result != srcConfig {
			t.Errorf("Discover() = %q, want %q (closer config should win)", result, srcConfig)
		}
	})
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("loads defaults when no config", func(t *testing.T) {
		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Output.Format != "text" {
			t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "text")
		}

		if cfg.ConfigFile != "" {
			t.Errorf("ConfigFile = %q, want empty", cfg.ConfigFile)
		}
	})

	t.Run("loads config file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		configContent := `
[output]
format = "json"

[tools]
line-length = 88

[ai]
enabled = true
max-fix-issues = 10
api-timeout = "90s"
`
		if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Output.Format != "json" {
			t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "json")
		}

		if cfg.Tools.LineLength != 88 {
			t.Errorf("Tools.LineLength = %d, want 88", cfg.Tools.LineLength)
		}

		if !cfg.AI.Enabled {
			t.Error("AI.Enabled = false, want true")
		}

		if cfg.AI.MaxFixIssues != 10 {
			t.Errorf("AI.MaxFixIssues = %d, want 10", cfg.AI.MaxFixIssues)
		}

		if got := cfg.AI.Timeout(); got != 90*time.Second {
			t.Errorf("AI.Timeout() = %v, want 90s", got)
		}

		// Values absent from the file keep their defaults.
		if cfg.AI.MaxParallelCalls != 5 {
			t.Errorf("AI.MaxParallelCalls = %d, want 5", cfg.AI.MaxParallelCalls)
		}

		if cfg.ConfigFile != configPath {
			t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, configPath)
		}
	})

	t.Run("environment variables override config", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		configContent := `
[output]
format = "json"

[ai]
max-fix-issues = 10
`
		if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		t.Setenv("LINTRO_OUTPUT_FORMAT", "markdown")
		t.Setenv("LINTRO_AI_MAX_FIX_ISSUES", "7")

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Output.Format != "markdown" {
			t.Errorf("Output.Format = %q, want %q (env should override)", cfg.Output.Format, "markdown")
		}

		if cfg.AI.MaxFixIssues != 7 {
			t.Errorf("AI.MaxFixIssues = %d, want 7 (env should override)", cfg.AI.MaxFixIssues)
		}
	})

	t.Run("clamps out-of-range tunables", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		configContent := `
[ai]
max-parallel-calls = 99
max-retries = 50
context-lines = 0
fix-search-radius = 1000
`
		if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.AI.MaxParallelCalls != 20 {
			t.Errorf("AI.MaxParallelCalls = %d, want 20", cfg.AI.MaxParallelCalls)
		}
		if cfg.AI.MaxRetries != 10 {
			t.Errorf("AI.MaxRetries = %d, want 10", cfg.AI.MaxRetries)
		}
		if cfg.AI.ContextLines != 1 {
			t.Errorf("AI.ContextLines = %d, want 1", cfg.AI.ContextLines)
		}
		if cfg.AI.FixSearchRadius != 50 {
			t.Errorf("AI.FixSearchRadius = %d, want 50", cfg.AI.FixSearchRadius)
		}
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		if err := os.WriteFile(configPath, []byte("[ai]\nprovider = \"gemini\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		if _, err := Load(tmpDir); err == nil {
			t.Error("Load() error = nil, want unknown provider error")
		}
	})

	t.Run("rejects invalid duration", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		if err := os.WriteFile(configPath, []byte("[ai]\napi-timeout = \"banana\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		if _, err := Load(tmpDir); err == nil {
			t.Error("Load() error = nil, want invalid duration error")
		}
	})

	t.Run("rejects retry max delay below base delay", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, ".lintro.toml")
		configContent := `
[ai]
retry-base-delay = "10s"
retry-max-delay = "2s"
`
		if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(configPath)

		if _, err := Load(tmpDir); err == nil {
			t.Error("Load() error = nil, want retry delay ordering error")
		}
	})
}

func TestLoadWithOverrides(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, ".lintro.toml")
	configContent := `
[output]
format = "text"

[ai]
auto-apply = false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LINTRO_OUTPUT_FORMAT", "markdown")

	overrides := map[string]any{
		"output.format": "json",
		"ai":            map[string]any{"auto-apply": true},
	}

	cfg, err := LoadWithOverrides(tmpDir, overrides)
	if err != nil {
		t.Fatalf("LoadWithOverrides() error = %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want %q (override should beat file and env)", cfg.Output.Format, "json")
	}

	if !cfg.AI.AutoApply {
		t.Error("AI.AutoApply = false, want true (override should beat file)")
	}

	if cfg.ConfigFile != configPath {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, configPath)
	}
}

func TestEnvKeyTransform(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"OUTPUT_FORMAT", "output.format"},
		{"LINTRO_OUTPUT_FORMAT", "output.format"},
		{"TOOLS_LINE_LENGTH", "tools.line-length"},
		{"AI_ENABLED", "ai.enabled"},
		{"AI_MAX_FIX_ISSUES", "ai.max-fix-issues"},
		{"AI_API_KEY_ENV", "ai.api-key-env"},
		{"AI_AUTO_APPLY", "ai.auto-apply"},
		{"AI_AUTO_APPLY_SAFE_FIXES", "ai.auto-apply-safe-fixes"},
		{"AI_RETRY_BASE_DELAY", "ai.retry-base-delay"},
		{"AI_RETRY_BACKOFF_FACTOR", "ai.retry-backoff-factor"},
		// Keys outside the known sections are filtered out.
		{"PATH", ""},
		{"EDITOR_SOMETHING", ""},
	}

	for _, tt := range tests {
		got, _ := envKeyTransform(tt.input, "x")
		if got != tt.want {
			t.Errorf("envKeyTransform(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, v := envKeyTransform("AI_ENABLED", "true"); v != "true" {
		t.Errorf("envKeyTransform value = %v, want %q", v, "true")
	}
}

func TestLoadFromMarshaledConfig(t *testing.T) {
	doc := map[string]any{
		"output": map[string]any{"format": "json"},
		"tools": map[string]any{
			"line-length": 88,
			"only":        []string{"ruff"},
		},
		"ai": map[string]any{
			"enabled":        true,
			"provider":       "openai",
			"max-fix-issues": 5,
		},
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), ".lintro.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "json")
	}
	if cfg.Tools.LineLength != 88 {
		t.Errorf("Tools.LineLength = %d, want 88", cfg.Tools.LineLength)
	}
	if len(cfg.Tools.Only) != 1 || cfg.Tools.Only[0] != "ruff" {
		t.Errorf("Tools.Only = %v, want [ruff]", cfg.Tools.Only)
	}
	if !cfg.AI.Enabled {
		t.Error("AI.Enabled = false, want true")
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, "openai")
	}
	if cfg.AI.MaxFixIssues != 5 {
		t.Errorf("AI.MaxFixIssues = %d, want 5", cfg.AI.MaxFixIssues)
	}
	// Untouched keys keep their defaults.
	if cfg.AI.MaxTokens != 4096 {
		t.Errorf("AI.MaxTokens = %d, want default 4096", cfg.AI.MaxTokens)
	}
}
