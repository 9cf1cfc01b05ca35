package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

// Tunable ranges enforced by clamp. Out-of-range values are corrected
// rather than failing the whole run.
const (
	minParallelCalls = 1
	maxParallelCalls = 20
	maxRetryLimit    = 10
	minContextLines  = 1
	maxContextLines  = 100
	minSearchRadius  = 1
	maxSearchRadius  = 50
)

func decodeConfig(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.AI.clamp()
	return &cfg, nil
}

// validate reports configuration errors that cannot be corrected by
// clamping.
func (c *Config) validate() error {
	switch strings.ToLower(c.Output.Format) {
	case "", "text", "json", "markdown":
	default:
		return fmt.Errorf("output.format: unknown format %q (supported: text, json, markdown)", c.Output.Format)
	}
	return c.AI.validate()
}

func (c *AIConfig) validate() error {
	switch strings.ToLower(c.Provider) {
	case "", "anthropic", "openai":
	default:
		return fmt.Errorf("ai.provider: unknown provider %q (supported: anthropic, openai)", c.Provider)
	}

	durations := []struct {
		key   string
		value string
	}{
		{"ai.api-timeout", c.APITimeout},
		{"ai.retry-base-delay", c.RetryBaseDelay},
		{"ai.retry-max-delay", c.RetryMaxDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", d.key, d.value, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s: duration must be positive, got %q", d.key, d.value)
		}
	}

	if c.MaxDelay() < c.BaseDelay() {
		return fmt.Errorf(
			"ai.retry-max-delay (%s) must be at least ai.retry-base-delay (%s)",
			c.MaxDelay(), c.BaseDelay(),
		)
	}
	return nil
}

// clamp forces tunables into their supported ranges.
func (c *AIConfig) clamp() {
	if c.MaxTokens < 1 {
		c.MaxTokens = 1
	}
	if c.MaxFixIssues < 1 {
		c.MaxFixIssues = 1
	}
	c.MaxParallelCalls = clampInt(c.MaxParallelCalls, minParallelCalls, maxParallelCalls)
	c.MaxRetries = clampInt(c.MaxRetries, 0, maxRetryLimit)
	c.ContextLines = clampInt(c.ContextLines, minContextLines, maxContextLines)
	c.FixSearchRadius = clampInt(c.FixSearchRadius, minSearchRadius, maxSearchRadius)
	if c.RetryBackoffFactor < 1 {
		c.RetryBackoffFactor = 1
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
