// Package ai provides the completion capability consumed by the fix
// pipeline: provider clients (Anthropic, OpenAI), the retry policy
// around them, cost estimation, and the provider error taxonomy.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Request describes one completion call.
type Request struct {
	// Prompt is the user message sent to the model.
	Prompt string

	// System is an optional system prompt. Empty means none.
	System string

	// MaxTokens caps the generated output. Providers clamp this to
	// their configured per-provider maximum.
	MaxTokens int

	// Timeout bounds the call wall-clock time. Zero means the
	// provider default of 60s.
	Timeout time.Duration
}

// Response carries the model output plus usage telemetry.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
	CostEstimate float64
	Provider     string
}

// Provider is the completion capability the fix pipeline consumes.
//
// Error contract for Complete:
//   - *AuthError for authentication failures (permanent)
//   - *RateLimitError for throttling (transient)
//   - *TokenLimitError for context-window overflow
//   - *ProviderError for any other provider/network failure (transient)
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
	Model() string
}

// DefaultTimeout is the per-call timeout applied when a request
// carries none.
const DefaultTimeout = 60 * time.Second

// Provider defaults. The summary path needs these without
// constructing a client, so they live here rather than on the
// implementations.
var (
	DefaultModels = map[string]string{
		"anthropic": "claude-sonnet-4-6",
		"openai":    "gpt-4o",
	}

	DefaultAPIKeyEnvs = map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
	}
)

// DefaultModel returns the default model for a provider name, or ""
// when the provider is unknown.
func DefaultModel(providerName string) string {
	return DefaultModels[strings.ToLower(providerName)]
}

// Options configures provider construction.
type Options struct {
	// Provider selects the implementation: "anthropic" or "openai".
	Provider string

	// Model overrides the provider's default model.
	Model string

	// APIKeyEnv overrides the environment variable holding the key.
	APIKeyEnv string

	// MaxTokens is the provider-level output cap. Per-call requests
	// are clamped to it.
	MaxTokens int
}

// NewProvider instantiates a provider from options. Unknown provider
// names are an error naming the supported set.
func NewProvider(opts Options) (Provider, error) {
	switch strings.ToLower(opts.Provider) {
	case "anthropic":
		return NewAnthropicProvider(opts), nil
	case "openai":
		return NewOpenAIProvider(opts), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q (supported: anthropic, openai)", opts.Provider)
	}
}

// resolveKeyEnv picks the environment variable holding the API key,
// preferring the configured override over the provider default.
func resolveKeyEnv(providerName, override string) string {
	if override != "" {
		return override
	}
	return DefaultAPIKeyEnvs[providerName]
}

// apiKeyFromEnv resolves the API key for a provider.
func apiKeyFromEnv(providerName, apiKeyEnv string) (string, error) {
	env := resolveKeyEnv(providerName, apiKeyEnv)
	key := os.Getenv(env)
	if key == "" {
		return "", &AuthError{
			Provider: providerName,
			Err:      fmt.Errorf("no API key found; set the %s environment variable", env),
		}
	}
	return key, nil
}

// callTimeout returns the effective timeout for a request.
func callTimeout(req Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return DefaultTimeout
}

// clampTokens returns the lower of the caller's request and the
// provider-level cap. Zero values defer to the other side.
func clampTokens(requested, limit int) int {
	if requested <= 0 {
		if limit > 0 {
			return limit
		}
		return 1024
	}
	if limit > 0 && requested > limit {
		return limit
	}
	return requested
}
