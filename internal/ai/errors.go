package ai

import (
	"errors"
	"fmt"
)

// Error contract for provider calls:
//   - AuthError: invalid/missing credentials, permanent, never retried
//   - RateLimitError: provider throttling, transient, retried with backoff
//   - ProviderError: any other provider/network failure, transient, retried
//   - TokenLimitError: request exceeded the model's context window
//   - NotAvailableError: AI support is not usable in this environment

// AuthError indicates an authentication or authorization failure.
// Waiting cannot fix it, so the retry policy re-raises it immediately.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError indicates the provider rejected the call due to throttling.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded: %v", e.Provider, e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }

// ProviderError indicates a generic provider failure (network error,
// server error, timeout). Eligible for retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}
func (e *ProviderError) Unwrap() error { return e.Err }

// TokenLimitError indicates the request exceeded the model's context window.
type TokenLimitError struct {
	Provider string
	Err      error
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("%s token limit exceeded: %v", e.Provider, e.Err)
}
func (e *TokenLimitError) Unwrap() error { return e.Err }

// NotAvailableError indicates AI support cannot be used in this
// environment (disabled in config, unknown provider, missing API key).
type NotAvailableError struct {
	Reason string
}

func (e *NotAvailableError) Error() string {
	return "ai not available: " + e.Reason
}

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
