package ai

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

var (
	availMu    sync.Mutex
	availCache = map[string]bool{}
)

// IsAvailable reports whether the configured provider is usable: the
// provider name is known and its API key environment variable is set.
// Probe results are cached per environment variable.
func IsAvailable(opts Options) bool {
	name := strings.ToLower(opts.Provider)
	if _, ok := DefaultAPIKeyEnvs[name]; !ok {
		return false
	}
	env := resolveKeyEnv(name, opts.APIKeyEnv)

	availMu.Lock()
	defer availMu.Unlock()
	if v, ok := availCache[env]; ok {
		return v
	}
	v := os.Getenv(env) != ""
	availCache[env] = v
	return v
}

// RequireAvailable returns a NotAvailableError naming what is missing
// when the configured provider cannot be used.
func RequireAvailable(opts Options) error {
	name := strings.ToLower(opts.Provider)
	if _, ok := DefaultAPIKeyEnvs[name]; !ok {
		return &NotAvailableError{
			Reason: fmt.Sprintf("unknown provider %q (supported: anthropic, openai)", opts.Provider),
		}
	}
	if !IsAvailable(opts) {
		env := resolveKeyEnv(name, opts.APIKeyEnv)
		return &NotAvailableError{
			Reason: fmt.Sprintf("no API key found; set the %s environment variable", env),
		}
	}
	return nil
}

// ResetAvailabilityCache clears cached probe results. Tests that
// change API key environment variables call this between cases.
func ResetAvailabilityCache() {
	availMu.Lock()
	defer availMu.Unlock()
	availCache = map[string]bool{}
}
