package autofix

import (
	"fmt"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// redactPrompt strips detected secrets from a prompt before it leaves
// the process. The gitleaks detector is built once per generator and
// shared across workers.
func (g *fixGenerator) redactPrompt(prompt string) (string, error) {
	g.detOnce.Do(func() {
		g.det, g.detErr = g.gitleaksFactory()
	})
	if g.detErr != nil {
		return "", fmt.Errorf("redact-secrets enabled but detector init failed: %w", g.detErr)
	}
	redacted, redactions := redactSecrets(g.det, prompt)
	_ = redactions // Intentionally not logged (avoid leakage via logs).
	return redacted, nil
}

func redactSecrets(det *detect.Detector, input string) (string, int) {
	findings := det.DetectString(input)
	if len(findings) == 0 {
		return input, 0
	}
	out := input
	redactions := 0
	for _, f := range findings {
		if f.Secret == "" {
			continue
		}
		if strings.Contains(out, f.Secret) {
			out = strings.ReplaceAll(out, f.Secret, "REDACTED")
			redactions++
		}
	}
	return out, redactions
}
