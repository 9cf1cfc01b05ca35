package autofix

import (
	"github.com/lintro-dev/lintro/internal/tool"
)

// EnsureAIMetadata returns the result's AI metadata container,
// creating it when absent.
func EnsureAIMetadata(r *tool.Result) map[string]any {
	if r.AIMetadata == nil {
		r.AIMetadata = make(map[string]any)
	}
	return r.AIMetadata
}

// AttachFixSuggestions appends suggestion payloads to the result's
// metadata without overwriting payloads attached earlier.
func AttachFixSuggestions(r *tool.Result, suggestions []*FixSuggestion) {
	md := EnsureAIMetadata(r)
	existing, _ := md["fix_suggestions"].([]any)
	for _, s := range suggestions {
		existing = append(existing, suggestionPayload(s))
	}
	md["fix_suggestions"] = existing
}

// AttachFixedCount records how many AI fixes were applied for this
// result. The legacy fixed_count key is kept alongside applied_count.
func AttachFixedCount(r *tool.Result, fixedCount int) {
	md := EnsureAIMetadata(r)
	applied := max(0, fixedCount)
	md["fixed_count"] = applied
	md["applied_count"] = applied
}

// AttachValidationCounts records per-tool validation outcomes for
// applied fixes.
func AttachValidationCounts(r *tool.Result, verified, unverified int) {
	md := EnsureAIMetadata(r)
	md["verified_count"] = max(0, verified)
	md["unverified_count"] = max(0, unverified)
}

// suggestionPayload converts a suggestion to the JSON-serializable
// shape stored in result metadata.
func suggestionPayload(s *FixSuggestion) map[string]any {
	return map[string]any{
		"file":          s.File,
		"line":          s.Line,
		"code":          s.Code,
		"tool_name":     s.ToolName,
		"explanation":   s.Explanation,
		"confidence":    s.Confidence,
		"risk_level":    s.RiskLevel,
		"diff":          s.Diff,
		"input_tokens":  s.InputTokens,
		"output_tokens": s.OutputTokens,
		"cost_estimate": s.CostEstimate,
	}
}

// Normalize converts legacy and current AI metadata shapes into one
// stable shape for JSON output. Unknown keys are dropped.
func Normalize(raw map[string]any) map[string]any {
	normalized := make(map[string]any)
	if raw == nil {
		return normalized
	}

	if summary, ok := raw["summary"].(map[string]any); ok {
		normalized["summary"] = summary
	}

	suggestionsRaw, present := raw["fix_suggestions"]
	if !present || suggestionsRaw == nil {
		// Backward-compatible read for the legacy key.
		suggestionsRaw = raw["suggestions"]
	}
	if list, ok := suggestionsRaw.([]any); ok {
		items := make([]any, 0, len(list))
		for _, item := range list {
			if m, isMap := item.(map[string]any); isMap {
				items = append(items, m)
			}
		}
		normalized["fix_suggestions"] = items
	}

	fixedCount, hasFixed := intValue(raw["fixed_count"])
	if hasFixed {
		normalized["fixed_count"] = fixedCount
	}
	if applied, ok := intValue(raw["applied_count"]); ok {
		normalized["applied_count"] = applied
	} else if hasFixed {
		normalized["applied_count"] = fixedCount
	}
	if v, ok := intValue(raw["verified_count"]); ok {
		normalized["verified_count"] = v
	}
	if v, ok := intValue(raw["unverified_count"]); ok {
		normalized["unverified_count"] = v
	}
	return normalized
}

// intValue reads an int out of metadata that may have round-tripped
// through JSON, where numbers decode as float64.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
