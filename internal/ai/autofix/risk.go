package autofix

import (
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/pmezard/go-difflib/difflib"
)

// Risk classifications for fix suggestions.
const (
	SafeStyleRisk  = "safe-style"
	BehavioralRisk = "behavioral-risk"
)

// ClassifyFixRisk classifies a suggestion as style-only or behavioral.
// The model's self-reported risk level is trusted for safe-style only
// when its confidence is high or medium; everything else, including an
// unknown or empty risk level, is behavioral.
func ClassifyFixRisk(s *FixSuggestion) string {
	risk := strings.ToLower(strings.TrimSpace(s.RiskLevel))
	if risk != SafeStyleRisk {
		return BehavioralRisk
	}

	confidence := strings.ToLower(strings.TrimSpace(s.Confidence))
	if confidence == "high" || confidence == "medium" {
		return SafeStyleRisk
	}
	return BehavioralRisk
}

// IsSafeStyleFix reports whether the suggestion classifies as
// style-only.
func IsSafeStyleFix(s *FixSuggestion) bool {
	return ClassifyFixRisk(s) == SafeStyleRisk
}

// CalculatePatchStats aggregates patch statistics for a group of
// suggestions. Suggestions with a diff are counted from the diff;
// the rest estimate churn by matching the original and suggested
// snippets line by line.
func CalculatePatchStats(suggestions []*FixSuggestion) PatchStats {
	var stats PatchStats
	if len(suggestions) == 0 {
		return stats
	}

	files := make(map[string]struct{})
	for _, s := range suggestions {
		if s.File != "" {
			files[filepath.Clean(s.File)] = struct{}{}
		}
	}
	stats.Files = len(files)

	for _, s := range suggestions {
		if strings.TrimSpace(s.Diff) != "" {
			hunks, added, removed := countDiff(s.Diff)
			stats.Hunks += hunks
			stats.LinesAdded += added
			stats.LinesRemoved += removed
			continue
		}

		hunks, added, removed := estimateChurn(s.OriginalCode, s.SuggestedCode)
		stats.Hunks += hunks
		stats.LinesAdded += added
		stats.LinesRemoved += removed
	}

	return stats
}

// countDiff counts hunks and changed lines in a unified diff. Diffs the
// parser rejects are counted by line prefix instead.
func countDiff(diff string) (hunks, added, removed int) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err == nil && len(parsed) > 0 {
		for _, f := range parsed {
			hunks += len(f.TextFragments)
			for _, frag := range f.TextFragments {
				added += int(frag.LinesAdded)
				removed += int(frag.LinesDeleted)
			}
		}
		return hunks, added, removed
	}

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			hunks++
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed++
		}
	}
	return hunks, added, removed
}

// estimateChurn computes actual line churn between two snippets for
// suggestions that carry no diff.
func estimateChurn(original, suggested string) (hunks, added, removed int) {
	matcher := difflib.NewMatcher(splitLines(original), splitLines(suggested))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			removed += op.I2 - op.I1
			added += op.J2 - op.J1
			hunks++
		case 'd':
			removed += op.I2 - op.I1
			hunks++
		case 'i':
			added += op.J2 - op.J1
			hunks++
		}
	}
	return hunks, added, removed
}
