package autofix

import (
	"encoding/json"
	"log/slog"
)

// fixResponse is the JSON contract the model must answer with.
type fixResponse struct {
	OriginalCode  string  `json:"original_code"`
	SuggestedCode string  `json:"suggested_code"`
	Explanation   string  `json:"explanation"`
	Confidence    *string `json:"confidence"`
	RiskLevel     string  `json:"risk_level"`
}

// parseFixResponse turns a raw model response into a FixSuggestion.
// Returns nil when the response is not valid JSON, is missing either
// code snippet, or proposes no change.
func parseFixResponse(content, filePath string, line int, code string) *FixSuggestion {
	var data fixResponse
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		slog.Debug("failed to parse AI fix response", "file", filePath, "line", line)
		return nil
	}

	if data.OriginalCode == "" || data.SuggestedCode == "" || data.OriginalCode == data.SuggestedCode {
		return nil
	}

	confidence := "medium"
	if data.Confidence != nil {
		confidence = *data.Confidence
	}

	return &FixSuggestion{
		File:          filePath,
		Line:          line,
		Code:          code,
		OriginalCode:  data.OriginalCode,
		SuggestedCode: data.SuggestedCode,
		Diff:          generateDiff(filePath, data.OriginalCode, data.SuggestedCode),
		Explanation:   data.Explanation,
		Confidence:    confidence,
		RiskLevel:     data.RiskLevel,
	}
}
