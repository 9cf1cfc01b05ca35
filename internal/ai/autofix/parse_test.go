package autofix

import (
	"strings"
	"testing"
)

func TestParseFixResponse(t *testing.T) {
	t.Parallel()

	content := `{
		"original_code": "import os\nimport sys",
		"suggested_code": "import sys",
		"explanation": "Remove unused import of os",
		"confidence": "high",
		"risk_level": "behavioral-risk"
	}`

	s := parseFixResponse(content, "/ws/app.py", 1, "F401")
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.File != "/ws/app.py" || s.Line != 1 || s.Code != "F401" {
		t.Errorf("location = %s:%d [%s]", s.File, s.Line, s.Code)
	}
	if s.OriginalCode != "import os\nimport sys" {
		t.Errorf("original = %q", s.OriginalCode)
	}
	if s.SuggestedCode != "import sys" {
		t.Errorf("suggested = %q", s.SuggestedCode)
	}
	if s.Explanation != "Remove unused import of os" {
		t.Errorf("explanation = %q", s.Explanation)
	}
	if s.Confidence != "high" {
		t.Errorf("confidence = %q", s.Confidence)
	}
	if s.RiskLevel != "behavioral-risk" {
		t.Errorf("risk level = %q", s.RiskLevel)
	}
	if !strings.Contains(s.Diff, "-import os") {
		t.Errorf("diff missing removal:\n%s", s.Diff)
	}
}

func TestParseFixResponseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "sorry, I cannot help with that"},
		{name: "fenced json", content: "```json\n{\"original_code\": \"a\", \"suggested_code\": \"b\"}\n```"},
		{name: "missing original", content: `{"suggested_code": "b"}`},
		{name: "missing suggested", content: `{"original_code": "a"}`},
		{name: "no change proposed", content: `{"original_code": "a", "suggested_code": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if s := parseFixResponse(tt.content, "x.py", 1, "E1"); s != nil {
				t.Errorf("expected nil, got %+v", s)
			}
		})
	}
}

func TestParseFixResponseConfidenceDefault(t *testing.T) {
	t.Parallel()

	// Absent confidence defaults to medium.
	s := parseFixResponse(`{"original_code": "a", "suggested_code": "b"}`, "x.py", 1, "E1")
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.Confidence != "medium" {
		t.Errorf("confidence = %q, want medium", s.Confidence)
	}

	// An explicit empty confidence is preserved as-is.
	s = parseFixResponse(`{"original_code": "a", "suggested_code": "b", "confidence": ""}`, "x.py", 1, "E1")
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.Confidence != "" {
		t.Errorf("confidence = %q, want empty", s.Confidence)
	}
}
