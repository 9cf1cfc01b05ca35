package autofix

import (
	"strconv"
	"strings"
)

// fixSystemPrompt frames every fix request sent to the provider.
const fixSystemPrompt = "You are a senior software engineer fixing code quality issues. " +
	"Provide minimal, targeted fixes that resolve the reported issue " +
	"without changing unrelated code. " +
	"Respond ONLY with the requested JSON format, no markdown fences."

// promptData carries everything the per-issue fix prompt renders.
type promptData struct {
	Tool    string
	Code    string
	File    string
	Line    int
	Message string

	Context      string
	ContextStart int
	ContextEnd   int
}

func buildFixPrompt(d promptData) string {
	var b strings.Builder
	writeIssueHeader(&b, d)
	writeContextBlock(&b, d)
	writeResponseContract(&b)
	return b.String()
}

func writeIssueHeader(b *strings.Builder, d promptData) {
	b.WriteString("Tool: ")
	b.WriteString(d.Tool)
	b.WriteString("\nError code: ")
	b.WriteString(d.Code)
	b.WriteString("\nFile: ")
	b.WriteString(d.File)
	b.WriteString("\nLine: ")
	b.WriteString(strconv.Itoa(d.Line))
	b.WriteString("\nIssue: ")
	b.WriteString(d.Message)
	b.WriteString("\n\n")
}

func writeContextBlock(b *strings.Builder, d promptData) {
	b.WriteString("Here is the relevant section of the file (lines ")
	b.WriteString(strconv.Itoa(d.ContextStart))
	b.WriteString("-")
	b.WriteString(strconv.Itoa(d.ContextEnd))
	b.WriteString("):\n```\n")
	normalized := normalizeLF(d.Context)
	b.WriteString(normalized)
	if normalized != "" && !strings.HasSuffix(normalized, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")
}

func writeResponseContract(b *strings.Builder) {
	b.WriteString(`Provide a fix for this issue. Only change what is necessary.

Respond in this exact JSON format:
{
  "original_code": "the exact lines that need to change (copy from above)",
  "suggested_code": "the corrected version of those lines",
  "explanation": "Imperative fix description (e.g. 'Add docstring for X')",
  "confidence": "high|medium|low",
  "risk_level": "safe-style|behavioral-risk"
}

Risk level guidelines:
- "safe-style": whitespace, formatting, trailing commas, quote style, line length ` + "—" + ` changes that ONLY affect style and cannot alter runtime behavior
- "behavioral-risk": anything that adds, removes, or changes logic, imports, type annotations, docstrings, variable names, or control flow
`)
}
