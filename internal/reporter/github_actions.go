package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lintro-dev/lintro/internal/tool"
)

// GitHubActionsReporter formats issues as GitHub Actions workflow commands.
// These commands appear as annotations in the GitHub Actions UI.
//
// Format: ::warning file={file},line={line},col={col},title={title}::{message}
//
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions#setting-an-error-message
type GitHubActionsReporter struct {
	writer io.Writer
}

// NewGitHubActionsReporter creates a new GitHub Actions reporter.
func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{writer: w}
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(results []*tool.Result, _ ReportMetadata) error {
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, iss := range SortIssues(res.Issues) {
			// Tools report no severity of their own, so every
			// annotation surfaces as a warning.
			title := res.ToolName
			if iss.Code != "" {
				title = res.ToolName + ": " + iss.Code
			}

			// Normalize file path to forward slashes for consistent output
			parts := []string{"file=" + escapeGitHubProperty(filepath.ToSlash(iss.File))}
			if iss.Line > 0 {
				parts = append(parts, fmt.Sprintf("line=%d", iss.Line))
				if iss.Column > 0 {
					parts = append(parts, fmt.Sprintf("col=%d", iss.Column))
				}
			}
			parts = append(parts, "title="+escapeGitHubProperty(title))

			// Escape message (newlines not allowed in workflow commands)
			message := escapeGitHubMessage(iss.Message)

			if _, err := fmt.Fprintf(r.writer, "::warning %s::%s\n",
				strings.Join(parts, ","),
				message,
			); err != nil {
				return err
			}
		}
	}

	return nil
}

// escapeGitHubMessage escapes special characters in GitHub Actions workflow command messages.
// Messages use escapeData() rules which escape "%", "\r", "\n" but NOT ":" or ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubMessage(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeGitHubProperty escapes special characters in GitHub Actions workflow command properties.
// Properties (file, title, etc.) use escapeProperty() rules which escape "%", "\r", "\n", ":", and ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubProperty(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
