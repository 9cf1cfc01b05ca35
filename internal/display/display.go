// Package display provides shared terminal rendering primitives for AI
// output sections: styled headers, panels, diff coloring, and cost lines.
//
// Styling uses Lip Gloss with termenv color detection (respects NO_COLOR,
// CLICOLOR_FORCE, terminal detection). All helpers degrade to plain text
// when colors are unavailable.
package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gkampitakis/ciinfo"
	"github.com/muesli/termenv"

	"github.com/lintro-dev/lintro/internal/ai"
)

// BorderLength is the width of section borders and panel content.
const BorderLength = 80

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	// Section header style
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")) // Cyan

	// Error code style in panel titles
	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("3")) // Yellow

	cyanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")) // Cyan

	greenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // Green

	yellowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")) // Yellow

	redStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")) // Red

	dimStyle = lipgloss.NewStyle().
			Faint(true)

	boldStyle = lipgloss.NewStyle().
			Bold(true)

	// Bordered panel for error-code groups
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")). // Cyan
			Padding(0, 1)

	// Smaller panel for per-fix locations
	innerPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")). // Gray
			Padding(0, 1)

	plainPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// DisableColors forces plain rendering for the rest of the process.
// The CLI calls this for --no-color.
func DisableColors() {
	useColors = false
}

func styled(st lipgloss.Style, s string) string {
	if !useColors {
		return s
	}
	return st.Render(s)
}

// Cyan styles a string cyan when colors are enabled.
func Cyan(s string) string { return styled(cyanStyle, s) }

// Green styles a string green when colors are enabled.
func Green(s string) string { return styled(greenStyle, s) }

// Yellow styles a string yellow when colors are enabled.
func Yellow(s string) string { return styled(yellowStyle, s) }

// Red styles a string red when colors are enabled.
func Red(s string) string { return styled(redStyle, s) }

// Dim styles a string faint when colors are enabled.
func Dim(s string) string { return styled(dimStyle, s) }

// Bold styles a string bold when colors are enabled.
func Bold(s string) string { return styled(boldStyle, s) }

// Border returns the horizontal rule used around section headers.
func Border() string {
	return strings.Repeat("━", BorderLength)
}

// SectionHeader renders the banner that precedes an AI output section:
// a blank line, a cyan border, the emoji + label with detail, an
// optional dim cost line, and a closing border.
func SectionHeader(emoji, label, detail, costInfo string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Cyan(Border()))
	b.WriteString("\n")
	b.WriteString(styled(headerStyle, emoji+"  "+label))
	b.WriteString(" — ")
	b.WriteString(detail)
	b.WriteString("\n")
	if costInfo != "" {
		b.WriteString(Dim(costInfo))
		b.WriteString("\n")
	}
	b.WriteString(Cyan(Border()))
	b.WriteString("\n")
	return b.String()
}

// PanelTitle builds the "[i/N]  CODE  tool  (n files)" heading shown
// above each error-code group.
func PanelTitle(index, total int, code, tool string, count int, countLabel string) string {
	plural := ""
	if count != 1 {
		plural = "s"
	}
	title := styled(headerStyle, fmt.Sprintf("[%d/%d]", index, total)) + "  " + styled(codeStyle, code)
	if tool != "" {
		title += "  " + Dim(tool)
	}
	title += "  " + Dim(fmt.Sprintf("(%d %s%s)", count, countLabel, plural))
	return title
}

// Panel wraps content in a rounded cyan border.
func Panel(content string) string {
	if !useColors {
		return plainPanelStyle.Render(content)
	}
	return panelStyle.Render(content)
}

// InnerPanel wraps content in a rounded gray border, used for per-fix
// file locations inside a group panel.
func InnerPanel(content string) string {
	if !useColors {
		return plainPanelStyle.Render(content)
	}
	return innerPanelStyle.Render(content)
}

// CostString builds the token/cost line for a section header.
// Returns empty when the estimated cost is zero.
func CostString(inputTokens, outputTokens int, cost float64) string {
	if cost <= 0 {
		return ""
	}
	tokens := ai.FormatTokens(inputTokens + outputTokens)
	return fmt.Sprintf("   %s tokens, est. %s", tokens, ai.FormatCost(cost))
}

// ColorizeDiff applies per-line styling to a unified diff: additions
// green, removals red, hunk headers cyan, file headers dim.
func ColorizeDiff(diff string) string {
	if !useColors {
		return diff
	}
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = dimStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = cyanStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = greenStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = redStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// DefuseBackticks breaks up code fences inside embedded content so a
// diff cannot close the surrounding markdown block.
func DefuseBackticks(s string) string {
	return strings.ReplaceAll(s, "```", "``​`")
}

// IsGitHubActions reports whether output targets a GitHub Actions log.
func IsGitHubActions() bool {
	return ciinfo.IsCI && os.Getenv("GITHUB_ACTIONS") == "true"
}
