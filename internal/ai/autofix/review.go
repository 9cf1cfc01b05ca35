package autofix

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/lintro-dev/lintro/internal/display"
	"github.com/lintro-dev/lintro/internal/tool"
)

// ReviewOptions configures the interactive fix review loop.
type ReviewOptions struct {
	// ValidateAfterGroup starts the session with per-group validation
	// enabled. The v key toggles it during review.
	ValidateAfterGroup bool

	// WorkspaceRoot limits which files fixes may touch.
	WorkspaceRoot string

	// SearchRadius is passed through to ApplyFix for accepted groups.
	SearchRadius int

	// Registry supplies tools for per-group validation.
	Registry *tool.Registry

	// Out receives review output. Defaults to os.Stdout.
	Out io.Writer
}

// stdinIsTTY reports whether stdin is a terminal. Swapped in tests.
var stdinIsTTY = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readKey reads one raw keypress from stdin. Swapped in tests.
var readKey = func() (byte, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	var buf [1]byte
	if _, err := os.Stdin.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReviewFixes presents suggestions grouped by error code and prompts
// once per group: accept, accept plus all remaining, reject, show
// diffs, skip, toggle per-group validation, or quit. Enter accepts
// groups whose fixes are all safe-style and skips the rest.
//
// Returns the accepted and rejected counts plus the suggestions that
// were actually written. Non-interactive stdin skips the review.
func ReviewFixes(ctx context.Context, suggestions []*FixSuggestion, opts ReviewOptions) (int, int, []*FixSuggestion) {
	if len(suggestions) == 0 {
		return 0, 0, nil
	}
	if !stdinIsTTY() {
		return 0, 0, nil
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	accepted := 0
	rejected := 0
	acceptAll := false
	validateMode := opts.ValidateAfterGroup
	var allApplied []*FixSuggestion

	applyOpts := ApplyOptions{
		WorkspaceRoot: opts.WorkspaceRoot,
		SearchRadius:  opts.SearchRadius,
	}

	groups := groupSuggestionsByCode(suggestions)
	totalGroups := len(groups)
	totalFixes := len(suggestions)

	var totalInput, totalOutput int
	var totalCost float64
	for _, s := range suggestions {
		totalInput += s.InputTokens
		totalOutput += s.OutputTokens
		totalCost += s.CostEstimate
	}
	fixPlural := "es"
	if totalFixes == 1 {
		fixPlural = ""
	}
	codePlural := "s"
	if totalGroups == 1 {
		codePlural = ""
	}
	detail := fmt.Sprintf("%d fix%s across %d code%s", totalFixes, fixPlural, totalGroups, codePlural)
	fmt.Fprint(out, display.SectionHeader("🤖", "AI FIX SUGGESTIONS", detail,
		display.CostString(totalInput, totalOutput, totalCost)))

	autoAccepted := 0
	autoFailed := 0
	autoGroups := 0

review:
	for gi, group := range groups {
		if acceptAll {
			var appliedFixes []*FixSuggestion
			for _, fix := range group.fixes {
				if ApplyFix(fix, applyOpts) {
					appliedFixes = append(appliedFixes, fix)
				}
			}
			accepted += len(appliedFixes)
			autoAccepted += len(appliedFixes)
			autoFailed += len(group.fixes) - len(appliedFixes)
			autoGroups++
			allApplied = append(allApplied, appliedFixes...)
			if validateMode && len(appliedFixes) > 0 {
				validateGroup(ctx, out, appliedFixes, opts.Registry)
			}
			continue
		}

		printGroupHeader(out, group, gi+1, totalGroups)

		safeDefault := true
		for _, fix := range group.fixes {
			if !IsSafeStyleFix(fix) {
				safeDefault = false
				break
			}
		}
		fmt.Fprintln(out)

		var choice byte
		for {
			fmt.Fprint(out, display.Cyan(reviewPrompt(validateMode, safeDefault)))
			key, err := readKey()
			if err != nil || key == 3 || key == 4 { // Ctrl-C / Ctrl-D
				fmt.Fprintln(out)
				return accepted, rejected, allApplied
			}
			// Echo the keypress.
			fmt.Fprintf(out, "%c\n", key)

			if key == '\r' || key == '\n' {
				if safeDefault {
					choice = 'y'
				} else {
					choice = 's'
				}
			} else {
				if key >= 'A' && key <= 'Z' {
					key += 'a' - 'A'
				}
				choice = key
			}

			if choice == 'd' {
				showGroupDiffs(out, group.fixes)
				fmt.Fprintln(out)
				continue
			}
			if choice == 'v' {
				validateMode = !validateMode
				state := "disabled"
				if validateMode {
					state = "enabled"
				}
				fmt.Fprintln(out, display.Dim(fmt.Sprintf("  Per-group validation %s (no fixes applied).", state)))
				fmt.Fprintln(out)
				continue
			}
			break
		}

		switch choice {
		case 'a':
			count, groupApplied := applyGroup(out, group.fixes, applyOpts)
			accepted += count
			allApplied = append(allApplied, groupApplied...)
			if validateMode {
				if len(groupApplied) > 0 {
					validateGroup(ctx, out, groupApplied, opts.Registry)
				} else {
					fmt.Fprintln(out, display.Dim("  Validation skipped (no fixes applied in this group)."))
				}
			}
			acceptAll = true
			fmt.Fprintln(out, display.Dim("  Will accept all remaining groups."))
		case 'y':
			count, groupApplied := applyGroup(out, group.fixes, applyOpts)
			accepted += count
			allApplied = append(allApplied, groupApplied...)
			if validateMode {
				if len(groupApplied) > 0 {
					validateGroup(ctx, out, groupApplied, opts.Registry)
				} else {
					fmt.Fprintln(out, display.Dim("  Validation skipped (no fixes applied in this group)."))
				}
			}
		case 'r':
			rejected += len(group.fixes)
			plural := "es"
			if len(group.fixes) == 1 {
				plural = ""
			}
			fmt.Fprintln(out, display.Yellow(fmt.Sprintf("  ✗ Rejected %d fix%s", len(group.fixes), plural)))
		case 's':
			fmt.Fprintln(out, display.Dim("  ⏭  Skipped"))
		case 'q':
			fmt.Fprintln(out, display.Dim("  Quit review."))
			break review
		}
	}

	if autoGroups > 0 {
		totalAuto := autoAccepted + autoFailed
		plural := "s"
		if autoGroups == 1 {
			plural = ""
		}
		msg := display.Green(fmt.Sprintf("  ✓ Applied %d/%d across %d group%s", autoAccepted, totalAuto, autoGroups, plural))
		if autoFailed > 0 {
			msg += display.Yellow(fmt.Sprintf("  (%d failed)", autoFailed))
		}
		fmt.Fprintln(out, msg)
	}

	fmt.Fprintln(out)
	var parts []string
	if accepted > 0 {
		parts = append(parts, display.Green(fmt.Sprintf("%d accepted", accepted)))
	}
	if rejected > 0 {
		parts = append(parts, display.Red(fmt.Sprintf("%d rejected", rejected)))
	}
	if skipped := totalFixes - accepted - rejected; skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	if len(parts) > 0 {
		fmt.Fprintln(out, "  "+display.Bold("Review complete:")+" "+strings.Join(parts, " · "))
	}
	fmt.Fprintln(out)

	return accepted, rejected, allApplied
}

// printGroupHeader renders one error-code group: the risk and patch
// stats line, the model's explanation, and a panel per fixed file.
func printGroupHeader(out io.Writer, group codeGroup, index, total int) {
	stats := CalculatePatchStats(group.fixes)

	groupRisk := SafeStyleRisk
	for _, fix := range group.fixes {
		if ClassifyFixRisk(fix) != SafeStyleRisk {
			groupRisk = BehavioralRisk
			break
		}
	}
	riskLine := display.Green("risk: " + groupRisk)
	if groupRisk != SafeStyleRisk {
		riskLine = display.Yellow("risk: " + groupRisk)
	}
	riskLine += "  ·  " + display.Dim(fmt.Sprintf("patch: %d files, +%d/-%d, %d hunks",
		stats.Files, stats.LinesAdded, stats.LinesRemoved, stats.Hunks))

	parts := []string{riskLine}
	if explanation := group.fixes[0].Explanation; explanation != "" {
		parts = append(parts, display.Cyan(explanation))
	}
	for _, fix := range group.fixes {
		parts = append(parts, display.InnerPanel(display.Green(fixLocation(fix))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, display.PanelTitle(index, total, group.code, group.fixes[0].ToolName, len(group.fixes), "file"))
	fmt.Fprintln(out, display.Panel(strings.Join(parts, "\n")))
}

func showGroupDiffs(out io.Writer, fixes []*FixSuggestion) {
	for _, fix := range fixes {
		if strings.TrimSpace(fix.Diff) == "" {
			continue
		}
		fmt.Fprintf(out, "\n  %s\n", display.Dim(fixLocation(fix)))
		fmt.Fprintln(out, display.ColorizeDiff(fix.Diff))
	}
}

func applyGroup(out io.Writer, fixes []*FixSuggestion, opts ApplyOptions) (int, []*FixSuggestion) {
	var appliedFixes []*FixSuggestion
	for _, fix := range fixes {
		if ApplyFix(fix, opts) {
			appliedFixes = append(appliedFixes, fix)
		}
	}
	applied := len(appliedFixes)
	failed := len(fixes) - applied
	msg := display.Green(fmt.Sprintf("  ✓ Applied %d/%d", applied, len(fixes)))
	if failed > 0 {
		msg += display.Yellow(fmt.Sprintf("  (%d failed)", failed))
	}
	fmt.Fprintln(out, msg)
	return applied, appliedFixes
}

func validateGroup(ctx context.Context, out io.Writer, applied []*FixSuggestion, registry *tool.Registry) {
	if registry == nil {
		return
	}
	validation := ValidateAppliedFixes(ctx, applied, registry)
	if validation == nil || validation.Verified+validation.Unverified == 0 {
		return
	}
	if output := RenderValidation(validation); output != "" {
		fmt.Fprintln(out, output)
	}
}

func reviewPrompt(validateMode, safeDefault bool) string {
	defaultText := ""
	if safeDefault {
		defaultText = " (Enter=accept group; safe-style default)"
	}
	mode := "off"
	if validateMode {
		mode = "on"
	}
	return "  [y]accept group  [a]accept group + remaining  " +
		"[r]reject  [d]diffs  [s]skip  [v]verify fixes:" +
		fmt.Sprintf(" %s (toggle only, no apply)  [q]quit%s: ", mode, defaultText)
}
