package tool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/lintro-dev/lintro/internal/fileval"
)

// DefaultMaxLineLength is the linecheck line cap.
const DefaultMaxLineLength = 100

// lineCheckExtensions are the file types the checker scans. Other
// files are passed over silently.
var lineCheckExtensions = map[string]bool{
	".py": true, ".go": true, ".js": true, ".ts": true, ".tsx": true,
	".java": true, ".rb": true, ".rs": true, ".c": true, ".h": true,
	".cpp": true, ".sh": true,
}

// LineCheck is a built-in linter flagging overlong lines. It keeps the
// meta-linter usable with no external binaries installed.
type LineCheck struct {
	maxLen  int
	maxSize int64
}

// NewLineCheck builds the adapter with the default line cap.
func NewLineCheck() *LineCheck {
	return &LineCheck{maxLen: DefaultMaxLineLength, maxSize: fileval.DefaultMaxFileSize}
}

// NewLineCheckWithLimit builds the adapter with a custom line cap.
func NewLineCheckWithLimit(maxLen int) *LineCheck {
	l := NewLineCheck()
	if maxLen > 0 {
		l.maxLen = maxLen
	}
	return l
}

func (l *LineCheck) Name() string { return "linecheck" }
func (l *LineCheck) CanFix() bool { return false }

// Check scans paths and flags lines longer than the cap. Files that
// fail pre-read validation (binary, oversized) are skipped.
func (l *LineCheck) Check(ctx context.Context, paths []string, opts CheckOptions) (*Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var issues []*Issue
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !lineCheckExtensions[filepath.Ext(p)] {
				continue
			}
			found, err := l.checkFile(p)
			if err != nil {
				continue
			}
			issues = append(issues, found...)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !lineCheckExtensions[filepath.Ext(path)] {
				return nil
			}
			found, ferr := l.checkFile(path)
			if ferr != nil {
				return nil
			}
			issues = append(issues, found...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return NewResult("linecheck", len(issues) == 0, formatLineCheckOutput(issues), issues), nil
}

// Fix is not supported.
func (l *LineCheck) Fix(context.Context, []string, CheckOptions) (*Result, error) {
	return nil, fmt.Errorf("linecheck does not support fixing")
}

func (l *LineCheck) checkFile(path string) ([]*Issue, error) {
	if err := fileval.ValidateFile(path, l.maxSize); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var issues []*Issue
	for i, line := range strings.Split(string(data), "\n") {
		n := utf8.RuneCountInString(strings.TrimSuffix(line, "\r"))
		if n > l.maxLen {
			issues = append(issues, &Issue{
				File:    path,
				Line:    i + 1,
				Code:    "LC001",
				Message: fmt.Sprintf("Line too long (%d > %d)", n, l.maxLen),
			})
		}
	}
	return issues, nil
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "venv":
		return true
	}
	return false
}

func formatLineCheckOutput(issues []*Issue) string {
	if len(issues) == 0 {
		return ""
	}
	var b strings.Builder
	for _, iss := range issues {
		fmt.Fprintf(&b, "%s:%d: %s %s\n", iss.File, iss.Line, iss.Code, iss.Message)
	}
	return b.String()
}
