package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Ruff adapts the ruff Python linter. It shells out to the ruff binary
// and parses its JSON diagnostics.
type Ruff struct {
	bin string
}

// NewRuff builds the adapter. The binary is resolved from PATH at run time.
func NewRuff() *Ruff {
	return &Ruff{bin: "ruff"}
}

func (r *Ruff) Name() string { return "ruff" }
func (r *Ruff) CanFix() bool { return true }

// Check runs `ruff check --output-format json` on paths.
func (r *Ruff) Check(ctx context.Context, paths []string, opts CheckOptions) (*Result, error) {
	return r.run(ctx, paths, opts, false)
}

// Fix runs `ruff check --fix` and reports the diagnostics that remain.
func (r *Ruff) Fix(ctx context.Context, paths []string, opts CheckOptions) (*Result, error) {
	return r.run(ctx, paths, opts, true)
}

func (r *Ruff) run(ctx context.Context, paths []string, opts CheckOptions, fix bool) (*Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	paths = pythonPaths(paths)
	if len(paths) == 0 {
		return NewResult("ruff", true, "", nil), nil
	}
	args := []string{"check", "--output-format", "json"}
	if fix {
		args = append(args, "--fix")
	}
	args = append(args, paths...)

	runCtx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	// Exit code 1 means diagnostics were found; the run itself succeeded.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("ruff check: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	issues, err := parseRuffOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse ruff output: %w", err)
	}
	return NewResult("ruff", len(issues) == 0, stdout.String(), issues), nil
}

// pythonPaths drops files ruff would refuse. Directories pass through
// so ruff applies its own discovery rules.
func pythonPaths(paths []string) []string {
	var kept []string
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".py", ".pyi":
			kept = append(kept, p)
			continue
		}
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			kept = append(kept, p)
		}
	}
	return kept
}

// ruffDiagnostic is one entry of `ruff check --output-format json`.
type ruffDiagnostic struct {
	Code     string `json:"code"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Location struct {
		Row    int `json:"row"`
		Column int `json:"column"`
	} `json:"location"`
	Fix json.RawMessage `json:"fix"`
}

func parseRuffOutput(out []byte) ([]*Issue, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	var diags []ruffDiagnostic
	if err := json.Unmarshal(out, &diags); err != nil {
		return nil, err
	}
	issues := make([]*Issue, 0, len(diags))
	for _, d := range diags {
		issues = append(issues, &Issue{
			File:    d.Filename,
			Line:    d.Location.Row,
			Column:  d.Location.Column,
			Code:    d.Code,
			Message: d.Message,
			Fixable: len(d.Fix) > 0 && !bytes.Equal(d.Fix, []byte("null")),
		})
	}
	return issues, nil
}
