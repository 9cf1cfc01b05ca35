// Package discovery expands CLI path arguments into the concrete file
// list handed to linter tools.
package discovery

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Options configures path expansion.
type Options struct {
	// ExcludePatterns are glob patterns removed from the results.
	// Supports doublestar patterns like "**/generated/*".
	ExcludePatterns []string

	// IncludeVenv keeps Python virtual environment directories that
	// are skipped by default.
	IncludeVenv bool
}

// skipDirs are directory names never worth linting.
var skipDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	".pytest_cache": true,
}

// venvDirs are skipped unless IncludeVenv is set.
var venvDirs = map[string]bool{
	".venv": true,
	"venv":  true,
	".tox":  true,
}

// Expand resolves each input to the files it names. Inputs can be:
//   - a specific file path, preserved as given
//   - a directory, searched recursively
//   - a glob pattern, expanded with doublestar
//
// Results are deduplicated by absolute path and sorted.
func Expand(inputs []string, opts Options) ([]string, error) {
	seen := make(map[string]bool)
	var results []string

	for _, input := range inputs {
		expanded, err := expandInput(input, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, expanded...)
	}

	slices.SortFunc(results, func(a, b string) int {
		return cmp.Compare(a, b)
	})
	return results, nil
}

// expandInput processes a single input (file, directory, or glob pattern).
func expandInput(input string, opts Options, seen map[string]bool) ([]string, error) {
	// Glob characters mean a pattern, without trying os.Stat (which
	// fails on Windows with chars like *).
	if containsGlobChars(input) {
		return expandGlob(input, opts, seen)
	}

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", input)
		}
		return nil, err
	}
	if info.IsDir() {
		return expandDirectory(input, opts, seen)
	}
	return expandFile(input, opts, seen)
}

// containsGlobChars returns true if the path contains glob special characters.
func containsGlobChars(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', ']', '{', '}':
			return true
		}
	}
	return false
}

// expandFile keeps an explicitly named file. The original path format
// (relative or absolute) is preserved for display.
func expandFile(path string, opts Options, seen map[string]bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if isExcluded(absPath, opts.ExcludePatterns) || seen[absPath] {
		return nil, nil
	}
	seen[absPath] = true
	return []string{path}, nil
}

// expandDirectory collects every lintable file under dir.
func expandDirectory(dir string, opts Options, seen map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(absDir, "**"), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var results []string
	for _, match := range matches {
		if inSkippedDir(match, absDir, opts.IncludeVenv) {
			continue
		}
		if isExcluded(match, opts.ExcludePatterns) || seen[match] {
			continue
		}
		seen[match] = true
		results = append(results, match)
	}
	return results, nil
}

// expandGlob expands a glob pattern to the files it matches.
func expandGlob(pattern string, opts Options, seen map[string]bool) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var results []string
	for _, match := range matches {
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}
		if isExcluded(absPath, opts.ExcludePatterns) || seen[absPath] {
			continue
		}
		seen[absPath] = true
		results = append(results, match)
	}
	return results, nil
}

// inSkippedDir reports whether any path component between root and the
// file is a skipped directory.
func inSkippedDir(path, root string, includeVenv bool) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	parts := splitPath(filepath.Dir(rel))
	for _, part := range parts {
		if skipDirs[part] {
			return true
		}
		if !includeVenv && venvDirs[part] {
			return true
		}
	}
	return false
}

// isExcluded checks a path against exclusion patterns three ways:
//
//  1. the full absolute path, for absolute patterns
//  2. the basename, for simple patterns like "*.bak"
//  3. each suffix subpath, so "vendor/*" matches direct children of
//     any vendor directory component
//
// doublestar.Match expects forward slashes, so paths are normalized
// before matching.
func isExcluded(absPath string, excludePatterns []string) bool {
	absPathSlash := filepath.ToSlash(absPath)
	base := filepath.ToSlash(filepath.Base(absPath))

	for _, pattern := range excludePatterns {
		pattern = filepath.ToSlash(pattern)

		matched, err := doublestar.Match(pattern, absPathSlash)
		if err == nil && matched {
			return true
		}

		matched, err = doublestar.Match(pattern, base)
		if err == nil && matched {
			return true
		}

		parts := splitPath(absPath)
		for i := range parts {
			subpath := filepath.ToSlash(filepath.Join(parts[i:]...))
			matched, err = doublestar.Match(pattern, subpath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// splitPath splits a path into its directory and filename components.
// For example, "/home/user/vendor/app.py" returns
// ["home", "user", "vendor", "app.py"].
func splitPath(path string) []string {
	var parts []string
	for path != "" {
		dir, file := filepath.Split(path)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		path = filepath.Clean(dir)

		if path == "/" || path == "." {
			break
		}

		vol := filepath.VolumeName(path)
		if vol != "" && (path == vol || path == vol+string(filepath.Separator)) {
			break
		}
	}
	return parts
}
