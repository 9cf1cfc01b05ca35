// Package workspace contains the path containment rules for AI file
// operations. Every file the fix pipeline reads or writes must resolve
// to a location inside the workspace root; anything else is skipped.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot returns the workspace root for AI file operations:
// the parent directory of the config file when one is known,
// otherwise the current working directory.
func ResolveRoot(configPath string) string {
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			return canonical(filepath.Dir(abs))
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return canonical(cwd)
}

// ResolveFile resolves filePath against root and reports whether the
// result stays inside root. Absolute paths are resolved as-is; relative
// paths are joined to root. Symlinks and ".." segments are canonicalized
// before the containment check. Callers must treat ok=false as "skip
// this target": no read or write may happen through a failed resolve.
func ResolveFile(filePath, root string) (string, bool) {
	if filePath == "" {
		return "", false
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	rootAbs = canonical(rootAbs)

	var candidate string
	if filepath.IsAbs(filePath) {
		candidate = filepath.Clean(filePath)
	} else {
		candidate = filepath.Join(rootAbs, filePath)
	}
	resolved := canonical(candidate)

	rel, err := filepath.Rel(rootAbs, resolved)
	if err != nil || isOutside(rel) {
		return "", false
	}
	return resolved, true
}

// ProviderPath converts filePath to a provider-safe, workspace-relative
// string for prompt embedding. Paths outside the root degrade to the
// bare file name so the host filesystem layout never leaks upstream.
func ProviderPath(filePath, root string) string {
	resolved, ok := ResolveFile(filePath, root)
	if !ok {
		name := filepath.Base(filePath)
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "<outside-workspace>"
		}
		return name
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(resolved)
	}
	rel, err := filepath.Rel(canonical(rootAbs), resolved)
	if err != nil {
		return filepath.Base(resolved)
	}
	return rel
}

// DisplayPath shortens filePath relative to the current working
// directory for console output, falling back to the input unchanged.
func DisplayPath(filePath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return filePath
	}
	rel, err := filepath.Rel(cwd, filePath)
	if err != nil {
		return filePath
	}
	return rel
}

// canonical resolves symlinks where the filesystem allows it. For paths
// that do not exist yet, the deepest existing ancestor is resolved and
// the remaining tail re-joined, mirroring non-strict path resolution.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	dir, base := filepath.Split(filepath.Clean(path))
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir == "" || dir == path {
		return filepath.Clean(path)
	}
	return filepath.Join(canonical(dir), base)
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
