// Package pathutil provides path helpers for output files: redaction for
// error messages and containment checks for user-supplied destinations.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for safe error messages.
// For example, "/home/user/out/data_summary.json" becomes ".../out/data_summary.json".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	base := filepath.Base(cleaned)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// EnsureDir creates dir and its parents if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", RedactPath(dir), err)
	}
	return nil
}

// Within checks that path resolves inside dir. Symlinks on existing
// ancestors are resolved so a link cannot escape the directory.
func Within(path, dir string) error {
	if path == "" {
		return fmt.Errorf("path validation failed: path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}
	resolvedDir, err := resolveExistingParent(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve parent directory: %w", err)
	}
	resolvedPath := filepath.Join(resolvedDir, filepath.Base(absPath))

	absBase, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve base directory: %w", err)
	}
	resolvedBase, err := resolveExistingParent(absBase)
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve base directory: %w", err)
	}

	if !isSubpath(resolvedPath, resolvedBase) {
		return fmt.Errorf("path validation failed: %q is outside %q", RedactPath(absPath), RedactPath(absBase))
	}
	return nil
}

// resolveExistingParent walks up the directory tree to find the deepest existing
// ancestor, resolves symlinks on it, then re-appends the non-existent tail.
func resolveExistingParent(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath checks whether path is equal to or below base.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	// "/tmp/foo" must not match "/tmp/foobar"
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
