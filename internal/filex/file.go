// Package filex holds small filesystem helpers used by the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (relative paths are resolved against the working
// directory) with owner-only permissions and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// CreateInDir ensures dir exists and creates a new file in it named after
// pattern, as os.CreateTemp does. The file is readable by the owner only.
func CreateInDir(dir, pattern string) (*os.File, error) {
	abs, err := EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(abs, pattern)
	if err != nil {
		return nil, fmt.Errorf("create in %s: %w", abs, err)
	}
	return f, nil
}
