package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeRepoPath resolves the ledger path every service receives to
// an absolute path, so relative --ledger values behave the same from
// any working directory.
func NormalizeRepoPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrRepoPathRequired
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve ledger path: %w", err)
	}

	return absPath, nil
}
