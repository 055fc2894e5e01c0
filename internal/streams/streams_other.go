//go:build !windows

package streams

import (
	"path/filepath"
	"strings"

	"github.com/unblocker/unblocker/internal/fs"
)

// enumerate lists the "<base>:<stream>" sibling files that stand in for
// streams on platforms without native support.
func enumerate(path string) ([]string, error) {
	if _, err := fs.Lstat(path); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	prefix := filepath.Base(path) + ":"
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, strings.TrimPrefix(entry.Name(), prefix))
		}
	}
	return names, nil
}
