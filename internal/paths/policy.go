package paths

import (
	"strings"

	"github.com/unblocker/unblocker/internal/fs"
)

// Policy decides which locations are off limits for marker removal. Matching
// paths are skipped with a warning instead of being processed, they never
// count as failures.
type Policy struct {
	// Denylist contains path prefixes that must not be touched.
	Denylist []string
}

// DefaultPolicy returns the policy protecting the well known system
// directories of the current platform.
func DefaultPolicy() *Policy {
	return &Policy{Denylist: defaultDenylist()}
}

// Extend appends additional denylist entries, for example from a config file.
func (p *Policy) Extend(entries []string) {
	p.Denylist = append(p.Denylist, entries...)
}

// Denylisted returns true if path must not be processed.
func (p *Policy) Denylisted(path string) bool {
	// raw device paths are never touched
	if strings.HasPrefix(path, `\\?\`) {
		return true
	}

	for _, prefix := range p.Denylist {
		if fs.HasPathPrefix(prefix, path) {
			return true
		}
	}

	return false
}
