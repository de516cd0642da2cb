package ignore

import (
	"path"
	"strings"
)

// ExcludedDirs are directory names never descended into during ingestion
var ExcludedDirs = []string{".git", "__pycache__", ".venv", "venv"}

// Matcher matches repo-relative paths against ignore patterns
type Matcher struct {
	patterns []string
	dirs     map[string]struct{}
}

// NewMatcher creates a matcher for the given patterns plus ExcludedDirs
func NewMatcher(patterns []string) *Matcher {
	dirs := make(map[string]struct{}, len(ExcludedDirs))
	for _, d := range ExcludedDirs {
		dirs[d] = struct{}{}
	}
	return &Matcher{
		patterns: patterns,
		dirs:     dirs,
	}
}

// IsExcludedDir returns true for directory names that are always skipped
func (m *Matcher) IsExcludedDir(name string) bool {
	_, ok := m.dirs[name]
	return ok
}

// ShouldIgnore returns true if the path matches any ignore pattern.
// Paths must use forward slashes.
func (m *Matcher) ShouldIgnore(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if m.IsExcludedDir(seg) {
			return true
		}
	}

	for _, pattern := range m.patterns {
		if matchPattern(p, pattern) {
			return true
		}
	}

	return false
}

func matchPattern(p, pattern string) bool {
	// "dir/**" matches the directory itself and anything under it, at any depth
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		prefix = strings.TrimPrefix(prefix, "**/")
		if strings.ContainsAny(prefix, "*?[") {
			for _, seg := range strings.Split(p, "/") {
				if ok, _ := path.Match(prefix, seg); ok {
					return true
				}
			}
			return false
		}
		return p == prefix ||
			strings.HasPrefix(p, prefix+"/") ||
			strings.Contains(p, "/"+prefix+"/") ||
			strings.HasSuffix(p, "/"+prefix)
	}

	pattern = strings.TrimPrefix(pattern, "**/")
	if ok, _ := path.Match(pattern, p); ok {
		return true
	}
	ok, _ := path.Match(pattern, path.Base(p))
	return ok
}
