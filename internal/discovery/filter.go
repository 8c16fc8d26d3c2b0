package discovery

import (
	"path/filepath"
	"strings"
)

// Filter narrows test objects by their test name
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps objects whose test name matches pattern. Patterns with
// wildcards ("*Patch*", "Concert*", "Note?gbSource") first use shell globbing
// and then fall back to matching the literal parts in order. A pattern
// without wildcards matches as a substring.
func (f *Filter) FilterByName(objects []string, pattern string) []string {
	if pattern == "" {
		return objects
	}

	var filtered []string
	for _, obj := range objects {
		if matchName(TestName(obj), pattern) {
			filtered = append(filtered, obj)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return false
	}

	// anchor-free ordered match of the literal parts
	rest := name
	matchedAny := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		matchedAny = true
	}
	return matchedAny
}
