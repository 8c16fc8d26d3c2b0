package discovery

import (
	"path/filepath"
	"strings"
)

// TestName derives a test's name from its object path: the base filename
// up to the first dot, so "foo_test.cpp.o" names "foo_test".
func TestName(objectPath string) string {
	base := filepath.Base(objectPath)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
