package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ObjectSuffix is the extension of test object files
const ObjectSuffix = ".o"

// Scanner walks a build directory for compiled test objects
type Scanner struct {
	ignore map[string]struct{}
}

// NewScanner returns a Scanner that does not descend into directories
// named in ignore. Hidden directories are never entered.
func NewScanner(ignore []string) *Scanner {
	s := &Scanner{ignore: make(map[string]struct{}, len(ignore))}
	for _, name := range ignore {
		s.ignore[name] = struct{}{}
	}
	return s
}

// Scan lists object files under root in lexical walk order. Files whose
// name starts with a dot carry no test name and are left out.
func (s *Scanner) Scan(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("objects dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("objects dir %s is not a directory", root)
	}

	var objects []string
	walk := func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != root && s.skipDir(d.Name()) {
				return filepath.SkipDir
			}
		case isObject(d.Name()):
			objects = append(objects, path)
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return objects, nil
}

func (s *Scanner) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := s.ignore[name]
	return ok
}

func isObject(name string) bool {
	return strings.HasSuffix(name, ObjectSuffix) && !strings.HasPrefix(name, ".")
}
