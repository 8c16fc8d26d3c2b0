package discovery

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists test objects in the order the upstream build produced them
type Manifest struct {
	Objects []string `yaml:"objects"`
}

// LoadManifest reads a YAML manifest. Relative object paths are taken
// relative to the manifest's directory.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	objects := make([]string, 0, len(m.Objects))
	for _, obj := range m.Objects {
		if obj == "" {
			continue
		}
		if !filepath.IsAbs(obj) {
			obj = filepath.Join(base, obj)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
