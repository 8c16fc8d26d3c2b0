package commands

import (
	"fmt"
	"path/filepath"

	"fwtest/internal/config"
	"fwtest/internal/discovery"
	"fwtest/internal/generator"
	"fwtest/internal/graph"
)

// plan is a generated build graph ready to resolve
type plan struct {
	graph   *graph.Graph
	targets *generator.Targets
}

// empty reports whether no test objects were found
func (p *plan) empty() bool {
	return len(p.targets.Tests) == 0
}

// gatherObjects returns test objects from --objects, the manifest or a
// directory scan, in that order of precedence, filtered by name. Paths are
// absolute so they do not depend on the directory commands run in.
func gatherObjects(cfg *config.Config) ([]string, error) {
	var (
		objects []string
		err     error
	)
	switch {
	case len(cfg.Flags.Objects) > 0:
		objects = cfg.Flags.Objects
	case cfg.Manifest != "":
		objects, err = discovery.LoadManifest(cfg.GetManifestPath())
	default:
		objects, err = discovery.NewScanner(cfg.PathsToIgnore).Scan(cfg.GetObjectsDir())
	}
	if err != nil {
		return nil, err
	}

	objects = discovery.NewFilter().FilterByName(objects, cfg.Flags.NameFilter)

	abs := make([]string, 0, len(objects))
	for _, obj := range objects {
		p, err := filepath.Abs(obj)
		if err != nil {
			return nil, fmt.Errorf("object path %s: %w", obj, err)
		}
		abs = append(abs, p)
	}
	return abs, nil
}

// newPlan generates the test graph for the requested targets
func newPlan(s *Session, requested []string) (*plan, error) {
	cfg := s.Config

	objects, err := gatherObjects(cfg)
	if err != nil {
		return nil, err
	}

	extra, err := cfg.ExtraEnv()
	if err != nil {
		return nil, err
	}

	g := graph.New(generator.NewEnvironment(cfg, nil, extra))
	targets, err := generator.New(s.Logger).Generate(g, objects, generator.Options{
		OutputDir: cfg.OutputDir,
		Targets:   requested,
	})
	if err != nil {
		return nil, err
	}
	return &plan{graph: g, targets: targets}, nil
}
