package graph

import (
	"fmt"
	"path/filepath"
)

// Resolve returns every buildable node needed for targets, dependencies
// first and each node once. With no targets the default goals are used.
func (g *Graph) Resolve(targets []string) ([]*Node, error) {
	if len(targets) == 0 {
		targets = g.defaults
	}

	r := resolver{
		state: make(map[*Node]visitState),
	}
	for _, name := range targets {
		root, err := g.lookup(name)
		if err != nil {
			return nil, err
		}
		if err := r.visit(root); err != nil {
			return nil, err
		}
	}
	return r.order, nil
}

func (g *Graph) lookup(name string) (*Node, error) {
	if a, ok := g.aliases[name]; ok {
		return a, nil
	}
	if n, ok := g.nodes[filepath.Clean(name)]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

type resolver struct {
	state map[*Node]visitState
	order []*Node
}

func (r *resolver) visit(n *Node) error {
	switch r.state[n] {
	case visited:
		return nil
	case visiting:
		return fmt.Errorf("%w at %s", ErrCycle, n.Name)
	}

	r.state[n] = visiting
	for _, src := range n.Sources {
		if err := r.visit(src); err != nil {
			return err
		}
	}
	r.state[n] = visited

	if n.Buildable() {
		r.order = append(r.order, n)
	}
	return nil
}
