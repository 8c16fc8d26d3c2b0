// Package graph is a small build engine: file and alias nodes, shell
// command actions, always-build marking, default goals and target
// resolution into a dependency ordered build list.
package graph

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrUnknownTarget is returned when a requested name is neither an alias nor a known file
	ErrUnknownTarget = errors.New("unknown target")
	// ErrMultipleBuilders is returned when two actions claim the same target
	ErrMultipleBuilders = errors.New("multiple builders for target")
	// ErrCycle is returned when resolution finds a dependency cycle
	ErrCycle = errors.New("dependency cycle")
)

// Graph collects nodes, aliases and default goals
type Graph struct {
	env        *Environment
	nodes      map[string]*Node
	aliases    map[string]*Node
	aliasOrder []string
	defaults   []string
}

// New creates an empty graph bound to env
func New(env *Environment) *Graph {
	if env == nil {
		env = NewEnvironment()
	}
	return &Graph{
		env:     env,
		nodes:   make(map[string]*Node),
		aliases: make(map[string]*Node),
	}
}

// Env returns the graph's construction environment
func (g *Graph) Env() *Environment {
	return g.env
}

// File returns the node for path, creating a leaf if it is not known yet
func (g *Graph) File(path string) *Node {
	key := filepath.Clean(path)
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := &Node{Name: key, Kind: KindFile}
	g.nodes[key] = n
	return n
}

// Command adds a target built by running command through the shell
func (g *Graph) Command(target string, sources []*Node, command string) (*Node, error) {
	n, err := g.builder(target, sources)
	if err != nil {
		return nil, err
	}
	n.Command = command
	return n, nil
}

// CommandFunc adds a target built by fn
func (g *Graph) CommandFunc(target string, sources []*Node, fn ActionFunc) (*Node, error) {
	n, err := g.builder(target, sources)
	if err != nil {
		return nil, err
	}
	n.Func = fn
	return n, nil
}

// Program adds an executable linked from objects with $LINKCOM
func (g *Graph) Program(target string, objects ...*Node) (*Node, error) {
	return g.Command(target, objects, "$"+VarLinkCom)
}

func (g *Graph) builder(target string, sources []*Node) (*Node, error) {
	n := g.File(target)
	if n.Buildable() {
		return nil, fmt.Errorf("%w: %s", ErrMultipleBuilders, n.Name)
	}
	n.Sources = append([]*Node(nil), sources...)
	return n, nil
}

// AlwaysBuild marks nodes to run regardless of staleness
func (g *Graph) AlwaysBuild(nodes ...*Node) {
	for _, n := range nodes {
		n.Always = true
	}
}

// Alias creates the alias name or extends it with nodes. An alias without
// nodes is still a valid target that builds nothing.
func (g *Graph) Alias(name string, nodes ...*Node) *Node {
	a, ok := g.aliases[name]
	if !ok {
		a = &Node{Name: name, Kind: KindAlias}
		g.aliases[name] = a
		g.aliasOrder = append(g.aliasOrder, name)
	}
	a.Sources = append(a.Sources, nodes...)
	return a
}

// LookupAlias returns the alias called name
func (g *Graph) LookupAlias(name string) (*Node, bool) {
	a, ok := g.aliases[name]
	return a, ok
}

// Aliases returns alias names in registration order
func (g *Graph) Aliases() []string {
	return append([]string(nil), g.aliasOrder...)
}

// Default adds default goals used when no target is requested
func (g *Graph) Default(names ...string) {
	g.defaults = append(g.defaults, names...)
}

// Defaults returns the default goals
func (g *Graph) Defaults() []string {
	return append([]string(nil), g.defaults...)
}
