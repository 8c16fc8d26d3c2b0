package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// NodeKind distinguishes file nodes from aliases
type NodeKind int

const (
	KindFile NodeKind = iota
	KindAlias
)

// ActionFunc builds a node in-process instead of through the shell
type ActionFunc func(ctx context.Context, n *Node, env *Environment) error

// Node is a file or alias in the build graph
type Node struct {
	Name    string
	Kind    NodeKind
	Sources []*Node

	// Command is a template expanded with Environment.Subst
	Command string
	Func    ActionFunc

	// Always disables the staleness check
	Always bool
}

// Buildable reports whether the node has an action of its own
func (n *Node) Buildable() bool {
	return n.Kind == KindFile && (n.Command != "" || n.Func != nil)
}

// UpToDate reports whether the node's target exists and is newer than all of
// its sources. Paths are resolved against dir.
func (n *Node) UpToDate(dir string) bool {
	if n.Always || !n.Buildable() {
		return false
	}

	target, err := os.Stat(resolvePath(dir, n.Name))
	if err != nil {
		return false
	}

	for _, src := range n.Sources {
		if src.Kind != KindFile {
			continue
		}
		info, err := os.Stat(resolvePath(dir, src.Name))
		if err != nil {
			return false
		}
		if info.ModTime().After(target.ModTime()) {
			return false
		}
	}
	return true
}

// Exists reports whether the node's file is present
func (n *Node) Exists(dir string) bool {
	_, err := os.Stat(resolvePath(dir, n.Name))
	return !errors.Is(err, os.ErrNotExist)
}

func (n *Node) String() string {
	return n.Name
}

func resolvePath(dir, p string) string {
	if dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
