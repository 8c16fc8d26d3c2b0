package graph

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestGraph_File(t *testing.T) {
	g := New(nil)

	assert.Same(t, g.File("build/./a.o"), g.File("build/a.o"))
	assert.False(t, g.File("a.o").Buildable())
}

func TestGraph_CommandRejectsSecondBuilder(t *testing.T) {
	g := New(nil)
	_, err := g.Command("out", nil, "touch $TARGET")
	require.NoError(t, err)

	_, err = g.Command("out", nil, "touch $TARGET")
	assert.ErrorIs(t, err, ErrMultipleBuilders)
}

func TestGraph_AliasAppends(t *testing.T) {
	g := New(nil)
	a, _ := g.Command("a", nil, "touch a")
	b, _ := g.Command("b", nil, "touch b")

	g.Alias("both", a)
	g.Alias("both", b)
	g.Alias("empty")

	alias, ok := g.LookupAlias("both")
	require.True(t, ok)
	assert.Len(t, alias.Sources, 2)
	assert.Equal(t, []string{"both", "empty"}, g.Aliases())

	nodes, err := g.Resolve([]string{"empty"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestGraph_Resolve(t *testing.T) {
	g := New(nil)
	obj1 := g.File("one.o")
	obj2 := g.File("two.o")
	p1, _ := g.Program("build/one", obj1)
	p2, _ := g.Program("build/two", obj2)
	r1, _ := g.Command("build/oneResult.xml", []*Node{p1}, "./$SOURCE")
	r2, _ := g.Command("build/twoResult.xml", []*Node{p2}, "./$SOURCE")
	g.Alias("one", r1)
	g.Alias("two", r2)
	g.Alias("all", r1, r2)
	g.Default("all")

	t.Run("defaults when no targets", func(t *testing.T) {
		nodes, err := g.Resolve(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"build/one", "build/oneResult.xml", "build/two", "build/twoResult.xml"}, names(nodes))
	})

	t.Run("single alias", func(t *testing.T) {
		nodes, err := g.Resolve([]string{"two"})
		require.NoError(t, err)
		assert.Equal(t, []string{"build/two", "build/twoResult.xml"}, names(nodes))
	})

	t.Run("overlapping targets resolve once", func(t *testing.T) {
		nodes, err := g.Resolve([]string{"one", "all", "one"})
		require.NoError(t, err)
		assert.Len(t, nodes, 4)
	})

	t.Run("file path target", func(t *testing.T) {
		nodes, err := g.Resolve([]string{"build/one"})
		require.NoError(t, err)
		assert.Equal(t, []string{"build/one"}, names(nodes))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := g.Resolve([]string{"three"})
		assert.ErrorIs(t, err, ErrUnknownTarget)
	})
}

func TestGraph_ResolveCycle(t *testing.T) {
	g := New(nil)
	a, _ := g.Command("a", nil, "touch a")
	b, _ := g.Command("b", []*Node{a}, "touch b")
	a.Sources = append(a.Sources, b)

	_, err := g.Resolve([]string{"b"})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestNode_UpToDate(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, mtime time.Time) {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0644))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
	}

	now := time.Now()
	write("obj.o", now.Add(-time.Hour))
	write("prog", now)

	g := New(nil)
	prog, _ := g.Program("prog", g.File("obj.o"))
	missing, _ := g.Program("missing", g.File("obj.o"))

	assert.True(t, prog.UpToDate(dir))
	assert.False(t, missing.UpToDate(dir))

	write("obj.o", now.Add(time.Hour))
	assert.False(t, prog.UpToDate(dir), "newer source makes target stale")

	write("obj.o", now.Add(-time.Hour))
	g.AlwaysBuild(prog)
	assert.False(t, prog.UpToDate(dir), "always-build nodes are never up to date")
}
