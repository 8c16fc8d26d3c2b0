package execution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"fwtest/internal/config"
	"fwtest/internal/domain"
	"fwtest/internal/graph"
	"fwtest/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex map[*graph.Node]domain.TestTarget

func (f fakeIndex) Test(n *graph.Node) (domain.TestTarget, bool) {
	t, ok := f[n]
	return t, ok
}

type fakeCounter struct{}

func (fakeCounter) ParseTestCounts(r domain.TestResult) (int, int) {
	if r.Success {
		return 3, 0
	}
	return 1, 2
}

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	last     [3]int
	finished bool
}

func (p *recordingProgress) Update(completed, passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.last = [3]int{completed, passed, failed}
}

func (p *recordingProgress) Finish() {
	p.finished = true
}

func newEnv() *graph.Environment {
	env := graph.NewEnvironment()
	env.ENV["PATH"] = os.Getenv("PATH")
	return env
}

func newPool(t *testing.T, dir string, env *graph.Environment, keepGoing, dryRun bool, index TestIndex) *WorkerPool {
	t.Helper()
	cfg := config.New()
	cfg.Processors = 2
	cfg.KeepGoing = keepGoing
	return NewWorkerPool(cfg, NewRunner(env, dir, dryRun, nil), index, fakeCounter{}, nil)
}

func statuses(r *Report) map[string]domain.NodeStatus {
	out := make(map[string]domain.NodeStatus)
	for _, b := range r.Builds {
		out[b.Target] = b.Status
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestWorkerPool_BuildsInDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src.o", "object")

	env := newEnv()
	g := graph.New(env)
	prog, _ := g.Command("out/prog", []*graph.Node{g.File("src.o")}, "cp $SOURCE $TARGET")
	result, _ := g.Command("out/progResult.xml", []*graph.Node{prog}, "cat $SOURCE > $TARGET && echo ran >> $TARGET")
	g.AlwaysBuild(result)
	g.Alias("all", result)

	nodes, err := g.Resolve([]string{"all"})
	require.NoError(t, err)

	pool := newPool(t, dir, env, false, false, nil)

	report, err := pool.Execute(context.Background(), nodes)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.NodeStatus{
		"out/prog":           domain.StatusBuilt,
		"out/progResult.xml": domain.StatusBuilt,
	}, statuses(report))

	data, err := os.ReadFile(filepath.Join(dir, "out/progResult.xml"))
	require.NoError(t, err)
	assert.Equal(t, "objectran\n", string(data))

	t.Run("second run rebuilds only the always-build node", func(t *testing.T) {
		report, err := pool.Execute(context.Background(), nodes)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUpToDate, statuses(report)["out/prog"])
		assert.Equal(t, domain.StatusBuilt, statuses(report)["out/progResult.xml"])
	})
}

func TestWorkerPool_StopsAfterFailure(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	g := graph.New(env)
	bad, _ := g.Command("bad", nil, "exit 3")
	good, _ := g.Command("good", nil, "touch $TARGET")

	cfg := config.New()
	cfg.Processors = 1
	pool := NewWorkerPool(cfg, NewRunner(env, dir, false, nil), nil, nil, nil)

	report, err := pool.Execute(context.Background(), []*graph.Node{bad, good})
	require.ErrorIs(t, err, ErrBuildFailed)

	assert.Equal(t, domain.StatusFailed, report.Builds[0].Status)
	assert.Equal(t, domain.StatusSkipped, report.Builds[1].Status)
	assert.ErrorIs(t, report.Builds[1].Error, ErrStopped)
	assert.NoFileExists(t, filepath.Join(dir, "good"))
}

func TestWorkerPool_KeepGoing(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	g := graph.New(env)
	bad, _ := g.Command("bad", nil, "exit 1")
	dependent, _ := g.Command("dependent", []*graph.Node{bad}, "touch $TARGET")
	good, _ := g.Command("good", nil, "touch $TARGET")
	g.Alias("all", dependent, good)

	nodes, err := g.Resolve([]string{"all"})
	require.NoError(t, err)

	report, err := newPool(t, dir, env, true, false, nil).Execute(context.Background(), nodes)
	require.ErrorIs(t, err, ErrBuildFailed)

	st := statuses(report)
	assert.Equal(t, domain.StatusFailed, st["bad"])
	assert.Equal(t, domain.StatusSkipped, st["dependent"])
	assert.Equal(t, domain.StatusBuilt, st["good"])
	assert.Equal(t, 2, report.Failed())

	for _, b := range report.Builds {
		if b.Target == "dependent" {
			assert.ErrorIs(t, b.Error, ErrDependencyFailed)
		}
	}
}

func TestWorkerPool_TestNodes(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	env.ENV["TERM"] = "unknown"
	g := graph.New(env)
	pass, _ := g.Command("PassResult.xml", nil, "printf '%s' \"$$TERM\" > $TARGET")
	fail, _ := g.Command("FailResult.xml", nil, "exit 1")
	g.AlwaysBuild(pass, fail)

	index := fakeIndex{
		pass: {Name: "Pass", ResultFile: "PassResult.xml"},
		fail: {Name: "Fail", ResultFile: "FailResult.xml"},
	}
	pool := newPool(t, dir, env, true, false, index)
	progress := &recordingProgress{}
	pool.SetProgress(progress)

	report, err := pool.Execute(context.Background(), []*graph.Node{pass, fail})
	require.ErrorIs(t, err, ErrBuildFailed)

	require.Len(t, report.Tests, 2)
	assert.Equal(t, "Pass", report.Tests[0].Name)
	assert.True(t, report.Tests[0].Ran)
	assert.True(t, report.Tests[0].Success)
	assert.Equal(t, 3, report.Tests[0].Passed)
	assert.Equal(t, filepath.Join(dir, "PassResult.xml"), report.Tests[0].ResultFile)
	assert.False(t, report.Tests[1].Success)
	assert.Equal(t, 2, report.Tests[1].Failed)

	assert.Equal(t, 2, progress.updates)
	assert.Equal(t, [3]int{2, 4, 2}, progress.last)
	assert.True(t, progress.finished)

	data, err := os.ReadFile(filepath.Join(dir, "PassResult.xml"))
	require.NoError(t, err)
	assert.Equal(t, "unknown", string(data), "TERM reaches the test process")
}

func TestWorkerPool_DryRun(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	env.Set(graph.VarCXX, "g++")
	g := graph.New(env)
	prog, _ := g.Program("build/test/foo_test", g.File("foo_test.o"))

	report, err := newPool(t, dir, env, false, true, nil).Execute(context.Background(), []*graph.Node{prog})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDryRun, report.Builds[0].Status)
	assert.Equal(t, "g++ -o build/test/foo_test foo_test.o  ", report.Builds[0].Command)
	assert.NoDirExists(t, filepath.Join(dir, "build"))
}

func TestRunner_MissingSource(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	g := graph.New(env)
	prog, _ := g.Program("prog", g.File("missing.o"))

	result := NewRunner(env, dir, false, nil).Run(context.Background(), prog)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.ErrorContains(t, result.Error, "source missing.o not found")
}

func TestRunner_FuncAction(t *testing.T) {
	dir := t.TempDir()
	env := newEnv()
	g := graph.New(env)
	called := false
	n, _ := g.CommandFunc("build/.stamp", nil, func(context.Context, *graph.Node, *graph.Environment) error {
		called = true
		return nil
	})

	result := NewRunner(env, dir, false, nil).Run(context.Background(), n)
	assert.Equal(t, domain.StatusBuilt, result.Status)
	assert.True(t, called)
	assert.DirExists(t, filepath.Join(dir, "build"))

	failing, _ := g.CommandFunc("boom", nil, func(context.Context, *graph.Node, *graph.Environment) error {
		return errors.New("boom")
	})
	result = NewRunner(env, dir, false, nil).Run(context.Background(), failing)
	assert.Equal(t, domain.StatusFailed, result.Status)
}

func TestWorkerPool_Empty(t *testing.T) {
	report, err := newPool(t, t.TempDir(), newEnv(), false, false, nil).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Builds)
}

func TestWorkerPool_CrashDiscardsPreviousResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "out/progResult.xml", `<?xml version="1.0" encoding="UTF-8"?>
<testsuites tests="3" failures="0" name="AllTests">
  <testsuite name="ProgTest" tests="3" failures="0">
    <testcase name="One" status="run" result="completed" classname="ProgTest" />
    <testcase name="Two" status="run" result="completed" classname="ProgTest" />
    <testcase name="Three" status="run" result="completed" classname="ProgTest" />
  </testsuite>
</testsuites>
`)

	env := newEnv()
	g := graph.New(env)
	result, _ := g.Command("out/progResult.xml", nil, "exit 1")
	g.AlwaysBuild(result)
	index := fakeIndex{result: {Name: "prog", ResultFile: "out/progResult.xml"}}

	cfg := config.New()
	pool := NewWorkerPool(cfg, NewRunner(env, dir, false, nil), index, parser.NewGTestParser(), nil)

	report, err := pool.Execute(context.Background(), []*graph.Node{result})
	require.ErrorIs(t, err, ErrBuildFailed)

	require.Len(t, report.Tests, 1)
	assert.Equal(t, 0, report.Tests[0].Passed)
	assert.Equal(t, 1, report.Tests[0].Failed)
	assert.NoFileExists(t, filepath.Join(dir, "out/progResult.xml"))
}
