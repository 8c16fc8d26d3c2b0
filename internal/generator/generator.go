// Package generator turns test objects into build graph targets: one test
// program, one always-run result command and one alias per object, plus
// the memcheck and all umbrella aliases.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"fwtest/internal/discovery"
	"fwtest/internal/domain"
	"fwtest/internal/graph"
)

const (
	// MemcheckTarget runs the requested tests under valgrind
	MemcheckTarget = "memcheck"
	// AllTarget runs every test and is the default goal
	AllTarget = "all"

	// MemcheckPrefix wraps each test invocation when memcheck is requested
	MemcheckPrefix = "valgrind --leak-check=yes "

	// UnknownTerm is propagated when the host has no TERM
	UnknownTerm = "unknown"

	resultSuffix    = "Result.xml"
	memcheckNode    = ".memcheck"
	gtestOutputFlag = "--gtest_output=xml:$TARGET"
)

var (
	// ErrDuplicateTest is returned when two objects map to the same test name
	ErrDuplicateTest = errors.New("duplicate test name")
	// ErrEmptyTestName is returned for objects whose file name starts with a dot
	ErrEmptyTestName = errors.New("empty test name")
)

// LookupFunc reads a host environment variable
type LookupFunc func(key string) (string, bool)

// Options describe one invocation
type Options struct {
	OutputDir string
	// Targets are the command-line targets requested by the user
	Targets []string
	// Lookup reads the host environment, os.LookupEnv when nil
	Lookup LookupFunc
}

// Targets is what Generate registered in the graph
type Targets struct {
	Tests    []domain.TestTarget
	Results  []*graph.Node
	Memcheck bool

	byNode map[*graph.Node]int
}

// Test returns the test target whose result command is n
func (t *Targets) Test(n *graph.Node) (domain.TestTarget, bool) {
	i, ok := t.byNode[n]
	if !ok {
		return domain.TestTarget{}, false
	}
	return t.Tests[i], true
}

// Generator registers test targets in a graph
type Generator struct {
	logger *slog.Logger
}

// New creates a Generator; a nil logger uses slog.Default
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate adds programs, result commands and aliases for objects to g.
func (gen *Generator) Generate(g *graph.Graph, objects []string, opts Options) (*Targets, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	// Tests decide on colored output from TERM.
	term, ok := lookup("TERM")
	if !ok {
		term = UnknownTerm
	}
	g.Env().ENV["TERM"] = term

	memcheck := slices.Contains(opts.Targets, MemcheckTarget)
	prefix := ""
	if memcheck {
		prefix = MemcheckPrefix
	}

	// memcheck must always be a known target, even when it builds nothing.
	noop, err := g.CommandFunc(filepath.Join(opts.OutputDir, memcheckNode), nil, buildNothing)
	if err != nil {
		return nil, err
	}
	g.Alias(MemcheckTarget, noop)

	targets := &Targets{
		Memcheck: memcheck,
		byNode:   make(map[*graph.Node]int, len(objects)),
	}
	seen := make(map[string]string, len(objects))

	for _, obj := range objects {
		name := discovery.TestName(obj)
		if name == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTestName, obj)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s from %s and %s", ErrDuplicateTest, name, prev, obj)
		}
		seen[name] = obj

		programPath := filepath.Join(opts.OutputDir, name)
		program, err := g.Program(programPath, g.File(obj))
		if err != nil {
			return nil, fmt.Errorf("program %s: %w", name, err)
		}

		resultPath := filepath.Join(opts.OutputDir, name+resultSuffix)
		result, err := g.Command(resultPath, []*graph.Node{program}, prefix+invocation(programPath))
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", name, err)
		}
		g.AlwaysBuild(result)
		g.Alias(name, result)

		targets.byNode[result] = len(targets.Tests)
		targets.Tests = append(targets.Tests, domain.TestTarget{
			Name:       name,
			Object:     obj,
			Program:    program.Name,
			ResultFile: result.Name,
		})
		targets.Results = append(targets.Results, result)

		gen.logger.Debug("test target", "name", name, "program", program.Name, "result", result.Name)
	}

	// Requesting memcheck alone still runs everything.
	if memcheck && len(opts.Targets) == 1 {
		g.Alias(MemcheckTarget, targets.Results...)
	}

	g.Alias(AllTarget, targets.Results...)
	g.Default(AllTarget)

	gen.logger.Info("generated test targets", "tests", len(targets.Tests), "memcheck", memcheck, "term", term)
	return targets, nil
}

func invocation(programPath string) string {
	src := "./$SOURCE"
	if filepath.IsAbs(programPath) {
		src = "$SOURCE"
	}
	return src + " " + gtestOutputFlag
}

func buildNothing(context.Context, *graph.Node, *graph.Environment) error {
	return nil
}
