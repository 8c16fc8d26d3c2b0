package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"fwtest/internal/domain"
	"fwtest/internal/graph"
	"fwtest/internal/parser"
)

// Runner builds a single graph node
type Runner struct {
	env    *graph.Environment
	dir    string
	dryRun bool
	logger *slog.Logger
}

// NewRunner creates a Runner executing commands in dir with env
func NewRunner(env *graph.Environment, dir string, dryRun bool, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{env: env, dir: dir, dryRun: dryRun, logger: logger}
}

// Run builds n unless it is up to date
func (r *Runner) Run(ctx context.Context, n *graph.Node) (result domain.BuildResult) {
	result.Target = n.Name
	if n.Command != "" {
		result.Command = r.env.Subst(n.Command, n)
	}

	if r.dryRun {
		result.Status = domain.StatusDryRun
		return result
	}
	if n.UpToDate(r.dir) {
		result.Status = domain.StatusUpToDate
		r.logger.Debug("up to date", "target", n.Name)
		return result
	}

	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	for _, src := range n.Sources {
		if src.Kind == graph.KindFile && !src.Exists(r.dir) {
			result.Status = domain.StatusFailed
			result.Error = fmt.Errorf("source %s not found, needed by target %s", src.Name, n.Name)
			return result
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.path(n.Name)), 0755); err != nil {
		result.Status = domain.StatusFailed
		result.Error = fmt.Errorf("create output dir: %w", err)
		return result
	}

	// A stale target must not survive a rebuild that fails to write it.
	if err := os.Remove(r.path(n.Name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		result.Status = domain.StatusFailed
		result.Error = fmt.Errorf("remove stale target: %w", err)
		return result
	}

	var err error
	if n.Func != nil {
		err = n.Func(ctx, n, r.env)
	} else {
		r.logger.Debug("exec", "target", n.Name, "command", result.Command)
		result.Output, err = r.shell(ctx, result.Command)
	}

	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = err
		r.logger.Warn("build failed", "target", n.Name, "error", err)
		return result
	}
	result.Status = domain.StatusBuilt
	return result
}

// ListCases runs program with --gtest_list_tests and returns its test cases
func (r *Runner) ListCases(ctx context.Context, program string) ([]string, error) {
	path := program
	if !filepath.IsAbs(path) {
		path = "./" + path
	}
	cmd := exec.CommandContext(ctx, path, "--gtest_list_tests")
	cmd.Env = r.env.Environ()
	cmd.Dir = r.dir

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list tests of %s: %w", program, err)
	}
	return parser.ParseTestList(string(output)), nil
}

func (r *Runner) shell(ctx context.Context, command string) (string, error) {
	shell := r.env.Get(graph.VarShell)
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = r.env.Environ()
	cmd.Dir = r.dir

	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *Runner) path(p string) string {
	if r.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.dir, p)
}

