package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fwtest/internal/domain"
	"fwtest/internal/execution"
	"fwtest/internal/parser"
	"fwtest/internal/storage"
	"fwtest/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	session *Session
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(session *Session) *RunCommand {
	return &RunCommand{session: session}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.session.Config
	logger := rc.session.Logger
	ctx := cmd.Context()

	p, err := newPlan(rc.session, args)
	if err != nil {
		return err
	}
	if p.empty() {
		color.Yellow("No test objects found")
		return nil
	}

	nodes, err := p.graph.Resolve(args)
	if err != nil {
		return err
	}

	requested := args
	if len(requested) == 0 {
		requested = p.graph.Defaults()
	}

	gtest := parser.NewGTestParser()
	runner := execution.NewRunner(p.graph.Env(), cfg.ProjectPath, cfg.Flags.DryRun, logger)
	executor := execution.NewWorkerPool(cfg, runner, p.targets, gtest, logger)

	testCount := 0
	for _, n := range nodes {
		if _, ok := p.targets.Test(n); ok {
			testCount++
		}
	}
	if testCount > 0 && !cfg.Flags.DryRun {
		executor.SetProgress(ui.NewProgressBar(testCount))
	}

	// Failures are reported below; the error only decides the exit code.
	report, execErr := executor.Execute(ctx, nodes)
	if execErr != nil && !errors.Is(execErr, execution.ErrBuildFailed) {
		return execErr
	}
	cmd.SilenceUsage = true

	formatter := ui.NewFormatterTo(cmd.OutOrStdout())
	formatter.PrintBuildResults(report.Builds)
	if cfg.Flags.DryRun {
		return execErr
	}

	// Interrupted runs still parse what finished and save a summary.
	failures, err := execution.CollectFailures(context.WithoutCancel(ctx), report.Tests, gtest, cfg.Processors)
	if err != nil {
		return fmt.Errorf("failed to parse test results: %w", err)
	}

	output := storage.Summarize(report.Tests, failures, storage.RunInfo{
		Targets:  requested,
		Memcheck: p.targets.Memcheck,
		Workers:  cfg.Processors,
		Duration: report.Duration,
	})

	jsonStorage := storage.NewJSONStorage(cfg.SummaryPath())
	if err := jsonStorage.Save(output); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	logger.Info("run finished", "tests", output.Meta.TotalTests, "failed", output.Meta.FailedTests, "summary", jsonStorage.Path())

	if cfg.MySQLDSN != "" {
		if err := recordRun(cmd, cfg.MySQLDSN, output); err != nil {
			logger.Warn("mysql sink", "error", err)
			color.Yellow("Warning: test results were not recorded in MySQL: %v", err)
		}
	}

	formatter.PrintMetaStats(output)

	if cfg.Flags.OpenFailures && len(output.Details) > 0 {
		if err := ui.NewFailureViewer(jsonStorage, logger).View(output); err != nil {
			return err
		}
	}

	return execErr
}

func recordRun(cmd *cobra.Command, dsn string, output *domain.TestResultsOutput) error {
	sink, err := storage.NewMySQLSink(dsn)
	if err != nil {
		return err
	}
	return sink.Record(cmd.Context(), output)
}
