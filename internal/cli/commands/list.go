package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fwtest/internal/domain"
	"fwtest/internal/execution"
	"fwtest/internal/graph"
	"fwtest/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	session *Session
}

// NewListCommand creates a new ListCommand
func NewListCommand(session *Session) *ListCommand {
	return &ListCommand{session: session}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.session.Config

	p, err := newPlan(lc.session, nil)
	if err != nil {
		return err
	}
	if p.empty() {
		color.Yellow("No test objects found")
		return nil
	}

	formatter := ui.NewFormatterTo(cmd.OutOrStdout())
	if !cfg.Flags.TestCases {
		formatter.PrintTargets(p.targets.Tests, p.graph.Aliases(), nil)
		return nil
	}

	cases := lc.listCases(cmd, p.graph.Env(), p.targets.Tests)
	formatter.PrintTargets(p.targets.Tests, p.graph.Aliases(), cases)
	formatter.PrintCases(p.targets.Tests, cases)
	return nil
}

// listCases asks every built program for its test cases. Programs that
// are missing or fail to list are left out of the map.
func (lc *ListCommand) listCases(cmd *cobra.Command, env *graph.Environment, tests []domain.TestTarget) map[string][]string {
	cfg := lc.session.Config
	logger := lc.session.Logger
	runner := execution.NewRunner(env, cfg.ProjectPath, false, logger)

	cases := make(map[string][]string, len(tests))
	for _, test := range tests {
		listed, err := runner.ListCases(cmd.Context(), test.Program)
		if err != nil {
			logger.Debug("list cases", "test", test.Name, "error", err)
			continue
		}
		cases[test.Name] = listed
	}
	return cases
}
