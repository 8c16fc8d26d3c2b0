package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fwtest/internal/cli"
	"fwtest/internal/cli/commands"
	"fwtest/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "fwtest",
		Short: "Native googletest runner for firmware projects",
		Long: `Generates a test program, an always-run result command and an alias for every
precompiled googletest object of a firmware project's native build, then builds
and runs them in parallel. "all" runs every test; "memcheck" runs under valgrind.`,
		Version:       version,
		SilenceErrors: true,
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Layered config: defaults, fwtest.yaml, FWTEST_* variables, flags
	v := config.NewViper(cwd)

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(v)

	// Register all commands
	if err := cmds.Register(rootCmd, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	err = rootCmd.ExecuteContext(ctx)
	_ = cmds.Session().Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
