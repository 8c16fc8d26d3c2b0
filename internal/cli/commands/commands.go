package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fwtest/internal/cli"
	"fwtest/internal/config"
	"fwtest/internal/logging"
)

// Session holds what every command needs once flags are parsed
type Session struct {
	Config *config.Config
	Logger *slog.Logger

	closer io.Closer
}

// Close releases the log file
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Commands holds all CLI commands
type Commands struct {
	viper   *viper.Viper
	session *Session

	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands sharing one session. The session is
// filled in by the root command's PersistentPreRunE.
func NewCommands(v *viper.Viper) *Commands {
	session := &Session{Config: config.New(), Logger: slog.Default()}

	return &Commands{
		viper:    v,
		session:  session,
		Run:      NewRunCommand(session),
		List:     NewListCommand(session),
		Failures: NewFailuresCommand(session),
	}
}

// Session returns the shared session
func (c *Commands) Session() *Session {
	return c.session
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) error {
	if err := cli.RegisterRootFlags(rootCmd, flags, c.viper); err != nil {
		return err
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.ReadConfigFile(c.viper); err != nil {
			return err
		}
		cfg := config.Load(c.viper, flags.ToConfigFlags())

		logger, closer := logging.New(cfg.Log, cfg.Flags.Verbose)
		slog.SetDefault(logger)

		c.session.Config = cfg
		c.session.Logger = logger
		c.session.closer = closer

		logger.Debug("config loaded", "command", cmd.Name(), "output", cfg.OutputDir, "processors", cfg.Processors)
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Build and run native tests in parallel",
		Long: `Generate a program, a result command and an alias per test object, then build the
requested targets. Without targets the default goal "all" runs every test.
"memcheck" alone runs every test under valgrind; together with other targets
it wraps only those.`,
		RunE: c.Run.Execute,
	}
	if err := cli.RegisterRunFlags(runCmd, flags, c.viper); err != nil {
		return fmt.Errorf("register run flags: %w", err)
	}
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List generated test targets",
		Long:  "Generate the test targets without building anything and print them with their aliases",
		Args:  cobra.NoArgs,
		RunE:  c.List.Execute,
	}
	cli.RegisterListFlags(listCmd, flags)
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)

	return nil
}
