package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fwtest/internal/config"
)

// Flags holds command-line flags that are not backed by config keys
type Flags struct {
	Objects      []string
	NameFilter   string
	DryRun       bool
	OpenFailures bool
	Verbose      bool
	TestCases    bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Objects:      append([]string(nil), f.Objects...),
		NameFilter:   f.NameFilter,
		DryRun:       f.DryRun,
		OpenFailures: f.OpenFailures,
		Verbose:      f.Verbose,
		TestCases:    f.TestCases,
	}
}

// RegisterRootFlags adds flags shared by every command and binds the
// config-backed ones to v, so fwtest.yaml and FWTEST_* feed their defaults.
func RegisterRootFlags(cmd *cobra.Command, flags *Flags, v *viper.Viper) error {
	pf := cmd.PersistentFlags()
	pf.StringP("output", "o", config.DefaultOutputDir, "Directory for test programs and result files")
	pf.String("objects-dir", config.DefaultObjectsDir, "Directory scanned for test objects (*.o)")
	pf.String("manifest", "", "YAML manifest listing test objects in build order")
	pf.String("log-file", config.DefaultLogFile, "Log file path")
	pf.StringSliceVar(&flags.Objects, "objects", nil, "Test object files, overrides scanning (comma separated or repeated)")
	pf.StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g. '*Patch*' or 'Concert*')")
	pf.BoolVar(&flags.Verbose, "verbose", false, "Log at debug level")

	return bindFlags(v, pf, map[string]string{
		"output":      config.KeyOutputDir,
		"objects-dir": config.KeyObjectsDir,
		"manifest":    config.KeyManifest,
		"log-file":    config.KeyLogFile,
	})
}

// RegisterRunFlags adds the flags of the run command
func RegisterRunFlags(cmd *cobra.Command, flags *Flags, v *viper.Viper) error {
	f := cmd.Flags()
	f.IntP("processors", "p", config.DefaultProcessors, "Number of parallel workers")
	f.BoolP("keep-going", "k", false, "Keep building independent targets after a failure")
	f.BoolVarP(&flags.DryRun, "dry-run", "n", false, "Print the commands that would run without executing them")
	f.BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")

	return bindFlags(v, f, map[string]string{
		"processors": config.KeyProcessors,
		"keep-going": config.KeyKeepGoing,
	})
}

// RegisterListFlags adds the flags of the list command
func RegisterListFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases of already built programs")
}

func bindFlags(v *viper.Viper, set *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		flag := set.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag for config key %q not found", key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
