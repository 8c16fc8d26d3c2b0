package config

import "log/slog"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputDir is where test programs and result files are written
	DefaultOutputDir = "build/test"
	// DefaultObjectsDir is scanned for test objects when no manifest or explicit objects are given
	DefaultObjectsDir = ".pio/build/native"
	// DefaultSummaryFile is the JSON run summary written under the output directory
	DefaultSummaryFile = "test-results.json"
	// DefaultEnvFile is the optional dotenv file propagated into the build environment
	DefaultEnvFile = ".env"
	// DefaultProcessors is the default number of workers
	DefaultProcessors = 4
	// DefaultCXX is the compiler driver used to link test programs
	DefaultCXX = "g++"
	// DefaultShell runs command strings
	DefaultShell = "/bin/sh"

	DefaultLogFile       = ".fwtest.log"
	DefaultLogLevel      = int(slog.LevelInfo)
	DefaultLogMaxSize    = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28
	DefaultLogCompress   = true
)

// DefaultLinkFlags are passed to the linker for every test program
var DefaultLinkFlags = []string{"-pthread"}

// DefaultLibs are linked into every test program
var DefaultLibs = []string{"-lgmock", "-lgtest_main", "-lgtest"}

// DefaultPathsToIgnore are the default directories to ignore when scanning for objects
var DefaultPathsToIgnore = []string{
	"lib",
	"libdeps",
}
