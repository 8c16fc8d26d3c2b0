package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configBaseName = "fwtest"
	configFileName = configBaseName + ".yaml"
	envPrefix      = "FWTEST"
)

// Viper keys shared by the config file, FWTEST_* variables and bound flags.
const (
	KeyProjectPath   = "project"
	KeyOutputDir     = "output"
	KeyObjectsDir    = "objects.dir"
	KeyManifest      = "objects.manifest"
	KeyIgnore        = "objects.ignore"
	KeyProcessors    = "run.processors"
	KeyKeepGoing     = "run.keep_going"
	KeyCXX           = "link.cxx"
	KeyLinkFlags     = "link.flags"
	KeyLibs          = "link.libs"
	KeyShell         = "run.shell"
	KeyEnvFile       = "env_file"
	KeySummaryFile   = "results.summary"
	KeyMySQLDSN      = "results.mysql_dsn"
	KeyLogFile       = "log.filename"
	KeyLogLevel      = "log.level"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	OutputDir   string

	// Object sources
	ObjectsDir    string
	Manifest      string
	PathsToIgnore []string

	// Execution settings
	Processors int
	KeepGoing  bool
	Shell      string

	// Link settings
	CXX       string
	LinkFlags []string
	Libs      []string

	EnvFile     string
	SummaryFile string
	MySQLDSN    string

	Log LogConfig

	// Command flags
	Flags Flags
}

// LogConfig configures the rotating log file
type LogConfig struct {
	Filename   string
	Level      string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Flags holds command-line flags that have no config file counterpart
type Flags struct {
	Objects      []string
	NameFilter   string
	DryRun       bool
	OpenFailures bool
	Verbose      bool
	TestCases    bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		OutputDir:   DefaultOutputDir,
		ObjectsDir:  DefaultObjectsDir,
		Processors:  DefaultProcessors,
		Shell:       DefaultShell,
		CXX:         DefaultCXX,
		EnvFile:     DefaultEnvFile,
		SummaryFile: DefaultSummaryFile,
		Log: LogConfig{
			Filename:   DefaultLogFile,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
			Compress:   DefaultLogCompress,
		},
	}
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	cfg.LinkFlags = append([]string(nil), DefaultLinkFlags...)
	cfg.Libs = append([]string(nil), DefaultLibs...)
	return cfg
}

// NewViper returns a viper instance that reads fwtest.yaml from dir and
// FWTEST_* environment variables on top of the defaults.
func NewViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.SetConfigFile(filepath.Join(dir, configFileName))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProjectPath, DefaultProjectPath)
	v.SetDefault(KeyOutputDir, DefaultOutputDir)
	v.SetDefault(KeyObjectsDir, DefaultObjectsDir)
	v.SetDefault(KeyManifest, "")
	v.SetDefault(KeyIgnore, DefaultPathsToIgnore)
	v.SetDefault(KeyProcessors, DefaultProcessors)
	v.SetDefault(KeyKeepGoing, false)
	v.SetDefault(KeyCXX, DefaultCXX)
	v.SetDefault(KeyLinkFlags, DefaultLinkFlags)
	v.SetDefault(KeyLibs, DefaultLibs)
	v.SetDefault(KeyShell, DefaultShell)
	v.SetDefault(KeyEnvFile, DefaultEnvFile)
	v.SetDefault(KeySummaryFile, DefaultSummaryFile)
	v.SetDefault(KeyMySQLDSN, "")
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogMaxSize, DefaultLogMaxSize)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)
	v.SetDefault(KeyLogMaxAge, DefaultLogMaxAge)
	v.SetDefault(KeyLogCompress, DefaultLogCompress)
}

// ReadConfigFile loads the config file if present. A missing file is not an error.
func ReadConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load builds a Config from the layered viper values
func Load(v *viper.Viper, flags Flags) *Config {
	cfg := New()
	cfg.Flags = flags

	cfg.ProjectPath = v.GetString(KeyProjectPath)
	cfg.OutputDir = v.GetString(KeyOutputDir)
	cfg.ObjectsDir = v.GetString(KeyObjectsDir)
	cfg.Manifest = v.GetString(KeyManifest)
	cfg.PathsToIgnore = v.GetStringSlice(KeyIgnore)
	cfg.KeepGoing = v.GetBool(KeyKeepGoing)
	cfg.CXX = v.GetString(KeyCXX)
	cfg.LinkFlags = v.GetStringSlice(KeyLinkFlags)
	cfg.Libs = v.GetStringSlice(KeyLibs)
	cfg.EnvFile = v.GetString(KeyEnvFile)
	cfg.SummaryFile = v.GetString(KeySummaryFile)
	cfg.MySQLDSN = v.GetString(KeyMySQLDSN)

	if p := v.GetInt(KeyProcessors); p > 0 {
		cfg.Processors = p
	}
	if s := v.GetString(KeyShell); s != "" {
		cfg.Shell = s
	}

	cfg.Log = LogConfig{
		Filename:   v.GetString(KeyLogFile),
		Level:      v.GetString(KeyLogLevel),
		MaxSize:    v.GetInt(KeyLogMaxSize),
		MaxBackups: v.GetInt(KeyLogMaxBackups),
		MaxAge:     v.GetInt(KeyLogMaxAge),
		Compress:   v.GetBool(KeyLogCompress),
	}

	return cfg
}

// resolve makes p relative to the project path unless it is absolute
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// GetObjectsDir returns the directory scanned for test objects
func (c *Config) GetObjectsDir() string {
	return c.resolve(c.ObjectsDir)
}

// GetManifestPath returns the object manifest path, or "" when none is configured
func (c *Config) GetManifestPath() string {
	return c.resolve(c.Manifest)
}

// ProgramPath returns the path of the test program built for testName
func (c *Config) ProgramPath(testName string) string {
	return filepath.Join(c.OutputDir, testName)
}

// ResultPath returns the googletest XML result file for testName
func (c *Config) ResultPath(testName string) string {
	return filepath.Join(c.OutputDir, testName+"Result.xml")
}

// SummaryPath returns the absolute path to the JSON run summary, so run and
// failures always read and write the same file regardless of cwd.
func (c *Config) SummaryPath() string {
	p := c.resolve(filepath.Join(c.OutputDir, c.SummaryFile))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ExtraEnv reads the project dotenv file. A missing file yields no variables.
func (c *Config) ExtraEnv() (map[string]string, error) {
	path := c.resolve(c.EnvFile)
	if path == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return vars, nil
}
