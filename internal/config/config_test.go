package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultProcessors, cfg.Processors)
	assert.Equal(t, DefaultLibs, cfg.Libs)
	assert.Len(t, cfg.PathsToIgnore, len(DefaultPathsToIgnore))

	cfg.Libs[0] = "-lchanged"
	assert.NotEqual(t, "-lchanged", DefaultLibs[0], "defaults must be copied")
}

func TestConfig_Paths(t *testing.T) {
	cfg := New()

	assert.Equal(t, "build/test/foo_test", cfg.ProgramPath("foo_test"))
	assert.Equal(t, "build/test/foo_testResult.xml", cfg.ResultPath("foo_test"))
}

func TestConfig_GetObjectsDir(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "relative to project",
			config:   &Config{ProjectPath: "/project", ObjectsDir: ".pio/build/native"},
			expected: "/project/.pio/build/native",
		},
		{
			name:     "absolute objects dir",
			config:   &Config{ProjectPath: "/project", ObjectsDir: "/objects"},
			expected: "/objects",
		},
		{
			name:     "empty stays empty",
			config:   &Config{ProjectPath: "/project"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetObjectsDir())
		})
	}
}

func TestConfig_SummaryPath(t *testing.T) {
	cfg := &Config{ProjectPath: "/project", OutputDir: "build/test", SummaryFile: "test-results.json"}
	assert.Equal(t, "/project/build/test/test-results.json", cfg.SummaryPath())
}

func TestLoad_Defaults(t *testing.T) {
	v := NewViper(t.TempDir())
	require.NoError(t, ReadConfigFile(v))

	cfg := Load(v, Flags{})

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultCXX, cfg.CXX)
	assert.Equal(t, DefaultProcessors, cfg.Processors)
	assert.Equal(t, DefaultLinkFlags, cfg.LinkFlags)
	assert.False(t, cfg.KeepGoing)
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `output: out/tests
run:
  processors: 8
link:
  cxx: clang++
  libs: ["-lgtest"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
	t.Setenv("FWTEST_RUN_KEEP_GOING", "true")

	v := NewViper(dir)
	require.NoError(t, ReadConfigFile(v))
	cfg := Load(v, Flags{DryRun: true})

	assert.Equal(t, "out/tests", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Processors)
	assert.Equal(t, "clang++", cfg.CXX)
	assert.Equal(t, []string{"-lgtest"}, cfg.Libs)
	assert.True(t, cfg.KeepGoing)
	assert.True(t, cfg.Flags.DryRun)
}

func TestReadConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("output: [unterminated"), 0644))

	v := NewViper(dir)
	assert.Error(t, ReadConfigFile(v))
}

func TestConfig_ExtraEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := &Config{ProjectPath: t.TempDir(), EnvFile: ".env"}
		vars, err := cfg.ExtraEnv()
		require.NoError(t, err)
		assert.Empty(t, vars)
	})

	t.Run("reads variables", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GTEST_COLOR=yes\nLSAN_OPTIONS=verbosity=1\n"), 0644))
		cfg := &Config{ProjectPath: dir, EnvFile: ".env"}

		vars, err := cfg.ExtraEnv()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"GTEST_COLOR": "yes", "LSAN_OPTIONS": "verbosity=1"}, vars)
	})
}
