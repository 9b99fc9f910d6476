package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwessels/amalgamate/internal/config"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("amalgamate", pflag.ContinueOnError)
	flags.StringArrayP(config.KeyInc, "i", nil, "")
	flags.StringP(config.KeySource, "s", "", "")
	flags.StringP(config.KeyOutput, "o", "", "")
	flags.String(config.KeyLogLevel, "info", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadFromFlags(t *testing.T) {
	cfg, err := config.Load(newFlags(t, "-i", "include", "--inc", "third_party", "-s", "main.c", "-o", "out.c"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"include", "third_party"}, cfg.Includes)
	assert.Equal(t, "main.c", cfg.Source)
	assert.Equal(t, "out.c", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Bundling())
}

func TestLoadRequiresSearchPath(t *testing.T) {
	_, err := config.Load(newFlags(t, "-s", "main.c"), "")
	assert.True(t, errors.Is(err, config.ErrNoSearchPath), "got %v", err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AMALGAMATE_INC", "a,b")
	t.Setenv("AMALGAMATE_LOG_LEVEL", "debug")

	cfg, err := config.Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Includes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Bundling())
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amalgamate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inc:\n  - from-file\nsource: file.c\noutput: file.out\n"), 0644))
	t.Setenv("AMALGAMATE_SOURCE", "env.c")

	cfg, err := config.Load(newFlags(t, "-o", "flag.out"), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"from-file"}, cfg.Includes)
	assert.Equal(t, "env.c", cfg.Source)
	assert.Equal(t, "flag.out", cfg.Output)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.Load(newFlags(t, "-i", "inc"), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Includes = []string{"inc"}
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())
}
