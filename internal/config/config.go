// Package config merges command line flags, AMALGAMATE_* environment
// variables and an optional config file into one Config.
package config

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fwessels/amalgamate/internal/errors"
)

const (
	EnvPrefix = "AMALGAMATE"

	KeyInc      = "inc"
	KeySource   = "source"
	KeyOutput   = "output"
	KeyLogLevel = "log-level"
)

// ErrNoSearchPath is returned when no include search directory was given.
var ErrNoSearchPath = errors.New("at least one include search path (--inc) is required")

type Config struct {
	// Includes are the search directories, in priority order.
	Includes []string `mapstructure:"inc"`
	// Source is the entry file. Empty means bundle every indexed file.
	Source string `mapstructure:"source"`
	// Output is the destination file. Empty means stdout.
	Output   string `mapstructure:"output"`
	LogLevel string `mapstructure:"log-level"`
}

func DefaultConfig() *Config {
	return &Config{LogLevel: "info"}
}

// Bundling reports whether no entry file was named.
func (c *Config) Bundling() bool { return c.Source == "" }

func (c *Config) Validate() error {
	if len(c.Includes) == 0 {
		return ErrNoSearchPath
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.WithStackTraceAndPrefix(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

// Load reads the configuration. Flags override the environment, which
// overrides the config file at path, which overrides the defaults.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyInc, defaults.Includes)
	v.SetDefault(KeySource, defaults.Source)
	v.SetDefault(KeyOutput, defaults.Output)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "load config %s", path)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyInc, KeySource, KeyOutput, KeyLogLevel} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.WithStackTrace(err)
				}
			}
		}
	}

	cfg := &Config{
		Includes: splitList(v.GetStringSlice(KeyInc)),
		Source:   v.GetString(KeySource),
		Output:   v.GetString(KeyOutput),
		LogLevel: v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList also accepts comma separated entries, as written in
// AMALGAMATE_INC.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
