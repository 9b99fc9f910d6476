package main

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fwessels/amalgamate/internal/config"
	"github.com/fwessels/amalgamate/internal/errors"
	"github.com/fwessels/amalgamate/internal/includes"
	"github.com/fwessels/amalgamate/internal/preprocessor"
)

// Version is set via -ldflags.
var Version = "dev"

func newRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "amalgamate",
		Short: "Amalgamate C/C++ source and header files by resolving include directives",
		Long: `amalgamate flattens a source file and every header it includes from the
search paths into a single file. Each file is included at most once and only the
first "#pragma once" is kept. Includes that cannot be found in the search paths,
such as system headers, are left untouched.

Without --source every C/C++ file found in the search paths is bundled.`,
		Example: `  amalgamate -i include -s src/main.c -o main.amalgamated.c
  amalgamate -i include -o single_header.h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer errors.Recover(func(cause error) {
				err = cause
			})

			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			logger := newLogger(stderr, cfg.LogLevel)
			if err := run(cmd.Context(), cfg, afero.NewOsFs(), stdout, logger); err != nil {
				if errors.IsContextCanceled(err) {
					logger.Warn("interrupted")
				} else if stack := errors.ErrorStack(err); stack != "" {
					logger.Debug(stack)
				}
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayP(config.KeyInc, "i", nil, "include search path (repeatable)")
	flags.StringP(config.KeySource, "s", "", "input file, if not specified bundle all files found in the search paths")
	flags.StringP(config.KeyOutput, "o", "", "output file (default stdout)")
	flags.String(config.KeyLogLevel, "info", "log level (debug, info, warn, error)")
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "amalgamate"})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, fs afero.Fs, stdout io.Writer, logger *log.Logger) error {
	incs, err := includes.Build(cfg.Includes)
	if err != nil {
		return err
	}
	logger.Debug("indexed search paths", "paths", cfg.Includes, "keys", len(incs))

	pp := preprocessor.NewPreprocessor(incs, fs, logger)

	var out bytes.Buffer
	if cfg.Bundling() {
		err = pp.Bundle(ctx, &out)
	} else {
		err = pp.ProcessFile(ctx, cfg.Source, &out)
	}
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err = out.WriteTo(stdout)
		return errors.WithStackTrace(err)
	}
	if err := afero.WriteFile(fs, cfg.Output, out.Bytes(), 0644); err != nil {
		return errors.WithStackTraceAndPrefix(err, "write %s", cfg.Output)
	}
	logger.Info("wrote output", "file", cfg.Output, "bytes", out.Len())
	return nil
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(os.Stdout, os.Stderr),
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
