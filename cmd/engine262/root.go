package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/j-f1/forked-engine262/pkg/driver"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// rootCommand holds what every subcommand needs once flags are parsed.
type rootCommand struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	cmd    *cobra.Command

	cfg    driver.Config
	logger *logrus.Logger

	// flag values, applied over the environment configuration
	logLevel     string
	logFormat    string
	maxCallDepth int
	noColor      bool
}

func newRootCommand(fs afero.Fs, stdout, stderr io.Writer) *rootCommand {
	c := &rootCommand{fs: fs, stdout: stdout, stderr: stderr}
	c.cmd = &cobra.Command{
		Use:               "engine262",
		Short:             "run fixture scripts against the engine core",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.SetOut(stdout)
	c.cmd.SetErr(stderr)
	c.cmd.PersistentFlags().AddFlagSet(c.persistentFlagSet())
	c.cmd.AddCommand(
		newRunCommand(c),
		newCheckCommand(c),
		newVersionCommand(c),
	)
	return c
}

func (c *rootCommand) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(&c.logLevel, "log-level", "l", "warn", "log level: trace, debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "text", "log format: text or json")
	flags.IntVar(&c.maxCallDepth, "max-call-depth", vm.DefaultMaxCallDepth, "execution context stack limit")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	return flags
}

// persistentPreRunE loads the environment configuration, lets explicitly
// set flags win, and builds the logger.
func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := driver.LoadConfig()
	if err != nil {
		return withExitCode(err, exitUsage)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.logFormat
	}
	if flags.Changed("max-call-depth") {
		cfg.MaxCallDepth = c.maxCallDepth
	}
	if flags.Changed("no-color") {
		cfg.NoColor = c.noColor
	}
	if cfg.MaxCallDepth < 1 {
		return withExitCode(fmt.Errorf("max call depth must be positive, got %d", cfg.MaxCallDepth), exitUsage)
	}
	logger, err := cfg.NewLogger(c.stderr)
	if err != nil {
		return withExitCode(err, exitUsage)
	}
	c.cfg, c.logger = cfg, logger
	c.logger.WithField("config", cfg).Debug("configuration loaded")
	return nil
}
