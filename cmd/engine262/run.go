package main

import (
	stderrors "errors"
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/spf13/cobra"

	"github.com/j-f1/forked-engine262/pkg/driver"
	"github.com/j-f1/forked-engine262/pkg/fixture"
)

func newRunCommand(c *rootCommand) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "run [fixture files or globs...]",
		Short: "run fixtures and check their expectations",
		Long: `Run every fixture in the given files, each in a fresh agent, and compare
the outcome with the fixture's expect block. Without arguments the
ENGINE262_FIXTURES glob is used.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return c.run(args, filter)
		},
	}
	cmd.Flags().StringVarP(&filter, "run", "r", "", "only run fixtures whose name matches this regular expression")
	return cmd
}

func newCheckCommand(c *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "check [fixture files or globs...]",
		Short: "decode fixtures without running them",
		RunE: func(_ *cobra.Command, args []string) error {
			fixtures, files, err := c.load(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "%d fixtures in %d files\n", len(fixtures), files)
			return nil
		},
	}
}

func (c *rootCommand) runner() *driver.Runner {
	return driver.NewRunner(c.cfg, c.logger, c.fs)
}

// load expands patterns and decodes the files they name. Decoding errors
// are displayed with source excerpts before being returned.
func (c *rootCommand) load(patterns []string) ([]*fixture.Fixture, int, error) {
	if len(patterns) == 0 {
		patterns = []string{c.cfg.FixtureGlob}
	}
	r := c.runner()
	var paths []string
	for _, pattern := range patterns {
		matched, err := r.Glob(pattern)
		if err != nil {
			return nil, 0, withExitCode(err, exitUsage)
		}
		if len(matched) == 0 {
			return nil, 0, withExitCode(fmt.Errorf("no fixture files match %q", pattern), exitFailed)
		}
		paths = append(paths, matched...)
	}

	fixtures, err := r.Load(paths)
	var list fixture.ErrorList
	switch {
	case stderrors.As(err, &list):
		driver.NewDisplay(c.stderr, c.cfg.NoColor).Errors(list.EngineErrors())
		return nil, 0, withExitCode(fmt.Errorf("%d fixture errors", len(list)), exitFailed)
	case err != nil:
		return nil, 0, withExitCode(err, exitFailed)
	}
	return fixtures, len(paths), nil
}

func (c *rootCommand) run(patterns []string, filter string) error {
	var re *regexp2.Regexp
	if filter != "" {
		var err error
		if re, err = regexp2.Compile(filter, regexp2.RE2); err != nil {
			return withExitCode(fmt.Errorf("invalid --run pattern: %w", err), exitUsage)
		}
	}
	fixtures, _, err := c.load(patterns)
	if err != nil {
		return err
	}
	if re != nil {
		selected := fixtures[:0]
		for _, fx := range fixtures {
			ok, err := re.MatchString(fx.Name)
			if err != nil {
				return withExitCode(err, exitUsage)
			}
			if ok {
				selected = append(selected, fx)
			}
		}
		fixtures = selected
	}

	display := driver.NewDisplay(c.stdout, c.cfg.NoColor)
	results := c.runner().RunAll(fixtures)
	for _, res := range results {
		display.Result(res)
	}
	summary := driver.Summarize(results)
	display.Summary(summary)

	switch {
	case summary.Internal > 0:
		return withExitCode(fmt.Errorf("%d fixtures hit internal errors", summary.Internal), exitInternal)
	case summary.Failed > 0:
		return withExitCode(fmt.Errorf("%d fixtures failed", summary.Failed), exitFailed)
	}
	return nil
}
