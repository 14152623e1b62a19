// Command engine262 runs YAML fixture scripts against the engine core.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

const (
	exitOK       = 0
	exitFailed   = 1  // failed expectations or malformed fixtures
	exitUsage    = 64 // command line usage error
	exitInternal = 70 // internal software error
)

// exitError attaches a process exit code to an error.
type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	return &exitError{err: err, code: code}
}

func main() {
	os.Exit(execute(afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the exit code. Errors without
// an attached code come from argument parsing.
func execute(fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	c := newRootCommand(fs, stdout, stderr)
	c.cmd.SetArgs(args)
	err := c.cmd.Execute()
	if err == nil {
		return exitOK
	}
	code := exitUsage
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	fmt.Fprintf(stderr, "engine262: %v\n", err)
	return code
}
