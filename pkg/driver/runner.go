package driver

import (
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/fixture"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// Result is the outcome of running one fixture.
type Result struct {
	Fixture  *fixture.Fixture
	Value    string // rendering of the completion value or the thrown value
	Jobs     int
	Duration time.Duration
	Err      error // nil when every expectation held
}

func (r Result) Passed() bool { return r.Err == nil }

// Internal reports whether the run tripped an engine assertion rather than
// a fixture expectation.
func (r Result) Internal() bool {
	var ae *errors.AssertionError
	return stderrors.As(r.Err, &ae)
}

// Runner loads fixture files and runs each fixture in a fresh session.
type Runner struct {
	cfg    Config
	logger logrus.FieldLogger
	fs     afero.Fs
}

func NewRunner(cfg Config, logger logrus.FieldLogger, fs afero.Fs) *Runner {
	return &Runner{cfg: cfg, logger: logger, fs: fs}
}

// Glob expands pattern against the runner's filesystem, sorted.
func (r *Runner) Glob(pattern string) ([]string, error) {
	paths, err := afero.Glob(r.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load decodes every file in paths. Decoding problems from all files are
// merged into one fixture.ErrorList; a read failure stops at once.
func (r *Runner) Load(paths []string) ([]*fixture.Fixture, error) {
	var fixtures []*fixture.Fixture
	var problems fixture.ErrorList
	for _, path := range paths {
		fxs, err := fixture.LoadFile(r.fs, path)
		var list fixture.ErrorList
		switch {
		case stderrors.As(err, &list):
			problems = append(problems, list...)
		case err != nil:
			return nil, err
		}
		fixtures = append(fixtures, fxs...)
		r.logger.WithFields(logrus.Fields{"path": path, "fixtures": len(fxs)}).Debug("loaded fixture file")
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return fixtures, nil
}

// RunAll runs fixtures in order.
func (r *Runner) RunAll(fixtures []*fixture.Fixture) []Result {
	results := make([]Result, 0, len(fixtures))
	for _, fx := range fixtures {
		results = append(results, r.RunFixture(fx))
	}
	return results
}

// RunFixture runs fx in a new session and checks its expectation.
func (r *Runner) RunFixture(fx *fixture.Fixture) (res Result) {
	res.Fixture = fx
	logger := r.logger.WithField("fixture", fx.Name)
	session := New(r.cfg, logger)
	defer session.Close()

	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			ae, ok := errors.AsAssertion(rec)
			if !ok {
				panic(rec)
			}
			ae.Position = fx.Position
			res.Err = ae
			logger.WithError(ae).Error("engine assertion failed")
		}
	}()

	depth := session.Agent().StackDepth()
	value, err := session.RunScript(fx.Script, fx.Position.Source)
	res.Jobs = session.JobsRun()
	res.Err = r.check(fx, session, depth, value, err, &res)
	if res.Err != nil {
		logger.WithError(res.Err).Debug("fixture failed")
	}
	return res
}

func (r *Runner) check(fx *fixture.Fixture, s *Session, depth int, value vm.Value, runErr error, res *Result) error {
	expect := &fx.Expect
	fail := func(format string, args ...any) error {
		return &errors.ExpectationError{Position: fx.Position, Msg: fmt.Sprintf(format, args...), Cause: runErr}
	}

	var uncaught *errors.UncaughtError
	switch {
	case stderrors.As(runErr, &uncaught):
		res.Value = uncaught.Rendered
		if expect.Throws == "" {
			return fail("unexpected %s", uncaught.Error())
		}
		if uncaught.Name != expect.Throws {
			return fail("expected %s to be thrown, got %s", expect.Throws, uncaught.Rendered)
		}
		ok, err := expect.MatchMessage(uncaught.Msg)
		if err != nil {
			return fail("matching message: %v", err)
		}
		if !ok {
			return fail("message %q does not match %s", uncaught.Msg, expect.Message.String())
		}
	case runErr != nil:
		return runErr
	default:
		res.Value = vm.Inspect(value)
		if expect.Throws != "" {
			return fail("expected %s to be thrown, completed with %s", expect.Throws, res.Value)
		}
		if expect.HasValue && res.Value != expect.Value {
			return fail("expected value %s, got %s", expect.Value, res.Value)
		}
	}

	if got := s.Agent().StackDepth(); expect.Balanced && got != depth {
		return fail("execution context stack depth is %d after the run, want %d", got, depth)
	}
	if res.Jobs < expect.Jobs {
		return fail("expected at least %d jobs, ran %d", expect.Jobs, res.Jobs)
	}
	if rejected := s.UnhandledRejections(); len(rejected) != expect.Rejections {
		return fail("expected %d unhandled rejections, got %d", expect.Rejections, len(rejected))
	}
	return nil
}
