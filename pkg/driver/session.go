// Package driver hosts the engine: it owns an agent with the interpreter
// installed, runs scripts and fixtures, and reports their outcome.
package driver

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/interp"
	"github.com/j-f1/forked-engine262/pkg/source"
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// Session is a persistent engine instance. Declarations made by one script
// are visible to the scripts run after it.
type Session struct {
	cfg    Config
	logger logrus.FieldLogger
	agent  *vm.Agent
	interp *interp.Interpreter
	realm  *vm.Realm
	out    io.Writer
	jobs   int
}

// New creates a session with one realm.
func New(cfg Config, logger logrus.FieldLogger) *Session {
	agent := vm.NewAgent(vm.Options{Logger: logger, MaxCallDepth: cfg.MaxCallDepth})
	s := &Session{
		cfg:    cfg,
		logger: logger,
		agent:  agent,
		interp: interp.Install(agent),
		out:    io.Discard,
	}
	agent.OnRealmCreated(s.installHost)
	s.realm = vm.NewRealm(agent)
	return s
}

// SetOutput sets where host.print writes.
func (s *Session) SetOutput(w io.Writer) { s.out = w }

func (s *Session) Agent() *vm.Agent { return s.agent }
func (s *Session) Realm() *vm.Realm { return s.realm }

// JobsRun returns how many jobs the session has drained.
func (s *Session) JobsRun() int { return s.jobs }

// UnhandledRejections returns the promises rejected without a handler since
// the last call.
func (s *Session) UnhandledRejections() []vm.Value { return s.interp.UnhandledRejections() }

// Close abandons suspended generators and async functions.
func (s *Session) Close() { s.agent.Close() }

// RunScript evaluates script and then drains the job queue. An exception
// that escapes the script is returned as an *errors.UncaughtError.
func (s *Session) RunScript(script *ast.Script, src *source.SourceFile) (vm.Value, error) {
	c := s.interp.EvaluateScript(s.realm, script, src)
	s.drainJobs()
	if c.IsThrow() {
		return vm.Undefined, s.uncaught(c.Value, src)
	}
	return c.Value, nil
}

func (s *Session) drainJobs() {
	n := s.agent.RunJobs()
	s.jobs += n
	if n > 0 {
		s.logger.WithField("jobs", n).Debug("drained job queue")
	}
	for _, v := range s.agent.ReportedErrors() {
		s.logger.WithField("error", vm.Inspect(v)).Warn("job threw")
	}
}

// uncaught converts a thrown value into a host error, reading the name and
// message of error objects.
func (s *Session) uncaught(v vm.Value, src *source.SourceFile) *errors.UncaughtError {
	err := &errors.UncaughtError{
		Position: errors.Position{Source: src},
		Rendered: vm.Inspect(v),
	}
	if !v.IsObject() || !v.AsObject().HasSlot("ErrorData") {
		return err
	}
	obj := v.AsObject()
	if name := vm.Get(s.agent, obj, vm.NewStringKey("name")); !name.IsAbrupt() && name.Value.IsString() {
		err.Name = name.Value.AsString()
	}
	if msg := vm.Get(s.agent, obj, vm.NewStringKey("message")); !msg.IsAbrupt() && msg.Value.IsString() {
		err.Msg = msg.Value.AsString()
	}
	return err
}
