package vm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/ast"
	"github.com/j-f1/forked-engine262/pkg/errors"
	"github.com/j-f1/forked-engine262/pkg/runtime"
)

// DefaultMaxCallDepth bounds the execution context stack when Options does
// not set a limit.
const DefaultMaxCallDepth = 512

// BodyEvaluator runs a function body of one shape inside the callee context
// that the invocation engine has already pushed.
type BodyEvaluator func(a *Agent, body *ast.FunctionNode, F *Object, args []Value) Completion

// Options configures a new Agent.
type Options struct {
	Logger       logrus.FieldLogger
	MaxCallDepth int
	Jobs         runtime.JobQueue
}

// Agent owns the execution context stack and everything shared by the
// realms it creates. An agent is single-threaded.
type Agent struct {
	stack      []*ExecutionContext
	evaluators map[ast.BodyShape]BodyEvaluator
	jobs       runtime.JobQueue
	logger     logrus.FieldLogger
	tracing    bool
	maxDepth   int

	realms     []*Realm
	realmHooks []func(*Realm)
	closers    []func()
	reported   []Value
}

// NewAgent creates an agent with an empty execution context stack.
func NewAgent(opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = DefaultMaxCallDepth
	}
	jobs := opts.Jobs
	if jobs == nil {
		jobs = runtime.NewDefaultJobQueue()
	}
	return &Agent{
		evaluators: make(map[ast.BodyShape]BodyEvaluator),
		jobs:       jobs,
		logger:     logger,
		tracing:    levelEnabled(logger, logrus.TraceLevel),
		maxDepth:   depth,
	}
}

func levelEnabled(logger logrus.FieldLogger, level logrus.Level) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(level)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(level)
	}
	return false
}

func (a *Agent) Logger() logrus.FieldLogger { return a.logger }

func (a *Agent) MaxCallDepth() int { return a.maxDepth }

// RegisterBodyEvaluator installs the evaluator for one body shape.
func (a *Agent) RegisterBodyEvaluator(shape ast.BodyShape, fn BodyEvaluator) {
	errors.Assert(shape != ast.ShapeUnknown, "RegisterBodyEvaluator", "cannot register the unknown shape")
	a.evaluators[shape] = fn
}

// OnRealmCreated registers a hook that runs after a realm's intrinsics and
// global object exist. Hooks see every realm created afterwards.
func (a *Agent) OnRealmCreated(fn func(*Realm)) {
	a.realmHooks = append(a.realmHooks, fn)
}

// OnClose registers cleanup that runs when the agent is closed.
func (a *Agent) OnClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close runs cleanup hooks in reverse registration order and drops pending
// jobs.
func (a *Agent) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.jobs.Reset()
}

// --- Execution context stack ---

// RunningContext returns the top of the stack, or nil when it is empty.
func (a *Agent) RunningContext() *ExecutionContext {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

func (a *Agent) StackDepth() int { return len(a.stack) }

func (a *Agent) PushContext(ctx *ExecutionContext) {
	errors.Assert(ctx != nil, "PushContext", "nil execution context")
	a.stack = append(a.stack, ctx)
	if a.tracing {
		a.logger.WithFields(logrus.Fields{
			"depth":    len(a.stack),
			"function": contextName(ctx),
		}).Trace("push execution context")
	}
}

// PopContext removes ctx, which must be the running context.
func (a *Agent) PopContext(ctx *ExecutionContext) {
	errors.Assert(a.RunningContext() == ctx, "PopContext", "popped context is not the running context")
	a.stack[len(a.stack)-1] = nil
	a.stack = a.stack[:len(a.stack)-1]
	if a.tracing {
		a.logger.WithFields(logrus.Fields{
			"depth":    len(a.stack),
			"function": contextName(ctx),
		}).Trace("pop execution context")
	}
}

// RunInContext pushes ctx, runs fn, and pops ctx even if fn panics.
func (a *Agent) RunInContext(ctx *ExecutionContext, fn func() Completion) Completion {
	a.PushContext(ctx)
	defer a.PopContext(ctx)
	return fn()
}

func contextName(ctx *ExecutionContext) string {
	if ctx.Function == nil {
		return "<script>"
	}
	if name := functionDebugName(ctx.Function); name != "" {
		return name
	}
	return "<anonymous>"
}

// checkCallDepth throws a RangeError when another context would exceed the
// configured limit.
func (a *Agent) checkCallDepth() Completion {
	if len(a.stack) >= a.maxDepth {
		return a.Throw(ErrorKindRangeError, MsgCallStackExceeded)
	}
	return NormalCompletion(Undefined)
}

// CurrentRealm is the realm of the running execution context.
func (a *Agent) CurrentRealm() *Realm {
	ctx := a.RunningContext()
	errors.Assert(ctx != nil, "CurrentRealm", "no running execution context")
	return ctx.Realm
}

// ActiveFunctionObject is the function of the running context, or nil.
func (a *Agent) ActiveFunctionObject() *Object {
	if ctx := a.RunningContext(); ctx != nil {
		return ctx.Function
	}
	return nil
}

// GetActiveScriptOrModule walks the stack from the top for the nearest
// context with a ScriptOrModule.
func (a *Agent) GetActiveScriptOrModule() *ScriptOrModule {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if som := a.stack[i].ScriptOrModule; som != nil {
			return som
		}
	}
	return nil
}

// Intrinsic looks up an intrinsic of the current realm.
func (a *Agent) Intrinsic(name string) *Object {
	return a.CurrentRealm().Intrinsic(name)
}

// Realms lists the realms created by this agent.
func (a *Agent) Realms() []*Realm { return a.realms }

// --- Errors ---

// errorRealm picks the realm new error objects belong to. Host calls made
// with an empty stack fall back to the most recent realm.
func (a *Agent) errorRealm() *Realm {
	if ctx := a.RunningContext(); ctx != nil {
		return ctx.Realm
	}
	errors.Assert(len(a.realms) > 0, "Throw", "no realm to create an error in")
	return a.realms[len(a.realms)-1]
}

// NewError creates a native error object of the given kind.
func (a *Agent) NewError(kind ErrorKind, message string) *Object {
	realm := a.errorRealm()
	o := ObjectCreate(realm.Intrinsic(kind.prototypeIntrinsic()), "ErrorData")
	o.SetClass("Error")
	o.props.set(NewStringKey("message"), &property{
		value:        NewString(message),
		writable:     true,
		configurable: true,
	})
	return o
}

// Throw returns a throw completion carrying a new native error.
func (a *Agent) Throw(kind ErrorKind, format string, args ...any) Completion {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	a.logger.WithFields(logrus.Fields{
		"kind":  kind.String(),
		"depth": len(a.stack),
	}).Debug(msg)
	return ThrowCompletion(ObjectValue(a.NewError(kind, msg)))
}

// --- Jobs ---

// EnqueueJob schedules job to run in a fresh context of realm once the
// stack is empty and the host drains the queue.
func (a *Agent) EnqueueJob(name string, realm *Realm, job func() Completion) {
	a.jobs.Enqueue(runtime.Job{Name: name, Run: func() {
		errors.Assert(len(a.stack) == 0, "RunJobs", "job %s ran with a non-empty stack", name)
		if a.tracing {
			a.logger.WithField("job", name).Trace("run job")
		}
		ctx := &ExecutionContext{Realm: realm}
		if c := a.RunInContext(ctx, job); c.IsThrow() {
			a.HostReportError(c.Value)
		}
	}})
}

// RunJobs drains the job queue and returns how many jobs ran.
func (a *Agent) RunJobs() int {
	return a.jobs.RunUntilIdle()
}

// PendingJobs returns the number of queued jobs.
func (a *Agent) PendingJobs() int { return a.jobs.Pending() }

// HostReportError records an exception that no guest code handled.
func (a *Agent) HostReportError(v Value) {
	a.logger.WithField("value", Inspect(v)).Warn("unhandled exception in job")
	a.reported = append(a.reported, v)
}

// ReportedErrors returns and clears the errors reported by jobs.
func (a *Agent) ReportedErrors() []Value {
	r := a.reported
	a.reported = nil
	return r
}
