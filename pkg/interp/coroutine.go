package interp

import (
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/j-f1/forked-engine262/pkg/vm"
)

// closedSignal unwinds a coroutine body that was abandoned while
// suspended.
type closedSignal struct{}

// coroutine runs a generator or async body that can suspend itself. The
// body only runs inside resume, with ctx pushed as the running context.
type coroutine struct {
	in  *Interpreter
	ctx *vm.ExecutionContext

	next  func() (struct{}, bool)
	stop  func()
	yield func(struct{}) bool

	sent   vm.Completion // completion the body resumes with
	result vm.Completion // completion the body finished with
	done   bool
}

func (in *Interpreter) newCoroutine(ctx *vm.ExecutionContext, body func() vm.Completion) *coroutine {
	co := &coroutine{in: in, ctx: ctx}
	co.next, co.stop = iter.Pull(func(yield func(struct{}) bool) {
		co.yield = yield
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(closedSignal); !ok {
					panic(r)
				}
			}
		}()
		co.result = body()
		co.done = true
	})
	in.live[co] = struct{}{}
	return co
}

// resume runs the body until it suspends or finishes, handing it sent.
func (co *coroutine) resume(a *vm.Agent, sent vm.Completion) {
	co.sent = sent
	co.in.logger.WithFields(logrus.Fields{
		"completion": sent.Type.String(),
		"depth":      a.StackDepth(),
	}).Trace("resume coroutine")
	a.PushContext(co.ctx)
	defer a.PopContext(co.ctx)
	if _, ok := co.next(); !ok || co.done {
		co.finish()
	}
}

// suspend parks the body and returns the completion it is resumed with.
func (co *coroutine) suspend() vm.Completion {
	if !co.yield(struct{}{}) {
		panic(closedSignal{})
	}
	return co.sent
}

func (co *coroutine) finish() {
	co.done = true
	co.stop()
	delete(co.in.live, co)
}

// close abandons a suspended body without running any more of it.
func (co *coroutine) close() {
	if co.done {
		return
	}
	co.in.logger.Debug("closing suspended coroutine")
	co.finish()
}
