package interp

import (
	"github.com/j-f1/forked-engine262/pkg/vm"
)

// iteratorRecord is an iterator object with its cached next method.
type iteratorRecord struct {
	iterator *vm.Object
	next     vm.Value
	done     bool

	// fromSync marks an async iteration over a sync iterator; its results
	// are awaited by the consumer.
	fromSync bool
}

func getIteratorFromMethod(a *vm.Agent, v vm.Value, method vm.Value) (*iteratorRecord, vm.Completion) {
	it := vm.Call(a, method, v, nil)
	if it.IsAbrupt() {
		return nil, it
	}
	if !it.Value.IsObject() {
		return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgNotAnObject, vm.Inspect(it.Value))
	}
	next := vm.Get(a, it.Value.AsObject(), vm.NewStringKey("next"))
	if next.IsAbrupt() {
		return nil, next
	}
	return &iteratorRecord{iterator: it.Value.AsObject(), next: next.Value}, next
}

// getIterator returns an iterator over v. Async iteration falls back to
// @@iterator when v has no @@asyncIterator.
func getIterator(a *vm.Agent, v vm.Value, async bool) (*iteratorRecord, vm.Completion) {
	if async {
		method := vm.GetMethod(a, v, vm.NewSymbolKey(vm.SymbolAsyncIterator))
		if method.IsAbrupt() {
			return nil, method
		}
		if !method.Value.IsUndefined() {
			return getIteratorFromMethod(a, v, method.Value)
		}
	}
	method := vm.GetMethod(a, v, vm.NewSymbolKey(vm.SymbolIterator))
	if method.IsAbrupt() {
		return nil, method
	}
	if method.Value.IsUndefined() {
		return nil, a.Throw(vm.ErrorKindTypeError, vm.MsgNotIterable, vm.Inspect(v))
	}
	rec, c := getIteratorFromMethod(a, v, method.Value)
	if rec != nil {
		rec.fromSync = async
	}
	return rec, c
}

// iteratorNext calls next, passing value when it is not empty.
func iteratorNext(a *vm.Agent, rec *iteratorRecord, value vm.Value) vm.Completion {
	var args []vm.Value
	if !value.IsEmpty() {
		args = []vm.Value{value}
	}
	result := vm.Call(a, rec.next, vm.ObjectValue(rec.iterator), args)
	if result.IsAbrupt() {
		return result
	}
	if !result.Value.IsObject() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgIteratorResultNotObject, vm.Inspect(result.Value))
	}
	return result
}

func iteratorComplete(a *vm.Agent, result vm.Value) (bool, vm.Completion) {
	done := vm.Get(a, result.AsObject(), vm.NewStringKey("done"))
	if done.IsAbrupt() {
		return false, done
	}
	return vm.ToBoolean(done.Value), done
}

func iteratorValue(a *vm.Agent, result vm.Value) vm.Completion {
	return vm.Get(a, result.AsObject(), vm.NewStringKey("value"))
}

// iteratorStep advances rec and reports whether a value was produced.
func iteratorStep(a *vm.Agent, rec *iteratorRecord) (vm.Value, bool, vm.Completion) {
	result := iteratorNext(a, rec, vm.Empty)
	if result.IsAbrupt() {
		rec.done = true
		return vm.Undefined, false, result
	}
	done, c := iteratorComplete(a, result.Value)
	if c.IsAbrupt() || done {
		rec.done = true
		return vm.Undefined, false, c
	}
	v := iteratorValue(a, result.Value)
	if v.IsAbrupt() {
		rec.done = true
		return vm.Undefined, false, v
	}
	return v.Value, true, v
}

// iteratorClose calls the iterator's return method on early exit. A throw
// completion c wins over anything return does.
func iteratorClose(a *vm.Agent, rec *iteratorRecord, c vm.Completion) vm.Completion {
	ret := vm.GetMethod(a, vm.ObjectValue(rec.iterator), vm.NewStringKey("return"))
	if ret.IsAbrupt() && !c.IsThrow() {
		return ret
	}
	if ret.IsAbrupt() || ret.Value.IsUndefined() {
		return c
	}
	inner := vm.Call(a, ret.Value, vm.ObjectValue(rec.iterator), nil)
	if c.IsThrow() {
		return c
	}
	if inner.IsAbrupt() {
		return inner
	}
	if !inner.Value.IsObject() {
		return a.Throw(vm.ErrorKindTypeError, vm.MsgIteratorResultNotObject, vm.Inspect(inner.Value))
	}
	return c
}

// iterableToList drains an iterable, or reads an array-like that has no
// @@iterator.
func iterableToList(a *vm.Agent, v vm.Value) ([]vm.Value, vm.Completion) {
	method := vm.GetMethod(a, v, vm.NewSymbolKey(vm.SymbolIterator))
	if method.IsAbrupt() {
		return nil, method
	}
	if method.Value.IsUndefined() {
		return vm.CreateListFromArrayLike(a, v)
	}
	rec, c := getIteratorFromMethod(a, v, method.Value)
	if c.IsAbrupt() {
		return nil, c
	}
	var values []vm.Value
	for {
		next, ok, c := iteratorStep(a, rec)
		if c.IsAbrupt() {
			return nil, c
		}
		if !ok {
			return values, vm.NormalCompletion(vm.Undefined)
		}
		values = append(values, next)
	}
}
