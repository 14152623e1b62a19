package vm

import (
	"github.com/j-f1/forked-engine262/pkg/source"
)

// ScriptOrModule is the record a running script or function body was
// loaded from.
type ScriptOrModule struct {
	Realm       *Realm
	Source      *source.SourceFile
	HostDefined any
}

// CallSite records how the running context was entered.
type CallSite struct {
	ConstructCall bool
}

// ExecutionContext is one entry of the agent's execution context stack.
type ExecutionContext struct {
	Function            *Object // nil for script contexts
	Realm               *Realm
	ScriptOrModule      *ScriptOrModule
	LexicalEnvironment  Environment
	VariableEnvironment Environment
	CallSite            CallSite

	// HostDefined carries evaluator state such as a generator's coroutine.
	HostDefined any
}

// NewScriptContext returns a context for evaluating top-level code in realm.
func NewScriptContext(realm *Realm, script *ScriptOrModule) *ExecutionContext {
	return &ExecutionContext{
		Realm:               realm,
		ScriptOrModule:      script,
		LexicalEnvironment:  realm.GlobalEnv,
		VariableEnvironment: realm.GlobalEnv,
	}
}
