package ast

// BodyKind is the syntactic production a function body was parsed from.
// The zero value is deliberately invalid so an unset kind never dispatches.
type BodyKind uint8

const (
	BodyUnknown BodyKind = iota
	FunctionBody
	ConciseFunctionBody // arrow function with a braced body
	ConciseExpressionBody
	GeneratorBody
	AsyncFunctionBody
	AsyncConciseFunctionBody
	AsyncConciseExpressionBody
	AsyncGeneratorBody
)

var bodyKindNames = [...]string{
	BodyUnknown:                "Unknown",
	FunctionBody:               "FunctionBody",
	ConciseFunctionBody:        "ConciseBody_FunctionBody",
	ConciseExpressionBody:      "ConciseBody_ExpressionBody",
	GeneratorBody:              "GeneratorBody",
	AsyncFunctionBody:          "AsyncFunctionBody",
	AsyncConciseFunctionBody:   "AsyncConciseBody_AsyncFunctionBody",
	AsyncConciseExpressionBody: "AsyncConciseBody_ExpressionBody",
	AsyncGeneratorBody:         "AsyncGeneratorBody",
}

func (k BodyKind) String() string {
	if int(k) < len(bodyKindNames) {
		return bodyKindNames[k]
	}
	return "Unknown"
}

// BodyShape groups body kinds that are evaluated the same way.
type BodyShape uint8

const (
	ShapeUnknown BodyShape = iota
	ShapeFunction
	ShapeExpression
	ShapeGenerator
	ShapeAsyncFunction
	ShapeAsyncExpression
	ShapeAsyncGenerator
)

func (s BodyShape) String() string {
	switch s {
	case ShapeFunction:
		return "function"
	case ShapeExpression:
		return "expression"
	case ShapeGenerator:
		return "generator"
	case ShapeAsyncFunction:
		return "async function"
	case ShapeAsyncExpression:
		return "async expression"
	case ShapeAsyncGenerator:
		return "async generator"
	default:
		return "unknown"
	}
}

// Shape maps the production to its evaluation shape.
func (k BodyKind) Shape() BodyShape {
	switch k {
	case FunctionBody, ConciseFunctionBody:
		return ShapeFunction
	case ConciseExpressionBody:
		return ShapeExpression
	case GeneratorBody:
		return ShapeGenerator
	case AsyncFunctionBody, AsyncConciseFunctionBody:
		return ShapeAsyncFunction
	case AsyncConciseExpressionBody:
		return ShapeAsyncExpression
	case AsyncGeneratorBody:
		return ShapeAsyncGenerator
	default:
		return ShapeUnknown
	}
}

// ParseBodyKind looks a kind up by its production name.
func ParseBodyKind(name string) (BodyKind, bool) {
	for i, n := range bodyKindNames {
		if i > 0 && n == name {
			return BodyKind(i), true
		}
	}
	return BodyUnknown, false
}

// Parameter is one entry of a formal parameter list.
type Parameter struct {
	Position
	Target  Pattern
	Default Expression
	Rest    bool
}

// FormalParameters is a function's parameter list.
type FormalParameters struct {
	Params []*Parameter
}

// BoundNames returns every name bound by the list, in order and including
// duplicates.
func (f *FormalParameters) BoundNames() []string {
	if f == nil {
		return nil
	}
	var names []string
	for _, p := range f.Params {
		names = append(names, p.Target.BoundNames()...)
	}
	return names
}

// ExpectedArgumentCount counts the parameters before the first rest element
// or initializer.
func (f *FormalParameters) ExpectedArgumentCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, p := range f.Params {
		if p.Rest || p.Default != nil {
			break
		}
		n++
	}
	return n
}

// IsSimpleParameterList reports whether every parameter is a plain
// identifier without an initializer or rest marker.
func (f *FormalParameters) IsSimpleParameterList() bool {
	if f == nil {
		return true
	}
	for _, p := range f.Params {
		if p.Rest || p.Default != nil {
			return false
		}
		if _, ok := p.Target.(*BindingIdentifier); !ok {
			return false
		}
	}
	return true
}

// ContainsExpression reports whether evaluating the parameters can run code.
func (f *FormalParameters) ContainsExpression() bool {
	if f == nil {
		return false
	}
	for _, p := range f.Params {
		if p.Default != nil || patternContainsExpression(p.Target) {
			return true
		}
	}
	return false
}

func patternContainsExpression(p Pattern) bool {
	op, ok := p.(*ObjectPattern)
	if !ok {
		return false
	}
	for _, prop := range op.Properties {
		if prop.Default != nil || patternContainsExpression(prop.Target) {
			return true
		}
	}
	return false
}

// HasDuplicates reports whether any name is bound more than once.
func (f *FormalParameters) HasDuplicates() bool {
	seen := map[string]bool{}
	for _, n := range f.BoundNames() {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}
