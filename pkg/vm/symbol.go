package vm

// Symbol is a unique, immutable identity with an optional description.
type Symbol struct {
	description Value // undefined or a string
}

// NewSymbol creates a symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: NewString(description)}
}

// NewAnonymousSymbol creates a symbol whose description is undefined.
func NewAnonymousSymbol() *Symbol {
	return &Symbol{description: Undefined}
}

// Description returns undefined or the description string.
func (s *Symbol) Description() Value { return s.description }

// DescriptiveString renders "Symbol(desc)".
func (s *Symbol) DescriptiveString() string {
	if s.description.IsUndefined() {
		return "Symbol()"
	}
	return "Symbol(" + s.description.str + ")"
}

// Well-known symbols. They are shared by every agent and realm and are never
// mutated after package initialization.
var (
	SymbolAsyncIterator = NewSymbol("Symbol.asyncIterator")
	SymbolHasInstance   = NewSymbol("Symbol.hasInstance")
	SymbolIterator      = NewSymbol("Symbol.iterator")
	SymbolToPrimitive   = NewSymbol("Symbol.toPrimitive")
	SymbolToStringTag   = NewSymbol("Symbol.toStringTag")
	SymbolUnscopables   = NewSymbol("Symbol.unscopables")
)
