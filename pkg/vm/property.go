package vm

import (
	"slices"
	"strconv"
)

type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
)

// PropertyKey is a string or symbol property name. It is comparable and can
// be used as a map key.
type PropertyKey struct {
	kind KeyKind
	name string
	sym  *Symbol
}

// NewStringKey constructs a key for a string-named property.
func NewStringKey(name string) PropertyKey { return PropertyKey{kind: KeyKindString, name: name} }

// NewSymbolKey constructs a key for a symbol-named property.
func NewSymbolKey(sym *Symbol) PropertyKey { return PropertyKey{kind: KeyKindSymbol, sym: sym} }

// IndexKey constructs the canonical string key for an integer index.
func IndexKey(i int) PropertyKey { return NewStringKey(strconv.Itoa(i)) }

func (k PropertyKey) IsString() bool  { return k.kind == KeyKindString }
func (k PropertyKey) IsSymbol() bool  { return k.kind == KeyKindSymbol }
func (k PropertyKey) Name() string    { return k.name }
func (k PropertyKey) Symbol() *Symbol { return k.sym }

// Value converts the key back into a string or symbol value.
func (k PropertyKey) Value() Value {
	if k.kind == KeyKindSymbol {
		return SymbolValue(k.sym)
	}
	return NewString(k.name)
}

func (k PropertyKey) String() string {
	if k.kind == KeyKindSymbol {
		return "[" + k.sym.DescriptiveString() + "]"
	}
	return k.name
}

// ArrayIndex reports whether the key is a canonical array index.
func (k PropertyKey) ArrayIndex() (int, bool) {
	if k.kind != KeyKindString {
		return 0, false
	}
	return tryParseArrayIndex(k.name)
}

// tryParseArrayIndex checks if a string is a valid array index: a
// non-negative integer below 2^32-1 without leading zeros.
func tryParseArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	idx := 0
	for _, ch := range key {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + int(ch-'0')
		if idx > 4294967294 {
			return 0, false
		}
	}
	return idx, true
}

// Flag is a tri-state descriptor attribute.
type Flag uint8

const (
	FlagNotSet Flag = iota
	FlagFalse
	FlagTrue
)

func ToFlag(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) IsSet() bool { return f != FlagNotSet }
func (f Flag) Bool() bool  { return f == FlagTrue }

// PropertyDescriptor is a partial property description. Absent fields are
// distinguishable from fields set to false or undefined.
type PropertyDescriptor struct {
	Value        Value
	Get          Value
	Set          Value
	Writable     Flag
	Enumerable   Flag
	Configurable Flag
	HasValue     bool
	HasGet       bool
	HasSet       bool
}

// DataDescriptor builds a complete data descriptor.
func DataDescriptor(v Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value:        v,
		HasValue:     true,
		Writable:     ToFlag(writable),
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

// AccessorDescriptor builds a complete accessor descriptor. get and set are
// callable objects or undefined.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Get:          get,
		Set:          set,
		HasGet:       true,
		HasSet:       true,
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

func (d PropertyDescriptor) IsAccessorDescriptor() bool {
	return d.HasGet || d.HasSet
}

func (d PropertyDescriptor) IsDataDescriptor() bool {
	return d.HasValue || d.Writable.IsSet()
}

func (d PropertyDescriptor) IsGenericDescriptor() bool {
	return !d.IsAccessorDescriptor() && !d.IsDataDescriptor()
}

func (d PropertyDescriptor) isEmpty() bool {
	return !d.HasValue && !d.HasGet && !d.HasSet &&
		!d.Writable.IsSet() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

// Complete fills absent fields with their defaults.
func (d PropertyDescriptor) Complete() PropertyDescriptor {
	if d.IsGenericDescriptor() || d.IsDataDescriptor() {
		if !d.HasValue {
			d.Value, d.HasValue = Undefined, true
		}
		if !d.Writable.IsSet() {
			d.Writable = FlagFalse
		}
	} else {
		if !d.HasGet {
			d.Get, d.HasGet = Undefined, true
		}
		if !d.HasSet {
			d.Set, d.HasSet = Undefined, true
		}
	}
	if !d.Enumerable.IsSet() {
		d.Enumerable = FlagFalse
	}
	if !d.Configurable.IsSet() {
		d.Configurable = FlagFalse
	}
	return d
}

// property is the stored, always-complete form of a descriptor.
type property struct {
	accessor     bool
	value        Value
	getter       Value
	setter       Value
	writable     bool
	enumerable   bool
	configurable bool
}

func (p *property) descriptor() PropertyDescriptor {
	if p.accessor {
		return AccessorDescriptor(p.getter, p.setter, p.enumerable, p.configurable)
	}
	return DataDescriptor(p.value, p.writable, p.enumerable, p.configurable)
}

func propertyFromDescriptor(d PropertyDescriptor) *property {
	d = d.Complete()
	p := &property{
		enumerable:   d.Enumerable.Bool(),
		configurable: d.Configurable.Bool(),
	}
	if d.IsAccessorDescriptor() {
		p.accessor = true
		p.getter = d.Get
		p.setter = d.Set
	} else {
		p.value = d.Value
		p.writable = d.Writable.Bool()
	}
	return p
}

// propertyMap stores own properties and remembers insertion order.
type propertyMap struct {
	entries map[PropertyKey]*property
	order   []PropertyKey
}

func (m *propertyMap) get(key PropertyKey) (*property, bool) {
	p, ok := m.entries[key]
	return p, ok
}

func (m *propertyMap) set(key PropertyKey, p *property) {
	if m.entries == nil {
		m.entries = make(map[PropertyKey]*property)
	}
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = p
}

func (m *propertyMap) remove(key PropertyKey) {
	if _, exists := m.entries[key]; !exists {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *propertyMap) len() int { return len(m.entries) }

// keys returns array indices in ascending order, then other strings in
// insertion order, then symbols in insertion order.
func (m *propertyMap) keys() []PropertyKey {
	var indices []int
	var strs, syms []PropertyKey
	for _, k := range m.order {
		if k.kind == KeyKindSymbol {
			syms = append(syms, k)
			continue
		}
		if idx, ok := tryParseArrayIndex(k.name); ok {
			indices = append(indices, idx)
			continue
		}
		strs = append(strs, k)
	}
	slices.Sort(indices)
	result := make([]PropertyKey, 0, len(m.order))
	for _, idx := range indices {
		result = append(result, IndexKey(idx))
	}
	result = append(result, strs...)
	return append(result, syms...)
}
