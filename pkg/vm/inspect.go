package vm

import (
	"strconv"
	"strings"
	"unicode"
)

const inspectMaxDepth = 2

// Inspect renders v for hosts and test expectations. It only reads data
// properties and internal slots, so it never runs guest code.
func Inspect(v Value) string {
	in := inspector{seen: make(map[*Object]bool)}
	return in.value(v, 0)
}

type inspector struct {
	seen map[*Object]bool
}

func (in *inspector) value(v Value, depth int) string {
	switch v.Type() {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return strconv.FormatBool(v.AsBoolean())
	case TypeNumber:
		return NumberToString(v.AsFloat())
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeSymbol:
		return v.AsSymbol().DescriptiveString()
	case TypeEmpty:
		return "<empty>"
	}
	return in.object(v.AsObject(), depth)
}

func (in *inspector) object(o *Object, depth int) string {
	if in.seen[o] {
		return "[Circular]"
	}
	if o.IsCallable() {
		return inspectFunction(o)
	}
	if o.HasSlot("ErrorData") {
		return inspectError(o)
	}
	if depth > inspectMaxDepth {
		if o.class == "Arguments" {
			return "[Arguments]"
		}
		return "[Object]"
	}
	in.seen[o] = true
	defer delete(in.seen, o)

	var prefix string
	switch {
	case o.HasSlot("BooleanData"):
		prefix = "[Boolean: " + in.value(o.Slot("BooleanData"), depth+1) + "] "
	case o.HasSlot("NumberData"):
		prefix = "[Number: " + in.value(o.Slot("NumberData"), depth+1) + "] "
	case o.HasSlot("StringData"):
		return "[String: " + in.value(o.Slot("StringData"), depth+1) + "]"
	case o.HasSlot("SymbolData"):
		return "[Symbol: " + in.value(o.Slot("SymbolData"), depth+1) + "]"
	case o.HasSlot("PromiseState"):
		return in.promise(o, depth)
	case o.class == "Arguments":
		return "[Arguments] " + in.arrayLike(o, depth)
	case o.class != "Object" && o.class != "":
		prefix = "Object [" + o.class + "] "
	}

	var parts []string
	for _, key := range o.props.keys() {
		p, _ := o.props.get(key)
		if !p.enumerable {
			continue
		}
		parts = append(parts, inspectKey(key)+": "+in.property(o, key, p, depth))
	}
	if len(parts) == 0 {
		return prefix + "{}"
	}
	return prefix + "{ " + strings.Join(parts, ", ") + " }"
}

func (in *inspector) property(o *Object, key PropertyKey, p *property, depth int) string {
	if p.accessor {
		switch {
		case !p.getter.IsUndefined() && !p.setter.IsUndefined():
			return "[Getter/Setter]"
		case !p.getter.IsUndefined():
			return "[Getter]"
		default:
			return "[Setter]"
		}
	}
	if o.kind == KindArguments {
		if b, ok := o.arguments.parameterMap[key]; ok {
			if v, ok := peekBinding(b.env, b.name); ok {
				return in.value(v, depth+1)
			}
		}
	}
	return in.value(p.value, depth+1)
}

func (in *inspector) arrayLike(o *Object, depth int) string {
	length := 0
	if p, ok := o.props.get(NewStringKey("length")); ok && !p.accessor && p.value.IsNumber() {
		length = int(p.value.AsFloat())
	}
	if length == 0 {
		return "[]"
	}
	parts := make([]string, 0, length)
	for i := 0; i < length; i++ {
		key := IndexKey(i)
		p, ok := o.props.get(key)
		if !ok {
			parts = append(parts, "<empty>")
			continue
		}
		parts = append(parts, in.property(o, key, p, depth))
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func (in *inspector) promise(o *Object, depth int) string {
	switch o.Slot("PromiseState").AsString() {
	case "fulfilled":
		return "Promise { " + in.value(o.Slot("PromiseResult"), depth+1) + " }"
	case "rejected":
		return "Promise { <rejected> " + in.value(o.Slot("PromiseResult"), depth+1) + " }"
	}
	return "Promise { <pending> }"
}

func inspectFunction(o *Object) string {
	name := functionDebugName(o)
	if o.kind == KindFunction && o.function.IsClassConstructor {
		if name == "" {
			return "[class (anonymous)]"
		}
		return "[class " + name + "]"
	}
	if name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + name + "]"
}

func inspectError(o *Object) string {
	name := "Error"
	if v, ok := lookupDataProperty(o, NewStringKey("name")); ok && v.IsString() {
		name = v.AsString()
	}
	msg := ""
	if v, ok := lookupDataProperty(o, NewStringKey("message")); ok && v.IsString() {
		msg = v.AsString()
	}
	switch {
	case msg == "":
		return name
	case name == "":
		return msg
	}
	return name + ": " + msg
}

// lookupDataProperty walks the prototype chain for a data property.
func lookupDataProperty(o *Object, key PropertyKey) (Value, bool) {
	for ; o != nil; o = o.prototype {
		if p, ok := o.props.get(key); ok {
			if p.accessor {
				return Undefined, false
			}
			return p.value, true
		}
	}
	return Undefined, false
}

func peekBinding(env Environment, name string) (Value, bool) {
	var decl *DeclarativeEnvironment
	switch e := env.(type) {
	case *DeclarativeEnvironment:
		decl = e
	case *FunctionEnvironment:
		decl = e.DeclarativeEnvironment
	default:
		return Undefined, false
	}
	b, ok := decl.bindings[name]
	if !ok || !b.initialized {
		return Undefined, false
	}
	return b.value, true
}

func inspectKey(key PropertyKey) string {
	if key.IsSymbol() {
		return "[" + key.Symbol().DescriptiveString() + "]"
	}
	name := key.Name()
	if isIdentifierName(name) {
		return name
	}
	return strconv.Quote(name)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
