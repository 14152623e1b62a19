package vm

// Ordinary object internal method algorithms.

func (o *Object) ordinarySetPrototypeOf(proto *Object) bool {
	if proto == o.prototype {
		return true
	}
	if !o.extensible {
		return false
	}
	for p := proto; p != nil; p = p.prototype {
		if p == o {
			return false
		}
	}
	o.prototype = proto
	return true
}

func (o *Object) ordinaryGetOwnProperty(key PropertyKey) (PropertyDescriptor, bool) {
	p, ok := o.props.get(key)
	if !ok {
		return PropertyDescriptor{}, false
	}
	return p.descriptor(), true
}

func (o *Object) ordinaryDefineOwnProperty(a *Agent, key PropertyKey, desc PropertyDescriptor) bool {
	current, ok := o.GetOwnProperty(a, key)
	var cur *PropertyDescriptor
	if ok {
		cur = &current
	}
	return validateAndApplyPropertyDescriptor(o, key, o.IsExtensible(), desc, cur)
}

// IsCompatiblePropertyDescriptor reports whether desc could be applied over
// current on an object with the given extensibility.
func IsCompatiblePropertyDescriptor(extensible bool, desc PropertyDescriptor, current *PropertyDescriptor) bool {
	return validateAndApplyPropertyDescriptor(nil, PropertyKey{}, extensible, desc, current)
}

// validateAndApplyPropertyDescriptor checks desc against current and, when
// o is non-nil, writes the result.
func validateAndApplyPropertyDescriptor(o *Object, key PropertyKey, extensible bool, desc PropertyDescriptor, current *PropertyDescriptor) bool {
	if current == nil {
		if !extensible {
			return false
		}
		if o != nil {
			o.props.set(key, propertyFromDescriptor(desc))
		}
		return true
	}

	if desc.isEmpty() {
		return true
	}

	curConfigurable := current.Configurable.Bool()
	if !curConfigurable {
		if desc.Configurable.Bool() {
			return false
		}
		if desc.Enumerable.IsSet() && desc.Enumerable != current.Enumerable {
			return false
		}
	}

	switch {
	case desc.IsGenericDescriptor():
		// Only enumerable/configurable may change; checked above.
	case current.IsDataDescriptor() != desc.IsDataDescriptor():
		if !curConfigurable {
			return false
		}
		if o != nil {
			p := &property{
				enumerable:   current.Enumerable.Bool(),
				configurable: current.Configurable.Bool(),
			}
			if current.IsDataDescriptor() {
				p.accessor = true
				p.getter, p.setter = Undefined, Undefined
			} else {
				p.value = Undefined
			}
			o.props.set(key, p)
		}
	case current.IsDataDescriptor():
		if !curConfigurable && !current.Writable.Bool() {
			if desc.Writable.Bool() {
				return false
			}
			if desc.HasValue && !desc.Value.Is(current.Value) {
				return false
			}
			return true
		}
	default:
		if !curConfigurable {
			if desc.HasSet && !desc.Set.Is(current.Set) {
				return false
			}
			if desc.HasGet && !desc.Get.Is(current.Get) {
				return false
			}
			return true
		}
	}

	if o != nil {
		p, _ := o.props.get(key)
		if desc.HasValue {
			p.value = desc.Value
		}
		if desc.Writable.IsSet() {
			p.writable = desc.Writable.Bool()
		}
		if desc.HasGet {
			p.getter = desc.Get
		}
		if desc.HasSet {
			p.setter = desc.Set
		}
		if desc.Enumerable.IsSet() {
			p.enumerable = desc.Enumerable.Bool()
		}
		if desc.Configurable.IsSet() {
			p.configurable = desc.Configurable.Bool()
		}
	}
	return true
}

func (o *Object) ordinaryHasProperty(a *Agent, key PropertyKey) bool {
	for obj := o; obj != nil; obj = obj.GetPrototypeOf() {
		if _, ok := obj.GetOwnProperty(a, key); ok {
			return true
		}
	}
	return false
}

func (o *Object) ordinaryGet(a *Agent, key PropertyKey, receiver Value) Completion {
	desc, ok := o.GetOwnProperty(a, key)
	if !ok {
		parent := o.GetPrototypeOf()
		if parent == nil {
			return NormalCompletion(Undefined)
		}
		return parent.Get(a, key, receiver)
	}
	if desc.IsDataDescriptor() {
		return NormalCompletion(desc.Value)
	}
	if desc.Get.IsUndefined() {
		return NormalCompletion(Undefined)
	}
	return Call(a, desc.Get, receiver, nil)
}

func (o *Object) ordinarySet(a *Agent, key PropertyKey, v Value, receiver Value) Completion {
	ownDesc, ok := o.GetOwnProperty(a, key)
	return o.ordinarySetWithOwnDescriptor(a, key, v, receiver, ownDesc, ok)
}

func (o *Object) ordinarySetWithOwnDescriptor(a *Agent, key PropertyKey, v Value, receiver Value, ownDesc PropertyDescriptor, found bool) Completion {
	if !found {
		if parent := o.GetPrototypeOf(); parent != nil {
			return parent.Set(a, key, v, receiver)
		}
		ownDesc = DataDescriptor(Undefined, true, true, true)
	}

	if ownDesc.IsDataDescriptor() {
		if !ownDesc.Writable.Bool() {
			return NormalCompletion(False)
		}
		if !receiver.IsObject() {
			return NormalCompletion(False)
		}
		recv := receiver.AsObject()
		existing, exists := recv.GetOwnProperty(a, key)
		if exists {
			if existing.IsAccessorDescriptor() {
				return NormalCompletion(False)
			}
			if !existing.Writable.Bool() {
				return NormalCompletion(False)
			}
			return NormalCompletion(BooleanValue(recv.DefineOwnProperty(a, key, PropertyDescriptor{Value: v, HasValue: true})))
		}
		return NormalCompletion(BooleanValue(CreateDataProperty(a, recv, key, v)))
	}

	if ownDesc.Set.IsUndefined() {
		return NormalCompletion(False)
	}
	if c := Call(a, ownDesc.Set, receiver, []Value{v}); c.IsAbrupt() {
		return c
	}
	return NormalCompletion(True)
}

func (o *Object) ordinaryDelete(a *Agent, key PropertyKey) bool {
	desc, ok := o.GetOwnProperty(a, key)
	if !ok {
		return true
	}
	if desc.Configurable.Bool() {
		o.props.remove(key)
		return true
	}
	return false
}
