package vm

// ErrorKind names a native error constructor.
type ErrorKind uint8

const (
	ErrorKindError ErrorKind = iota
	ErrorKindTypeError
	ErrorKindReferenceError
	ErrorKindRangeError
	ErrorKindSyntaxError
)

var errorKindNames = [...]string{
	ErrorKindError:          "Error",
	ErrorKindTypeError:      "TypeError",
	ErrorKindReferenceError: "ReferenceError",
	ErrorKindRangeError:     "RangeError",
	ErrorKindSyntaxError:    "SyntaxError",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

func (k ErrorKind) prototypeIntrinsic() string {
	return "%" + k.String() + ".prototype%"
}

// Message templates for errors thrown by the engine core.
const (
	MsgNotAFunction                        = "%s is not a function"
	MsgNotAConstructor                     = "%s is not a constructor"
	MsgNotAnObject                         = "%s is not an object"
	MsgConstructorNonCallable              = "Class constructor %s cannot be invoked without 'new'"
	MsgDerivedConstructorReturnedNonObject = "Derived constructors may only return object or undefined"
	MsgCallStackExceeded                   = "Maximum call stack size exceeded"
	MsgStrictPoisonPill                    = "'caller', 'callee', and 'arguments' properties may not be accessed on strict mode functions or the arguments objects for calls to them"
	MsgNotDefined                          = "%s is not defined"
	MsgUninitializedBinding                = "Cannot access '%s' before initialization"
	MsgAssignToConstant                    = "Assignment to constant variable '%s'"
	MsgThisNotInitialized                  = "Must call super constructor in derived class before accessing 'this' or returning from derived constructor"
	MsgSuperCalledTwice                    = "Super constructor may only be called once"
	MsgCannotConvertToObject               = "Cannot convert %s to object"
	MsgCannotConvertToPrimitive            = "Cannot convert object to primitive value"
	MsgCannotConvertSymbol                 = "Cannot convert a Symbol value to a %s"
	MsgCannotDefineProperty                = "Cannot define property %s"
	MsgCannotDeleteProperty                = "Cannot delete property '%s'"
	MsgCannotAssignReadOnly                = "Cannot assign to read only property '%s'"
	MsgCannotCreateProperty                = "Cannot create property '%s'"
	MsgAlreadyDeclared                     = "Identifier '%s' has already been declared"
	MsgCannotDeclareGlobal                 = "Cannot declare global binding '%s'"
	MsgInvalidPrototype                    = "Object prototype may only be an Object or null: %s"
	MsgNotIterable                         = "%s is not iterable"
	MsgIteratorResultNotObject             = "Iterator result %s is not an object"
	MsgInstanceofPrototypeNotObject        = "Function has non-object prototype '%s' in instanceof check"
	MsgInstanceofNotCallable               = "Right-hand side of 'instanceof' is not callable"
	MsgInNotObject                         = "Cannot use 'in' operator to search for '%s' in %s"
	MsgIncompatibleReceiver                = "Method %s called on incompatible receiver %s"
	MsgGeneratorRunning                    = "Generator is already running"
	MsgPromiseSelfResolution               = "Chaining cycle detected for promise"
	MsgSuperNotConstructor                 = "Super constructor %s of anonymous class is not a constructor"
	MsgIteratorNoThrow                     = "The iterator does not provide a 'throw' method"
	MsgPromiseRequiresNew                  = "Promise constructor cannot be invoked without 'new'"
	MsgPromiseResolverNotCallable          = "Promise resolver %s is not a function"
	MsgPromiseCapabilityExecutorCalled     = "Promise executor has already been invoked with non-undefined arguments"
	MsgAwaitOutsideAsync                   = "await is only valid in async functions and async generators"
	MsgYieldOutsideGenerator               = "yield is only valid in generator functions"
	MsgUnsupportedOperator                 = "Unsupported operator %s"
	MsgSuperclassNotConstructor            = "Class extends value %s is not a constructor or null"
	MsgSuperclassPrototypeInvalid          = "Class extends value does not have valid prototype property %s"
	MsgSuperOutsideMethod                  = "'super' keyword unexpected here"
	MsgInvalidAssignmentTarget             = "Invalid left-hand side in assignment"
	MsgDeleteSuperProperty                 = "Unsupported reference to 'super'"
	MsgInvalidLabel                        = "Undefined label '%s'"
)
