package object

// Environment is a lexically-scoped binding frame: a local
// store chained to an outer frame, searched outward on lookup miss.
type Environment struct {
	store map[string]Value
	outer *Environment

	// recurTarget backs the `recur` trampoline: a recur must
	// rebind into the frame of the nearest enclosing fn/loop. It lives as a
	// dedicated field, not a store entry, so it can never collide with or
	// be shadowed by a user-level symbol. The evaluator's own
	// MaxRecursionDepth guard counts nested non-tail function applications
	// instead, since environment nesting and host recursion depth are not
	// the same thing (a `let` or `loop` nests an environment without
	// consuming call budget).
	recurTarget *Function

	// exports and importer let the `export`/`import` special forms
	// cooperate with whatever is driving module evaluation
	// without this package importing the module loader, which itself must
	// import the evaluator to run a module's forms. Both are `any` for the
	// same reason lisperr.ThrownError.Payload is `any`: it breaks what
	// would otherwise be an import cycle. exports is non-nil only for an
	// environment rooted at a module's top level; importer is a
	// func(name string) (map[string]Value, error) set by whatever constructs
	// a root or module environment, and inherited by its child frames.
	exports  *[]string
	importer any
}

// NewEnvironment creates a top-level environment with no outer scope.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Value)}
}

// NewEnclosedEnvironment creates a child scope of outer, e.g. for a function
// call frame or a `let`/`loop` body.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	env.recurTarget = outer.recurTarget
	env.exports = outer.exports
	env.importer = outer.importer
	return env
}

// Get resolves name, searching outward through enclosing scopes.
func (e *Environment) Get(name string) (Value, bool) {
	val, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return val, ok
}

// Set binds name to val in this frame (define, let-binding, parameter bind).
func (e *Environment) Set(name string, val Value) Value {
	e.store[name] = val
	return val
}

// SetMutable updates an existing binding in place, searching outward, for
// forms that assign rather than introduce. It
// reports whether an existing binding was found.
func (e *Environment) SetMutable(name string, val Value) bool {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.SetMutable(name, val)
	}
	return false
}

// RecurTarget is the function the nearest enclosing call frame belongs to,
// the destination a bare `(recur ...)` rebinds into.
func (e *Environment) RecurTarget() *Function { return e.recurTarget }

// WithRecurTarget returns a child environment whose RecurTarget is fn; used
// when entering a function call or a `loop` form, both valid recur targets.
func WithRecurTarget(outer *Environment, fn *Function) *Environment {
	env := NewEnclosedEnvironment(outer)
	env.recurTarget = fn
	return env
}

// Exports returns the current module's export-name accumulator, or nil if
// this environment is not rooted at a module's top level.
func (e *Environment) Exports() *[]string { return e.exports }

// WithExports returns a child environment whose export accumulator is ptr,
// used by the module loader to root a module's evaluation environment.
func WithExports(outer *Environment, ptr *[]string) *Environment {
	env := NewEnclosedEnvironment(outer)
	env.exports = ptr
	return env
}

// Importer returns the module-import hook installed on this environment, if
// any, as `func(name string) (map[string]Value, error)` wrapped in `any`.
func (e *Environment) Importer() any { return e.importer }

// WithImporter returns a child environment whose Importer is fn.
func WithImporter(outer *Environment, fn any) *Environment {
	env := NewEnclosedEnvironment(outer)
	env.importer = fn
	return env
}
