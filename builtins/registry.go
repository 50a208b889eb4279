// ==============================================================================================
// PACKAGE: builtins
// PURPOSE: The leaf built-in functions behind the uniform calling
//          convention. Split by concern (collection, string, http, io,
//          json, promise, assertions) into one file per concern rather
//          than a single monolithic table.
// ==============================================================================================
package builtins

import "lispy/object"

// Registry maps every built-in's LisPy name to its implementation. Each
// concern file populates it via init(), so GlobalEnvironment just ranges
// over the finished table.
var Registry = map[string]*object.Builtin{}

func register(name string, fn object.BuiltinFunc) {
	Registry[name] = &object.Builtin{Name: name, Fn: fn}
}

// GlobalEnvironment builds a fresh top-level Environment with every
// registered builtin bound by name — the root environment the REPL, script
// runner, and module loader all build module/session environments on top
// of.
func GlobalEnvironment() *object.Environment {
	env := object.NewEnvironment()
	for name, b := range Registry {
		env.Set(name, b)
	}
	return env
}
