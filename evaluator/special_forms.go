package evaluator

import (
	"lispy/lisperr"
	"lispy/object"
)

// formHandler is the dispatch signature for a special form: it receives the
// unevaluated arguments following the form's head symbol.
type formHandler func(args []object.Value, env *object.Environment, depth int) (object.Value, error)

var specialForms map[string]formHandler

func init() {
	specialForms = map[string]formHandler{
		"define":      evalDefine,
		"fn":          evalFn,
		"defn":        evalDefn,
		"if":          evalIf,
		"cond":        evalCond,
		"let":         evalLet,
		"loop":        evalLoop,
		"recur":       evalRecur,
		"and":         evalAnd,
		"or":          evalOr,
		"quote":       evalQuote,
		"do":          evalDo,
		"doseq":       evalDoseq,
		"->":          evalThreadFirst,
		"->>":         evalThreadLast,
		"try":         evalTry,
		"throw":       evalThrow,
		"async":       evalAsync,
		"await":       evalAwait,
		"defn-async":  evalDefnAsync,
		"export":      evalExport,
		"import":      evalImport,
	}
}

func evalDefine(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 2 {
		return nil, lisperr.New(lisperr.Arity, "define expects 2 arguments, got %d", len(args))
	}
	sym, ok := args[0].(object.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "define requires a symbol name")
	}
	val, err := evalD(args[1], env, depth)
	if err != nil {
		return nil, err
	}
	env.Set(sym.Name, val)
	return object.NilValue, nil
}

func buildParams(v object.Value) ([]object.Symbol, error) {
	vec, ok := v.(*object.Vector)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "expected a parameter vector")
	}
	params := make([]object.Symbol, len(vec.Elements))
	for i, el := range vec.Elements {
		sym, ok := el.(object.Symbol)
		if !ok {
			return nil, lisperr.New(lisperr.Parse, "function parameters must be symbols")
		}
		params[i] = sym
	}
	return params, nil
}

func evalFn(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 1 {
		return nil, lisperr.New(lisperr.Arity, "fn requires a parameter vector")
	}
	params, err := buildParams(args[0])
	if err != nil {
		return nil, err
	}
	return &object.Function{Params: params, Body: args[1:], Env: env}, nil
}

func evalDefn(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 2 {
		return nil, lisperr.New(lisperr.Arity, "defn requires a name and a parameter vector")
	}
	sym, ok := args[0].(object.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "defn requires a symbol name")
	}
	fnVal, err := evalFn(args[1:], env, depth)
	if err != nil {
		return nil, err
	}
	fnVal.(*object.Function).Name = sym.Name
	env.Set(sym.Name, fnVal)
	return object.NilValue, nil
}

func evalIf(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, lisperr.New(lisperr.Arity, "if expects 2 or 3 arguments, got %d", len(args))
	}
	test, err := evalD(args[0], env, depth)
	if err != nil {
		return nil, err
	}
	if object.Truthy(test) {
		return evalD(args[1], env, depth)
	}
	if len(args) == 3 {
		return evalD(args[2], env, depth)
	}
	return object.NilValue, nil
}

func evalCond(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args)%2 != 0 {
		return nil, lisperr.New(lisperr.Parse, "cond requires an even number of forms")
	}
	for i := 0; i < len(args); i += 2 {
		test, err := evalD(args[i], env, depth)
		if err != nil {
			return nil, err
		}
		if object.Truthy(test) {
			return evalD(args[i+1], env, depth)
		}
	}
	return object.NilValue, nil
}

func readBindings(v object.Value) ([]object.Value, error) {
	vec, ok := v.(*object.Vector)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "expected a binding vector")
	}
	if len(vec.Elements)%2 != 0 {
		return nil, lisperr.New(lisperr.Parse, "binding vector requires an even number of forms")
	}
	return vec.Elements, nil
}

func evalLet(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 1 {
		return nil, lisperr.New(lisperr.Arity, "let requires a binding vector")
	}
	bindings, err := readBindings(args[0])
	if err != nil {
		return nil, err
	}
	letEnv := object.NewEnclosedEnvironment(env)
	for i := 0; i < len(bindings); i += 2 {
		sym, ok := bindings[i].(object.Symbol)
		if !ok {
			return nil, lisperr.New(lisperr.Parse, "let bindings require symbol names")
		}
		val, err := evalD(bindings[i+1], letEnv, depth)
		if err != nil {
			return nil, err
		}
		letEnv.Set(sym.Name, val)
	}
	return evalBody(args[1:], letEnv, depth)
}

// evalLoop builds a synthetic Function out of the loop's bindings and body
// and runs it through the same trampoline applyFunction uses for ordinary
// calls, so `recur` inside a loop and `recur` inside a function share one
// implementation.
func evalLoop(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 1 {
		return nil, lisperr.New(lisperr.Arity, "loop requires a binding vector")
	}
	bindings, err := readBindings(args[0])
	if err != nil {
		return nil, err
	}
	bindEnv := object.NewEnclosedEnvironment(env)
	syms := make([]object.Symbol, 0, len(bindings)/2)
	initVals := make([]object.Value, 0, len(bindings)/2)
	for i := 0; i < len(bindings); i += 2 {
		sym, ok := bindings[i].(object.Symbol)
		if !ok {
			return nil, lisperr.New(lisperr.Parse, "loop bindings require symbol names")
		}
		val, err := evalD(bindings[i+1], bindEnv, depth)
		if err != nil {
			return nil, err
		}
		bindEnv.Set(sym.Name, val)
		syms = append(syms, sym)
		initVals = append(initVals, val)
	}
	loopFn := &object.Function{Name: "loop", Params: syms, Body: args[1:], Env: env}
	return applyFunction(loopFn, initVals, depth)
}

func evalRecur(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	target := env.RecurTarget()
	if target == nil {
		return nil, lisperr.New(lisperr.Evaluation, "recur used outside a function or loop")
	}
	vals := make([]object.Value, len(args))
	for i, e := range args {
		v, err := evalD(e, env, depth)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if len(vals) != len(target.Params) {
		return nil, lisperr.New(lisperr.Arity, "recur expects %d argument(s), got %d", len(target.Params), len(vals))
	}
	return &object.TailCall{Args: vals}, nil
}

func evalAnd(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	var last object.Value = object.True
	for _, e := range args {
		v, err := evalD(e, env, depth)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func evalOr(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	var last object.Value = object.NilValue
	for _, e := range args {
		v, err := evalD(e, env, depth)
		if err != nil {
			return nil, err
		}
		last = v
		if object.Truthy(v) {
			return v, nil
		}
	}
	return last, nil
}

func evalQuote(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 1 {
		return nil, lisperr.New(lisperr.Arity, "quote expects 1 argument, got %d", len(args))
	}
	return args[0], nil
}

func evalDo(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	return evalBody(args, env, depth)
}

func evalDoseq(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 1 {
		return nil, lisperr.New(lisperr.Arity, "doseq requires a [symbol coll] binding")
	}
	vec, ok := args[0].(*object.Vector)
	if !ok || len(vec.Elements) != 2 {
		return nil, lisperr.New(lisperr.Parse, "doseq requires a 2-element [symbol coll] binding")
	}
	sym, ok := vec.Elements[0].(object.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "doseq binding requires a symbol")
	}
	collVal, err := evalD(vec.Elements[1], env, depth)
	if err != nil {
		return nil, err
	}
	var elements []object.Value
	switch c := collVal.(type) {
	case *object.List:
		elements = c.Elements
	case *object.Vector:
		elements = c.Elements
	default:
		return nil, lisperr.New(lisperr.TypeMismatch, "doseq requires a list or vector, got %s", collVal.Type())
	}
	for _, el := range elements {
		iterEnv := object.NewEnclosedEnvironment(env)
		iterEnv.Set(sym.Name, el)
		if _, err := evalBody(args[1:], iterEnv, depth); err != nil {
			return nil, err
		}
	}
	return object.NilValue, nil
}

// wrapAcc quotes an already-evaluated accumulator before splicing it into a
// freshly constructed call form, so threading never re-evaluates it.
func wrapAcc(acc object.Value) object.Value {
	return object.NewList(object.Symbol{Name: "quote"}, acc)
}

func evalThreadFirst(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	return threadForm(args, env, depth, false)
}

func evalThreadLast(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	return threadForm(args, env, depth, true)
}

func threadForm(args []object.Value, env *object.Environment, depth int, last bool) (object.Value, error) {
	if len(args) < 1 {
		return nil, lisperr.New(lisperr.Arity, "threading form requires an initial expression")
	}
	acc, err := evalD(args[0], env, depth)
	if err != nil {
		return nil, err
	}
	for _, step := range args[1:] {
		var call *object.List
		switch s := step.(type) {
		case object.Symbol:
			call = object.NewList(s, wrapAcc(acc))
		case *object.List:
			if len(s.Elements) == 0 {
				return nil, lisperr.New(lisperr.Evaluation, "threading step cannot be an empty list")
			}
			elems := make([]object.Value, 0, len(s.Elements)+1)
			if last {
				elems = append(elems, s.Elements...)
				elems = append(elems, wrapAcc(acc))
			} else {
				elems = append(elems, s.Elements[0], wrapAcc(acc))
				elems = append(elems, s.Elements[1:]...)
			}
			call = object.NewList(elems...)
		default:
			return nil, lisperr.New(lisperr.Evaluation, "threading step must be a symbol or list")
		}
		acc, err = evalD(call, env, depth)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func isSymbolNamed(v object.Value, name string) bool {
	sym, ok := v.(object.Symbol)
	return ok && sym.Name == name
}

func evalTry(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) == 0 {
		return nil, lisperr.New(lisperr.Arity, "try requires a (catch var ...) clause")
	}
	catchForm, ok := args[len(args)-1].(*object.List)
	if !ok || len(catchForm.Elements) < 2 || !isSymbolNamed(catchForm.Elements[0], "catch") {
		return nil, lisperr.New(lisperr.Parse, "try requires a trailing (catch var ...) clause")
	}
	catchVar, ok := catchForm.Elements[1].(object.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "catch requires a symbol to bind")
	}

	result, err := evalBody(args[:len(args)-1], env, depth)
	if err == nil {
		return result, nil
	}
	if lisperr.Is(err, lisperr.Assertion) {
		return nil, err // never caught
	}
	payload, ok := lisperr.AsThrown(err)
	if !ok {
		return nil, err // only UserThrownError is caught
	}
	catchEnv := object.NewEnclosedEnvironment(env)
	catchEnv.Set(catchVar.Name, payload.(object.Value))
	return evalBody(catchForm.Elements[2:], catchEnv, depth)
}

func evalThrow(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 1 {
		return nil, lisperr.New(lisperr.Arity, "throw expects 1 argument, got %d", len(args))
	}
	val, err := evalD(args[0], env, depth)
	if err != nil {
		return nil, err
	}
	return nil, lisperr.Throw(val)
}

// evalAsync implements: run body, and if the result is a
// Promise, block until it settles. It resets the recursion budget, the way
// `async` establishes a fresh logical task.
func evalAsync(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	result, err := evalBody(args, env, 0)
	if err != nil {
		return nil, err
	}
	if p, ok := result.(*object.Promise); ok {
		return p.Await()
	}
	return result, nil
}

func evalAwait(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 1 {
		return nil, lisperr.New(lisperr.Arity, "await expects 1 argument, got %d", len(args))
	}
	v, err := evalD(args[0], env, depth)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*object.Promise)
	if !ok {
		return nil, lisperr.New(lisperr.TypeMismatch, "await requires a promise, got %s", v.Type())
	}
	return p.Await()
}

func evalDefnAsync(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) < 2 {
		return nil, lisperr.New(lisperr.Arity, "defn-async requires a name and a parameter vector")
	}
	sym, ok := args[0].(object.Symbol)
	if !ok {
		return nil, lisperr.New(lisperr.Parse, "defn-async requires a symbol name")
	}
	params, err := buildParams(args[1])
	if err != nil {
		return nil, err
	}
	fnVal := &object.Function{Name: sym.Name, Params: params, Body: args[2:], Env: env, Async: true}
	env.Set(sym.Name, fnVal)
	return object.NilValue, nil
}

func evalExport(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	exports := env.Exports()
	if exports == nil {
		return nil, lisperr.New(lisperr.Evaluation, "export used outside a module")
	}
	for _, a := range args {
		sym, ok := a.(object.Symbol)
		if !ok {
			return nil, lisperr.New(lisperr.Parse, "export requires symbol names")
		}
		*exports = append(*exports, sym.Name)
	}
	return object.NilValue, nil
}

func evalImport(args []object.Value, env *object.Environment, depth int) (object.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, lisperr.New(lisperr.Arity, "import expects 1 or 2 arguments, got %d", len(args))
	}
	nameVal, err := evalD(args[0], env, depth)
	if err != nil {
		return nil, err
	}
	nameStr, ok := nameVal.(object.Str)
	if !ok {
		return nil, lisperr.New(lisperr.TypeMismatch, "import requires a string module name")
	}
	importer, ok := env.Importer().(func(string) (map[string]object.Value, error))
	if !ok {
		return nil, lisperr.New(lisperr.Import, "import used outside a module loader context")
	}
	exportsMap, err := importer(nameStr.Value)
	if err != nil {
		return nil, err
	}
	if len(args) == 2 {
		namesVec, ok := args[1].(*object.Vector)
		if !ok {
			return nil, lisperr.New(lisperr.Parse, "import's selective-import argument must be a vector")
		}
		for _, nEl := range namesVec.Elements {
			nSym, ok := nEl.(object.Symbol)
			if !ok {
				return nil, lisperr.New(lisperr.Parse, "import's selective-import names must be symbols")
			}
			val, ok := exportsMap[nSym.Name]
			if !ok {
				return nil, lisperr.New(lisperr.Import, "module %q does not export %q", nameStr.Value, nSym.Name)
			}
			env.Set(nSym.Name, val)
		}
		return object.NilValue, nil
	}
	for name, val := range exportsMap {
		env.Set(name, val)
	}
	return object.NilValue, nil
}
