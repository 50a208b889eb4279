package builtins

import (
	"fmt"
	"os"

	"lispy/lisperr"
	"lispy/object"
)

func init() {
	register("slurp", slurp)
	register("spit", spit)
	register("print", printFn)
	register("println", printlnFn)
}

// slurp reads an entire file into a string. The descriptor os.ReadFile
// opens internally is released before it returns, satisfying
// "released on all exit paths, including error" for a read-only open.
func slurp(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 1 {
		return nil, arityError("slurp", "1", len(args))
	}
	path, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("slurp", "a string path", args[0])
	}
	data, err := os.ReadFile(path.Value)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "path", path.Value)
	}
	return object.Str{Value: string(data)}, nil
}

func spit(args []object.Value, env *object.Environment) (object.Value, error) {
	if len(args) != 2 {
		return nil, arityError("spit", "2", len(args))
	}
	path, ok := args[0].(object.Str)
	if !ok {
		return nil, typeError("spit", "a string path", args[0])
	}
	content, ok := args[1].(object.Str)
	if !ok {
		return nil, typeError("spit", "a string to write", args[1])
	}
	f, err := os.Create(path.Value)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "path", path.Value)
	}
	defer f.Close()
	if _, err := f.WriteString(content.Value); err != nil {
		return nil, lisperr.Wrap(lisperr.Evaluation, err, "path", path.Value)
	}
	return object.NilValue, nil
}

func printFn(args []object.Value, env *object.Environment) (object.Value, error) {
	parts := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(object.Str); ok {
			parts[i] = s.Value
			continue
		}
		parts[i] = a.String()
	}
	fmt.Print(parts...)
	return object.NilValue, nil
}

func printlnFn(args []object.Value, env *object.Environment) (object.Value, error) {
	if _, err := printFn(args, env); err != nil {
		return nil, err
	}
	fmt.Println()
	return object.NilValue, nil
}
