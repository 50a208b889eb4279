// ==============================================================================================
// FILE: cmd/lispy/main.go
// ==============================================================================================
// PURPOSE: CLI entrypoint: script mode, REPL mode, and the
//          `-I`/`--include-path` module load path flag, parsed with pflag.
// ==============================================================================================
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"lispy/builtins"
	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/module"
	"lispy/object"
	"lispy/reader"
	"lispy/repl"
)

const version = "0.1.0"

func main() {
	includePaths := pflag.StringArrayP("include-path", "I", nil, "add a module load path (repeatable)")
	replMode := pflag.Bool("repl", false, "start the read-eval-print loop")
	showVersion := pflag.Bool("version", false, "print version")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("lispy %s\n", version)
		return
	}

	args := pflag.Args()
	if len(args) == 0 || *replMode {
		loader := module.NewLoader(append([]string{"."}, *includePaths...), nil)
		env := rootEnvironment(loader)
		repl.Start(os.Stdin, os.Stdout, env)
		return
	}

	runFile(args[0], *includePaths)
}

// rootEnvironment builds the global builtin environment wired for module
// loading, the same root every script and REPL session evaluates against.
func rootEnvironment(loader *module.Loader) *object.Environment {
	exports := []string{}
	env := object.WithExports(builtins.GlobalEnvironment(), &exports)
	return object.WithImporter(env, loader.Importer())
}

func runFile(filename string, includePaths []string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	loadPath := append([]string{filepath.Dir(filename)}, includePaths...)
	loader := module.NewLoader(loadPath, nil)
	env := rootEnvironment(loader)

	forms, err := reader.ParseProgram(string(data))
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	var result object.Value
	for _, form := range forms {
		result, err = evaluator.Eval(form, env)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
	}

	if result != nil {
		if _, isNil := result.(object.Nil); !isNil {
			fmt.Printf("Program result: %s\n", result.String())
		}
	}
}

func reportError(err error) {
	if kind, ok := lisperr.KindOf(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", kind, err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}
