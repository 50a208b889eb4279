// Package module implements the module loader: resolving a
// dotted/slashed logical name against an ordered load path, parsing and
// evaluating a `.lpy` file's top-level forms in a fresh module environment,
// recording its exports, caching the result, and detecting import cycles.
package module

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lispy/builtins"
	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/object"
	"lispy/reader"
)

// Module is one successfully loaded and evaluated source file: its
// top-level environment and the subset of bindings it chose to export.
type Module struct {
	Name    string
	Env     *object.Environment
	Exports map[string]object.Value
}

// Loader resolves, evaluates, and caches modules. It is not safe for
// concurrent use — module loading happens on a single thread, and LisPy's
// evaluator itself is single-threaded per logical task.
type Loader struct {
	loadPath []string
	cache    map[string]*Module
	loading  map[string]bool
	logger   *slog.Logger
}

// NewLoader builds a Loader that searches loadPath, in order, for modules.
// A nil logger defaults to slog.Default(), matching every other
// logger-accepting constructor in this codebase.
func NewLoader(loadPath []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		loadPath: loadPath,
		cache:    make(map[string]*Module),
		loading:  make(map[string]bool),
		logger:   logger,
	}
}

// AddPath appends dir to the load path, e.g. for the CLI's "add the
// script's directory to the load path" rule.
func (l *Loader) AddPath(dir string) {
	l.loadPath = append(l.loadPath, dir)
}

// Load resolves name, evaluates it if not already cached, and returns the
// resulting Module. Cache lookups and cycle detection are keyed by the
// logical name, not the resolved file path.
func (l *Loader) Load(name string) (*Module, error) {
	if m, ok := l.cache[name]; ok {
		l.logger.Debug("module cache hit", "module", name)
		return m, nil
	}
	if l.loading[name] {
		return nil, lisperr.New(lisperr.CircularDependency, "circular dependency on module %q", name)
	}

	l.loading[name] = true
	defer delete(l.loading, name) // cleared on both success and failure

	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	l.logger.Info("loading module", "module", name, "path", path)

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Import, err, "module", name, "path", path)
	}

	forms, err := reader.ParseProgram(string(source))
	if err != nil {
		return nil, lisperr.Wrap(lisperr.Parse, err, "module", name)
	}

	exportNames := []string{}
	env := object.WithExports(builtins.GlobalEnvironment(), &exportNames)
	env = object.WithImporter(env, l.importerFunc())

	for _, form := range forms {
		if _, err := evaluator.Eval(form, env); err != nil {
			return nil, lisperr.Wrap(lisperr.Import, err, "module", name)
		}
	}

	exports := make(map[string]object.Value, len(exportNames))
	for _, n := range exportNames {
		val, ok := env.Get(n)
		if !ok {
			return nil, lisperr.New(lisperr.Evaluation, "module %q exported undefined symbol %q", name, n)
		}
		exports[n] = val
	}

	m := &Module{Name: name, Env: env, Exports: exports}
	l.cache[name] = m
	return m, nil
}

// Importer exposes the Load-backed hook in the func(string)
// (map[string]Value, error) shape object.WithImporter expects, so any
// driver (the CLI's script/REPL root environment, as well as this Loader's
// own nested module environments) can wire `import` to this Loader.
func (l *Loader) Importer() func(string) (map[string]object.Value, error) {
	return l.importerFunc()
}

func (l *Loader) importerFunc() func(string) (map[string]object.Value, error) {
	return func(name string) (map[string]object.Value, error) {
		m, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		return m.Exports, nil
	}
}

// resolve turns a dotted or slashed logical name ("a.b" or "a/b") into the
// first matching "<dir>/a/b.lpy" on the load path.
func (l *Loader) resolve(name string) (string, error) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator))
	rel = filepath.FromSlash(strings.ReplaceAll(rel, "/", string(filepath.Separator)))
	if !strings.HasSuffix(rel, ".lpy") {
		rel += ".lpy"
	}
	for _, dir := range l.loadPath {
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", lisperr.New(lisperr.Import, "module %q not found on load path %s", name, fmt.Sprint(l.loadPath))
}
