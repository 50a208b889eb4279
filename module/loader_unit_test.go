package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/object"
	"lispy/reader"
)

func parseModuleSource(path string) ([]object.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return reader.ParseProgram(string(data))
}

func evalForms(forms []object.Value, env *object.Environment) (object.Value, error) {
	var result object.Value = object.NilValue
	for _, form := range forms {
		v, err := evaluator.Eval(form, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func writeModule(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".lpy"), []byte(source), 0o644))
}

func TestLoadEvaluatesAndRecordsExports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "m", `(define x 10) (define secret 99) (export x)`)

	l := NewLoader([]string{dir}, nil)
	m, err := l.Load("m")
	require.NoError(t, err)

	x, ok := m.Exports["x"]
	require.True(t, ok)
	assert.Equal(t, int64(10), x.(object.Int).Value)

	_, ok = m.Exports["secret"]
	assert.False(t, ok, "non-exported bindings must not leak into Exports")
}

func TestLoadCachesByLogicalName(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "m", `(define x 10) (export x)`)

	l := NewLoader([]string{dir}, nil)
	first, err := l.Load("m")
	require.NoError(t, err)
	second, err := l.Load("m")
	require.NoError(t, err)
	assert.Same(t, first, second, "subsequent loads must return the cached module")
}

func TestCircularDependencyDetected(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", `(import "b") (define x 1) (export x)`)
	writeModule(t, dir, "b", `(import "a") (define y 2) (export y)`)

	l := NewLoader([]string{dir}, nil)
	_, err := l.Load("a")
	require.Error(t, err)
	assert.True(t, lisperr.Is(err, lisperr.CircularDependency) || lisperr.Is(err, lisperr.Import),
		"expected a circular-dependency-flavored error, got %v", err)
}

func TestImportMissingModuleRaisesImportError(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader([]string{dir}, nil)
	_, err := l.Load("does-not-exist")
	require.Error(t, err)
	assert.True(t, lisperr.Is(err, lisperr.Import))
}

func TestImportBindsSelectiveExports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "lib", `(define a 1) (define b 2) (export a b)`)
	writeModule(t, dir, "main", `(import "lib" [a]) a`)

	l := NewLoader([]string{dir}, nil)
	_, err := l.Load("lib")
	require.NoError(t, err)

	// Exercise "main" the way the CLI would: its own root environment
	// wired to the same loader's importer.
	exports := []string{}
	env := object.WithExports(object.NewEnvironment(), &exports)
	env = object.WithImporter(env, l.Importer())

	forms, err := parseModuleSource(filepath.Join(dir, "main.lpy"))
	require.NoError(t, err)
	result, err := evalForms(forms, env)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.(object.Int).Value)

	_, hasB := env.Get("b")
	assert.False(t, hasB, "selective import must not bind unrequested names")
}
