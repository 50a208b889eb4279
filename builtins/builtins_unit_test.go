// Black-box tests for the builtin table, exercised the same way a LisPy
// program would: through the reader and evaluator, not by calling Go
// functions directly. builtins imports evaluator, so these tests live in
// builtins_test to avoid importing both sides of that edge from a package
// that would create a cycle.
package builtins_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lispy/builtins"
	"lispy/evaluator"
	"lispy/object"
	"lispy/reader"
)

func eval(t *testing.T, src string) object.Value {
	t.Helper()
	forms, err := reader.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	env := builtins.GlobalEnvironment()
	var result object.Value
	for _, form := range forms {
		result, err = evaluator.Eval(form, env)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", src, err)
		}
	}
	return result
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	forms, err := reader.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	env := builtins.GlobalEnvironment()
	for _, form := range forms {
		if _, err := evaluator.Eval(form, env); err != nil {
			return err
		}
	}
	return nil
}

func wantInt(t *testing.T, v object.Value, want int64) {
	t.Helper()
	i, ok := v.(object.Int)
	if !ok || i.Value != want {
		t.Fatalf("got %#v, want Int(%d)", v, want)
	}
}

func wantStr(t *testing.T, v object.Value, want string) {
	t.Helper()
	s, ok := v.(object.Str)
	if !ok || s.Value != want {
		t.Fatalf("got %#v, want Str(%q)", v, want)
	}
}

func wantBool(t *testing.T, v object.Value, want bool) {
	t.Helper()
	b, ok := v.(object.Bool)
	if !ok || b.Value != want {
		t.Fatalf("got %#v, want Bool(%t)", v, want)
	}
}

// ----------------------------------------------------------------------------
// COLLECTION
// ----------------------------------------------------------------------------

func TestConjVectorAppendsListPrepends(t *testing.T) {
	wantStr(t, eval(t, `(str (conj [1 2] 3))`), "[1 2 3]")
	wantStr(t, eval(t, `(str (conj (quote (1 2)) 3))`), "(3 1 2)")
}

func TestMapFilterReduce(t *testing.T) {
	wantInt(t, eval(t, `(reduce + 0 (map (fn [x] (* x x)) [1 2 3]))`), 14)
	wantStr(t, eval(t, `(str (filter even? [1 2 3 4 5 6]))`), "[2 4 6]")
}

func TestNthOutOfBoundsRaisesIndexError(t *testing.T) {
	err := evalErr(t, `(nth [1 2 3] 10)`)
	if err == nil {
		t.Fatal("expected an IndexError")
	}
}

func TestAssocDissoc(t *testing.T) {
	wantInt(t, eval(t, `(get (assoc {} :a 1 :b 2) :b)`), 2)
	result := eval(t, `(keys (dissoc {:a 1 :b 2} :a))`)
	if result.String() != "[:b]" {
		t.Fatalf("got %s", result.String())
	}
}

func TestSortAndRange(t *testing.T) {
	wantStr(t, eval(t, `(str (sort [3 1 2]))`), "[1 2 3]")
	wantStr(t, eval(t, `(str (range 5))`), "[0 1 2 3 4]")
}

func TestEveryAndSome(t *testing.T) {
	wantBool(t, eval(t, `(every? even? [2 4 6])`), true)
	wantBool(t, eval(t, `(some odd? [2 4 5])`), true)
}

// ----------------------------------------------------------------------------
// STRING
// ----------------------------------------------------------------------------

func TestStringBuiltins(t *testing.T) {
	wantStr(t, eval(t, `(upper "abc")`), "ABC")
	wantStr(t, eval(t, `(join ["a" "b" "c"] "-")`), "a-b-c")
	wantBool(t, eval(t, `(str-contains? "hello world" "wor")`), true)
}

// ----------------------------------------------------------------------------
// ASSERTIONS
// ----------------------------------------------------------------------------

func TestAssertionsRaiseAndNeverCaught(t *testing.T) {
	err := evalErr(t, `(try (assert-equal? 1 2) (catch e "caught"))`)
	if err == nil {
		t.Fatal("expected an uncaught AssertionFailure")
	}
}

// ----------------------------------------------------------------------------
// JSON
// ----------------------------------------------------------------------------

func TestJSONRoundTrip(t *testing.T) {
	result := eval(t, `(json-decode (json-encode {:a 1 :b [1 2 3]}))`)
	m, ok := result.(*object.Map)
	if !ok {
		t.Fatalf("got %#v", result)
	}
	v, ok := m.Get(object.Symbol{Name: ":a"})
	if !ok {
		t.Fatalf("missing :a in %s", m.String())
	}
	wantInt(t, v, 1)
}

// ----------------------------------------------------------------------------
// HTTP
// ----------------------------------------------------------------------------

func TestHTTPGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()
	result := eval(t, `(get "`+srv.URL+`")`)
	m := result.(*object.Map)
	status, _ := m.Get(object.Symbol{Name: ":status"})
	wantInt(t, status, 200)
	ok, _ := m.Get(object.Symbol{Name: ":ok"})
	wantBool(t, ok, true)
}

// ----------------------------------------------------------------------------
// PROMISES
// ----------------------------------------------------------------------------

func TestPromiseAllPreservesOrder(t *testing.T) {
	result := eval(t, `(str (await (promise-all [(resolve 1) (resolve 2) (resolve 3)])))`)
	if result.String() != "[1 2 3]" {
		t.Fatalf("got %s", result)
	}
}

func TestPromiseAllSettledNeverRejects(t *testing.T) {
	result := eval(t, `(str (await (promise-all-settled [(resolve 1) (reject "boom")])))`)
	if result == nil {
		t.Fatal("promise-all-settled must always resolve")
	}
}
