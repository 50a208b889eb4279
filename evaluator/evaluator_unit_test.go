// Black-box test package: builtins imports evaluator (map/filter/reduce
// call back via evaluator.Apply), so exercising the evaluator together with
// the real builtin table must live outside package evaluator itself to
// avoid an import cycle.
package evaluator_test

import (
	"testing"

	"lispy/builtins"
	"lispy/evaluator"
	"lispy/lisperr"
	"lispy/object"
	"lispy/reader"
)

// ----------------------------------------------------------------------------
// TEST HELPERS (shared across package)
// ----------------------------------------------------------------------------

func testEval(t *testing.T, input string) (object.Value, error) {
	t.Helper()
	forms, err := reader.ParseProgram(input)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	env := builtins.GlobalEnvironment()
	var result object.Value
	for _, form := range forms {
		result, err = evaluator.Eval(form, env)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func testInt(t *testing.T, v object.Value, want int64) {
	t.Helper()
	got, ok := v.(object.Int)
	if !ok {
		t.Fatalf("object is not Int. got=%T (%+v)", v, v)
	}
	if got.Value != want {
		t.Errorf("wrong value. got=%d, want=%d", got.Value, want)
	}
}

func testBool(t *testing.T, v object.Value, want bool) {
	t.Helper()
	got, ok := v.(object.Bool)
	if !ok {
		t.Fatalf("object is not Bool. got=%T (%+v)", v, v)
	}
	if got.Value != want {
		t.Errorf("wrong value. got=%t, want=%t", got.Value, want)
	}
}

// ----------------------------------------------------------------------------
// ARITHMETIC & SELF-EVALUATING FORMS
// ----------------------------------------------------------------------------

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"(+ 1 2)", 3},
		{"(+ 1 2 3 4)", 10},
		{"(- 10 3)", 7},
		{"(* 2 3 4)", 24},
		{"(mod 10 3)", 1},
	}
	for _, tt := range tests {
		result, err := testEval(t, tt.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", tt.input, err)
		}
		testInt(t, result, tt.want)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := testEval(t, "(/ 1 0)")
	if !lisperr.Is(err, lisperr.ZeroDivision) {
		t.Fatalf("expected ZeroDivisionError, got %v", err)
	}
}

// ----------------------------------------------------------------------------
// SPECIAL FORMS
// ----------------------------------------------------------------------------

func TestEvalDefineAndLookup(t *testing.T) {
	result, err := testEval(t, "(define x 10) (+ x 5)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testInt(t, result, 15)
}

func TestEvalIf(t *testing.T) {
	result, err := testEval(t, `(if (> 3 2) "yes" "no")`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	s, ok := result.(object.Str)
	if !ok || s.Value != "yes" {
		t.Fatalf("wrong result: %+v", result)
	}
}

func TestEvalAndOrShortCircuit(t *testing.T) {
	// (and false (throw ...)) must never evaluate the throw.
	result, err := testEval(t, `(and false (throw "boom"))`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testBool(t, result, false)

	result, err = testEval(t, `(or true (throw "boom"))`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testBool(t, result, true)
}

func TestEvalUnboundSymbol(t *testing.T) {
	_, err := testEval(t, "undefined-name")
	if !lisperr.Is(err, lisperr.UnboundSymbol) {
		t.Fatalf("expected UnboundSymbolError, got %v", err)
	}
}

// ----------------------------------------------------------------------------
// RECUR / TRAMPOLINE
// ----------------------------------------------------------------------------

func TestRecurTrampolineDoesNotOverflow(t *testing.T) {
	input := `
	(defn count-to [n acc]
	  (if (= n 0)
	    acc
	    (recur (- n 1) (+ acc 1))))
	(count-to 10000 0)
	`
	result, err := testEval(t, input)
	if err != nil {
		t.Fatalf("recur-based loop should not error: %s", err)
	}
	testInt(t, result, 10000)
}

func TestNonTailSelfRecursionHitsRecursionLimit(t *testing.T) {
	input := `
	(defn count-to [n]
	  (if (= n 0)
	    0
	    (+ 1 (count-to (- n 1)))))
	(count-to 1000)
	`
	_, err := testEval(t, input)
	if !lisperr.Is(err, lisperr.Recursion) {
		t.Fatalf("expected RecursionError, got %v", err)
	}
}

func TestLoopRecur(t *testing.T) {
	input := `
	(loop [i 0 acc 0]
	  (if (= i 5)
	    acc
	    (recur (+ i 1) (+ acc i))))
	`
	result, err := testEval(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testInt(t, result, 10) // 0+1+2+3+4
}

// ----------------------------------------------------------------------------
// THREADING MACROS
// ----------------------------------------------------------------------------

func TestThreadFirst(t *testing.T) {
	result, err := testEval(t, "(-> 5 (+ 3) (* 2))")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testInt(t, result, 16) // (5+3)*2
}

func TestThreadLast(t *testing.T) {
	result, err := testEval(t, `(->> [1 2 3] (map (fn [x] (* x 2))) (reduce + 0))`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testInt(t, result, 12)
}

// ----------------------------------------------------------------------------
// TRY/CATCH/THROW
// ----------------------------------------------------------------------------

func TestTryCatchesThrow(t *testing.T) {
	result, err := testEval(t, `(try (throw "boom") (catch e e))`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	s, ok := result.(object.Str)
	if !ok || s.Value != "boom" {
		t.Fatalf("wrong catch result: %+v", result)
	}
}

func TestTryNeverCatchesAssertion(t *testing.T) {
	_, err := testEval(t, `(try (assert-true? false) (catch e "caught"))`)
	if !lisperr.Is(err, lisperr.Assertion) {
		t.Fatalf("assertion failures must not be caught, got %v", err)
	}
}

// ----------------------------------------------------------------------------
// ASYNC / AWAIT
// ----------------------------------------------------------------------------

func TestAsyncAwait(t *testing.T) {
	input := `
	(defn-async fetch-value [] 42)
	(async (await (fetch-value)))
	`
	result, err := testEval(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testInt(t, result, 42)
}
