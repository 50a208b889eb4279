package reader

import (
	"testing"

	"lispy/object"
)

func parseOne(t *testing.T, src string) object.Value {
	t.Helper()
	forms, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("%s: unexpected parse error: %s", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("%s: expected exactly 1 form, got %d", src, len(forms))
	}
	return forms[0]
}

func TestReadAtoms(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{`"hello"`, `"hello"`},
		{"true", "true"},
		{"false", "false"},
		{"nil", "nil"},
		{"foo", "foo"},
		{":keyword", ":keyword"},
	}
	for _, tt := range tests {
		got := parseOne(t, tt.src).String()
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestReadListAndVector(t *testing.T) {
	list := parseOne(t, "(+ 1 2)")
	l, ok := list.(*object.List)
	if !ok || len(l.Elements) != 3 {
		t.Fatalf("got %#v", list)
	}

	vec := parseOne(t, "[1 2 3]")
	v, ok := vec.(*object.Vector)
	if !ok || len(v.Elements) != 3 {
		t.Fatalf("got %#v", vec)
	}
}

func TestReadQuoteSugar(t *testing.T) {
	form := parseOne(t, "'(1 2)")
	l, ok := form.(*object.List)
	if !ok || len(l.Elements) != 2 {
		t.Fatalf("got %#v", form)
	}
	head, ok := l.Elements[0].(object.Symbol)
	if !ok || head.Name != "quote" {
		t.Fatalf("'(1 2) must desugar to (quote (1 2)), got %s", form.String())
	}
}

func TestReadMapRequiresEvenElements(t *testing.T) {
	_, err := ParseProgram("{:a 1 :b}")
	if err == nil {
		t.Fatal("expected a parse error for an odd-length map literal")
	}
}

func TestReadMapLiteralTag(t *testing.T) {
	form := parseOne(t, "{:a 1}")
	m, ok := form.(*object.Map)
	if !ok {
		t.Fatalf("got %#v", form)
	}
	if !m.Literal {
		t.Error("a freshly parsed map literal must be tagged Literal")
	}
}

func TestUnclosedDelimiterIsParseError(t *testing.T) {
	_, err := ParseProgram("(+ 1 2")
	if err == nil {
		t.Fatal("expected a parse error for an unclosed list")
	}
}

func TestParseProgramMultipleTopLevelForms(t *testing.T) {
	forms, err := ParseProgram("(define x 1) (define y 2) (+ x y)")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(forms) != 3 {
		t.Fatalf("expected 3 top-level forms, got %d", len(forms))
	}
}
