// Package lisperr defines LisPy's structured runtime error kinds.
//
// Every error kind the language specifies — LexerError through HTTPError — is
// built with github.com/samber/oops so that call sites get both a free-form
// message and a machine-checkable code that try/catch and the REPL/CLI
// driver can switch on, following the
// oops.Code("KIND").With(...).Errorf(...) / .Wrap(err) idiom used throughout
// holomush-holomush's cmd/holomush and internal/auth packages.
//
// UserThrown is the exception: (throw expr) must carry the exact runtime
// value passed to it so (catch var ...) can rebind it, so it is modeled as a
// dedicated error type instead of routed through oops' string-oriented
// context map.
package lisperr

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind identifies one of the error kinds the language defines.
type Kind string

const (
	Lexer              Kind = "LEXER_ERROR"
	Parse              Kind = "PARSE_ERROR"
	UnboundSymbol      Kind = "UNBOUND_SYMBOL_ERROR"
	Evaluation         Kind = "EVALUATION_ERROR"
	TypeMismatch       Kind = "TYPE_ERROR"
	Arity              Kind = "ARITY_ERROR"
	Recursion          Kind = "RECURSION_ERROR"
	Index              Kind = "INDEX_ERROR"
	ZeroDivision       Kind = "ZERO_DIVISION_ERROR"
	Import             Kind = "IMPORT_ERROR"
	CircularDependency Kind = "CIRCULAR_DEPENDENCY_ERROR"
	Assertion          Kind = "ASSERTION_FAILURE"
	UserThrown         Kind = "USER_THROWN_ERROR"
	HTTP               Kind = "HTTP_ERROR"
)

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return oops.Code(string(kind)).Errorf(format, args...)
}

// Wrap attaches kind and contextual key/value pairs to an existing error.
// kvs must be an even-length list of alternating keys and values, mirroring
// the oops.With(...) call sites in holomush-holomush/cmd/holomush/gateway.go.
func Wrap(kind Kind, err error, kvs ...any) error {
	b := oops.Code(string(kind))
	for i := 0; i+1 < len(kvs); i += 2 {
		key, _ := kvs[i].(string)
		b = b.With(key, kvs[i+1])
	}
	return b.Wrap(err)
}

// KindOf extracts the Kind tagged onto err, if any.
func KindOf(err error) (Kind, bool) {
	var thrown *ThrownError
	if errors.As(err, &thrown) {
		return UserThrown, true
	}
	var oopsErr oops.OopsError
	if !errors.As(err, &oopsErr) {
		return "", false
	}
	code := oopsErr.Code()
	if code == "" {
		return "", false
	}
	return Kind(code), true
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// ThrownError is the payload raised by the (throw expr) special form.
// Payload holds the evaluated expression's runtime value
// (an object.Value) as `any` to avoid an import cycle between lisperr and
// object; the evaluator type-asserts it back when binding a catch clause.
type ThrownError struct {
	Payload any
}

func (e *ThrownError) Error() string {
	return fmt.Sprintf("uncaught throw: %v", e.Payload)
}

// Throw wraps a thrown value as an error.
func Throw(payload any) error {
	return &ThrownError{Payload: payload}
}

// AsThrown reports whether err is a ThrownError and returns its payload.
func AsThrown(err error) (any, bool) {
	var thrown *ThrownError
	if errors.As(err, &thrown) {
		return thrown.Payload, true
	}
	return nil, false
}
