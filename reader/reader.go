// ----------------------------------------------------------------------------
// FILE: reader/reader.go
// ----------------------------------------------------------------------------
// PACKAGE: reader
// PURPOSE: Converts a token stream into object.Value trees.
//          Because LisPy code is data, there is no intermediate AST type:
//          the Reader builds the same object.List/Vector/Map/atom values the
//          evaluator later walks.
// ----------------------------------------------------------------------------
package reader

import (
	"strconv"
	"strings"

	"lispy/lexer"
	"lispy/lisperr"
	"lispy/object"
	"lispy/token"
)

// Reader turns a token stream into object.Value forms.
type Reader struct {
	l         *lexer.Lexer
	cur, peek token.Token
}

// New creates a Reader over l, priming the two-token lookahead.
func New(l *lexer.Lexer) *Reader {
	r := &Reader{l: l}
	r.advance()
	r.advance()
	return r
}

func (r *Reader) advance() {
	r.cur = r.peek
	r.peek = r.l.NextToken()
}

// ParseProgram reads every top-level form until EOF.
func ParseProgram(source string) ([]object.Value, error) {
	r := New(lexer.New(source))
	var forms []object.Value
	for r.cur.Type != token.EOF {
		form, err := r.ReadForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// ReadForm parses one form starting at the current token. It does not check
// for trailing tokens: anything after the form is left for the next call
// (ParseProgram calls it in a loop until EOF).
func (r *Reader) ReadForm() (object.Value, error) {
	return r.readForm()
}

func (r *Reader) readForm() (object.Value, error) {
	switch r.cur.Type {
	case token.EOF:
		return nil, lisperr.New(lisperr.Parse, "unexpected end of input")
	case token.NUMBER:
		return r.readNumber()
	case token.STRING:
		v := object.Str{Value: r.cur.Literal}
		r.advance()
		return v, nil
	case token.BOOLEAN:
		v := object.NativeBool(r.cur.Literal == "true")
		r.advance()
		return v, nil
	case token.NIL:
		r.advance()
		return object.NilValue, nil
	case token.SYMBOL:
		v := object.Symbol{Name: r.cur.Literal}
		r.advance()
		return v, nil
	case token.QUOTE:
		return r.readQuote()
	case token.LPAREN:
		return r.readList()
	case token.LBRACKET:
		return r.readVector()
	case token.LBRACE:
		return r.readMap()
	case token.ILLEGAL:
		return nil, lisperr.New(lisperr.Lexer, "%s (line %d, column %d)", r.cur.Literal, r.cur.Line, r.cur.Column)
	default:
		return nil, lisperr.New(lisperr.Parse, "unexpected token %q (line %d, column %d)", r.cur.Literal, r.cur.Line, r.cur.Column)
	}
}

func (r *Reader) readNumber() (object.Value, error) {
	lit := r.cur.Literal
	line, col := r.cur.Line, r.cur.Column
	r.advance()
	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, lisperr.New(lisperr.Parse, "invalid number %q (line %d, column %d)", lit, line, col)
		}
		return object.Float{Value: f}, nil
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, lisperr.New(lisperr.Parse, "invalid number %q (line %d, column %d)", lit, line, col)
	}
	return object.Int{Value: i}, nil
}

// readQuote implements the `'` shorthand: consume one following form F and
// emit (quote F); error if no form follows.
func (r *Reader) readQuote() (object.Value, error) {
	r.advance() // consume the quote token
	if r.cur.Type == token.EOF {
		return nil, lisperr.New(lisperr.Parse, "expected a form after '")
	}
	form, err := r.readForm()
	if err != nil {
		return nil, err
	}
	return object.NewList(object.Symbol{Name: "quote"}, form), nil
}

func (r *Reader) readList() (object.Value, error) {
	r.advance() // consume (
	elements, err := r.readUntil(token.RPAREN, ")")
	if err != nil {
		return nil, err
	}
	return object.NewList(elements...), nil
}

func (r *Reader) readVector() (object.Value, error) {
	r.advance() // consume [
	elements, err := r.readUntil(token.RBRACKET, "]")
	if err != nil {
		return nil, err
	}
	return object.NewVector(elements...), nil
}

func (r *Reader) readUntil(closing token.Type, closingLiteral string) ([]object.Value, error) {
	var elements []object.Value
	for r.cur.Type != closing {
		if r.cur.Type == token.EOF {
			return nil, lisperr.New(lisperr.Parse, "unclosed form, expected %q", closingLiteral)
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		elements = append(elements, form)
	}
	r.advance() // consume closing delimiter
	return elements, nil
}

// readMap implements: keys must be Symbol, Str, number, Bool,
// or Nil; odd element count is a ParseError; the result is tagged Literal so
// the evaluator knows to evaluate its values.
func (r *Reader) readMap() (object.Value, error) {
	r.advance() // consume {
	m := object.NewMap()
	m.Literal = true

	var pending []object.Value
	for r.cur.Type != token.RBRACE {
		if r.cur.Type == token.EOF {
			return nil, lisperr.New(lisperr.Parse, "unclosed map, expected \"}\"")
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		pending = append(pending, form)
	}
	r.advance() // consume }

	if len(pending)%2 != 0 {
		return nil, lisperr.New(lisperr.Parse, "map literal requires an even number of forms, got %d", len(pending))
	}
	for i := 0; i < len(pending); i += 2 {
		key := pending[i]
		if !isValidMapKey(key) {
			return nil, lisperr.New(lisperr.Parse, "invalid map key %s", key.String())
		}
		if err := m.Set(key, pending[i+1]); err != nil {
			return nil, lisperr.Wrap(lisperr.Parse, err, "key", key.String())
		}
	}
	return m, nil
}

func isValidMapKey(v object.Value) bool {
	switch v.(type) {
	case object.Symbol, object.Str, object.Int, object.Float, object.Bool, object.Nil:
		return true
	default:
		return false
	}
}
