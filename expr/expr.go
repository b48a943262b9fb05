package expr

import (
	"fmt"
	"reflect"
)

// Value is implemented by Expr and the typed wrappers String, Bool, Number,
// Array and Object. It cannot be implemented outside this package.
type Value interface {
	// Contexts returns the contexts read by the expression.
	Contexts() Context
	// Funcs returns the restricted functions the expression calls.
	Funcs() Func
	// IsZero reports whether the value is unset.
	IsZero() bool
	// IsLiteral reports whether the value is a plain literal.
	IsLiteral() bool
	// Text returns the expression syntax, without ${{ }}.
	Text() string
	// Scalar returns the value as it appears in a rendered document.
	Scalar() any

	base() Expr
}

// Expr is an untyped expression. The zero Expr is unset.
type Expr struct {
	n   node
	ctx Context
	fn  Func
}

var _ Value = Expr{}

func (e Expr) base() Expr { return e }

// Contexts returns the contexts read by e.
func (e Expr) Contexts() Context { return e.ctx }

// Funcs returns the restricted functions called by e.
func (e Expr) Funcs() Func { return e.fn }

// IsZero reports whether e is unset.
func (e Expr) IsZero() bool { return e.n == nil }

// IsLiteral reports whether e is a literal string, bool, or number.
func (e Expr) IsLiteral() bool {
	_, ok := e.n.(literal)
	return ok
}

// Literal returns the literal value of e, if it is one.
func (e Expr) Literal() (any, bool) {
	lit, ok := e.n.(literal)
	if !ok {
		return nil, false
	}
	return lit.v, true
}

// Text returns the expression syntax for e without the ${{ }} delimiters.
func (e Expr) Text() string {
	if e.n == nil {
		return ""
	}
	return render(e.n)
}

// Scalar returns e as it should appear in a rendered document. Literals are
// returned as Go values (string, bool, int64, float64), expressions as a
// string containing ${{ }}. An unset Expr returns nil.
func (e Expr) Scalar() any {
	return document(e.n)
}

// String returns the document form of e.
func (e Expr) String() string {
	v := e.Scalar()
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// AsStr re-types e as a string without changing it.
func (e Expr) AsStr() String { return String{e} }

// AsBool re-types e as a boolean without changing it.
func (e Expr) AsBool() Bool { return Bool{e} }

// AsNum re-types e as a number without changing it.
func (e Expr) AsNum() Number { return Number{e} }

// AsArray re-types e as an array without changing it.
func (e Expr) AsArray() Array { return Array{e} }

// AsObj re-types e as an object without changing it.
func (e Expr) AsObj() Object { return Object{e} }

// Eq compares e and o with ==.
func (e Expr) Eq(o Value) Bool { return Bool{op2("==", e, o.base())} }

// Ne compares e and o with !=.
func (e Expr) Ne(o Value) Bool { return Bool{op2("!=", e, o.base())} }

// ToJSON pretty-prints e as JSON.
func (e Expr) ToJSON() String { return String{fcall("toJSON", e)} }

// String is a string-valued expression or literal.
type String struct{ Expr }

// Bool is a boolean-valued expression or literal.
type Bool struct{ Expr }

// Number is a number-valued expression or literal.
type Number struct{ Expr }

// Array is an array-valued expression.
type Array struct{ Expr }

// Object is an object-valued expression, such as a context or a parsed JSON
// value.
type Object struct{ Expr }

// Str returns a literal string.
func Str(s string) String { return String{lit(s)} }

// Int returns a literal integer.
func Int(n int) Number { return Number{lit(int64(n))} }

// Float returns a literal number.
func Float(f float64) Number { return Number{lit(f)} }

// Boolean returns a literal boolean.
func Boolean(b bool) Bool { return Bool{lit(b)} }

var (
	True  = Boolean(true)
	False = Boolean(false)
)

// Strs converts literal strings to String values.
func Strs(ss ...string) []String {
	out := make([]String, len(ss))
	for i, s := range ss {
		out[i] = Str(s)
	}
	return out
}

// ValueOf converts v into a Value. Values are returned unchanged, Go strings,
// bools, integers and floats become literals. A nil v returns an unset Expr.
func ValueOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Expr{}, nil
	case Value:
		return v, nil
	case string:
		return Str(v), nil
	case bool:
		return Boolean(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number{lit(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number{lit(int64(rv.Uint()))}, nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// Untyped returns v as an Expr. A nil v returns an unset Expr.
func Untyped(v Value) Expr {
	if v == nil {
		return Expr{}
	}
	return v.base()
}

func lit(v any) Expr { return Expr{n: literal{v}} }

// combine builds an Expr from n, carrying the contexts and functions of parts.
func combine(n node, parts ...Expr) Expr {
	e := Expr{n: n}
	for _, p := range parts {
		e.ctx |= p.ctx
		e.fn |= p.fn
	}
	return e
}

func op2(op string, l, r Expr) Expr {
	return combine(binary{op: op, l: nodeOf(l), r: nodeOf(r)}, l, r)
}

func fcall(fn string, args ...Expr) Expr {
	nodes := make([]node, len(args))
	for i, a := range args {
		nodes[i] = nodeOf(a)
	}
	return combine(call{fn: fn, args: nodes}, args...)
}

// nodeOf returns the node of e, treating an unset Expr as null.
func nodeOf(e Expr) node {
	if e.n == nil {
		return literal{nil}
	}
	return e.n
}
