package expr

import (
	"regexp"
	"strconv"
	"strings"
)

// node is one element of an expression tree. Every node type is handled by
// render; there is no other behaviour attached to the tree.
type node interface {
	isNode()
}

type (
	// literal holds a string, bool, int64, float64 or nil.
	literal struct{ v any }

	contextRef struct{ name string }

	property struct {
		base node
		key  string
	}

	index struct {
		base node
		i    node
	}

	unary struct {
		op string
		x  node
	}

	binary struct {
		op   string
		l, r node
	}

	ifElse struct {
		cond, then, otherwise node
	}

	call struct {
		fn   string
		args []node
	}

	// interp is text with embedded expressions. Literal string parts are
	// copied as-is into documents.
	interp struct{ parts []node }
)

func (literal) isNode()    {}
func (contextRef) isNode() {}
func (property) isNode()   {}
func (index) isNode()      {}
func (unary) isNode()      {}
func (binary) isNode()     {}
func (ifElse) isNode()     {}
func (call) isNode()       {}
func (interp) isNode()     {}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// render returns the expression syntax for n, without the ${{ }} delimiters.
func render(n node) string {
	switch n := n.(type) {
	case literal:
		return renderLiteral(n.v)

	case contextRef:
		return n.name

	case property:
		if n.key == "*" || identRE.MatchString(n.key) {
			return render(n.base) + "." + n.key
		}
		return render(n.base) + "[" + quote(n.key) + "]"

	case index:
		return render(n.base) + "[" + render(n.i) + "]"

	case unary:
		return n.op + "(" + render(n.x) + ")"

	case binary:
		return "(" + render(n.l) + " " + n.op + " " + render(n.r) + ")"

	case ifElse:
		return "(" + render(n.cond) + " && " + render(n.then) + " || " + render(n.otherwise) + ")"

	case call:
		args := make([]string, len(n.args))
		for i, a := range n.args {
			args[i] = render(a)
		}
		return n.fn + "(" + strings.Join(args, ", ") + ")"

	case interp:
		var format strings.Builder
		var args []string
		for _, p := range n.parts {
			if lit, ok := p.(literal); ok {
				s, _ := lit.v.(string)
				format.WriteString(escapeFormat(s))
				continue
			}
			format.WriteString("{" + strconv.Itoa(len(args)) + "}")
			args = append(args, render(p))
		}
		return "format(" + strings.Join(append([]string{quote(format.String())}, args...), ", ") + ")"
	}
	return ""
}

// document returns n as a document scalar: literals keep their Go value,
// interpolated text becomes a string with ${{ }} around each expression, and
// anything else becomes a single ${{ }} string.
func document(n node) any {
	switch n := n.(type) {
	case nil:
		return nil

	case literal:
		return n.v

	case interp:
		var b strings.Builder
		for _, p := range n.parts {
			if lit, ok := p.(literal); ok {
				s, _ := lit.v.(string)
				b.WriteString(s)
				continue
			}
			b.WriteString("${{ " + render(p) + " }}")
		}
		return b.String()
	}
	return "${{ " + render(n) + " }}"
}

func renderLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "null"
}

// quote returns s as an expression string literal. Expression strings are
// single-quoted and a single quote is escaped by doubling it.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeFormat escapes braces for the format() function.
func escapeFormat(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
