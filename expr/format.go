package expr

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// exprArg stands in for an expression argument of Sprintf. With %s and %v
// it writes a token that Sprintf later swaps for the expression. Any other
// verb formats the expression's document text, so %q gives a quoted
// "${{ ... }}".
type exprArg struct {
	token string
	e     Expr
}

func (a exprArg) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		io.WriteString(f, a.token) //nolint:errcheck // fmt.State buffers in memory
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), a.e.String())
	}
}

// Sprintf formats according to format, like fmt.Sprintf. Arguments that are
// non-literal Values are kept as expressions when formatted with %s or %v,
// so the result renders as text with ${{ }} interpolations. Literal Values
// and other arguments are formatted normally. The result carries the
// contexts and functions of every expression argument, however it was
// formatted.
func Sprintf(format string, args ...any) String {
	var exprs, metas []Expr
	fmtArgs := make([]any, len(args))
	for i, a := range args {
		v, ok := a.(Value)
		if !ok {
			fmtArgs[i] = a
			continue
		}
		e := v.base()
		metas = append(metas, e)
		if e.IsZero() || e.IsLiteral() {
			fmtArgs[i] = e.Scalar()
			continue
		}
		fmtArgs[i] = e
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		s := Str(fmt.Sprintf(format, fmtArgs...))
		return String{combine(s.n, metas...)}
	}

	mark := marker(format, fmtArgs)
	n := 0
	for i, a := range fmtArgs {
		if e, ok := a.(Expr); ok {
			fmtArgs[i] = exprArg{token: mark + strconv.Itoa(n) + mark, e: e}
			n++
		}
	}
	out := fmt.Sprintf(format, fmtArgs...)

	// Even indices are text, odd indices are expression numbers.
	segments := strings.Split(out, mark)
	parts := make([]Value, 0, len(segments))
	for i, seg := range segments {
		if i%2 == 0 {
			parts = append(parts, Str(seg))
			continue
		}
		k, err := strconv.Atoi(seg)
		if err != nil || k >= len(exprs) {
			panic(fmt.Sprintf("expr.Sprintf: unrecognised expression token in %q", format))
		}
		parts = append(parts, exprs[k])
	}
	res := Concat(parts...)
	return String{combine(res.n, append(metas, res.Expr)...)}
}

// marker returns a one-rune string that occurs neither in format nor in the
// text of any argument, for Sprintf to delimit expression tokens with.
func marker(format string, args []any) string {
	var text strings.Builder
	text.WriteString(format)
	for _, a := range args {
		fmt.Fprint(&text, a)
	}
	all := text.String()
	// Private use runes: never printed by %q, unlikely in scripts.
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if !strings.ContainsRune(all, r) {
			return string(r)
		}
	}
	panic("expr.Sprintf: no free marker rune")
}

// Concat joins parts into one string. Literal parts are kept as text and
// expression parts are interpolated.
func Concat(parts ...Value) String {
	var (
		nodes []node
		metas []Expr
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, literal{text.String()})
			text.Reset()
		}
	}
	add := func(e Expr) {
		switch n := e.n.(type) {
		case nil:
		case literal:
			if n.v == nil {
				return
			}
			if s, ok := n.v.(string); ok {
				text.WriteString(s)
			} else {
				text.WriteString(fmt.Sprint(n.v))
			}
		default:
			flush()
			nodes = append(nodes, n)
		}
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		// A literal part may still carry contexts, e.g. from Sprintf("%q").
		e := p.base()
		metas = append(metas, e)
		if in, ok := e.n.(interp); ok {
			for _, n := range in.parts {
				add(Expr{n: n})
			}
			continue
		}
		add(e)
	}
	flush()

	switch {
	case len(nodes) == 0:
		return String{combine(literal{""}, metas...)}
	case len(nodes) == 1:
		return String{combine(nodes[0], metas...)}
	}
	return String{combine(interp{parts: nodes}, metas...)}
}

// Lines joins lines with newlines, keeping expressions interpolated. It is
// the usual way to build a multi-line run script.
func Lines(lines ...String) String {
	parts := make([]Value, 0, 2*len(lines))
	for i, l := range lines {
		if i > 0 {
			parts = append(parts, Str("\n"))
		}
		parts = append(parts, l)
	}
	return Concat(parts...)
}

// TrimTrailingSpace returns s with CRLF and lone CR line endings turned into
// LF, and spaces and tabs removed from the end of every line. Only literal
// text is changed. Scripts in this form render as YAML block scalars.
func TrimTrailingSpace(s String) String {
	e := s.base()
	var parts []node
	switch n := e.n.(type) {
	case literal:
		parts = []node{n}
	case interp:
		parts = n.parts
	default:
		return s
	}

	vals := make([]Value, 0, len(parts))
	for i, p := range parts {
		lit, ok := p.(literal)
		if !ok {
			vals = append(vals, Expr{n: p})
			continue
		}
		str, ok := lit.v.(string)
		if !ok {
			vals = append(vals, Expr{n: p})
			continue
		}
		vals = append(vals, Str(trimLines(str, i == len(parts)-1)))
	}
	res := Concat(vals...)
	return String{combine(res.n, e)}
}

// trimLines normalises line endings in text and trims horizontal space
// before each newline, and before the end when last is set.
func trimLines(text string, last bool) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if i < len(lines)-1 || last {
			lines[i] = strings.TrimRight(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
