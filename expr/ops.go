package expr

// Not negates b.
func (b Bool) Not() Bool {
	return Bool{combine(unary{op: "!", x: nodeOf(b.Expr)}, b.Expr)}
}

// And is b && o.
func (b Bool) And(o Bool) Bool { return Bool{op2("&&", b.Expr, o.Expr)} }

// Or is b || o.
func (b Bool) Or(o Bool) Bool { return Bool{op2("||", b.Expr, o.Expr)} }

// IfElse evaluates to b when cond is true and otherwise to otherwise.
func (b Bool) IfElse(cond, otherwise Bool) Bool {
	return Bool{ternary(cond, b.Expr, otherwise.Expr)}
}

// Lt is n < o.
func (n Number) Lt(o Number) Bool { return Bool{op2("<", n.Expr, o.Expr)} }

// Le is n <= o.
func (n Number) Le(o Number) Bool { return Bool{op2("<=", n.Expr, o.Expr)} }

// Gt is n > o.
func (n Number) Gt(o Number) Bool { return Bool{op2(">", n.Expr, o.Expr)} }

// Ge is n >= o.
func (n Number) Ge(o Number) Bool { return Bool{op2(">=", n.Expr, o.Expr)} }

// IfElse evaluates to n when cond is true and otherwise to otherwise.
func (n Number) IfElse(cond Bool, otherwise Number) Number {
	return Number{ternary(cond, n.Expr, otherwise.Expr)}
}

// Contains reports whether sub occurs in s (case-insensitive on GitHub).
func (s String) Contains(sub String) Bool {
	return Bool{fcall("contains", s.Expr, sub.Expr)}
}

// StartsWith reports whether s starts with prefix.
func (s String) StartsWith(prefix String) Bool {
	return Bool{fcall("startsWith", s.Expr, prefix.Expr)}
}

// EndsWith reports whether s ends with suffix.
func (s String) EndsWith(suffix String) Bool {
	return Bool{fcall("endsWith", s.Expr, suffix.Expr)}
}

// Format calls format() with s as the format string, where {0}, {1}, ...
// are replaced by args.
func (s String) Format(args ...Value) String {
	parts := []Expr{s.Expr}
	for _, a := range args {
		parts = append(parts, a.base())
	}
	return String{fcall("format", parts...)}
}

// FromJSON parses s as JSON.
func (s String) FromJSON() Object { return Object{fcall("fromJSON", s.Expr)} }

// IfElse evaluates to s when cond is true and otherwise to otherwise.
func (s String) IfElse(cond Bool, otherwise String) String {
	return String{ternary(cond, s.Expr, otherwise.Expr)}
}

// Contains reports whether item is an element of a.
func (a Array) Contains(item Value) Bool {
	return Bool{fcall("contains", a.Expr, item.base())}
}

// Join joins the elements of a. An optional separator replaces the default
// comma.
func (a Array) Join(sep ...String) String {
	if len(sep) > 0 {
		return String{fcall("join", a.Expr, sep[0].Expr)}
	}
	return String{fcall("join", a.Expr)}
}

// Index returns the i'th element of a.
func (a Array) Index(i int) Object {
	return Object{combine(index{base: nodeOf(a.Expr), i: literal{int64(i)}}, a.Expr)}
}

// Get returns the property key of o.
func (o Object) Get(key string) Object {
	return Object{combine(property{base: nodeOf(o.Expr), key: key}, o.Expr)}
}

// Index returns element i of o, for objects that hold arrays.
func (o Object) Index(i int) Object {
	return o.AsArray().Index(i)
}

// IfElse evaluates to o when cond is true and otherwise to otherwise.
func (o Object) IfElse(cond Bool, otherwise Object) Object {
	return Object{ternary(cond, o.Expr, otherwise.Expr)}
}

func ternary(cond Bool, then, otherwise Expr) Expr {
	return combine(ifElse{cond: nodeOf(cond.Expr), then: nodeOf(then), otherwise: nodeOf(otherwise)}, cond.Expr, then, otherwise)
}

// HashFiles returns a hash of the files matching the patterns. Its use is
// limited to step fields.
func HashFiles(patterns ...String) String {
	args := make([]Expr, len(patterns))
	for i, p := range patterns {
		args[i] = p.Expr
	}
	e := fcall("hashFiles", args...)
	e.fn |= FuncHashFiles
	return String{e}
}

// Success is true when no previous step or job failed or was cancelled.
func Success() Bool { return status("success", FuncSuccess) }

// Always is always true, even when cancelled.
func Always() Bool { return status("always", FuncAlways) }

// Cancelled is true when the workflow was cancelled.
func Cancelled() Bool { return status("cancelled", FuncCancelled) }

// Failure is true when a previous step or job failed.
func Failure() Bool { return status("failure", FuncFailure) }

func status(name string, f Func) Bool {
	e := fcall(name)
	e.fn = f
	return Bool{e}
}
