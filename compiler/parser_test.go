package compiler

import (
	"fmt"
	"strings"
	"testing"
)

// sexpr renders an AST in prefix form for structural comparison in tests.
func sexpr(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		return n.Name
	case *IntLit:
		return fmt.Sprintf("%d", n.Value)
	case *FloatLit:
		return fmt.Sprintf("%g", n.Value)
	case *StrLit:
		return fmt.Sprintf("%q", n.Value)
	case *FStrLit:
		return fmt.Sprintf("f%q", n.Value)
	case *BoolLit:
		return fmt.Sprintf("%v", n.Value)
	case *NoneLit:
		return "None"
	case *Unary:
		return fmt.Sprintf("(%s %s)", n.Op, sexpr(n.X))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", n.Op, sexpr(n.L), sexpr(n.R))
	case *Call:
		parts := make([]string, 0, len(n.Args)+1)
		parts = append(parts, sexpr(n.Fn))
		for _, a := range n.Args {
			parts = append(parts, sexpr(a))
		}
		return "(call " + strings.Join(parts, " ") + ")"
	case *Index:
		return fmt.Sprintf("(index %s %s)", sexpr(n.X), sexpr(n.Idx))
	case *Attr:
		return fmt.Sprintf("(attr %s %s)", sexpr(n.X), n.Name)
	case *ListLit:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = sexpr(el)
		}
		return "(list " + strings.Join(parts, " ") + ")"
	case *DictLit:
		var b strings.Builder
		b.WriteString("(dict")
		for i := range n.Keys {
			fmt.Fprintf(&b, " %s:%s", sexpr(n.Keys[i]), sexpr(n.Values[i]))
		}
		b.WriteString(")")
		return b.String()
	case *StructLit:
		var b strings.Builder
		fmt.Fprintf(&b, "(struct %s", n.Name)
		for _, f := range n.Fields {
			fmt.Fprintf(&b, " %s:%s", f.Name, sexpr(f.Value))
		}
		b.WriteString(")")
		return b.String()
	case *TypeConv:
		if n.Arg == nil {
			return fmt.Sprintf("(@%s)", n.Name)
		}
		return fmt.Sprintf("(@%s %s)", n.Name, sexpr(n.Arg))
	}
	return "?"
}

func parse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := ParseExpression(src)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	return e
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"a < b and c > d", "(and (< a b) (> c d))"},
		{"a and b or c", "(or (and a b) c)"},
		{"a or b and c", "(or a (and b c))"},
		{"not a and b", "(and (not a) b)"},
		{"x in items or done", "(or (in x items) done)"},
		{"a + b == c * d", "(== (+ a b) (* c d))"},
		{"-x * y", "(* (- x) y)"},
	}

	for _, tt := range tests {
		got := sexpr(parse(t, tt.input))
		if got != tt.want {
			t.Errorf("parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

// Every binary operator must associate left.
func TestParseAssociativity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b + c", "(+ (+ a b) c)"},
		{"a - b - c", "(- (- a b) c)"},
		{"a * b * c", "(* (* a b) c)"},
		{"a / b / c", "(/ (/ a b) c)"},
		{"a - b + c", "(+ (- a b) c)"},
		{"a / b * c", "(* (/ a b) c)"},
		{"a and b and c", "(and (and a b) c)"},
		{"a or b or c", "(or (or a b) c)"},
		{"a == b == c", "(== (== a b) c)"},
		{"a < b < c", "(< (< a b) c)"},
		{"a in b in c", "(in (in a b) c)"},
	}

	for _, tt := range tests {
		got := sexpr(parse(t, tt.input))
		if got != tt.want {
			t.Errorf("parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParsePostfix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"f(1, 2)", "(call f 1 2)"},
		{"obj.field", "(attr obj field)"},
		{"obj.method(x)", "(call (attr obj method) x)"},
		{"xs[0]", "(index xs 0)"},
		{"m[k].name", "(attr (index m k) name)"},
		{"a.b.c", "(attr (attr a b) c)"},
		{"f(x)(y)", "(call (call f x) y)"},
		{"len(xs) + 1", "(+ (call len xs) 1)"},
	}

	for _, tt := range tests {
		got := sexpr(parse(t, tt.input))
		if got != tt.want {
			t.Errorf("parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[1, 2, 3]", "(list 1 2 3)"},
		{"[]", "(list )"},
		{`{"a": 1, "b": 2}`, `(dict "a":1 "b":2)`},
		{"{}", "(dict)"},
		{"@list[1, 2]", "(list 1 2)"},
		{"@dict{}", "(dict)"},
		{"@int(x)", "(@int x)"},
		{`@str(42)`, "(@str 42)"},
		{"@float()", "(@float)"},
		{`Point{x: 1, y: 2}`, "(struct Point x:1 y:2)"},
		{"true", "true"},
		{"None", "None"},
		{`f"n = {n}"`, `f"n = {n}"`},
		{`f"sum: {a + b}" + "!"`, `(+ f"sum: {a + b}" "!")`},
	}

	for _, tt := range tests {
		got := sexpr(parse(t, tt.input))
		if got != tt.want {
			t.Errorf("parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"1 +",
		"(1 + 2",
		"[1, 2",
		"f(a,",
		"a .",
		"1 2",
		"@weird[",
		"Point{x 1}",
	}

	for _, src := range bad {
		if _, err := ParseExpression(src); err == nil {
			t.Errorf("ParseExpression(%q): expected error, got none", src)
		}
	}
}

// Node spans must cover the source text so callers can recover the raw
// slice behind any subexpression.
func TestParseSpans(t *testing.T) {
	src := "alpha + beta.gamma"
	e := parse(t, src)
	if got := src[e.Pos():e.End()]; got != src {
		t.Errorf("root span = %q, want %q", got, src)
	}
	bin := e.(*Binary)
	if got := src[bin.R.Pos():bin.R.End()]; got != "beta.gamma" {
		t.Errorf("right span = %q, want %q", got, "beta.gamma")
	}
}
