package interp

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func newTestInterp() (*Interp, *bytes.Buffer) {
	in := New(nil)
	var buf bytes.Buffer
	in.SetOutput(&buf)
	return in, &buf
}

func evalStr(t *testing.T, in *Interp, src string) Value {
	t.Helper()
	v, err := in.evalSource(src, 1)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	in, _ := newTestInterp()

	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 - 3 - 2", "5"},
		{"7 / 2", "3.5"},
		{"6 / 2", "3.0"},
		{"2.5 + 1", "3.5"},
		{"-4 + 1", "-3"},
		{"2 * 3.0", "6.0"},
	}

	for _, tt := range tests {
		if got := evalStr(t, in, tt.src).String(); got != tt.want {
			t.Errorf("eval(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	in, _ := newTestInterp()
	v := evalStr(t, in, "5 / 0")
	if v.Kind != KindFloat || !math.IsInf(v.Float, 1) {
		t.Fatalf("5 / 0 = %s, want inf", v.Repr())
	}
}

func TestEvalStringCoercion(t *testing.T) {
	in, _ := newTestInterp()

	tests := []struct {
		src  string
		want string
	}{
		{`"count: " + 3`, "count: 3"},
		{`3 + " items"`, "3 items"},
		{`"a" + "b"`, "ab"},
		{`"ab" * 3`, "ababab"},
		{`"v" + 1.5`, "v1.5"},
		{`"is " + true`, "is True"},
	}

	for _, tt := range tests {
		v := evalStr(t, in, tt.src)
		if v.Kind != KindStr || v.Str != tt.want {
			t.Errorf("eval(%q) = %s, want %q", tt.src, v.Repr(), tt.want)
		}
	}
}

func TestEvalComparisonsAndLogic(t *testing.T) {
	in, _ := newTestInterp()
	in.env.Set("x", Int(5))

	tests := []struct {
		src  string
		want bool
	}{
		{"x == 5", true},
		{"x != 5", false},
		{"x < 10 and x > 1", true},
		{"x < 1 or x > 4", true},
		{"not x == 5", false},
		{`"ell" in "hello"`, true},
		{"3 in [1, 2, 3]", true},
		{"4 in [1, 2, 3]", false},
		{`"a" in {"a": 1}`, true},
		{`"A" < "B"`, true},
	}

	for _, tt := range tests {
		v := evalStr(t, in, tt.src)
		if Truthy(v) != tt.want {
			t.Errorf("eval(%q) = %s, want %v", tt.src, v.Repr(), tt.want)
		}
	}
}

func TestLogicYieldsOperand(t *testing.T) {
	in, _ := newTestInterp()
	if v := evalStr(t, in, `"" or "fallback"`); v.Str != "fallback" {
		t.Errorf("or yielded %s", v.Repr())
	}
	if v := evalStr(t, in, `0 and 5`); v.Kind != KindInt || v.Int != 0 {
		t.Errorf("and yielded %s", v.Repr())
	}
}

func TestEvalCollections(t *testing.T) {
	in, _ := newTestInterp()

	v := evalStr(t, in, "[1, 2, 3][1]")
	if v.Int != 2 {
		t.Errorf("[1,2,3][1] = %s", v.Repr())
	}
	v = evalStr(t, in, "[1, 2, 3][-1]")
	if v.Int != 3 {
		t.Errorf("negative index = %s", v.Repr())
	}
	v = evalStr(t, in, `{"a": 1, "b": 2}["b"]`)
	if v.Int != 2 {
		t.Errorf("dict index = %s", v.Repr())
	}
	v = evalStr(t, in, `@list[1, 2] + [3]`)
	if v.String() != "[1, 2, 3]" {
		t.Errorf("list concat = %s", v.Repr())
	}
	v = evalStr(t, in, `"head"[0]`)
	if v.Str != "h" {
		t.Errorf("str index = %s", v.Repr())
	}
}

func TestEvalTypeConstructors(t *testing.T) {
	in, _ := newTestInterp()

	tests := []struct {
		src  string
		want string
	}{
		{`@int("42")`, "42"},
		{"@int(3.9)", "3"},
		{"@float(2)", "2.0"},
		{"@str(14.0)", "14.0"},
		{"@bool(0)", "False"},
		{`@list("ab")`, "['a', 'b']"},
	}

	for _, tt := range tests {
		if got := evalStr(t, in, tt.src).String(); got != tt.want {
			t.Errorf("eval(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}

	if _, err := in.evalSource(`@int("nope")`, 1); err == nil {
		t.Error("expected error converting non-numeric string")
	}
}

func TestEvalAttrFallback(t *testing.T) {
	in, _ := newTestInterp()

	// Unresolved dotted chains evaluate to their own source text.
	v := evalStr(t, in, "Color.Red")
	if v.Kind != KindStr || v.Str != "Color.Red" {
		t.Fatalf("unresolved chain = %s, want the raw text", v.Repr())
	}

	// A resolvable base still errors on a missing attribute of a struct
	// chain mid-path, falling back to the raw text.
	inst := NewInstance("P")
	inst.SetField("x", Int(1))
	in.env.Set("p", StructVal(inst))
	v = evalStr(t, in, "p.missing")
	if v.Kind != KindStr || v.Str != "p.missing" {
		t.Fatalf("missing field = %s, want raw text", v.Repr())
	}
	if evalStr(t, in, "p.x").Int != 1 {
		t.Fatal("field access broken")
	}
}

func TestEvalFString(t *testing.T) {
	in, _ := newTestInterp()
	in.env.Set("name", Str("gul"))
	in.env.Set("n", Int(3))

	tests := []struct {
		src  string
		want string
	}{
		{`f"hello {name}!"`, "hello gul!"},
		{`f"{n} + {n} = {n + n}"`, "3 + 3 = 6"},
		{`f"{{literal}}"`, "{literal}"},
		{`f"plain"`, "plain"},
	}

	for _, tt := range tests {
		v := evalStr(t, in, tt.src)
		if v.Str != tt.want {
			t.Errorf("eval(%q) = %q, want %q", tt.src, v.Str, tt.want)
		}
	}
}

func TestEvalBuiltins(t *testing.T) {
	in, out := newTestInterp()

	if v := evalStr(t, in, `len("hello")`); v.Int != 5 {
		t.Errorf("len = %s", v.Repr())
	}
	if v := evalStr(t, in, "len([1, 2])"); v.Int != 2 {
		t.Errorf("len list = %s", v.Repr())
	}
	if v := evalStr(t, in, "range(3)"); v.String() != "[0, 1, 2]" {
		t.Errorf("range(3) = %s", v.String())
	}
	if v := evalStr(t, in, "range(1, 7, 2)"); v.String() != "[1, 3, 5]" {
		t.Errorf("range(1,7,2) = %s", v.String())
	}

	evalStr(t, in, `print("a", 1, 2.0)`)
	if out.String() != "a 1 2.0\n" {
		t.Errorf("print wrote %q", out.String())
	}
}

func TestEvalStrMethods(t *testing.T) {
	in, _ := newTestInterp()

	tests := []struct {
		src  string
		want string
	}{
		{`"  pad  ".strip()`, "pad"},
		{`"a,b,c".split(",")`, "['a', 'b', 'c']"},
		{`"-".join(["x", "y"])`, "x-y"},
		{`"hello".upper()`, "HELLO"},
		{`"hello".replace("l", "L")`, "heLLo"},
		{`"hello".startswith("he")`, "True"},
		{`"hello".find("ll")`, "2"},
		{`"123".isdigit()`, "True"},
		{`"12a".isdigit()`, "False"},
	}

	for _, tt := range tests {
		if got := evalStr(t, in, tt.src).String(); got != tt.want {
			t.Errorf("eval(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestEvalListDictMethods(t *testing.T) {
	in, _ := newTestInterp()
	in.env.Set("xs", ListOf(Int(1), Int(2)))

	evalStr(t, in, "xs.append(3)")
	evalStr(t, in, "xs.add(4)") // legacy alias
	if v, _ := in.env.Get("xs"); v.String() != "[1, 2, 3, 4]" {
		t.Fatalf("append/add: %s", v.String())
	}
	if v := evalStr(t, in, "xs.pop()"); v.Int != 4 {
		t.Errorf("pop = %s", v.Repr())
	}
	if v := evalStr(t, in, "xs.index(2)"); v.Int != 1 {
		t.Errorf("index = %s", v.Repr())
	}

	d := NewDict()
	_ = d.Set(Str("k"), Int(7))
	in.env.Set("d", DictVal(d))
	if v := evalStr(t, in, `d.get("k")`); v.Int != 7 {
		t.Errorf("get = %s", v.Repr())
	}
	if v := evalStr(t, in, `d.get("nope", 0)`); v.Int != 0 {
		t.Errorf("get default = %s", v.Repr())
	}
	if v := evalStr(t, in, "d.keys()"); v.String() != "['k']" {
		t.Errorf("keys = %s", v.String())
	}
}

func TestEvalUndefined(t *testing.T) {
	in, _ := newTestInterp()
	_, err := in.evalSource("nosuch", 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "undefined name") {
		t.Errorf("error = %v", err)
	}
	var re *RuntimeError
	if !errorsAs(err, &re) || re.Line != 3 {
		t.Errorf("line not carried: %v", err)
	}
}

func errorsAs(err error, target **RuntimeError) bool {
	re, ok := err.(*RuntimeError)
	if ok {
		*target = re
	}
	return ok
}

func TestSysArgv(t *testing.T) {
	in := New([]string{"build.mn", "-v"})
	var buf bytes.Buffer
	in.SetOutput(&buf)

	if v := evalStr(t, in, "sys.argv"); v.String() != "['build.mn', '-v']" {
		t.Errorf("sys.argv = %s", v.String())
	}
	if v := evalStr(t, in, "sys.argv[0]"); v.Str != "build.mn" {
		t.Errorf("sys.argv[0] = %s", v.Repr())
	}
	if v := evalStr(t, in, "len(sys.argv)"); v.Int != 2 {
		t.Errorf("len(sys.argv) = %s", v.Repr())
	}
}
