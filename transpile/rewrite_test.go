package transpile

import (
	"strings"
	"testing"
)

func lines(ss ...string) string { return strings.Join(ss, "\n") }

func TestRewriteStruct(t *testing.T) {
	src := lines(
		"struct Point:",
		"    x: @int",
		"    y: @int",
	)
	want := lines(
		"#[derive(Debug, Clone, PartialEq)]",
		"pub struct Point {",
		"    pub x: i64,",
		"    pub y: i64,",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(struct) = %q, want %q", got, want)
	}
}

func TestRewriteEnum(t *testing.T) {
	src := lines(
		"enum Shape:",
		"    Circle(@float)",
		"    Square",
	)
	want := lines(
		"#[derive(Debug, Clone, PartialEq)]",
		"pub enum Shape {",
		"    Circle(f64),",
		"    Square,",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(enum) = %q, want %q", got, want)
	}
}

func TestRewriteFunction(t *testing.T) {
	src := lines(
		"fn add(a: @int, b: @int) -> @int:",
		"    return a + b",
	)
	want := lines(
		"fn add(a: i64, b: i64) -> i64 {",
		"    return a + b;",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(fn) = %q, want %q", got, want)
	}
}

func TestRewriteImplReceivers(t *testing.T) {
	src := lines(
		"impl Point:",
		"    fn norm(self) -> @float:",
		"        return x",
		"    fn shift(ref self, dx: @int):",
		"        x = x + dx",
	)
	want := lines(
		"impl Point {",
		"    fn norm(&self) -> f64 {",
		"        return x;",
		"    }",
		"    fn shift(&mut self, dx: i64) {",
		"        x = x + dx;",
		"    }",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(impl) = %q, want %q", got, want)
	}
}

func TestRewriteMain(t *testing.T) {
	src := lines(
		"mn:",
		"    let x = 5",
		"    print(f\"x = {x}\")",
	)
	want := lines(
		"fn main() {",
		"    let x = 5;",
		"    println!(\"{}\", format!(\"x = {}\", x));",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(main) = %q, want %q", got, want)
	}
}

func TestRewriteDeclarations(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x = 5", "let x = 5;"},
		{"var n = 0", "let mut n = 0;"},
		{"let xs: @list[@int] = @list[]", "let xs: Vec<i64> = vec![];"},
		{"var m: @dict[@str, @int] = @dict{}", "let mut m: HashMap<String, i64> = dict!{};"},
		{"let s: @str = \"hi\"", "let s: String = \"hi\";"},
		{"let n = @int(x)", "let n = (x as i64);"},
		{"let f = @float(n)", "let f = (n as f64);"},
		{"let t = @str(n)", "let t = format!(\"{}\", n);"},
	}
	for _, tt := range tests {
		if got := Rewrite(tt.input); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRewriteControlFlow(t *testing.T) {
	src := lines(
		"if x > 1:",
		"    print(x)",
		"elif x == 1:",
		"    y = 2",
		"else:",
		"    pass",
	)
	want := lines(
		"if x > 1 {",
		"    println!(\"{}\", x);",
		"}",
		"else if x == 1 {",
		"    y = 2;",
		"}",
		"else {",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(if) = %q, want %q", got, want)
	}
}

func TestRewriteWordOperators(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ok = a and not b or c", "ok = a && !b || c;"},
		{"x = None", "x = Option::None;"},
		{"while not done:", "while !done {\n}"},
	}
	for _, tt := range tests {
		if got := Rewrite(tt.input); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRewriteStringsUntouched(t *testing.T) {
	src := "msg = \"a and b or not c\""
	want := "msg = \"a and b or not c\";"
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(%q) = %q, want %q", src, got, want)
	}
}

func TestRewriteForRange(t *testing.T) {
	src := lines(
		"for i in range(10):",
		"    print(i)",
	)
	want := lines(
		"for i in 0..10 {",
		"    println!(\"{}\", i);",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(for) = %q, want %q", got, want)
	}

	src2 := "for i in range(2, 8):\n    pass"
	if got := Rewrite(src2); !strings.Contains(got, "for i in 2..8 {") {
		t.Errorf("Rewrite(range two-arg) = %q, want 2..8 header", got)
	}
}

func TestRewriteMatch(t *testing.T) {
	src := lines(
		"match c:",
		"    Color.Red => print(\"r\")",
		"    Color.Green =>",
		"        print(\"g\")",
		"    _ => pass",
	)
	want := lines(
		"match c {",
		"    Color::Red => println!(\"{}\", \"r\"),",
		"    Color::Green => {",
		"        println!(\"{}\", \"g\");",
		"    },",
		"    _ => {},",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(match) = %q, want %q", got, want)
	}
}

func TestRewriteImports(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@imp lexer.token", "use crate::lexer::token::*;"},
		{"@imp std.collections", "use std::collections;"},
	}
	for _, tt := range tests {
		if got := Rewrite(tt.input); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRewriteComments(t *testing.T) {
	src := lines(
		"# standalone",
		"let a = 1  # trailing",
	)
	want := lines(
		"// standalone",
		"let a = 1; // trailing",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(comments) = %q, want %q", got, want)
	}
}

func TestRewriteTryCatch(t *testing.T) {
	src := lines(
		"try:",
		"    risky()",
		"catch e:",
		"    print(e)",
	)
	got := Rewrite(src)
	if !strings.Contains(got, "risky();") {
		t.Errorf("Rewrite(try) = %q, want try body kept", got)
	}
	if !strings.Contains(got, "// catch e:") || !strings.Contains(got, "/*") {
		t.Errorf("Rewrite(try) = %q, want catch body commented out", got)
	}
}

func TestRewriteMethodRenames(t *testing.T) {
	src := "xs.add(1)"
	want := "xs.push(1);"
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(%q) = %q, want %q", src, got, want)
	}
}

func TestRewriteMultiLineCall(t *testing.T) {
	src := lines(
		"total = sum(",
		"    a,",
		"    b)",
	)
	want := lines(
		"total = sum(",
		"    a,",
		"    b);",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(continuation) = %q, want %q", got, want)
	}
}

func TestRewriteExplicitBraceConsumed(t *testing.T) {
	src := lines(
		"mn:",
		"    let x = 1",
		"}",
	)
	want := lines(
		"fn main() {",
		"    let x = 1;",
		"}",
	)
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(explicit brace) = %q, want %q", got, want)
	}
}

func TestMapAnnotation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@int", "i64"},
		{"@float", "f64"},
		{"@str", "String"},
		{"@bool", "bool"},
		{"@list[@str]", "Vec<String>"},
		{"@list[@list[@int]]", "Vec<Vec<i64>>"},
		{"@dict[@str, @int]", "HashMap<String, i64>"},
		{"@set[@int]", "HashSet<i64>"},
		{"@list", "Vec<String>"},
		{"Token", "Token"},
		{"Option[@int]", "Option[i64]"},
	}
	for _, tt := range tests {
		if got := mapAnnotation(tt.input); got != tt.want {
			t.Errorf("mapAnnotation(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatMacroEscapes(t *testing.T) {
	got := convertFStrings(`f"{{literal}} {x}"`)
	want := `format!("{{literal}} {}", x)`
	if got != want {
		t.Errorf("convertFStrings escapes = %q, want %q", got, want)
	}
}

func TestPrintCallMultipleArgs(t *testing.T) {
	src := "print(a, b)"
	want := "println!(\"{} {}\", a, b);"
	if got := Rewrite(src); got != want {
		t.Errorf("Rewrite(%q) = %q, want %q", src, got, want)
	}
}
