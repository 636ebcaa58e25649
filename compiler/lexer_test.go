package compiler

import "testing"

func TestNextToken(t *testing.T) {
	input := `x + 42 - 3.14 * "hi" / name`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenIdent, "x"},
		{TokenPlus, "+"},
		{TokenInt, "42"},
		{TokenMinus, "-"},
		{TokenFloat, "3.14"},
		{TokenStar, "*"},
		{TokenString, "hi"},
		{TokenSlash, "/"},
		{TokenIdent, "name"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%s, got=%s (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `a == b != c <= d >= e < f > g && h || i`

	expected := []TokenType{
		TokenIdent, TokenEq, TokenIdent, TokenNe, TokenIdent,
		TokenLe, TokenIdent, TokenGe, TokenIdent,
		TokenLt, TokenIdent, TokenGt, TokenIdent,
		TokenAnd, TokenIdent, TokenOr, TokenIdent,
		TokenEOF,
	}

	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"or", TokenOr},
		{"and", TokenAnd},
		{"not", TokenNot},
		{"in", TokenIn},
		{"true", TokenTrue},
		{"True", TokenTrue},
		{"false", TokenFalse},
		{"False", TokenFalse},
		{"None", TokenNone},
		{"truely", TokenIdent},
		{"indent", TokenIdent},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != tt.want {
			t.Errorf("lex(%q) = %s, want %s", tt.input, tok.Type, tt.want)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"say \"hi\""`, `say "hi"`},
		{`'single'`, "single"},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != TokenString {
			t.Errorf("lex(%q): expected string token, got %s", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.want {
			t.Errorf("lex(%q) = %q, want %q", tt.input, tok.Literal, tt.want)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
		lit   string
	}{
		{"0", TokenInt, "0"},
		{"1234", TokenInt, "1234"},
		{"3.14", TokenFloat, "3.14"},
		{"1e5", TokenFloat, "1e5"},
		{"2.5e-3", TokenFloat, "2.5e-3"},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != tt.want || tok.Literal != tt.lit {
			t.Errorf("lex(%q) = %s %q, want %s %q", tt.input, tok.Type, tok.Literal, tt.want, tt.lit)
		}
	}
}

// An integer followed by an attribute access must not lex as a float.
func TestIntDotIdent(t *testing.T) {
	l := NewLexer("1.to_str")
	expected := []TokenType{TokenInt, TokenDot, TokenIdent, TokenEOF}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestAtSigil(t *testing.T) {
	l := NewLexer("@int(x)")
	tok := l.NextToken()
	if tok.Type != TokenAt || tok.Literal != "int" {
		t.Fatalf("expected @int sigil, got %s %q", tok.Type, tok.Literal)
	}
	if tok = l.NextToken(); tok.Type != TokenLParen {
		t.Fatalf("expected '(' after sigil, got %s", tok.Type)
	}
}

func TestBareOperatorsAreErrors(t *testing.T) {
	for _, input := range []string{"=", "!", "|x", "&x"} {
		tok := NewLexer(input).NextToken()
		if tok.Type != TokenError {
			t.Errorf("lex(%q) = %s, want error token", input, tok.Type)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	l := NewLexer("ab + cd")
	a := l.NextToken()
	if a.Pos != 0 || a.EndPos != 2 {
		t.Errorf("first token span = [%d,%d), want [0,2)", a.Pos, a.EndPos)
	}
	l.NextToken() // +
	c := l.NextToken()
	if c.Pos != 5 || c.EndPos != 7 {
		t.Errorf("third token span = [%d,%d), want [5,7)", c.Pos, c.EndPos)
	}
}
