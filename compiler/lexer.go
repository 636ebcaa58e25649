package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for GUL expressions
// ---------------------------------------------------------------------------

// Lexer tokenizes a single GUL expression.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}

	pos := l.pos

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos, EndPos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos, EndPos: l.pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos, EndPos: l.pos}

	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos, EndPos: l.pos}

	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos, EndPos: l.pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos, EndPos: l.pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos, EndPos: l.pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos, EndPos: l.pos}

	case l.ch == ':':
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Pos: pos, EndPos: l.pos}

	case l.ch == '.' && !isDigit(l.peekChar()):
		l.readChar()
		return Token{Type: TokenDot, Literal: ".", Pos: pos, EndPos: l.pos}

	case l.ch == '+':
		l.readChar()
		return Token{Type: TokenPlus, Literal: "+", Pos: pos, EndPos: l.pos}

	case l.ch == '-':
		l.readChar()
		return Token{Type: TokenMinus, Literal: "-", Pos: pos, EndPos: l.pos}

	case l.ch == '*':
		l.readChar()
		return Token{Type: TokenStar, Literal: "*", Pos: pos, EndPos: l.pos}

	case l.ch == '/':
		l.readChar()
		return Token{Type: TokenSlash, Literal: "/", Pos: pos, EndPos: l.pos}

	case l.ch == '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return Token{Type: TokenOr, Literal: "||", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenError, Literal: "unexpected character: |", Pos: pos, EndPos: l.pos}

	case l.ch == '&':
		l.readChar()
		if l.ch == '&' {
			l.readChar()
			return Token{Type: TokenAnd, Literal: "&&", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenError, Literal: "unexpected character: &", Pos: pos, EndPos: l.pos}

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenEq, Literal: "==", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenError, Literal: "unexpected character: =", Pos: pos, EndPos: l.pos}

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenNe, Literal: "!=", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenError, Literal: "unexpected character: !", Pos: pos, EndPos: l.pos}

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenLe, Literal: "<=", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenLt, Literal: "<", Pos: pos, EndPos: l.pos}

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenGe, Literal: ">=", Pos: pos, EndPos: l.pos}
		}
		return Token{Type: TokenGt, Literal: ">", Pos: pos, EndPos: l.pos}

	case l.ch == '@':
		return l.readAtToken(pos)

	case l.ch == '"' || l.ch == '\'':
		return l.readString(pos)

	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifierOrKeyword(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: "unexpected character: " + string(ch), Pos: pos, EndPos: l.pos}
	}
}

// readAtToken reads a type/collection sigil like @list or @int.
func (l *Lexer) readAtToken(pos int) Token {
	l.readChar() // consume @
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.pos == start {
		return Token{Type: TokenError, Literal: "bare @ sigil", Pos: pos, EndPos: l.pos}
	}
	return Token{Type: TokenAt, Literal: l.input[start:l.pos], Pos: pos, EndPos: l.pos}
}

// readString reads a quoted string literal, decoding escape sequences.
func (l *Lexer) readString(pos int) Token {
	quote := l.ch
	l.readChar() // consume opening quote

	var sb strings.Builder
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '\'', '"':
				sb.WriteRune(l.ch)
			case 0:
				return Token{Type: TokenError, Literal: "unterminated string", Pos: pos, EndPos: l.pos}
			default:
				// Unknown escape passes through verbatim.
				sb.WriteByte('\\')
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch != quote {
		return Token{Type: TokenError, Literal: "unterminated string", Pos: pos, EndPos: l.pos}
	}
	l.readChar() // consume closing quote

	return Token{Type: TokenString, Literal: sb.String(), Pos: pos, EndPos: l.pos}
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(pos int) Token {
	start := l.pos
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' && !isLetter(l.peekChar()) && l.peekChar() != '_' && l.peekChar() != '(' {
		// "1." style float; "1.field" stays an int followed by attribute access
		isFloat = true
		l.readChar()
	}

	if l.ch == 'e' || l.ch == 'E' {
		if isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	typ := TokenInt
	if isFloat {
		typ = TokenFloat
	}
	return Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos, EndPos: l.pos}
}

// readIdentifierOrKeyword reads an identifier or a word operator. Word
// operators (or/and/not/in) only count at identifier boundaries, which the
// maximal-munch scan gives us for free.
func (l *Lexer) readIdentifierOrKeyword(pos int) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	if literal == "f" && (l.ch == '"' || l.ch == '\'') {
		tok := l.readString(pos)
		if tok.Type == TokenString {
			tok.Type = TokenFString
		}
		return tok
	}
	if typ, ok := reservedWords[literal]; ok {
		return Token{Type: typ, Literal: literal, Pos: pos, EndPos: l.pos}
	}
	return Token{Type: TokenIdent, Literal: literal, Pos: pos, EndPos: l.pos}
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
