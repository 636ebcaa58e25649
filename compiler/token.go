package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the GUL expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInt     // 42
	TokenFloat   // 3.14, 1.5e10
	TokenString  // "hello", 'hello'
	TokenFString // f"x = {x}" (literal holds the body, braces unexpanded)
	TokenIdent   // foo, Bar
	TokenAt      // @list, @dict, @int, ... (literal holds the name)

	// Operators
	TokenOr  // ||, or
	TokenAnd // &&, and
	TokenNot // not
	TokenIn  // in
	TokenEq  // ==
	TokenNe  // !=
	TokenLe  // <=
	TokenGe  // >=
	TokenLt  // <
	TokenGt  // >
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash

	// Delimiters
	TokenDot
	TokenComma
	TokenColon
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace

	// Reserved identifiers
	TokenTrue
	TokenFalse
	TokenNone
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenInt:      "INT",
	TokenFloat:    "FLOAT",
	TokenString:   "STRING",
	TokenFString:  "FSTRING",
	TokenIdent:    "IDENTIFIER",
	TokenAt:       "@",
	TokenOr:       "or",
	TokenAnd:      "and",
	TokenNot:      "not",
	TokenIn:       "in",
	TokenEq:       "==",
	TokenNe:       "!=",
	TokenLe:       "<=",
	TokenGe:       ">=",
	TokenLt:       "<",
	TokenGt:       ">",
	TokenPlus:     "+",
	TokenMinus:    "-",
	TokenStar:     "*",
	TokenSlash:    "/",
	TokenDot:      ".",
	TokenComma:    ",",
	TokenColon:    ":",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenLBrace:   "{",
	TokenRBrace:   "}",
	TokenTrue:     "true",
	TokenFalse:    "false",
	TokenNone:     "None",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string // the raw text (strings: decoded content)
	Pos     int    // byte offset of the token start
	EndPos  int    // byte offset just past the token
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types. Both Python-style and
// lowercase boolean spellings are accepted.
var reservedWords = map[string]TokenType{
	"or":    TokenOr,
	"and":   TokenAnd,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"True":  TokenTrue,
	"false": TokenFalse,
	"False": TokenFalse,
	"None":  TokenNone,
}
