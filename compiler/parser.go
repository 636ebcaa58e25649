package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: precedence-climbing parser for GUL expressions
// ---------------------------------------------------------------------------
//
// Five binary tiers, lowest binding first: or < and < comparison/in <
// additive < multiplicative. All binary operators associate left. Unary
// not/- bind tighter than any binary operator; calls, indexing and
// attribute access bind tightest.

// Parser parses a single GUL expression into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []string
	input     string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken.Type)
	return false
}

// errorf records a parse error.
func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// ParseExpression parses src as a single complete expression. Trailing
// tokens are an error: expression evaluation fails loudly rather than
// guessing.
func ParseExpression(src string) (Expr, error) {
	p := NewParser(src)
	expr := p.parseExpr(1)
	if expr == nil || len(p.errors) > 0 {
		if len(p.errors) == 0 {
			return nil, fmt.Errorf("cannot parse expression %q", src)
		}
		return nil, errors.New(strings.Join(p.errors, "; "))
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, fmt.Errorf("unexpected %s after expression in %q", p.curToken, src)
	}
	return expr, nil
}

// Binary precedence tiers.
func precedence(t TokenType) int {
	switch t {
	case TokenOr:
		return 1
	case TokenAnd:
		return 2
	case TokenEq, TokenNe, TokenLe, TokenGe, TokenLt, TokenGt, TokenIn:
		return 3
	case TokenPlus, TokenMinus:
		return 4
	case TokenStar, TokenSlash:
		return 5
	}
	return 0
}

// parseExpr parses binary expressions at or above minPrec, left-associative.
func (p *Parser) parseExpr(minPrec int) Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		prec := precedence(p.curToken.Type)
		if prec == 0 || prec < minPrec {
			return left
		}
		op := p.curToken.Type
		p.nextToken()
		right := p.parseExpr(prec + 1)
		if right == nil {
			return nil
		}
		left = &Binary{PosVal: left.Pos(), EndVal: right.End(), Op: op, L: left, R: right}
	}
}

// parseUnary parses prefix not/- chains.
func (p *Parser) parseUnary() Expr {
	switch p.curToken.Type {
	case TokenNot, TokenMinus:
		op := p.curToken.Type
		pos := p.curToken.Pos
		p.nextToken()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &Unary{PosVal: pos, EndVal: x.End(), Op: op, X: x}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any number of calls, subscripts
// and attribute accesses.
func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	if x == nil {
		return nil
	}

	for {
		switch p.curToken.Type {
		case TokenLParen:
			p.nextToken()
			args := p.parseExprList(TokenRParen)
			end := p.curToken.EndPos
			if !p.expect(TokenRParen) {
				return nil
			}
			x = &Call{PosVal: x.Pos(), EndVal: end, Fn: x, Args: args}

		case TokenLBracket:
			p.nextToken()
			idx := p.parseExpr(1)
			if idx == nil {
				return nil
			}
			end := p.curToken.EndPos
			if !p.expect(TokenRBracket) {
				return nil
			}
			x = &Index{PosVal: x.Pos(), EndVal: end, X: x, Idx: idx}

		case TokenDot:
			p.nextToken()
			if !p.curTokenIs(TokenIdent) {
				p.errorf("expected attribute name after '.', got %s", p.curToken.Type)
				return nil
			}
			x = &Attr{PosVal: x.Pos(), EndVal: p.curToken.EndPos, X: x, Name: p.curToken.Literal}
			p.nextToken()

		default:
			return x
		}
	}
}

// parsePrimary parses literals, identifiers, grouped expressions, list and
// dict literals, struct construction and @-sigil forms.
func (p *Parser) parsePrimary() Expr {
	tok := p.curToken

	switch tok.Type {
	case TokenInt:
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("bad integer literal %q", tok.Literal)
			return nil
		}
		p.nextToken()
		return &IntLit{PosVal: tok.Pos, EndVal: tok.EndPos, Value: v}

	case TokenFloat:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("bad float literal %q", tok.Literal)
			return nil
		}
		p.nextToken()
		return &FloatLit{PosVal: tok.Pos, EndVal: tok.EndPos, Value: v}

	case TokenString:
		p.nextToken()
		return &StrLit{PosVal: tok.Pos, EndVal: tok.EndPos, Value: tok.Literal}

	case TokenFString:
		p.nextToken()
		return &FStrLit{PosVal: tok.Pos, EndVal: tok.EndPos, Value: tok.Literal}

	case TokenTrue, TokenFalse:
		p.nextToken()
		return &BoolLit{PosVal: tok.Pos, EndVal: tok.EndPos, Value: tok.Type == TokenTrue}

	case TokenNone:
		p.nextToken()
		return &NoneLit{PosVal: tok.Pos, EndVal: tok.EndPos}

	case TokenIdent:
		p.nextToken()
		// An identifier directly followed by '{' is struct construction;
		// dict literals must start with '{' or @dict{.
		if p.curTokenIs(TokenLBrace) {
			return p.parseStructLit(tok)
		}
		return &Ident{PosVal: tok.Pos, EndVal: tok.EndPos, Name: tok.Literal}

	case TokenLParen:
		p.nextToken()
		inner := p.parseExpr(1)
		if inner == nil {
			return nil
		}
		if !p.expect(TokenRParen) {
			return nil
		}
		return inner

	case TokenLBracket:
		p.nextToken()
		elems := p.parseExprList(TokenRBracket)
		end := p.curToken.EndPos
		if !p.expect(TokenRBracket) {
			return nil
		}
		return &ListLit{PosVal: tok.Pos, EndVal: end, Elems: elems}

	case TokenLBrace:
		return p.parseDictLit(tok.Pos, false)

	case TokenAt:
		return p.parseAtForm(tok)

	default:
		p.errorf("unexpected %s", tok)
		return nil
	}
}

// parseAtForm parses @list[...], @dict{...} and @type(...) constructors.
func (p *Parser) parseAtForm(tok Token) Expr {
	p.nextToken()

	switch {
	case tok.Literal == "list" && p.curTokenIs(TokenLBracket):
		p.nextToken()
		elems := p.parseExprList(TokenRBracket)
		end := p.curToken.EndPos
		if !p.expect(TokenRBracket) {
			return nil
		}
		return &ListLit{PosVal: tok.Pos, EndVal: end, Elems: elems, AtForm: true}

	case tok.Literal == "dict" && p.curTokenIs(TokenLBrace):
		return p.parseDictLit(tok.Pos, true)

	case p.curTokenIs(TokenLParen):
		p.nextToken()
		var arg Expr
		if !p.curTokenIs(TokenRParen) {
			arg = p.parseExpr(1)
			if arg == nil {
				return nil
			}
		}
		end := p.curToken.EndPos
		if !p.expect(TokenRParen) {
			return nil
		}
		return &TypeConv{PosVal: tok.Pos, EndVal: end, Name: tok.Literal, Arg: arg}

	default:
		p.errorf("unexpected @%s form", tok.Literal)
		return nil
	}
}

// parseDictLit parses {key: value, ...}; the opening brace is the current
// token.
func (p *Parser) parseDictLit(pos int, atForm bool) Expr {
	p.nextToken() // consume {

	var keys, values []Expr
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		k := p.parseExpr(1)
		if k == nil {
			return nil
		}
		if !p.expect(TokenColon) {
			return nil
		}
		v := p.parseExpr(1)
		if v == nil {
			return nil
		}
		keys = append(keys, k)
		values = append(values, v)

		if p.curTokenIs(TokenComma) {
			p.nextToken()
		} else {
			break
		}
	}
	end := p.curToken.EndPos
	if !p.expect(TokenRBrace) {
		return nil
	}
	return &DictLit{PosVal: pos, EndVal: end, Keys: keys, Values: values, AtForm: atForm}
}

// parseStructLit parses Name{field: expr, ...}; name has been consumed and
// the current token is '{'.
func (p *Parser) parseStructLit(name Token) Expr {
	p.nextToken() // consume {

	var fields []FieldInit
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		if !p.curTokenIs(TokenIdent) {
			p.errorf("expected field name in %s{...}, got %s", name.Literal, p.curToken.Type)
			return nil
		}
		fname := p.curToken.Literal
		p.nextToken()
		if !p.expect(TokenColon) {
			return nil
		}
		v := p.parseExpr(1)
		if v == nil {
			return nil
		}
		fields = append(fields, FieldInit{Name: fname, Value: v})

		if p.curTokenIs(TokenComma) {
			p.nextToken()
		} else {
			break
		}
	}
	end := p.curToken.EndPos
	if !p.expect(TokenRBrace) {
		return nil
	}
	return &StructLit{PosVal: name.Pos, EndVal: end, Name: name.Literal, Fields: fields}
}

// parseExprList parses a comma-separated list of expressions up to (not
// consuming) the terminator.
func (p *Parser) parseExprList(term TokenType) []Expr {
	var list []Expr
	for !p.curTokenIs(term) && !p.curTokenIs(TokenEOF) {
		e := p.parseExpr(1)
		if e == nil {
			return list
		}
		list = append(list, e)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
		} else {
			break
		}
	}
	return list
}
