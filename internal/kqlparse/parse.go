// Package kqlparse implements the KQL recursive-descent parser. Token
// consumption/lookahead follows a next/peek/backup shape over a single-token
// lookahead; each production builds an internal/ast.Query node directly
// rather than compiling to an intermediate evaluation form. The production
// breakdown (parseOr/parseAnd/parseNot/parseSubQuery/parseExpression)
// follows a standard PEG-style precedence-climbing grammar.
package kqlparse

import (
	"fmt"

	"github.com/kqldsl/kuery/internal/ast"
	"github.com/kqldsl/kuery/internal/kqllex"
)

// Parse parses src as a KQL query and returns its Query AST, or a
// *ast.DecodeError. Parse succeeds on any well-formed input, including the
// empty string (which parses to MatchAll).
func Parse(src string) (ast.Query, error) {
	p := &parser{lex: kqllex.New(src)}
	defer p.lex.Drain()

	q := p.parseTop()
	if p.err != nil {
		return nil, p.err
	}
	return q, nil
}

type parser struct {
	lex      *kqllex.Lexer
	lookhead *kqllex.Token
	err      *ast.DecodeError
}

func (p *parser) next() kqllex.Token {
	var tok kqllex.Token
	if p.lookhead != nil {
		tok = *p.lookhead
		p.lookhead = nil
	} else {
		tok = p.lex.NextToken()
	}
	if tok.Type == kqllex.TokError && p.err == nil {
		p.err = ast.NewDecodeError(tok.Pos, "%s", tok.Val)
	}
	return tok
}

func (p *parser) peek() kqllex.Token {
	if p.lookhead != nil {
		return *p.lookhead
	}
	tok := p.lex.NextToken()
	p.lookhead = &tok
	if tok.Type == kqllex.TokError && p.err == nil {
		p.err = ast.NewDecodeError(tok.Pos, "%s", tok.Val)
	}
	return tok
}

func (p *parser) fail(pos ast.Position, format string, args ...interface{}) ast.Query {
	if p.err == nil {
		p.err = ast.NewDecodeError(pos, format, args...)
	}
	return nil
}

func describe(t kqllex.Token) string {
	if t.Type == kqllex.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Val)
}

// parseTop parses the whole input, special-casing empty/whitespace-only
// source to MatchAll.
func (p *parser) parseTop() ast.Query {
	if p.peek().Type == kqllex.TokEOF {
		return &ast.MatchAll{Pos: toPos(p.peek())}
	}
	q := p.parseOr()
	if p.err != nil {
		return nil
	}
	tok := p.next()
	if tok.Type != kqllex.TokEOF {
		return p.fail(tok.Pos, "expected end of input, got %s", describe(tok))
	}
	return q
}

func toPos(t kqllex.Token) ast.Position { return t.Pos }

// parseOr implements: or_query := and_query ( OR and_query )*
func (p *parser) parseOr() ast.Query {
	left := p.parseAnd()
	if p.err != nil {
		return nil
	}
	for p.peek().Type == kqllex.TokKwOr {
		p.next()
		right := p.parseAnd()
		if p.err != nil {
			return nil
		}
		left = ast.Or(left, right)
	}
	return left
}

// parseAnd implements: and_query := not_query ( AND not_query )*
func (p *parser) parseAnd() ast.Query {
	left := p.parseNot()
	if p.err != nil {
		return nil
	}
	for p.peek().Type == kqllex.TokKwAnd {
		p.next()
		right := p.parseNot()
		if p.err != nil {
			return nil
		}
		left = ast.And(left, right)
	}
	return left
}

// parseNot implements: not_query := NOT not_query | sub_query
func (p *parser) parseNot() ast.Query {
	if p.peek().Type == kqllex.TokKwNot {
		p.next()
		inner := p.parseNot()
		if p.err != nil {
			return nil
		}
		return ast.Not(inner)
	}
	return p.parseSubQuery()
}

// parseSubQuery implements: sub_query := '(' query ')' | expression
func (p *parser) parseSubQuery() ast.Query {
	if p.peek().Type == kqllex.TokLParen {
		p.next()
		q := p.parseOr()
		if p.err != nil {
			return nil
		}
		closeTok := p.next()
		if closeTok.Type != kqllex.TokRParen {
			return p.fail(closeTok.Pos, "expected ')', got %s", describe(closeTok))
		}
		return q
	}
	return p.parseExpression()
}

func isValueTok(t kqllex.TokenType) bool {
	switch t {
	case kqllex.TokLiteral, kqllex.TokQuoted, kqllex.TokWildcard:
		return true
	default:
		return false
	}
}

// parseExpression implements: expression := field_exp | value_exp
//
// Both productions start with a literal/quoted/wildcard token; the
// following token (':' , a range operator, or anything else) decides which
// one this is.
func (p *parser) parseExpression() ast.Query {
	tok := p.next()
	if !isValueTok(tok.Type) {
		return p.fail(tok.Pos, "expecting a field name, value, 'not', or '('; got %s", describe(tok))
	}

	switch p.peek().Type {
	case kqllex.TokColon:
		p.next()
		return p.parseFieldValue(tok)
	case kqllex.TokOpLt, kqllex.TokOpLe, kqllex.TokOpGt, kqllex.TokOpGe:
		opTok := p.next()
		return p.parseRangeValue(tok, opTok.Type)
	default:
		return p.parseBareValue(tok)
	}
}

// parseFieldValue implements field_exp's tail: ':' ( list_value | value ),
// given the already-consumed field token.
func (p *parser) parseFieldValue(fieldTok kqllex.Token) ast.Query {
	field := fieldTok.Val

	if p.peek().Type == kqllex.TokLBrace {
		p.next()
		inner := p.parseOr()
		if p.err != nil {
			return nil
		}
		closeTok := p.next()
		if closeTok.Type != kqllex.TokRBrace {
			return p.fail(closeTok.Pos, "expected '}', got %s", describe(closeTok))
		}
		return ast.NewNested(field, prefixFields(inner, field), "none", fieldTok.Pos)
	}

	switch p.peek().Type {
	case kqllex.TokOpLt, kqllex.TokOpLe, kqllex.TokOpGt, kqllex.TokOpGe:
		opTok := p.next()
		return p.parseRangeValue(fieldTok, opTok.Type)
	}

	valTok := p.next()
	switch valTok.Type {
	case kqllex.TokQuoted:
		return &ast.MatchPhrase{Field: field, Value: valTok.Val, Pos: fieldTok.Pos}
	case kqllex.TokWildcard:
		return &ast.Wildcard{Field: field, Value: valTok.Val, Pos: fieldTok.Pos}
	case kqllex.TokLiteral:
		return &ast.Match{Field: field, Value: valTok.Val, Operator: ast.OperatorOr, Pos: fieldTok.Pos}
	default:
		return p.fail(valTok.Pos, "expected a field value, got %s", describe(valTok))
	}
}

// parseBareValue implements value_exp for a field-less expression.
func (p *parser) parseBareValue(tok kqllex.Token) ast.Query {
	switch tok.Type {
	case kqllex.TokQuoted:
		return &ast.MatchPhrase{Field: "*", Value: tok.Val, Pos: tok.Pos}
	case kqllex.TokWildcard:
		return &ast.QueryString{Value: tok.Val, Pos: tok.Pos}
	default: // TokLiteral
		return &ast.Match{Field: "*", Value: tok.Val, Operator: ast.OperatorOr, Pos: tok.Pos}
	}
}

// parseRangeValue implements range_value, given the already-consumed field
// and range-operator tokens.
func (p *parser) parseRangeValue(fieldTok kqllex.Token, op kqllex.TokenType) ast.Query {
	field := fieldTok.Val
	valTok := p.next()
	if !isValueTok(valTok.Type) {
		return p.fail(valTok.Pos, "expected a value after range operator, got %s", describe(valTok))
	}
	if valTok.Type == kqllex.TokWildcard {
		return p.fail(valTok.Pos, "cannot use a wildcard in a range value")
	}

	bound := valTok.Val
	var gt, gte, lt, lte *string
	switch op {
	case kqllex.TokOpGt:
		gt = &bound
	case kqllex.TokOpGe:
		gte = &bound
	case kqllex.TokOpLt:
		lt = &bound
	case kqllex.TokOpLe:
		lte = &bound
	}
	return ast.NewRange(field, gt, gte, lt, lte, nil, fieldTok.Pos)
}
