// Package lucene implements the Apache Lucene classical query syntax
// recognizer. It is a structural recognition + escape-hatch design, not a
// full Lucene grammar: it validates balanced quotes/parens/brackets/braces
// and that AND/OR/NOT/&&/|| only appear where a binary operator could
// legally sit, then wraps the original source verbatim in a QueryString
// node for ElasticSearch's own query_string parser to evaluate.
//
// It is scannerless, stepping internal/reader.Reader directly (the same
// cursor the KQL lexer composes) rather than producing a token stream
// first.
package lucene

import (
	"github.com/kqldsl/kuery/internal/ast"
	"github.com/kqldsl/kuery/internal/reader"
)

// Parse validates src as structurally well-formed Lucene syntax and, on
// success, returns it wrapped as ast.QueryString. On structural failure it
// returns a *ast.DecodeError naming the offending position.
func Parse(src string) (ast.Query, error) {
	p := &parser{r: reader.New(src)}
	if err := p.parseExpr(); err != nil {
		return nil, err
	}
	if !p.r.Eof() {
		r, _ := p.r.Peek()
		return nil, p.errAt(p.r.Pos(), "unmatched closing %q", string(r))
	}
	if p.lastKind == kindBinaryOp {
		return nil, p.errAt(p.r.Pos(), "query ends with a dangling binary operator")
	}
	return &ast.QueryString{Value: src}, nil
}

type kind int

const (
	kindStart kind = iota
	kindOperand
	kindBinaryOp
	kindOpen
)

type parser struct {
	r        *reader.Reader
	lastKind kind
}

func (p *parser) errAt(pos reader.Position, format string, args ...interface{}) *ast.DecodeError {
	return ast.NewDecodeError(toASTPos(pos), format, args...)
}

func toASTPos(p reader.Position) ast.Position {
	return ast.Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func (p *parser) skipSpace() {
	p.r.SkipWhitespace()
}

// parseExpr consumes a run of terms, operators, and groups, stopping at
// EOF or at an unmatched closing bracket (left for the caller -- either
// parseGroup, which expects it, or Parse, which reports it as an error).
func (p *parser) parseExpr() error {
	for {
		p.skipSpace()
		r, ok := p.r.Peek()
		if !ok {
			return nil
		}
		switch r {
		case ')', ']', '}':
			return nil
		case '(', '[', '{':
			if err := p.parseGroup(r); err != nil {
				return err
			}
		case '"':
			if err := p.parseQuoted(); err != nil {
				return err
			}
		case '/':
			if err := p.parseRegex(); err != nil {
				return err
			}
		default:
			if err := p.parseWord(); err != nil {
				return err
			}
		}
	}
}

var closeFor = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// parseGroup consumes a bracketed sub-expression. Lucene range syntax
// ("[a TO b]", "{a TO b}") uses the same bracket characters as grouping, so
// balance-checking covers both without distinguishing them.
func (p *parser) parseGroup(open rune) error {
	openPos := p.r.Pos()
	p.r.Advance()
	p.lastKind = kindOpen
	if err := p.parseExpr(); err != nil {
		return err
	}
	if p.lastKind == kindBinaryOp {
		return p.errAt(p.r.Pos(), "dangling binary operator before %q", string(closeFor[open]))
	}
	r, ok := p.r.Peek()
	if !ok || r != closeFor[open] {
		return p.errAt(openPos, "unclosed %q", string(open))
	}
	p.r.Advance()
	p.lastKind = kindOperand
	return nil
}

func (p *parser) parseQuoted() error {
	openPos := p.r.Pos()
	p.r.Advance() // opening quote
	for {
		r, ok := p.r.Advance()
		if !ok {
			return p.errAt(openPos, "unterminated quoted string")
		}
		if r == '\\' {
			if _, ok := p.r.Advance(); !ok {
				return p.errAt(openPos, "unterminated quoted string")
			}
			continue
		}
		if r == '"' {
			break
		}
	}
	p.lastKind = kindOperand
	return nil
}

// parseRegex consumes a /.../ delimited regex term, which (unlike a bare
// word) may contain whitespace.
func (p *parser) parseRegex() error {
	openPos := p.r.Pos()
	p.r.Advance() // opening '/'
	for {
		r, ok := p.r.Advance()
		if !ok {
			return p.errAt(openPos, "unterminated regex literal")
		}
		if r == '\\' {
			if _, ok := p.r.Advance(); !ok {
				return p.errAt(openPos, "unterminated regex literal")
			}
			continue
		}
		if r == '/' {
			break
		}
	}
	p.lastKind = kindOperand
	return nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

func isWordBoundary(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}', '"', '/':
		return true
	default:
		return isSpace(r)
	}
}

// parseWord consumes a maximal run of non-space, non-bracket, non-quote
// characters -- a term (possibly carrying ^boost/~fuzziness/:field/*?
// wildcards, all opaque to this validator), or one of the binary operator
// keywords AND/OR/NOT/&&/||, or a lone, unattached prefix operator.
func (p *parser) parseWord() error {
	startPos := p.r.Pos()
	var runes []rune
	for {
		r, ok := p.r.Peek()
		if !ok || isWordBoundary(r) {
			break
		}
		if r == '\\' {
			p.r.Advance()
			if _, ok := p.r.Advance(); !ok {
				return p.errAt(startPos, "unterminated character escape")
			}
			runes = append(runes, '\\')
			continue
		}
		p.r.Advance()
		runes = append(runes, r)
	}
	word := string(runes)

	switch word {
	case "AND", "OR", "NOT", "&&", "||":
		if p.lastKind == kindStart || p.lastKind == kindBinaryOp || p.lastKind == kindOpen {
			return p.errAt(startPos, "binary operator %q has no left operand", word)
		}
		p.lastKind = kindBinaryOp
	case "+", "-", "!":
		return p.errAt(startPos, "prefix operator %q is not attached to a term", word)
	default:
		p.lastKind = kindOperand
	}
	return nil
}
