package kqllex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kqldsl/kuery/internal/ast"
	"github.com/kqldsl/kuery/internal/reader"
)

// lexerStateFn represents a state of the lexer's state machine, following
// the text/template/parse state-function style.
type lexerStateFn func(*Lexer) lexerStateFn

// Lexer scans KQL source into a channel of Tokens.
//
// Usage:
//     l := New(src)
//     for {
//         tok := l.NextToken()
//         if tok.Type == TokEOF || tok.Type == TokError {
//             break
//         }
//     }
type Lexer struct {
	r          *reader.Reader
	start      reader.Position // start of the token currently being scanned
	prevPos    reader.Position // position before the most recent Advance, for backup
	tokens     chan Token
	parenStack []reader.Position // positions of unmatched open '(' seen so far
	braceStack []reader.Position // positions of unmatched open '{' seen so far
}

// New creates a Lexer for src and starts its scanning goroutine.
func New(src string) *Lexer {
	l := &Lexer{
		r:      reader.New(src),
		tokens: make(chan Token),
	}
	l.start = l.r.Pos()
	go l.run()
	return l
}

// NextToken returns the next token from the input. Called by the parser.
func (l *Lexer) NextToken() Token {
	return <-l.tokens
}

// Drain exhausts the token channel so the lexing goroutine can exit; used
// when a parser abandons a lex mid-stream (e.g. after an error).
func (l *Lexer) Drain() {
	for range l.tokens {
	}
}

func (l *Lexer) run() {
	for state := lexInsideKQL; state != nil; {
		state = state(l)
	}
	close(l.tokens)
}

func toASTPos(p reader.Position) ast.Position {
	return ast.Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func (l *Lexer) next() (rune, bool) {
	l.prevPos = l.r.Pos()
	return l.r.Advance()
}

func (l *Lexer) backup() {
	l.r.Restore(l.prevPos)
}

func (l *Lexer) peek() (rune, bool) {
	return l.r.Peek()
}

func (l *Lexer) emit(t TokenType) {
	val := l.r.Input()[l.start.Offset:l.r.Pos().Offset]
	l.tokens <- Token{Type: t, Val: val, Pos: toASTPos(l.start)}
	l.start = l.r.Pos()
}

// emitVal emits a token whose decoded value differs from the raw source
// text (escapes already resolved), used for quoted/unquoted literals.
func (l *Lexer) emitVal(t TokenType, val string) {
	l.tokens <- Token{Type: t, Val: val, Pos: toASTPos(l.start)}
	l.start = l.r.Pos()
}

func (l *Lexer) ignore() {
	l.start = l.r.Pos()
}

func (l *Lexer) errorf(format string, args ...interface{}) lexerStateFn {
	l.tokens <- Token{Type: TokError, Val: fmt.Sprintf(format, args...), Pos: toASTPos(l.start)}
	return nil
}

func (l *Lexer) errorfAt(pos reader.Position, format string, args ...interface{}) lexerStateFn {
	l.tokens <- Token{Type: TokError, Val: fmt.Sprintf(format, args...), Pos: toASTPos(pos)}
	return nil
}

const eof = reader.Eof

func lexInsideKQL(l *Lexer) lexerStateFn {
	l.r.SkipWhitespace()
	l.ignore()

	switch r, ok := l.next(); {
	case !ok:
		switch {
		case len(l.parenStack) > 0:
			pos := l.parenStack[len(l.parenStack)-1]
			return l.errorfAt(pos, "unclosed open parenthesis")
		case len(l.braceStack) > 0:
			pos := l.braceStack[len(l.braceStack)-1]
			return l.errorfAt(pos, "unclosed open brace")
		default:
			l.emit(TokEOF)
			return nil
		}
	case r == '(':
		l.parenStack = append(l.parenStack, l.start)
		l.emit(TokLParen)
	case r == ')':
		if len(l.parenStack) == 0 {
			return l.errorfAt(l.start, "unmatched close parenthesis")
		}
		l.parenStack = l.parenStack[:len(l.parenStack)-1]
		l.emit(TokRParen)
	case r == '{':
		l.braceStack = append(l.braceStack, l.start)
		l.emit(TokLBrace)
	case r == '}':
		if len(l.braceStack) == 0 {
			return l.errorfAt(l.start, "unmatched close brace")
		}
		l.braceStack = l.braceStack[:len(l.braceStack)-1]
		l.emit(TokRBrace)
	case r == ':':
		l.emit(TokColon)
	case r == '"':
		return lexQuoted
	case r == '<':
		if next, ok := l.peek(); ok && next == '=' {
			l.next()
			l.emit(TokOpLe)
		} else {
			l.emit(TokOpLt)
		}
	case r == '>':
		if next, ok := l.peek(); ok && next == '=' {
			l.next()
			l.emit(TokOpGe)
		} else {
			l.emit(TokOpGt)
		}
	case r == '=':
		return l.errorfAt(l.start, "unexpected '='; KQL has no '=' operator, use ':'")
	case r >= 1:
		l.backup()
		return lexUnquotedLiteralOrKeyword
	default:
		return l.errorfAt(l.start, "unrecognized character: %#U", r)
	}
	return lexInsideKQL
}

// isDelimitingSpecialChar reports whether r ends an unquoted literal: the
// reserved punctuation set, minus backslash which is handled separately as
// the escape prefix.
func isDelimitingSpecialChar(r rune) bool {
	switch r {
	case '(', ')', '{', '}', ':', '"', '<', '>', '=':
		return true
	default:
		return false
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

// lexUnquotedLiteralOrKeyword scans an unquoted literal, or one of the
// case-insensitive reserved words "and"/"or"/"not" when the whole literal
// matches one of them exactly.
func lexUnquotedLiteralOrKeyword(l *Lexer) lexerStateFn {
	var b strings.Builder
	hasUnescapedStar := false

Loop:
	for {
		r, ok := l.peek()
		switch {
		case !ok || isSpace(r) || isDelimitingSpecialChar(r):
			break Loop
		case r == '\\':
			l.next()
			esc, ok := l.next()
			if !ok {
				return l.errorfAt(l.start, "unterminated character escape")
			}
			b.WriteRune(esc)
		default:
			l.next()
			if r == '*' {
				hasUnescapedStar = true
			}
			b.WriteRune(r)
		}
	}

	val := b.String()
	if len(val) <= 3 {
		switch strings.ToLower(val) {
		case "and":
			l.emitVal(TokKwAnd, val)
			return lexInsideKQL
		case "or":
			l.emitVal(TokKwOr, val)
			return lexInsideKQL
		case "not":
			l.emitVal(TokKwNot, val)
			return lexInsideKQL
		}
	}

	if hasUnescapedStar {
		l.emitVal(TokWildcard, val)
	} else {
		l.emitVal(TokLiteral, val)
	}
	return lexInsideKQL
}

// lexQuoted scans the body of a double-quoted string. l.start is the
// position of the opening quote, so an unterminated string's error points
// there rather than at EOF.
func lexQuoted(l *Lexer) lexerStateFn {
	openPos := l.start
	var b strings.Builder

	for {
		r, ok := l.next()
		if !ok {
			return l.errorfAt(openPos, "unterminated quoted string")
		}
		switch r {
		case '"':
			l.emitVal(TokQuoted, b.String())
			return lexInsideKQL
		case '\\':
			esc, ok := l.next()
			if !ok {
				return l.errorfAt(openPos, "unterminated quoted string")
			}
			switch esc {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				hex := make([]byte, 0, 4)
				for i := 0; i < 4; i++ {
					h, ok := l.next()
					if !ok || !isHexDigit(h) {
						return l.errorfAt(openPos, "invalid \\u escape in quoted string")
					}
					hex = append(hex, byte(h))
				}
				code, err := strconv.ParseUint(string(hex), 16, 32)
				if err != nil {
					return l.errorfAt(openPos, "invalid \\u escape in quoted string")
				}
				b.WriteRune(rune(code))
			default:
				return l.errorfAt(openPos, "invalid escape '\\%c' in quoted string", esc)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
