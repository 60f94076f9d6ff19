// Package kqlrender implements the KQL pretty-printer: Query AST -> KQL
// source text, the reverse direction of internal/kqlparse. The
// precedence-climbing printer shape mirrors internal/kqlparse's grammar,
// walked in reverse.
package kqlrender

import (
	"strings"

	"github.com/kqldsl/kuery/internal/ast"
)

// Operator precedence levels used to decide when a child needs
// parenthesizing: any child whose top-level operator has lower precedence
// than the position it is placed into is wrapped in (...); a child of equal
// precedence is left bare.
const (
	precOr   = 1
	precAnd  = 2
	precAtom = 3 // atoms, NOT, and field expressions all bind at this level
)

type result struct {
	text string
	prec int
}

// Render walks q and emits KQL source text, or a *ast.DecodeError naming the
// variant when q contains something with no KQL representation.
func Render(q ast.Query) (string, error) {
	r, err := renderNode(q)
	if err != nil {
		return "", err
	}
	return r.text, nil
}

func unsupported(pos ast.Position, variant string) (result, *ast.DecodeError) {
	return result{}, ast.NewDecodeError(pos, "%s is not representable in KQL", variant)
}

func renderNode(q ast.Query) (result, *ast.DecodeError) {
	switch v := q.(type) {
	case *ast.MatchAll:
		return result{text: "*", prec: precAtom}, nil
	case *ast.MatchNone:
		return unsupported(v.Pos, "match_none")
	case *ast.Match:
		return renderMatch(v)
	case *ast.MatchPhrase:
		return renderMatchPhrase(v)
	case *ast.MatchPhrasePrefix:
		return unsupported(v.Pos, "match_phrase_prefix")
	case *ast.MultiMatch:
		return unsupported(v.Pos, "multi_match")
	case *ast.Term:
		return unsupported(v.Pos, "term")
	case *ast.Exists:
		return unsupported(v.Pos, "exists")
	case *ast.Range:
		return renderRange(v)
	case *ast.Wildcard:
		return renderWildcard(v)
	case *ast.Regexp:
		return unsupported(v.Pos, "regexp")
	case *ast.Fuzzy:
		return unsupported(v.Pos, "fuzzy")
	case *ast.Prefix:
		return unsupported(v.Pos, "prefix")
	case *ast.Nested:
		return renderNested(v)
	case *ast.QueryString:
		return result{text: quoteIfNeeded(v.Value), prec: precAtom}, nil
	case *ast.Bool:
		return renderBool(v)
	default:
		return unsupported(ast.Position{}, "unknown query variant")
	}
}

func renderMatch(m *ast.Match) (result, *ast.DecodeError) {
	if m.Operator == ast.OperatorAnd {
		return unsupported(m.Pos, "match with operator \"and\"")
	}
	val := quoteIfNeeded(m.Value)
	if m.Field == "*" {
		return result{text: val, prec: precAtom}, nil
	}
	return result{text: quoteIfNeeded(m.Field) + ": " + val, prec: precAtom}, nil
}

func renderMatchPhrase(m *ast.MatchPhrase) (result, *ast.DecodeError) {
	val := quoteLiteral(m.Value)
	if m.Field == "*" {
		return result{text: val, prec: precAtom}, nil
	}
	return result{text: quoteIfNeeded(m.Field) + ": " + val, prec: precAtom}, nil
}

func renderWildcard(w *ast.Wildcard) (result, *ast.DecodeError) {
	return result{text: quoteIfNeeded(w.Field) + ": " + quoteIfNeeded(w.Value), prec: precAtom}, nil
}

var rangeOps = []struct {
	sym string
	get func(*ast.Range) *string
}{
	{">=", func(r *ast.Range) *string { return r.Gte }},
	{">", func(r *ast.Range) *string { return r.Gt }},
	{"<=", func(r *ast.Range) *string { return r.Lte }},
	{"<", func(r *ast.Range) *string { return r.Lt }},
}

// renderRange re-expresses a Range carrying more than one bound as an AND of
// single-operator range expressions, since KQL's range_value grammar allows
// exactly one operator per expression.
func renderRange(r *ast.Range) (result, *ast.DecodeError) {
	if r.TimeZone != nil {
		return unsupported(r.Pos, "range with time_zone")
	}
	var pieces []string
	for _, op := range rangeOps {
		if bound := op.get(r); bound != nil {
			pieces = append(pieces, quoteIfNeeded(r.Field)+" "+op.sym+" "+quoteIfNeeded(*bound))
		}
	}
	if len(pieces) == 0 {
		return unsupported(r.Pos, "range with no bounds")
	}
	if len(pieces) == 1 {
		return result{text: pieces[0], prec: precAtom}, nil
	}
	return result{text: strings.Join(pieces, " and "), prec: precAnd}, nil
}

func renderNested(n *ast.Nested) (result, *ast.DecodeError) {
	inner := unprefixFields(n.Query, n.Path)
	r, err := renderNode(inner)
	if err != nil {
		return result{}, err
	}
	return result{text: quoteIfNeeded(n.Path) + ": { " + r.text + " }", prec: precAtom}, nil
}

// renderBool dispatches on the populated clause shape: a bare NOT, a bare
// AND-or-OR passthrough of a single operand, or the fully general composite
// form.
func renderBool(b *ast.Bool) (result, *ast.DecodeError) {
	andCount := len(b.Must) + len(b.Filter)
	notCount := len(b.MustNot)
	orCount := len(b.Should)

	if andCount == 0 && orCount == 0 && notCount == 1 {
		r, err := renderNode(b.MustNot[0])
		if err != nil {
			return result{}, err
		}
		return result{text: "not " + wrapChild(r, precAtom), prec: precAtom}, nil
	}
	if andCount == 0 && notCount == 0 && orCount == 1 {
		return renderNode(b.Should[0])
	}
	if notCount == 0 && orCount == 0 && andCount == 1 {
		if len(b.Must) == 1 {
			return renderNode(b.Must[0])
		}
		return renderNode(b.Filter[0])
	}
	if andCount == 0 && notCount == 0 && orCount == 0 {
		return unsupported(b.Pos, "empty bool")
	}

	var pieces []string
	for _, group := range [][]ast.Query{b.Must, b.Filter} {
		for _, child := range group {
			r, err := renderNode(child)
			if err != nil {
				return result{}, err
			}
			pieces = append(pieces, wrapChild(r, precAnd))
		}
	}
	for _, child := range b.MustNot {
		r, err := renderNode(child)
		if err != nil {
			return result{}, err
		}
		pieces = append(pieces, "not "+wrapChild(r, precAtom))
	}
	if orCount == 1 {
		r, err := renderNode(b.Should[0])
		if err != nil {
			return result{}, err
		}
		pieces = append(pieces, wrapChild(r, precAnd))
	} else if orCount > 1 {
		parts := make([]string, orCount)
		for i, child := range b.Should {
			r, err := renderNode(child)
			if err != nil {
				return result{}, err
			}
			parts[i] = wrapChild(r, precOr)
		}
		pieces = append(pieces, "("+strings.Join(parts, " or ")+")")
	}
	return result{text: strings.Join(pieces, " and "), prec: precAnd}, nil
}

// wrapChild parenthesizes r's text if its own precedence would bind looser
// than the context it's being placed into.
func wrapChild(r result, minPrec int) string {
	if r.prec < minPrec {
		return "(" + r.text + ")"
	}
	return r.text
}

func isReservedWord(s string) bool {
	if len(s) > 3 {
		return false
	}
	switch strings.ToLower(s) {
	case "and", "or", "not":
		return true
	default:
		return false
	}
}

// isDelimitingSpecialChar mirrors internal/kqllex's reserved punctuation set
// (duplicated rather than exported, since the renderer's quoting decision
// and the lexer's tokenization boundary are conceptually separate concerns
// that happen to share a character class).
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

func needsQuoting(s string) bool {
	if s == "" || isReservedWord(s) {
		return true
	}
	for _, r := range s {
		if isSpace(r) || isDelimitingSpecialChar(r) || r == '\\' {
			return true
		}
	}
	return false
}

// quoteIfNeeded renders s as a bare unquoted literal when safe, or a quoted
// string (escape processing the inverse of the lexer's) otherwise.
func quoteIfNeeded(s string) string {
	if needsQuoting(s) {
		return quoteLiteral(s)
	}
	return s
}

// quoteLiteral always double-quotes s, escaping the same characters
// internal/kqllex's lexQuoted decodes.
func quoteLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unprefixFields is the inverse of internal/kqlparse's prefixFields, used
// when rendering a Nested query's body relative to its own path.
func unprefixFields(q ast.Query, prefix string) ast.Query {
	strip := func(field string) string {
		if rest := strings.TrimPrefix(field, prefix+"."); rest != field {
			return rest
		}
		return field
	}
	switch v := q.(type) {
	case *ast.MatchAll, *ast.MatchNone, *ast.QueryString:
		return q
	case *ast.Match:
		return &ast.Match{Field: strip(v.Field), Value: v.Value, Operator: v.Operator, Pos: v.Pos}
	case *ast.MatchPhrase:
		return &ast.MatchPhrase{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.MatchPhrasePrefix:
		return &ast.MatchPhrasePrefix{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.MultiMatch:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = strip(f)
		}
		return &ast.MultiMatch{Fields: fields, Value: v.Value, Type: v.Type, Operator: v.Operator, Pos: v.Pos}
	case *ast.Term:
		return &ast.Term{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Exists:
		return &ast.Exists{Field: strip(v.Field), Pos: v.Pos}
	case *ast.Range:
		return &ast.Range{Field: strip(v.Field), Gt: v.Gt, Gte: v.Gte, Lt: v.Lt, Lte: v.Lte, TimeZone: v.TimeZone, Pos: v.Pos}
	case *ast.Wildcard:
		return &ast.Wildcard{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Regexp:
		return &ast.Regexp{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Fuzzy:
		return &ast.Fuzzy{Field: strip(v.Field), Value: v.Value, Fuzziness: v.Fuzziness, Pos: v.Pos}
	case *ast.Prefix:
		return &ast.Prefix{Field: strip(v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Nested:
		return &ast.Nested{Path: strip(v.Path), Query: unprefixFields(v.Query, prefix), ScoreMode: v.ScoreMode, Pos: v.Pos}
	case *ast.Bool:
		unprefixAll := func(clauses []ast.Query) []ast.Query {
			if clauses == nil {
				return nil
			}
			out := make([]ast.Query, len(clauses))
			for i, c := range clauses {
				out[i] = unprefixFields(c, prefix)
			}
			return out
		}
		return &ast.Bool{
			Must:               unprefixAll(v.Must),
			Should:             unprefixAll(v.Should),
			MustNot:            unprefixAll(v.MustNot),
			Filter:             unprefixAll(v.Filter),
			MinimumShouldMatch: v.MinimumShouldMatch,
			Pos:                v.Pos,
		}
	default:
		return q
	}
}
