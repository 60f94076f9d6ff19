// Package kuery parses the Kibana Query Language and the Apache Lucene
// classical query syntax into a shared query abstract syntax tree, and
// renders that tree either to the ElasticSearch Query DSL (via Query.Render)
// or back to KQL source (via RenderAsKQL).
//
// The package is a pure, side-effect-free library: no I/O, no global state,
// no JSON encoding of its own. Callers own serialization of the value
// returned by Query.Render and supply their own JSON decoding ahead of
// render_as_kql's ES-DSL input path (see the kuerydemo command for a
// reference integration).
package kuery

import (
	"github.com/kqldsl/kuery/internal/ast"
	"github.com/kqldsl/kuery/internal/kqlparse"
	"github.com/kqldsl/kuery/internal/kqlrender"
	"github.com/kqldsl/kuery/internal/lucene"
)

// Query is the tagged-union query AST shared by every parser and renderer
// in this module. See the variant types below for the enumerated cases.
type Query = ast.Query

// Position locates a byte offset within parsed source, 1-based line/column.
type Position = ast.Position

// DecodeError is the sole failure type raised by ParseKQL, ParseLucene, and
// RenderAsKQL.
type DecodeError = ast.DecodeError

// Operator is the boolean combinator used by Match and MultiMatch.
type Operator = ast.Operator

// Boolean combinator values for Match/MultiMatch.Operator.
const (
	OperatorOr  = ast.OperatorOr
	OperatorAnd = ast.OperatorAnd
)

// Query AST node types, re-exported from internal/ast so callers never need
// to import an internal package to type-switch on a decoded tree.
type (
	MatchAll          = ast.MatchAll
	MatchNone         = ast.MatchNone
	Match             = ast.Match
	MatchPhrase       = ast.MatchPhrase
	MatchPhrasePrefix = ast.MatchPhrasePrefix
	MultiMatch        = ast.MultiMatch
	Term              = ast.Term
	Exists            = ast.Exists
	Range             = ast.Range
	Wildcard          = ast.Wildcard
	Regexp            = ast.Regexp
	Fuzzy             = ast.Fuzzy
	Prefix            = ast.Prefix
	Nested            = ast.Nested
	QueryString       = ast.QueryString
	Bool              = ast.Bool
)

// ParseKQL parses source as Kibana Query Language and returns its Query AST.
func ParseKQL(source string) (Query, error) {
	return kqlparse.Parse(source)
}

// ParseLucene structurally validates source as Apache Lucene classical
// query syntax. On success the resulting Query is a QueryString wrapping
// source verbatim, for ElasticSearch's own query_string parser to evaluate.
func ParseLucene(source string) (Query, error) {
	return lucene.Parse(source)
}

// RenderAsKQL renders q back to KQL source text. It fails with a
// *DecodeError if q contains a variant with no KQL representation (e.g.
// Regexp, Fuzzy, Term -- ES Query DSL shapes unreachable from KQL syntax).
func RenderAsKQL(q Query) (string, error) {
	return kqlrender.Render(q)
}
