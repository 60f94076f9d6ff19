// Package ast defines the unified query abstract syntax tree shared by the
// KQL parser, the Lucene parser, the ES-DSL decoder and the KQL renderer. It
// is a strict subset of the ElasticSearch Query DSL.
package ast

import (
	"math"
	"strconv"
)

// Operator is the boolean combinator used by Match and MultiMatch ("and"
// defaults to "or" when unset).
type Operator string

const (
	// OperatorUnset means "let the zero value decide" (renders as OR/omitted).
	OperatorUnset Operator = ""
	OperatorAnd   Operator = "and"
	OperatorOr    Operator = "or"
)

// Query is the tagged-union interface implemented by every AST node variant.
type Query interface {
	isQuery()
	// Render produces a nested mapping of strings to JSON-serializable
	// values shaped like the ElasticSearch Query DSL. Encoding that mapping
	// to bytes is left to the caller.
	Render() map[string]interface{}
}

// MatchAll matches every document.
type MatchAll struct{ Pos Position }

func (*MatchAll) isQuery() {}

// Render implements Query.
func (*MatchAll) Render() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

// MatchNone matches no document.
type MatchNone struct{ Pos Position }

func (*MatchNone) isQuery() {}

// Render implements Query.
func (*MatchNone) Render() map[string]interface{} {
	return map[string]interface{}{"match_none": map[string]interface{}{}}
}

// Match is a full-text match against a single field.
type Match struct {
	Field    string
	Value    string
	Operator Operator // defaults to OR
	Pos      Position
}

func (*Match) isQuery() {}

// Render implements Query.
func (m *Match) Render() map[string]interface{} {
	var val interface{} = m.Value
	if m.Operator == OperatorAnd {
		val = map[string]interface{}{"query": m.Value, "operator": "and"}
	}
	return map[string]interface{}{"match": map[string]interface{}{m.Field: val}}
}

// MatchPhrase matches an exact phrase against a field.
type MatchPhrase struct {
	Field string
	Value string
	Pos   Position
}

func (*MatchPhrase) isQuery() {}

// Render implements Query.
func (m *MatchPhrase) Render() map[string]interface{} {
	return map[string]interface{}{"match_phrase": map[string]interface{}{m.Field: m.Value}}
}

// MatchPhrasePrefix matches a phrase prefix against a field.
type MatchPhrasePrefix struct {
	Field string
	Value string
	Pos   Position
}

func (*MatchPhrasePrefix) isQuery() {}

// Render implements Query.
func (m *MatchPhrasePrefix) Render() map[string]interface{} {
	return map[string]interface{}{"match_phrase_prefix": map[string]interface{}{m.Field: m.Value}}
}

// MultiMatch matches across several fields at once.
type MultiMatch struct {
	Fields   []string
	Value    string
	Type     string // "phrase" | "phrase_prefix" | "best_fields" | "" (unset)
	Operator Operator
	Pos      Position
}

func (*MultiMatch) isQuery() {}

// Render implements Query.
func (m *MultiMatch) Render() map[string]interface{} {
	inner := map[string]interface{}{
		"query":  m.Value,
		"fields": append([]string(nil), m.Fields...),
	}
	if m.Type != "" {
		inner["type"] = m.Type
	}
	if m.Operator != OperatorUnset {
		inner["operator"] = string(m.Operator)
	}
	return map[string]interface{}{"multi_match": inner}
}

// Term is an exact-value match against a field, bypassing analysis.
type Term struct {
	Field string
	Value string
	Pos   Position
}

func (*Term) isQuery() {}

// Render implements Query.
func (t *Term) Render() map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{t.Field: t.Value}}
}

// Exists matches documents where the given field is present.
type Exists struct {
	Field string
	Pos   Position
}

func (*Exists) isQuery() {}

// Render implements Query.
func (e *Exists) Render() map[string]interface{} {
	return map[string]interface{}{"exists": map[string]interface{}{"field": e.Field}}
}

// Range matches a field against one or more of four bounds. At least one
// bound must be set; this is enforced by NewRange, not by the zero value.
type Range struct {
	Field    string
	Gt       *string
	Gte      *string
	Lt       *string
	Lte      *string
	TimeZone *string
	Pos      Position
}

func (*Range) isQuery() {}

// Render implements Query.
func (r *Range) Render() map[string]interface{} {
	bounds := map[string]interface{}{}
	if r.Gt != nil {
		bounds["gt"] = literalJSONValue(*r.Gt)
	}
	if r.Gte != nil {
		bounds["gte"] = literalJSONValue(*r.Gte)
	}
	if r.Lt != nil {
		bounds["lt"] = literalJSONValue(*r.Lt)
	}
	if r.Lte != nil {
		bounds["lte"] = literalJSONValue(*r.Lte)
	}
	if r.TimeZone != nil {
		bounds["time_zone"] = *r.TimeZone
	}
	return map[string]interface{}{"range": map[string]interface{}{r.Field: bounds}}
}

// literalJSONValue promotes a range bound literal that parses losslessly as
// an integer or float to a JSON number; otherwise it stays a JSON string.
func literalJSONValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) &&
		strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

// Wildcard matches a field against a pattern containing '*' and/or '?'.
type Wildcard struct {
	Field string
	Value string
	Pos   Position
}

func (*Wildcard) isQuery() {}

// Render implements Query.
func (w *Wildcard) Render() map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			w.Field: map[string]interface{}{"value": w.Value},
		},
	}
}

// Regexp matches a field against a regular expression.
type Regexp struct {
	Field string
	Value string
	Pos   Position
}

func (*Regexp) isQuery() {}

// Render implements Query.
func (r *Regexp) Render() map[string]interface{} {
	return map[string]interface{}{"regexp": map[string]interface{}{r.Field: r.Value}}
}

// Fuzzy matches a field allowing a given edit distance.
type Fuzzy struct {
	Field     string
	Value     string
	Fuzziness string // empty means unset
	Pos       Position
}

func (*Fuzzy) isQuery() {}

// Render implements Query.
func (f *Fuzzy) Render() map[string]interface{} {
	inner := map[string]interface{}{"value": f.Value}
	if f.Fuzziness != "" {
		inner["fuzziness"] = f.Fuzziness
	}
	return map[string]interface{}{"fuzzy": map[string]interface{}{f.Field: inner}}
}

// Prefix matches a field against a literal prefix.
type Prefix struct {
	Field string
	Value string
	Pos   Position
}

func (*Prefix) isQuery() {}

// Render implements Query.
func (p *Prefix) Render() map[string]interface{} {
	return map[string]interface{}{"prefix": map[string]interface{}{p.Field: p.Value}}
}

// Nested scopes a sub-query to a nested-object path.
type Nested struct {
	Path      string
	Query     Query
	ScoreMode string // "" renders as "none"
	Pos       Position
}

func (*Nested) isQuery() {}

// Render implements Query.
func (n *Nested) Render() map[string]interface{} {
	scoreMode := n.ScoreMode
	if scoreMode == "" {
		scoreMode = "none"
	}
	return map[string]interface{}{
		"nested": map[string]interface{}{
			"path":       n.Path,
			"query":      n.Query.Render(),
			"score_mode": scoreMode,
		},
	}
}

// QueryString is an escape hatch delegating to ElasticSearch's own
// query_string parser (used by the Lucene parser).
type QueryString struct {
	Value string
	Pos   Position
}

func (*QueryString) isQuery() {}

// Render implements Query.
func (q *QueryString) Render() map[string]interface{} {
	return map[string]interface{}{"query_string": map[string]interface{}{"query": q.Value}}
}

// Bool combines other queries with must/should/must_not/filter semantics.
// Use NewBool (or the And/Or/Not helpers) rather than constructing directly,
// so the "collapse an empty Bool to MatchAll" invariant holds.
type Bool struct {
	Must               []Query
	Should             []Query
	MustNot            []Query
	Filter             []Query
	MinimumShouldMatch *int
	Pos                Position
}

func (*Bool) isQuery() {}

// Render implements Query.
func (b *Bool) Render() map[string]interface{} {
	inner := map[string]interface{}{}
	putClauses(inner, "must", b.Must)
	putClauses(inner, "should", b.Should)
	putClauses(inner, "must_not", b.MustNot)
	putClauses(inner, "filter", b.Filter)
	if b.MinimumShouldMatch != nil {
		inner["minimum_should_match"] = *b.MinimumShouldMatch
	}
	return map[string]interface{}{"bool": inner}
}

// putClauses renders a Bool clause list, omitting it entirely when empty and
// collapsing a single-element list to a bare object rather than a
// one-element array.
func putClauses(inner map[string]interface{}, key string, clauses []Query) {
	switch len(clauses) {
	case 0:
		return
	case 1:
		inner[key] = clauses[0].Render()
	default:
		rendered := make([]map[string]interface{}, len(clauses))
		for i, c := range clauses {
			rendered[i] = c.Render()
		}
		inner[key] = rendered
	}
}
