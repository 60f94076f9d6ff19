package ast

import "strings"

// NewBool builds a Bool query, collapsing to MatchAll when all four clause
// lists are empty.
func NewBool(must, should, mustNot, filter []Query, minimumShouldMatch *int) Query {
	if len(must) == 0 && len(should) == 0 && len(mustNot) == 0 && len(filter) == 0 {
		return &MatchAll{}
	}
	return &Bool{
		Must:               must,
		Should:             should,
		MustNot:            mustNot,
		Filter:             filter,
		MinimumShouldMatch: minimumShouldMatch,
	}
}

// IsFilterSafeLeaf reports whether q is one of the "exact match" variants
// (term, range, exists) that ANDing should route to a Bool's filter clause
// rather than its must clause.
func IsFilterSafeLeaf(q Query) bool {
	switch q.(type) {
	case *Term, *Range, *Exists:
		return true
	default:
		return false
	}
}

// isPureAnd reports whether b is a Bool produced solely by And-flattening:
// only Must/Filter are populated, with no Should/MustNot/MinimumShouldMatch.
// Only such "pure AND" Bools are further flattened by And; a Bool with an
// OR or NOT shape is ANDed with as an opaque operand instead.
func isPureAnd(b *Bool) bool {
	return len(b.Should) == 0 && len(b.MustNot) == 0 && b.MinimumShouldMatch == nil
}

// isPureOr reports the analogous shape for Or-flattening: only Should (with
// MinimumShouldMatch==1) is populated.
func isPureOr(b *Bool) bool {
	return len(b.Must) == 0 && len(b.MustNot) == 0 && len(b.Filter) == 0 &&
		b.MinimumShouldMatch != nil && *b.MinimumShouldMatch == 1
}

// And combines a and b with AND semantics: filter-safe leaves route to the
// filter clause, everything else to must, and consecutive ANDs flatten into
// one Bool instead of nesting.
func And(a, b Query) Query {
	var must, filter []Query
	absorb := func(q Query) {
		if bq, ok := q.(*Bool); ok && isPureAnd(bq) {
			must = append(must, bq.Must...)
			filter = append(filter, bq.Filter...)
			return
		}
		if IsFilterSafeLeaf(q) {
			filter = append(filter, q)
		} else {
			must = append(must, q)
		}
	}
	absorb(a)
	absorb(b)
	return NewBool(must, nil, nil, filter, nil)
}

// Or combines a and b with OR semantics, flattening consecutive ORs into one
// Bool with minimum_should_match pinned to 1.
func Or(a, b Query) Query {
	var should []Query
	absorb := func(q Query) {
		if bq, ok := q.(*Bool); ok && isPureOr(bq) {
			should = append(should, bq.Should...)
			return
		}
		should = append(should, q)
	}
	absorb(a)
	absorb(b)
	one := 1
	return NewBool(nil, should, nil, nil, &one)
}

// Not negates a, producing Bool{must_not: [a]}.
func Not(a Query) Query {
	return NewBool(nil, nil, []Query{a}, nil, nil)
}

// NewRange builds a Range query. At least one bound must be non-nil; callers
// (the KQL parser) are expected to uphold this, so a violation
// panics as a programmer error rather than returning a DecodeError.
func NewRange(field string, gt, gte, lt, lte, timeZone *string, pos Position) *Range {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		panic("ast.NewRange: at least one bound must be set")
	}
	return &Range{Field: field, Gt: gt, Gte: gte, Lt: lt, Lte: lte, TimeZone: timeZone, Pos: pos}
}

// NewNested builds a Nested query. When the fields referenced by query are
// inferable (all of its direct leaves expose a Field), it asserts that path
// is a prefix of each; when not inferable (e.g. a QueryString or a Bool
// mixing non-field leaves) the given path is accepted as authored.
func NewNested(path string, query Query, scoreMode string, pos Position) *Nested {
	if fields, ok := fieldPaths(query); ok {
		for _, f := range fields {
			if f != path && !strings.HasPrefix(f, path+".") {
				panic("ast.NewNested: path " + path + " is not a prefix of field " + f)
			}
		}
	}
	return &Nested{Path: path, Query: query, ScoreMode: scoreMode, Pos: pos}
}

// fieldPaths returns the set of field paths directly referenced by q, and
// whether that set could be fully determined. Bool recurses, Nested
// contributes its own path; QueryString (and any future variant without a Field) makes the result
// non-inferable, which NewNested treats as "accept the path as authored".
func fieldPaths(q Query) ([]string, bool) {
	switch v := q.(type) {
	case *Match:
		return []string{v.Field}, true
	case *MatchPhrase:
		return []string{v.Field}, true
	case *MatchPhrasePrefix:
		return []string{v.Field}, true
	case *MultiMatch:
		return append([]string(nil), v.Fields...), true
	case *Term:
		return []string{v.Field}, true
	case *Exists:
		return []string{v.Field}, true
	case *Range:
		return []string{v.Field}, true
	case *Wildcard:
		return []string{v.Field}, true
	case *Regexp:
		return []string{v.Field}, true
	case *Fuzzy:
		return []string{v.Field}, true
	case *Prefix:
		return []string{v.Field}, true
	case *Nested:
		return []string{v.Path}, true
	case *MatchAll, *MatchNone:
		return nil, true
	case *Bool:
		var out []string
		for _, group := range [][]Query{v.Must, v.Should, v.MustNot, v.Filter} {
			for _, sub := range group {
				fs, ok := fieldPaths(sub)
				if !ok {
					return nil, false
				}
				out = append(out, fs...)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
