package kqlparse

import "github.com/kqldsl/kuery/internal/ast"

// prefixFields rewrites every field/path reference under q to be relative to
// prefix: fields inside a { ... } sub-query are implicitly relative to the
// enclosing field, joined as path.inner during descent.
func prefixFields(q ast.Query, prefix string) ast.Query {
	switch v := q.(type) {
	case *ast.MatchAll, *ast.MatchNone, *ast.QueryString:
		return q
	case *ast.Match:
		return &ast.Match{Field: join(prefix, v.Field), Value: v.Value, Operator: v.Operator, Pos: v.Pos}
	case *ast.MatchPhrase:
		return &ast.MatchPhrase{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.MatchPhrasePrefix:
		return &ast.MatchPhrasePrefix{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.MultiMatch:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = join(prefix, f)
		}
		return &ast.MultiMatch{Fields: fields, Value: v.Value, Type: v.Type, Operator: v.Operator, Pos: v.Pos}
	case *ast.Term:
		return &ast.Term{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Exists:
		return &ast.Exists{Field: join(prefix, v.Field), Pos: v.Pos}
	case *ast.Range:
		return &ast.Range{Field: join(prefix, v.Field), Gt: v.Gt, Gte: v.Gte, Lt: v.Lt, Lte: v.Lte, TimeZone: v.TimeZone, Pos: v.Pos}
	case *ast.Wildcard:
		return &ast.Wildcard{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Regexp:
		return &ast.Regexp{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Fuzzy:
		return &ast.Fuzzy{Field: join(prefix, v.Field), Value: v.Value, Fuzziness: v.Fuzziness, Pos: v.Pos}
	case *ast.Prefix:
		return &ast.Prefix{Field: join(prefix, v.Field), Value: v.Value, Pos: v.Pos}
	case *ast.Nested:
		return &ast.Nested{
			Path:      join(prefix, v.Path),
			Query:     prefixFields(v.Query, prefix),
			ScoreMode: v.ScoreMode,
			Pos:       v.Pos,
		}
	case *ast.Bool:
		return &ast.Bool{
			Must:               prefixAll(v.Must, prefix),
			Should:             prefixAll(v.Should, prefix),
			MustNot:            prefixAll(v.MustNot, prefix),
			Filter:             prefixAll(v.Filter, prefix),
			MinimumShouldMatch: v.MinimumShouldMatch,
			Pos:                v.Pos,
		}
	default:
		return q
	}
}

func prefixAll(clauses []ast.Query, prefix string) []ast.Query {
	if clauses == nil {
		return nil
	}
	out := make([]ast.Query, len(clauses))
	for i, c := range clauses {
		out[i] = prefixFields(c, prefix)
	}
	return out
}

func join(prefix, field string) string {
	return prefix + "." + field
}
