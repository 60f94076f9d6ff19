package esdecode

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kqldsl/kuery/internal/ast"
)

func TestDecodeMapShapes(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
		want ast.Query
	}{
		{"match_all", map[string]interface{}{"match_all": map[string]interface{}{}}, &ast.MatchAll{}},
		{"match_none", map[string]interface{}{"match_none": map[string]interface{}{}}, &ast.MatchNone{}},
		{
			"match plain string",
			map[string]interface{}{"match": map[string]interface{}{"a": "b"}},
			&ast.Match{Field: "a", Value: "b", Operator: ast.OperatorOr},
		},
		{
			"match object form with and operator",
			map[string]interface{}{"match": map[string]interface{}{
				"a": map[string]interface{}{"query": "b", "operator": "and"},
			}},
			&ast.Match{Field: "a", Value: "b", Operator: ast.OperatorAnd},
		},
		{
			"match_phrase",
			map[string]interface{}{"match_phrase": map[string]interface{}{"c": "d"}},
			&ast.MatchPhrase{Field: "c", Value: "d"},
		},
		{
			"term with numeric value stringified",
			map[string]interface{}{"term": map[string]interface{}{"a": float64(5)}},
			&ast.Term{Field: "a", Value: "5"},
		},
		{
			"exists",
			map[string]interface{}{"exists": map[string]interface{}{"field": "a"}},
			&ast.Exists{Field: "a"},
		},
		{
			"wildcard string form",
			map[string]interface{}{"wildcard": map[string]interface{}{"a": "b*"}},
			&ast.Wildcard{Field: "a", Value: "b*"},
		},
		{
			"wildcard object form",
			map[string]interface{}{"wildcard": map[string]interface{}{
				"a": map[string]interface{}{"value": "b*"},
			}},
			&ast.Wildcard{Field: "a", Value: "b*"},
		},
		{
			"range numeric bounds stringified",
			map[string]interface{}{"range": map[string]interface{}{
				"status": map[string]interface{}{"gte": float64(400), "lt": float64(500)},
			}},
			&ast.Range{Field: "status", Gte: strPtr("400"), Lt: strPtr("500")},
		},
		{
			"query_string",
			map[string]interface{}{"query_string": map[string]interface{}{"query": "a:b AND c:d"}},
			&ast.QueryString{Value: "a:b AND c:d"},
		},
		{
			"nested with default score_mode",
			map[string]interface{}{"nested": map[string]interface{}{
				"path": "identity",
				"query": map[string]interface{}{
					"match_phrase": map[string]interface{}{"identity.first_name": "John"},
				},
			}},
			&ast.Nested{Path: "identity", Query: &ast.MatchPhrase{Field: "identity.first_name", Value: "John"}, ScoreMode: "none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMap(tt.in)
			if err != nil {
				t.Fatalf("DecodeMap(%v) returned error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeMap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestDecodeBoolClauseListAcceptsSingleObjectOrArray(t *testing.T) {
	single := map[string]interface{}{"bool": map[string]interface{}{
		"must": map[string]interface{}{"match": map[string]interface{}{"a": "b"}},
	}}
	q, err := DecodeMap(single)
	if err != nil {
		t.Fatalf("DecodeMap(single) returned error: %v", err)
	}
	b := q.(*ast.Bool)
	if len(b.Must) != 1 {
		t.Fatalf("got %d must clauses from a single object, want 1", len(b.Must))
	}

	array := map[string]interface{}{"bool": map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{"match": map[string]interface{}{"a": "b"}},
			map[string]interface{}{"match": map[string]interface{}{"c": "d"}},
		},
	}}
	q, err = DecodeMap(array)
	if err != nil {
		t.Fatalf("DecodeMap(array) returned error: %v", err)
	}
	b = q.(*ast.Bool)
	if len(b.Must) != 2 {
		t.Fatalf("got %d must clauses from an array, want 2", len(b.Must))
	}
}

func TestDecodeBoolMinimumShouldMatch(t *testing.T) {
	m := map[string]interface{}{"bool": map[string]interface{}{
		"should":               []interface{}{map[string]interface{}{"match": map[string]interface{}{"a": "1"}}},
		"minimum_should_match": float64(1),
	}}
	q, err := DecodeMap(m)
	if err != nil {
		t.Fatalf("DecodeMap() returned error: %v", err)
	}
	b := q.(*ast.Bool)
	if b.MinimumShouldMatch == nil || *b.MinimumShouldMatch != 1 {
		t.Errorf("got MinimumShouldMatch=%v, want 1", b.MinimumShouldMatch)
	}
}

func TestDecodeMapRejectsMultipleTopLevelKeys(t *testing.T) {
	m := map[string]interface{}{
		"match_all":  map[string]interface{}{},
		"match_none": map[string]interface{}{},
	}
	if _, err := DecodeMap(m); err == nil {
		t.Fatal("expected an error for a multi-key query object")
	}
}

func TestDecodeMapRejectsUnknownKey(t *testing.T) {
	m := map[string]interface{}{"not_a_real_query_type": map[string]interface{}{}}
	if _, err := DecodeMap(m); err == nil {
		t.Fatal("expected an error for an unrecognized query key")
	}
}

func TestDecodeRangeRejectsNoBounds(t *testing.T) {
	m := map[string]interface{}{"range": map[string]interface{}{"status": map[string]interface{}{}}}
	if _, err := DecodeMap(m); err == nil {
		t.Fatal("expected an error for a range with no bounds")
	}
}

func TestDecodeMalformedShapesError(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
	}{
		{"match with two field keys", map[string]interface{}{"match": map[string]interface{}{"a": "1", "b": "2"}}},
		{"match with non-string non-object value", map[string]interface{}{"match": map[string]interface{}{"a": 5}}},
		{"exists missing field", map[string]interface{}{"exists": map[string]interface{}{}}},
		{"multi_match missing fields array", map[string]interface{}{"multi_match": map[string]interface{}{"query": "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMap(tt.in); err == nil {
				t.Errorf("DecodeMap(%v) = nil error, want an error", tt.in)
			}
		})
	}
}
