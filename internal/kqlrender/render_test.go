package kqlrender

import (
	"strings"
	"testing"

	"github.com/kqldsl/kuery/internal/ast"
)

func strPtr(s string) *string { return &s }

func TestRenderBasicShapes(t *testing.T) {
	tests := []struct {
		name string
		q    ast.Query
		want string
	}{
		{"match_all", &ast.MatchAll{}, "*"},
		{"bare match", &ast.Match{Field: "*", Value: "foo", Operator: ast.OperatorOr}, "foo"},
		{"fielded match", &ast.Match{Field: "a", Value: "b", Operator: ast.OperatorOr}, "a: b"},
		{"fielded match needing quotes", &ast.Match{Field: "a", Value: "b c", Operator: ast.OperatorOr}, `a: "b c"`},
		{"match_phrase", &ast.MatchPhrase{Field: "name", Value: "John Smith"}, `name: "John Smith"`},
		{"wildcard", &ast.Wildcard{Field: "name", Value: "jo*n"}, "name: jo*n"},
		{"query_string passthrough", &ast.QueryString{Value: "tot*"}, "tot*"},
		{"single-bound range", &ast.Range{Field: "status", Gte: strPtr("400")}, "status >= 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.q)
			if err != nil {
				t.Fatalf("Render() returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMultiBoundRangeJoinsWithAnd(t *testing.T) {
	r := &ast.Range{Field: "status", Gte: strPtr("400"), Lt: strPtr("500")}
	got, err := Render(r)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	want := "status >= 400 and status < 500"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderNotOnlyBool(t *testing.T) {
	b := &ast.Bool{MustNot: []ast.Query{&ast.Match{Field: "a", Value: "b", Operator: ast.OperatorOr}}}
	got, err := Render(b)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if got != "not a: b" {
		t.Errorf("Render() = %q, want %q", got, "not a: b")
	}
}

func TestRenderNotWrapsCompoundOperand(t *testing.T) {
	inner := &ast.Bool{Should: []ast.Query{
		&ast.Match{Field: "a", Value: "1", Operator: ast.OperatorOr},
		&ast.Match{Field: "b", Value: "2", Operator: ast.OperatorOr},
	}}
	b := &ast.Bool{MustNot: []ast.Query{inner}}
	got, err := Render(b)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.HasPrefix(got, "not (") {
		t.Errorf("Render() = %q, want a parenthesized compound operand after \"not \"", got)
	}
}

func TestRenderCompositeBoolScenario(t *testing.T) {
	// A decoder-originated Bool with two filter clauses renders as
	// "a: b and c: \"d\"".
	b := &ast.Bool{Filter: []ast.Query{
		&ast.Match{Field: "a", Value: "b", Operator: ast.OperatorOr},
		&ast.MatchPhrase{Field: "c", Value: "d"},
	}}
	got, err := Render(b)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	want := `a: b and c: "d"`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderNestedStripsPathPrefix(t *testing.T) {
	n := &ast.Nested{
		Path:  "identity",
		Query: &ast.MatchPhrase{Field: "identity.first_name", Value: "John"},
	}
	got, err := Render(n)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	want := `identity: { first_name: "John" }`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderUnsupportedVariantsError(t *testing.T) {
	tests := []struct {
		name string
		q    ast.Query
	}{
		{"match_none", &ast.MatchNone{}},
		{"match_phrase_prefix", &ast.MatchPhrasePrefix{Field: "a", Value: "b"}},
		{"multi_match", &ast.MultiMatch{Fields: []string{"a", "b"}, Value: "x", Operator: ast.OperatorOr}},
		{"term", &ast.Term{Field: "a", Value: "1"}},
		{"exists", &ast.Exists{Field: "a"}},
		{"regexp", &ast.Regexp{Field: "a", Value: "ab*"}},
		{"fuzzy", &ast.Fuzzy{Field: "a", Value: "x"}},
		{"prefix", &ast.Prefix{Field: "a", Value: "x"}},
		{"match with and operator", &ast.Match{Field: "a", Value: "b", Operator: ast.OperatorAnd}},
		{"range with time_zone", &ast.Range{Field: "ts", Gte: strPtr("now"), TimeZone: strPtr("+01:00")}},
		{"range with no bounds", &ast.Range{Field: "ts"}},
		{"empty bool", &ast.Bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.q)
			if err == nil {
				t.Fatalf("Render(%T) = nil error, want a DecodeError", tt.q)
			}
			if !strings.Contains(err.Error(), "not representable in KQL") {
				t.Errorf("Render(%T) error = %q, want it to mention non-representability", tt.q, err)
			}
		})
	}
}

func TestRenderQuotesReservedWordsAndSpecialChars(t *testing.T) {
	got, err := Render(&ast.Match{Field: "*", Value: "and", Operator: ast.OperatorOr})
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if got != `"and"` {
		t.Errorf("Render() = %q, want the reserved word quoted", got)
	}
}
