package esdecode

import (
	"testing"

	"github.com/kqldsl/kuery/internal/ast"
)

func TestDecodeJSONMatchesDecodeMap(t *testing.T) {
	data := []byte(`{"bool":{"filter":[{"match":{"a":"b"}},{"term":{"c":5}}]}}`)
	q, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() returned error: %v", err)
	}
	b, ok := q.(*ast.Bool)
	if !ok {
		t.Fatalf("got %T, want *ast.Bool", q)
	}
	if len(b.Filter) != 2 {
		t.Fatalf("got %d filter clauses, want 2", len(b.Filter))
	}
	term, ok := b.Filter[1].(*ast.Term)
	if !ok || term.Value != "5" {
		t.Errorf("got filter[1] = %v, want a Term with numeric value stringified to \"5\"", b.Filter[1])
	}
}

func TestDecodeJSONRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDecodeJSONRejectsNonObjectTopLevel(t *testing.T) {
	if _, err := DecodeJSON([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected an error for a non-object top-level JSON value")
	}
}
