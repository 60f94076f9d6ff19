package kuery

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestFacadeScenarios exercises the six literal input/output pairs used
// throughout development to pin down ParseKQL, ParseLucene, and
// RenderAsKQL's exact behavior.
func TestFacadeScenarios(t *testing.T) {
	t.Run("NOT field negation", func(t *testing.T) {
		q, err := ParseKQL("NOT http.request.method: GET")
		if err != nil {
			t.Fatalf("ParseKQL() returned error: %v", err)
		}
		want := map[string]interface{}{"bool": map[string]interface{}{
			"must_not": map[string]interface{}{"match": map[string]interface{}{"http.request.method": "GET"}},
		}}
		if diff := cmp.Diff(want, q.Render()); diff != "" {
			t.Errorf("Render() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("nested object field prefixing", func(t *testing.T) {
		q, err := ParseKQL(`identity: { first_name: "John" }`)
		if err != nil {
			t.Fatalf("ParseKQL() returned error: %v", err)
		}
		want := map[string]interface{}{"nested": map[string]interface{}{
			"path": "identity",
			"query": map[string]interface{}{
				"match_phrase": map[string]interface{}{"identity.first_name": "John"},
			},
			"score_mode": "none",
		}}
		if diff := cmp.Diff(want, q.Render()); diff != "" {
			t.Errorf("Render() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("lucene escape hatch", func(t *testing.T) {
		q, err := ParseLucene("a:b AND c:d")
		if err != nil {
			t.Fatalf("ParseLucene() returned error: %v", err)
		}
		want := map[string]interface{}{"query_string": map[string]interface{}{"query": "a:b AND c:d"}}
		if diff := cmp.Diff(want, q.Render()); diff != "" {
			t.Errorf("Render() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("render_as_kql of a decoded composite bool", func(t *testing.T) {
		q := &Bool{Filter: []Query{
			&Match{Field: "a", Value: "b", Operator: OperatorOr},
			&MatchPhrase{Field: "c", Value: "d"},
		}}
		got, err := RenderAsKQL(q)
		if err != nil {
			t.Fatalf("RenderAsKQL() returned error: %v", err)
		}
		want := `a: b and c: "d"`
		if got != want {
			t.Errorf("RenderAsKQL() = %q, want %q", got, want)
		}
	})

	t.Run("malformed double colon reports precise position", func(t *testing.T) {
		_, err := ParseKQL("double_it:: and_give_it_to_the_next_person")
		if err == nil {
			t.Fatal("expected a DecodeError")
		}
		de, ok := err.(*DecodeError)
		if !ok {
			t.Fatalf("expected *DecodeError, got %T", err)
		}
		if de.Line != 1 || de.Column != 11 {
			t.Errorf("got position %d:%d, want 1:11", de.Line, de.Column)
		}
	})

	t.Run("numeric range promotion", func(t *testing.T) {
		q, err := ParseKQL("status: >= 400")
		if err != nil {
			t.Fatalf("ParseKQL() returned error: %v", err)
		}
		want := map[string]interface{}{"range": map[string]interface{}{"status": map[string]interface{}{"gte": int64(400)}}}
		if diff := cmp.Diff(want, q.Render()); diff != "" {
			t.Errorf("Render() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEmptyInputYieldsMatchAll(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t"} {
		q, err := ParseKQL(src)
		if err != nil {
			t.Fatalf("ParseKQL(%q) returned error: %v", src, err)
		}
		if _, ok := q.(*MatchAll); !ok {
			t.Errorf("ParseKQL(%q) = %T, want *MatchAll", src, q)
		}
	}
}

func TestUnterminatedQuoteErrorsAtOpeningQuote(t *testing.T) {
	_, err := ParseKQL(`foo: "bar`)
	de, ok := err.(*DecodeError)
	if !ok {
		t.Fatalf("expected *DecodeError, got %T (%v)", err, err)
	}
	if de.Column != 6 {
		t.Errorf("got column %d, want 6 (the opening quote)", de.Column)
	}
}

func TestParseKQLThenRenderAsKQLRoundTrips(t *testing.T) {
	sources := []string{
		"a: b",
		`name: "John Smith"`,
		"status >= 400",
		"not a: b",
		"a: b and c: d",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			q, err := ParseKQL(src)
			if err != nil {
				t.Fatalf("ParseKQL(%q) returned error: %v", src, err)
			}
			got, err := RenderAsKQL(q)
			if err != nil {
				t.Fatalf("RenderAsKQL() returned error: %v", err)
			}
			if got != src {
				t.Errorf("round trip: ParseKQL(%q) -> RenderAsKQL() = %q", src, got)
			}
		})
	}
}

func TestRenderAsKQLParenthesizesMultiClauseOrGroup(t *testing.T) {
	// A flattened multi-way OR renders as a parenthesized group rather than
	// bare clauses, since a bare "a: b or c: d" would be ambiguous once
	// embedded in a larger AND expression.
	q, err := ParseKQL("a: b or c: d")
	if err != nil {
		t.Fatalf("ParseKQL() returned error: %v", err)
	}
	got, err := RenderAsKQL(q)
	if err != nil {
		t.Fatalf("RenderAsKQL() returned error: %v", err)
	}
	want := "(a: b or c: d)"
	if got != want {
		t.Errorf("RenderAsKQL() = %q, want %q", got, want)
	}
}
