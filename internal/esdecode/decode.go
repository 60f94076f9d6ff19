// Package esdecode implements the ES-DSL decoder: the inverse of
// internal/ast's Render, walking a decoded JSON object back into a Query AST
// so the KQL renderer's demo path has something to feed it. Dispatch is
// single-top-level-key driven, the same shape Render itself produces.
package esdecode

import (
	"fmt"
	"strconv"

	"github.com/kqldsl/kuery/internal/ast"
)

// DecodeMap decodes a single Query node from m, which must have exactly one
// top-level key drawn from the AST's variant set. Decoded nodes carry a
// zero Position: there is no source text to offset into once the caller
// already holds a parsed JSON mapping.
func DecodeMap(m map[string]interface{}) (ast.Query, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("query object must have exactly one key, got %d", len(m))
	}
	for key, val := range m {
		dec, ok := decoders[key]
		if !ok {
			return nil, fmt.Errorf("unknown query key %q", key)
		}
		return dec(val)
	}
	panic("unreachable")
}

var decoders = map[string]func(interface{}) (ast.Query, error){
	"match_all":           decodeMatchAll,
	"match_none":          decodeMatchNone,
	"match":               decodeMatch,
	"match_phrase":        decodeMatchPhrase,
	"match_phrase_prefix": decodeMatchPhrasePrefix,
	"multi_match":         decodeMultiMatch,
	"term":                decodeTerm,
	"exists":              decodeExists,
	"range":               decodeRange,
	"wildcard":            decodeWildcard,
	"regexp":              decodeRegexp,
	"fuzzy":               decodeFuzzy,
	"prefix":              decodePrefix,
	"nested":              decodeNested,
	"query_string":        decodeQueryString,
	"bool":                decodeBool,
}

func asMap(v interface{}, what string) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", what)
	}
	return m, nil
}

func asString(v interface{}, what string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", what)
	}
	return s, nil
}

// singleFieldValue returns the lone key/value pair of a field-keyed query
// body, e.g. {"http.request.method": "GET"}.
func singleFieldValue(v interface{}, what string) (string, interface{}, error) {
	m, err := asMap(v, what)
	if err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("%s must have exactly one field key, got %d", what, len(m))
	}
	for field, val := range m {
		return field, val, nil
	}
	panic("unreachable")
}

func decodeMatchAll(interface{}) (ast.Query, error) { return &ast.MatchAll{}, nil }
func decodeMatchNone(interface{}) (ast.Query, error) { return &ast.MatchNone{}, nil }

func decodeMatch(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "match")
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case string:
		return &ast.Match{Field: field, Value: x, Operator: ast.OperatorOr}, nil
	case map[string]interface{}:
		query, err := asString(x["query"], "match.query")
		if err != nil {
			return nil, err
		}
		op := ast.OperatorOr
		if opRaw, ok := x["operator"]; ok {
			opStr, err := asString(opRaw, "match.operator")
			if err != nil {
				return nil, err
			}
			if opStr == "and" {
				op = ast.OperatorAnd
			}
		}
		return &ast.Match{Field: field, Value: query, Operator: op}, nil
	default:
		return nil, fmt.Errorf("match value must be a string or object")
	}
}

func decodeMatchPhrase(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "match_phrase")
	if err != nil {
		return nil, err
	}
	s, err := asString(val, "match_phrase value")
	if err != nil {
		return nil, err
	}
	return &ast.MatchPhrase{Field: field, Value: s}, nil
}

func decodeMatchPhrasePrefix(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "match_phrase_prefix")
	if err != nil {
		return nil, err
	}
	s, err := asString(val, "match_phrase_prefix value")
	if err != nil {
		return nil, err
	}
	return &ast.MatchPhrasePrefix{Field: field, Value: s}, nil
}

func decodeMultiMatch(v interface{}) (ast.Query, error) {
	m, err := asMap(v, "multi_match")
	if err != nil {
		return nil, err
	}
	query, err := asString(m["query"], "multi_match.query")
	if err != nil {
		return nil, err
	}
	rawFields, ok := m["fields"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("multi_match.fields must be an array")
	}
	fields := make([]string, len(rawFields))
	for i, rf := range rawFields {
		s, err := asString(rf, "multi_match.fields[]")
		if err != nil {
			return nil, err
		}
		fields[i] = s
	}
	mm := &ast.MultiMatch{Fields: fields, Value: query}
	if t, ok := m["type"]; ok {
		s, err := asString(t, "multi_match.type")
		if err != nil {
			return nil, err
		}
		mm.Type = s
	}
	if o, ok := m["operator"]; ok {
		s, err := asString(o, "multi_match.operator")
		if err != nil {
			return nil, err
		}
		if s == "and" {
			mm.Operator = ast.OperatorAnd
		} else {
			mm.Operator = ast.OperatorOr
		}
	}
	return mm, nil
}

func decodeTerm(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "term")
	if err != nil {
		return nil, err
	}
	s, err := stringifyScalar(val, "term value")
	if err != nil {
		return nil, err
	}
	return &ast.Term{Field: field, Value: s}, nil
}

func decodeExists(v interface{}) (ast.Query, error) {
	m, err := asMap(v, "exists")
	if err != nil {
		return nil, err
	}
	field, err := asString(m["field"], "exists.field")
	if err != nil {
		return nil, err
	}
	return &ast.Exists{Field: field}, nil
}

func decodeRange(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "range")
	if err != nil {
		return nil, err
	}
	bounds, err := asMap(val, "range bounds")
	if err != nil {
		return nil, err
	}
	getBound := func(key string) (*string, error) {
		raw, ok := bounds[key]
		if !ok {
			return nil, nil
		}
		s, err := stringifyScalar(raw, "range."+key)
		if err != nil {
			return nil, err
		}
		return &s, nil
	}
	gt, err := getBound("gt")
	if err != nil {
		return nil, err
	}
	gte, err := getBound("gte")
	if err != nil {
		return nil, err
	}
	lt, err := getBound("lt")
	if err != nil {
		return nil, err
	}
	lte, err := getBound("lte")
	if err != nil {
		return nil, err
	}
	var timeZone *string
	if tz, ok := bounds["time_zone"]; ok {
		s, err := asString(tz, "range.time_zone")
		if err != nil {
			return nil, err
		}
		timeZone = &s
	}
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return nil, fmt.Errorf("range %q has no bounds", field)
	}
	return &ast.Range{Field: field, Gt: gt, Gte: gte, Lt: lt, Lte: lte, TimeZone: timeZone}, nil
}

func decodeWildcard(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "wildcard")
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case string:
		return &ast.Wildcard{Field: field, Value: x}, nil
	case map[string]interface{}:
		s, err := asString(x["value"], "wildcard.value")
		if err != nil {
			return nil, err
		}
		return &ast.Wildcard{Field: field, Value: s}, nil
	default:
		return nil, fmt.Errorf("wildcard value must be a string or object")
	}
}

func decodeRegexp(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "regexp")
	if err != nil {
		return nil, err
	}
	s, err := asString(val, "regexp value")
	if err != nil {
		return nil, err
	}
	return &ast.Regexp{Field: field, Value: s}, nil
}

func decodeFuzzy(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "fuzzy")
	if err != nil {
		return nil, err
	}
	switch x := val.(type) {
	case string:
		return &ast.Fuzzy{Field: field, Value: x}, nil
	case map[string]interface{}:
		s, err := asString(x["value"], "fuzzy.value")
		if err != nil {
			return nil, err
		}
		f := &ast.Fuzzy{Field: field, Value: s}
		if fuzz, ok := x["fuzziness"]; ok {
			fs, err := stringifyScalar(fuzz, "fuzzy.fuzziness")
			if err != nil {
				return nil, err
			}
			f.Fuzziness = fs
		}
		return f, nil
	default:
		return nil, fmt.Errorf("fuzzy value must be a string or object")
	}
}

func decodePrefix(v interface{}) (ast.Query, error) {
	field, val, err := singleFieldValue(v, "prefix")
	if err != nil {
		return nil, err
	}
	s, err := asString(val, "prefix value")
	if err != nil {
		return nil, err
	}
	return &ast.Prefix{Field: field, Value: s}, nil
}

func decodeNested(v interface{}) (ast.Query, error) {
	m, err := asMap(v, "nested")
	if err != nil {
		return nil, err
	}
	path, err := asString(m["path"], "nested.path")
	if err != nil {
		return nil, err
	}
	queryMap, err := asMap(m["query"], "nested.query")
	if err != nil {
		return nil, err
	}
	inner, err := DecodeMap(queryMap)
	if err != nil {
		return nil, err
	}
	scoreMode := "none"
	if sm, ok := m["score_mode"]; ok {
		s, err := asString(sm, "nested.score_mode")
		if err != nil {
			return nil, err
		}
		scoreMode = s
	}
	return &ast.Nested{Path: path, Query: inner, ScoreMode: scoreMode}, nil
}

func decodeQueryString(v interface{}) (ast.Query, error) {
	m, err := asMap(v, "query_string")
	if err != nil {
		return nil, err
	}
	s, err := asString(m["query"], "query_string.query")
	if err != nil {
		return nil, err
	}
	return &ast.QueryString{Value: s}, nil
}

func decodeBool(v interface{}) (ast.Query, error) {
	m, err := asMap(v, "bool")
	if err != nil {
		return nil, err
	}
	must, err := decodeClauseList(m["must"], "bool.must")
	if err != nil {
		return nil, err
	}
	should, err := decodeClauseList(m["should"], "bool.should")
	if err != nil {
		return nil, err
	}
	mustNot, err := decodeClauseList(m["must_not"], "bool.must_not")
	if err != nil {
		return nil, err
	}
	filter, err := decodeClauseList(m["filter"], "bool.filter")
	if err != nil {
		return nil, err
	}
	var minShould *int
	if raw, ok := m["minimum_should_match"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("bool.minimum_should_match must be a number")
		}
		n := int(f)
		minShould = &n
	}
	return &ast.Bool{Must: must, Should: should, MustNot: mustNot, Filter: filter, MinimumShouldMatch: minShould}, nil
}

// decodeClauseList accepts either a single clause object or a list of
// clause objects, matching ElasticSearch's own leniency here.
func decodeClauseList(v interface{}, what string) ([]ast.Query, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case map[string]interface{}:
		q, err := DecodeMap(x)
		if err != nil {
			return nil, err
		}
		return []ast.Query{q}, nil
	case []interface{}:
		out := make([]ast.Query, len(x))
		for i, elem := range x {
			em, ok := elem.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object", what, i)
			}
			q, err := DecodeMap(em)
			if err != nil {
				return nil, err
			}
			out[i] = q
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an object or an array of objects", what)
	}
}

// stringifyScalar accepts a JSON string or number and renders it back to the
// string form internal/ast's Range/Term/Fuzzy bounds are stored in.
func stringifyScalar(v interface{}, what string) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), nil
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("%s must be a string or number", what)
	}
}
