package esdecode

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/kqldsl/kuery/internal/ast"
)

// DecodeJSON is a convenience wrapper around DecodeMap for callers (the
// kuerydemo CLI) holding raw JSON bytes rather than an already-decoded Go
// mapping. It parses with fastjson, then walks the resulting value tree into
// the map[string]interface{} shape DecodeMap expects.
func DecodeJSON(data []byte) (ast.Query, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	m, ok := fastjsonToGo(v).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level JSON value must be an object")
	}
	return DecodeMap(m)
}

// fastjsonToGo converts a fastjson.Value tree into the plain
// map[string]interface{}/[]interface{}/string/float64/bool/nil shape
// DecodeMap operates on.
func fastjsonToGo(v *fastjson.Value) interface{} {
	if v == nil {
		return nil
	}
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(map[string]interface{}, obj.Len())
		obj.Visit(func(k []byte, sub *fastjson.Value) {
			out[string(k)] = fastjsonToGo(sub)
		})
		return out
	case fastjson.TypeArray:
		arr := v.GetArray()
		out := make([]interface{}, len(arr))
		for i, sub := range arr {
			out[i] = fastjsonToGo(sub)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	default:
		return nil
	}
}
