// Package translate implements the dialect translation engine: request and
// response conversion through the OpenAI-Chat-Completions pivot, and the
// stateful SSE stream translator.
package translate

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// splitPassthrough walks the top-level keys of a JSON object and returns
// every key NOT in known as a raw passthrough value, so that re-encoding to
// the same dialect can reproduce fields the typed struct doesn't model.
func splitPassthrough(body []byte, known map[string]bool) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if !known[k] {
			out[k] = json.RawMessage(value.Raw)
		}
		return true
	})
	return out
}

// mergePassthrough injects every passthrough entry into body, skipping keys
// the typed encoder already emitted (it never clobbers a real field).
func mergePassthrough(body []byte, pt map[string]json.RawMessage) []byte {
	for k, v := range pt {
		if gjson.GetBytes(body, gjsonEscape(k)).Exists() {
			continue
		}
		next, err := sjson.SetRawBytes(body, gjsonEscape(k), v)
		if err != nil {
			continue
		}
		body = next
	}
	return body
}

// gjsonEscape escapes path-metacharacters gjson/sjson treat specially
// (".", "*", "?") in what is always meant as a single literal top-level key.
func gjsonEscape(key string) string {
	out := make([]byte, 0, len(key)+4)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '.' || c == '*' || c == '?' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// stripSchemaNoise recursively removes "$schema" and "additionalProperties"
// from a JSON-schema document, which Gemini's tool-parameter validator
// rejects. This needs unbounded-depth recursion over arbitrary nesting,
// which doesn't fit gjson/sjson's path-addressed API, so it walks a decoded
// map/slice tree with the standard library instead.
func stripSchemaNoise(schema json.RawMessage) json.RawMessage {
	if len(schema) == 0 {
		return schema
	}
	var v any
	if err := json.Unmarshal(schema, &v); err != nil {
		return schema
	}
	cleaned := stripSchemaNoiseValue(v)
	out, err := json.Marshal(cleaned)
	if err != nil {
		return schema
	}
	return out
}

func stripSchemaNoiseValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == "$schema" || k == "additionalProperties" {
				continue
			}
			out[k] = stripSchemaNoiseValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripSchemaNoiseValue(val)
		}
		return out
	default:
		return v
	}
}
