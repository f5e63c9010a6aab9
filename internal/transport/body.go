package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Fields is the payload of a POST or PUT call. Values may be strings, booleans,
// numbers or lists; list elements are sent as strings.
type Fields map[string]any

// Body is a response body that either parsed as JSON or is kept as raw text.
type Body struct {
	JSON   any
	Text   string
	isJSON bool
}

func (b Body) IsJSON() bool { return b.isJSON }

func (b Body) Object() (map[string]any, bool) {
	obj, ok := b.JSON.(map[string]any)
	return obj, ok && b.isJSON
}

func (b Body) Array() ([]any, bool) {
	arr, ok := b.JSON.([]any)
	return arr, ok && b.isJSON
}

func (b Body) IsEmpty() bool {
	return !b.isJSON && strings.TrimSpace(b.Text) == ""
}

func (b Body) String() string {
	if !b.isJSON {
		return b.Text
	}
	raw, err := json.Marshal(b.JSON)
	if err != nil {
		return fmt.Sprint(b.JSON)
	}
	return string(raw)
}

// ParseBody decodes raw as JSON, keeping numbers as json.Number. Bytes that do
// not parse are returned as text.
func ParseBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{}
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return Body{Text: string(raw)}
	}
	return Body{JSON: v, isJSON: true}
}

// JSONBody wraps an already decoded value. It is mostly useful in tests.
func JSONBody(v any) Body {
	return Body{JSON: v, isJSON: true}
}

func encodeFields(fields Fields) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalizeField(v)
	}
	return json.Marshal(out)
}

func normalizeField(v any) any {
	switch x := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	case []string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return items
	default:
		return fmt.Sprint(v)
	}
}
