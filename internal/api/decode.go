package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/transport"
)

func lookup(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func intField(obj map[string]any, keys ...string) (int64, bool) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		if f, err := x.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
	case float64:
		if x == math.Trunc(x) {
			return int64(x), true
		}
	case int64:
		return x, true
	case int:
		return int64(x), true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatField(obj map[string]any, keys ...string) (float64, bool) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func stringField(obj map[string]any, keys ...string) (string, bool) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}

func boolField(obj map[string]any, keys ...string) bool {
	v, ok := lookup(obj, keys...)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(x))
		return b
	case json.Number:
		n, err := x.Int64()
		return err == nil && n != 0
	}
	return false
}

func stringsField(obj map[string]any, keys ...string) []string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		parts := strings.Split(x, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intsField(obj map[string]any, keys ...string) []int64 {
	v, ok := lookup(obj, keys...)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(arr))
	for _, item := range arr {
		if n, ok := intField(map[string]any{"v": item}, "v"); ok {
			out = append(out, n)
		}
	}
	return out
}

func timeField(obj map[string]any, keys ...string) time.Time {
	s, ok := stringField(obj, keys...)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func objectOf(op string, body transport.Body) (map[string]any, error) {
	obj, ok := body.Object()
	if !ok {
		return nil, apperr.Shape(op, "expected json object")
	}
	return obj, nil
}

// listOf accepts a bare array, or an object whose key holds an array or null.
func listOf(op string, body transport.Body, key string) ([]map[string]any, error) {
	var items []any
	if arr, ok := body.Array(); ok {
		items = arr
	} else if obj, ok := body.Object(); ok {
		raw, present := obj[key]
		if !present {
			return nil, apperr.Shape(op, fmt.Sprintf("missing %q", key))
		}
		if raw == nil {
			return nil, nil
		}
		arr, ok := raw.([]any)
		if !ok {
			return nil, apperr.Shape(op, fmt.Sprintf("%q is not a list", key))
		}
		items = arr
	} else if body.IsJSON() && body.JSON == nil {
		return nil, nil
	} else {
		return nil, apperr.Shape(op, "expected json list")
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}
