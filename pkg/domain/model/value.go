package model

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Answer values and condition values arrive as decoded JSON (string, float64,
// bool, nil, []any, map[string]any) or as the Go equivalents used by callers
// and by the stores (int64 from Firestore, []string from tests).

// asList returns v as a slice of elements. ok is false when v is not a list.
func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, true
	case string, nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asObject returns v as a string keyed map
func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// asNumber normalizes any Go numeric type to float64
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// strictEqual compares scalars by type and value. Lists and objects are never
// equal to anything, as two separately decoded JSON values never share
// identity.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		return ok && na == nb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

// stringify renders v the way JavaScript's String() renders a JSON value
func stringify(v any) string {
	if v == nil {
		return "null"
	}
	if n, ok := asNumber(v); ok {
		return formatNumber(n)
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if list, ok := asList(v); ok {
		return joinValues(list, ",")
	}
	if _, ok := asObject(v); ok {
		return "[object Object]"
	}
	return reflect.ValueOf(v).String()
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	if abs := math.Abs(n); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return formatExponent(n)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// formatExponent writes n as "1.5e+21" and "1e-7". strconv pads the exponent
// to two digits, which is trimmed.
func formatExponent(n float64) string {
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// isFalsy reports JavaScript falsiness for a JSON value
func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	if n, ok := asNumber(v); ok {
		return n == 0 || math.IsNaN(n)
	}
	switch x := v.(type) {
	case string:
		return x == ""
	case bool:
		return !x
	}
	return false
}
