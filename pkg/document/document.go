// Package document provides the in-memory representation of JSON
// configuration documents and the structural operations the rest of the
// engine builds on.
//
// Documents are plain Go values as produced by JSON decoding:
// `map[string]any` for objects, `[]any` for arrays, `string`, `float64`,
// `bool` and `nil` for scalars. An explicit JSON null is represented as a
// present key with a `nil` value, which is distinct from an absent key.
package document

import "reflect"

// IsObject reports whether v is a JSON object.
func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// IsArray reports whether v is a JSON array.
func IsArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// Clone returns a deep copy of a JSON value. Objects and arrays are copied
// recursively; scalars are returned as-is (they are immutable).
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneObject(t)
	case []any:
		result := make([]any, len(t))
		for i, item := range t {
			result[i] = Clone(item)
		}
		return result
	default:
		return v
	}
}

// CloneObject returns a deep copy of a JSON object.
func CloneObject(obj map[string]any) map[string]any {
	result := make(map[string]any, len(obj))
	for k, v := range obj {
		result[k] = Clone(v)
	}
	return result
}

// Equal reports deep structural equality of two JSON values. Object key
// order is never significant; array element order is.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
