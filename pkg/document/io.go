package document

import (
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	errUtils "github.com/strata-config/strata/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultFileMode os.FileMode = 0o644

// FromJSON parses JSON bytes into a document value.
func FromJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ObjectFromJSON parses JSON bytes and requires the top level to be an object.
func ObjectFromJSON(data []byte) (map[string]any, error) {
	v, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errUtils.ErrNotAnObject
	}
	return obj, nil
}

// ToJSON serializes a document value to indented JSON with deterministic
// (sorted) object key order, so written profiles diff cleanly in git.
func ToJSON(v any) ([]byte, error) {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(j, '\n'), nil
}

// ReadFile reads and parses a JSON document file.
func ReadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := FromJSON(data)
	if err != nil {
		return nil, errUtils.WrapFile(err, path)
	}
	return v, nil
}

// ReadObjectFile reads a JSON file and requires a top-level object.
func ReadObjectFile(path string) (map[string]any, error) {
	v, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errUtils.WrapFile(errUtils.ErrNotAnObject, path)
	}
	return obj, nil
}

// WriteFile serializes a document value and writes it to the given path.
func WriteFile(path string, v any) error {
	data, err := ToJSON(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, defaultFileMode)
}

// SortedKeys returns the keys of a JSON object in lexical order.
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
