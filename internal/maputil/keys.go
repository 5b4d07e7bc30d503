// Package maputil provides helpers for the generic document trees produced
// by the YAML decoder.
package maputil

import "fmt"

// NormalizeKeys returns a copy of v in which every mapping is a
// map[string]interface{}. The YAML decoder produces map[interface{}]interface{}
// for mappings with non-string keys (e.g. `1: one` or `true: yes`); those keys
// are rendered with fmt so that the tree can be walked with the unstructured
// accessors and re-encoded as JSON.
func NormalizeKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = NormalizeKeys(item)
		}

		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = NormalizeKeys(item)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = NormalizeKeys(item)
		}

		return out
	default:
		return v
	}
}
