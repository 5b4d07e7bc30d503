package render

import (
	"fmt"
	"reflect"
	"strings"
	"text/template"

	sigsyaml "sigs.k8s.io/yaml"
)

func extraFuncs() template.FuncMap {
	return template.FuncMap{
		"pad3":   Pad3,
		"toYaml": ToYAML,
	}
}

// Pad3 formats a non-negative integer as a decimal string of at least three
// digits: 7 becomes "007", 123 stays "123". Any other value is an error.
func Pad3(v interface{}) (string, error) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return "", fmt.Errorf("pad3: expected a non-negative integer, got %d", rv.Int())
		}

		return fmt.Sprintf("%03d", rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%03d", rv.Uint()), nil
	default:
		return "", fmt.Errorf("pad3: expected a non-negative integer, got %T", v)
	}
}

// ToYAML encodes v as YAML without the trailing newline.
func ToYAML(v interface{}) (string, error) {
	data, err := sigsyaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toYaml: %w", err)
	}

	return strings.TrimSuffix(string(data), "\n"), nil
}
