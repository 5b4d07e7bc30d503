package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SerializeOptions configures the canonical YAML serializer.
type SerializeOptions struct {
	// Indent is the number of spaces per indentation level (default: 2).
	Indent int
}

// DefaultSerializeOptions returns sensible defaults.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{Indent: 2}
}

// SerializeDocument encodes a decoded manifest document as YAML. Mapping
// keys are emitted in sorted order, not in the order of the source
// document, so equal documents always produce equal bytes. Comments and
// anchors of the source are not preserved.
func SerializeDocument(obj map[string]interface{}, opts SerializeOptions) ([]byte, error) {
	if opts.Indent == 0 {
		opts.Indent = 2
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(opts.Indent)

	if err := enc.Encode(obj); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	b := buf.Bytes()

	// Ensure trailing newline.
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b, nil
}
