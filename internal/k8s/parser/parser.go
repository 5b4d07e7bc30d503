// Package parser decodes multi-document YAML manifests into generic
// documents and Resources.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/kustomize-upstream/internal/k8s"
	"github.com/hupe1980/kustomize-upstream/internal/maputil"
)

// Document is one decoded YAML document of a multi-document stream.
type Document struct {
	// Index is the zero-based position of the document in the stream.
	Index int

	// Object is the decoded mapping, or nil when the document is empty or
	// not a mapping. Merge keys (<<) are already resolved.
	Object map[string]interface{}
}

// Resource builds the Resource for this document. It returns nil when the
// document carries no kind.
func (d Document) Resource() (*k8s.Resource, error) {
	return k8s.FromObject(d.Index, d.Object)
}

// Parser decodes raw manifests into documents.
type Parser interface {
	Parse(ctx context.Context, manifests []byte) ([]Document, error)
}

// compile-time interface conformance check.
var _ Parser = (*DefaultParser)(nil)

// DefaultParser is the default implementation of the Parser interface.
type DefaultParser struct{}

// NewParser creates a new DefaultParser.
func NewParser() *DefaultParser {
	return &DefaultParser{}
}

// Parse decodes every document of the stream in order. Empty and
// non-mapping documents are kept (with a nil Object) so that document
// indexes match their position in the source.
func (p *DefaultParser) Parse(ctx context.Context, manifests []byte) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(manifests))

	var docs []Document

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var raw interface{}

		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", index, err)
		}

		obj, _ := maputil.NormalizeKeys(raw).(map[string]interface{})
		docs = append(docs, Document{Index: index, Object: obj})
	}

	return docs, nil
}
