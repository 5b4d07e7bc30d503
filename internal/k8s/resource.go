// Package k8s provides the resource identity model for parsed manifests.
package k8s

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ErrAlreadyPlaced is returned by Place when a resource already has an
// output location.
var ErrAlreadyPlaced = errors.New("resource already placed")

// Resource is the identity of one manifest document: its position in the
// document stream, kind, name, optional namespace and, once rendered, the
// file it is written to.
type Resource struct {
	// Index is the zero-based ordinal of the document among all parsed
	// documents, including the ones that were skipped.
	Index int

	// Kind is the manifest kind (e.g. "ConfigMap").
	Kind string

	// Name is metadata.name.
	Name string

	// Namespace is metadata.namespace; nil when the manifest has none.
	Namespace *string

	// Filename and Path are set by Place once the output location has been
	// rendered.
	Filename *string
	Path     *string

	// Object is the full decoded document.
	Object *unstructured.Unstructured
}

// FromObject builds a Resource from a decoded document. It returns nil (and
// no error) when the document has no string kind; such documents are not
// resources but still occupy their index. A resource without a string
// metadata.name is an error.
func FromObject(index int, obj map[string]interface{}) (*Resource, error) {
	if obj == nil {
		return nil, nil
	}

	kind, found, err := unstructured.NestedString(obj, "kind")
	if err != nil || !found || kind == "" {
		return nil, nil
	}

	name, found, err := unstructured.NestedString(obj, "metadata", "name")
	if err != nil {
		return nil, fmt.Errorf("document %d (%s): %w", index, kind, err)
	}

	if !found {
		return nil, fmt.Errorf("document %d (%s): metadata.name is missing", index, kind)
	}

	r := &Resource{
		Index:  index,
		Kind:   kind,
		Name:   name,
		Object: &unstructured.Unstructured{Object: obj},
	}

	if ns, ok, nsErr := unstructured.NestedString(obj, "metadata", "namespace"); nsErr == nil && ok {
		r.Namespace = &ns
	}

	return r, nil
}

// Place records the rendered output location. It may be called once.
func (r *Resource) Place(filename, path string) error {
	if r.Filename != nil || r.Path != nil {
		return fmt.Errorf("%s: %w", r.QualifiedName(), ErrAlreadyPlaced)
	}

	r.Filename = &filename
	r.Path = &path

	return nil
}

// NamespaceOrEmpty returns the namespace, or "" for cluster-scoped or
// namespace-less manifests.
func (r *Resource) NamespaceOrEmpty() string {
	if r.Namespace == nil {
		return ""
	}

	return *r.Namespace
}

// QualifiedName returns "kind/name" for display purposes.
func (r *Resource) QualifiedName() string {
	return r.Kind + "/" + r.Name
}

// APIVersion returns the apiVersion of the underlying object, if any.
func (r *Resource) APIVersion() string {
	if r.Object == nil {
		return ""
	}

	return r.Object.GetAPIVersion()
}
