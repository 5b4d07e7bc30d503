package filter

import (
	"strings"

	"github.com/hupe1980/kustomize-upstream/internal/k8s"
)

// Matcher selects resources by kind, name and namespace. Unset fields impose
// no constraint; set fields must all match, compared case-insensitively.
type Matcher struct {
	Kind      *string `mapstructure:"kind" json:"kind,omitempty"`
	Name      *string `mapstructure:"name" json:"name,omitempty"`
	Namespace *string `mapstructure:"namespace" json:"namespace,omitempty"`
}

// Matches reports whether r satisfies every set field of m. A namespace
// constraint never matches a resource without a namespace.
func (m Matcher) Matches(r *k8s.Resource) bool {
	if m.Kind != nil && !strings.EqualFold(*m.Kind, r.Kind) {
		return false
	}

	if m.Name != nil && !strings.EqualFold(*m.Name, r.Name) {
		return false
	}

	if m.Namespace != nil {
		if r.Namespace == nil || !strings.EqualFold(*m.Namespace, *r.Namespace) {
			return false
		}
	}

	return true
}

// String renders the matcher as a selector for log output.
func (m Matcher) String() string {
	var parts []string

	if m.Kind != nil {
		parts = append(parts, "kind="+*m.Kind)
	}

	if m.Name != nil {
		parts = append(parts, "name="+*m.Name)
	}

	if m.Namespace != nil {
		parts = append(parts, "namespace="+*m.Namespace)
	}

	if len(parts) == 0 {
		return "*"
	}

	return strings.Join(parts, ",")
}
