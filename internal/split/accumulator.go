package split

import "github.com/hupe1980/kustomize-upstream/internal/k8s"

// Package is a named bundle of resources written to one directory with one
// descriptor.
type Package struct {
	Name string

	// Resources are kept in assignment order, which is document order.
	Resources []*k8s.Resource
}

// Accumulator collects resources per package. A package exists only once a
// resource has been assigned to it.
type Accumulator struct {
	order    []string
	packages map[string]*Package
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{packages: make(map[string]*Package)}
}

// Assign appends r to the package called name, creating the package on
// first use.
func (a *Accumulator) Assign(r *k8s.Resource, name string) *Package {
	pkg, ok := a.packages[name]
	if !ok {
		pkg = &Package{Name: name}
		a.packages[name] = pkg
		a.order = append(a.order, name)
	}

	pkg.Resources = append(pkg.Resources, r)

	return pkg
}

// Get returns the package called name.
func (a *Accumulator) Get(name string) (*Package, bool) {
	pkg, ok := a.packages[name]
	return pkg, ok
}

// Packages returns the packages in the order they were created.
func (a *Accumulator) Packages() []*Package {
	out := make([]*Package, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.packages[name])
	}

	return out
}

// Snapshot returns the packages keyed by name.
func (a *Accumulator) Snapshot() map[string]*Package {
	out := make(map[string]*Package, len(a.packages))
	for name, pkg := range a.packages {
		out[name] = pkg
	}

	return out
}

// Len returns the number of packages.
func (a *Accumulator) Len() int {
	return len(a.order)
}
