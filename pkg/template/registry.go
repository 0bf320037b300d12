// Package template stores named configuration templates and hands out
// independent copies of them.
package template

import (
	"sort"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/util"
)

// Cloner is implemented by template values that can produce a deep copy
type Cloner[T any] interface {
	Clone() T
}

// Registry maps template names to prototypes. Stored values are copied on
// the way in and on the way out, so no caller ever holds the prototype.
type Registry[T Cloner[T]] struct {
	kind  string
	items map[string]T
}

// NewRegistry creates an empty registry for the given template kind
func NewRegistry[T Cloner[T]](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, items: make(map[string]T)}
}

// Store inserts a template. A template with the same name is replaced.
func (r *Registry[T]) Store(name string, value T) {
	if _, exists := r.items[name]; exists {
		util.WithField("template", name).Debugf("Replacing %s template", r.kind)
	}
	r.items[name] = value.Clone()
}

// Resolve returns a copy of the named template
func (r *Registry[T]) Resolve(name string) (T, error) {
	v, ok := r.items[name]
	if !ok {
		var zero T
		return zero, &util.TemplateError{Kind: r.kind, Name: name}
	}
	return v.Clone(), nil
}

// Has reports whether a template with the given name is stored
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.items[name]
	return ok
}

// Names returns the stored template names in sorted order
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.items))
	for n := range r.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored templates
func (r *Registry[T]) Len() int {
	return len(r.items)
}

// Registries groups the template registries of one loader session
type Registries struct {
	OSPF *Registry[*model.OspfConfig]
	BFD  *Registry[*model.BfdConfig]
}

// NewRegistries creates empty registries
func NewRegistries() *Registries {
	return &Registries{
		OSPF: NewRegistry[*model.OspfConfig]("ospf"),
		BFD:  NewRegistry[*model.BfdConfig]("bfd"),
	}
}
