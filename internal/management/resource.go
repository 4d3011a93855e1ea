package management

import (
	"maps"
	"slices"
)

// Resource is a node of the model tree.
//
// Attributes are fixed when the resource is built. Children are attached and
// detached through Model.Register and Model.Remove, which hold the model lock.
type Resource struct {
	description string
	attributes  []AttributeDefinition
	children    map[string]map[string]*Resource
}

// NewResource builds a resource with the given attributes.
func NewResource(description string, attrs ...AttributeDefinition) *Resource {
	return &Resource{
		description: description,
		attributes:  slices.Clone(attrs),
		children:    make(map[string]map[string]*Resource),
	}
}

// Description returns the human readable description.
func (r *Resource) Description() string { return r.description }

// Attributes returns the attribute definitions in declaration order.
func (r *Resource) Attributes() []AttributeDefinition {
	return slices.Clone(r.attributes)
}

// Attribute looks up an attribute definition by name.
func (r *Resource) Attribute(name string) (AttributeDefinition, bool) {
	for _, a := range r.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeDefinition{}, false
}

func (r *Resource) child(p PathElement) *Resource {
	return r.children[p.Key][p.Value]
}

func (r *Resource) childTypes() []string {
	return slices.Sorted(maps.Keys(r.children))
}

func (r *Resource) childNames(typ string) []string {
	return slices.Sorted(maps.Keys(r.children[typ]))
}

func (r *Resource) attach(p PathElement, child *Resource) {
	byName, ok := r.children[p.Key]
	if !ok {
		byName = make(map[string]*Resource)
		r.children[p.Key] = byName
	}
	byName[p.Value] = child
}

func (r *Resource) detach(p PathElement) bool {
	byName, ok := r.children[p.Key]
	if !ok {
		return false
	}
	if _, ok := byName[p.Value]; !ok {
		return false
	}
	delete(byName, p.Value)
	if len(byName) == 0 {
		delete(r.children, p.Key)
	}
	return true
}
