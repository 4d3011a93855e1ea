package management

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateResource is returned when registering over an existing resource.
var ErrDuplicateResource = errors.New("management: resource already registered")

// Model is the resource tree. It is safe for concurrent use.
//
// Structural changes hold the write lock; lookups hold the read lock only
// while resolving addresses, never while a ReadHandler runs.
type Model struct {
	mu   sync.RWMutex
	root *Resource
}

// NewModel creates a model with an empty root resource.
func NewModel() *Model {
	return &Model{root: NewResource("kernel root")}
}

// Register attaches res at addr. The parent must already exist.
func (m *Model) Register(addr Address, res *Resource) error {
	if len(addr) == 0 {
		return fmt.Errorf("%w: root", ErrDuplicateResource)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.resolve(addr.Parent())
	if parent == nil {
		return UnknownResource(addr.Parent())
	}
	if parent.child(addr.Last()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, addr)
	}
	parent.attach(addr.Last(), res)
	return nil
}

// Ensure makes sure a resource exists at addr, creating it and any
// missing ancestors as attribute-less resources.
func (m *Model) Ensure(addr Address, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.root
	for i, p := range addr {
		next := r.child(p)
		if next == nil {
			desc := p.Key
			if i == len(addr)-1 {
				desc = description
			}
			next = NewResource(desc)
			r.attach(p, next)
		}
		r = next
	}
}

// Remove detaches the resource at addr together with its subtree.
// It reports whether a resource was removed.
func (m *Model) Remove(addr Address) bool {
	if len(addr) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.resolve(addr.Parent())
	if parent == nil {
		return false
	}
	return parent.detach(addr.Last())
}

// Resource returns the resource registered at addr.
func (m *Model) Resource(addr Address) (*Resource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.resolve(addr)
	return r, r != nil
}

// ChildTypes returns the sorted child types of the resource at addr.
func (m *Model) ChildTypes(addr Address) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.resolve(addr)
	if r == nil {
		return nil, UnknownResource(addr)
	}
	return r.childTypes(), nil
}

// ChildNames returns the sorted child names of one type.
func (m *Model) ChildNames(addr Address, typ string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.resolve(addr)
	if r == nil {
		return nil, UnknownResource(addr)
	}
	return r.childNames(typ), nil
}

// Node is one resource visited by Walk.
type Node struct {
	Address    Address
	Attributes []AttributeDefinition
}

// Walk visits addr and all its descendants in depth-first, sorted order.
// The tree is snapshotted under the read lock; fn runs without it.
func (m *Model) Walk(addr Address, fn func(Node) error) error {
	m.mu.RLock()
	start := m.resolve(addr)
	if start == nil {
		m.mu.RUnlock()
		return UnknownResource(addr)
	}
	var nodes []Node
	var collect func(Address, *Resource)
	collect = func(a Address, r *Resource) {
		nodes = append(nodes, Node{Address: a, Attributes: r.Attributes()})
		for _, typ := range r.childTypes() {
			for _, name := range r.childNames(typ) {
				p := PathElement{Key: typ, Value: name}
				collect(a.Append(p), r.child(p))
			}
		}
	}
	collect(addr, start)
	m.mu.RUnlock()

	for _, n := range nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) resolve(addr Address) *Resource {
	r := m.root
	for _, p := range addr {
		r = r.child(p)
		if r == nil {
			return nil
		}
	}
	return r
}

// ReadAttribute reads one attribute and returns its value. A failure
// recorded by the handler is returned as the error.
func (m *Model) ReadAttribute(ctx context.Context, addr Address, name string) (any, error) {
	res, ok := m.Resource(addr)
	if !ok {
		return nil, UnknownResource(addr)
	}
	attr, ok := res.Attribute(name)
	if !ok {
		return nil, UnknownAttribute(name)
	}
	return m.read(ctx, addr, attr)
}

func (m *Model) read(ctx context.Context, addr Address, attr AttributeDefinition) (any, error) {
	if attr.Read == nil {
		return nil, nil
	}
	oc := newOperationContext(ctx, addr, attr.Name)
	attr.Read(oc)
	if oc.failure != nil {
		return nil, oc.failure
	}
	return oc.result, nil
}

// Execute runs op and returns its result. Failures are reported in the
// result's failure description, never as a Go error.
func (m *Model) Execute(ctx context.Context, op Operation) Result {
	v, err := m.execute(ctx, op)
	if err != nil {
		return Result{Outcome: OutcomeFailed, FailureDescription: err.Error()}
	}
	return Result{Outcome: OutcomeSuccess, Result: v}
}

func (m *Model) execute(ctx context.Context, op Operation) (any, error) {
	res, ok := m.Resource(op.Address)
	if !ok {
		return nil, UnknownResource(op.Address)
	}

	switch op.Name {
	case OpReadAttribute:
		name, ok := op.stringParam("name")
		if !ok || name == "" {
			return nil, InvalidParameter("name", "is required")
		}
		return m.ReadAttribute(ctx, op.Address, name)

	case OpReadResource:
		recursive, err := op.boolParam("recursive")
		if err != nil {
			return nil, err
		}
		runtime, err := op.boolParam("include-runtime")
		if err != nil {
			return nil, err
		}
		return m.readResource(ctx, op.Address, res, recursive, runtime), nil

	case OpReadChildrenNames:
		typ, ok := op.stringParam("child-type")
		if !ok || typ == "" {
			return nil, InvalidParameter("child-type", "is required")
		}
		return m.ChildNames(op.Address, typ)

	case OpReadResourceDescription:
		return m.describe(op.Address, res), nil

	default:
		return nil, UnknownOperation(op.Name)
	}
}

// readResource renders attributes and children. Runtime attributes are
// included only when asked for; a runtime attribute that fails to read is
// rendered as undefined.
func (m *Model) readResource(ctx context.Context, addr Address, res *Resource, recursive, runtime bool) map[string]any {
	out := make(map[string]any)
	for _, attr := range res.Attributes() {
		if attr.Metric && !runtime {
			continue
		}
		v, err := m.read(ctx, addr, attr)
		if err != nil {
			v = nil
		}
		out[attr.Name] = v
	}

	m.mu.RLock()
	types := res.childTypes()
	children := make(map[string][]string, len(types))
	for _, typ := range types {
		children[typ] = res.childNames(typ)
	}
	m.mu.RUnlock()

	for typ, names := range children {
		byName := make(map[string]any, len(names))
		for _, name := range names {
			if !recursive {
				byName[name] = nil
				continue
			}
			childAddr := addr.Child(typ, name)
			child, ok := m.Resource(childAddr)
			if !ok {
				continue
			}
			byName[name] = m.readResource(ctx, childAddr, child, true, runtime)
		}
		out[typ] = byName
	}
	return out
}

func (m *Model) describe(addr Address, res *Resource) map[string]any {
	attrs := make(map[string]any)
	for _, a := range res.Attributes() {
		attrs[a.Name] = a.describe()
	}

	m.mu.RLock()
	types := res.childTypes()
	m.mu.RUnlock()

	return map[string]any{
		"description": res.Description(),
		"address":     addr.String(),
		"attributes":  attrs,
		"children":    types,
	}
}
