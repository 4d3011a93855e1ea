package interceptor

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// ViewKind identifies how a component is being called.
type ViewKind int

const (
	// ViewBusiness is the plain business interface; errors keep the
	// container family.
	ViewBusiness ViewKind = iota
	// ViewLocal is the 2.x local interface.
	ViewLocal
	// ViewRemote is the 2.x remote interface.
	ViewRemote
)

func (v ViewKind) String() string {
	switch v {
	case ViewLocal:
		return "local"
	case ViewRemote:
		return "remote"
	default:
		return "business"
	}
}

// Key is a typed key for private attachments.
type Key[T any] struct {
	name string
}

// NewKey creates a key. Keys compare by identity, not by name.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string { return k.name }

// Private attachment keys used by the built-in stages.
var (
	ComponentKey         = NewKey[*ejb.Component]("component")
	CancellationFlagKey  = NewKey[*CancellationFlag]("cancellation-flag")
	ViewKindKey          = NewKey[ViewKind]("view-kind")
	DiagnosticContextKey = NewKey[logger.Fields]("diagnostic-context")
	InvocationIDKey      = NewKey[string]("invocation-id")
	SessionIDKey         = NewKey[string]("session-id")
	ExceptionFamilyKey   = NewKey[ejb.Family]("exception-family")
)

// Context is the per-invocation state handed down the chain. It is owned by
// one goroutine at a time; the async stage hands a Clone to the worker.
type Context struct {
	ctx      context.Context
	Created  time.Time
	Method   *ejb.Method
	Args     []any
	Instance ejb.Instance

	private map[any]any
}

// NewContext starts an invocation of method on comp. A fresh invocation ID
// is attached.
func NewContext(ctx context.Context, comp *ejb.Component, method *ejb.Method, args []any) *Context {
	ic := &Context{
		ctx:     ctx,
		Created: time.Now(),
		Method:  method,
		Args:    args,
		private: make(map[any]any),
	}
	Put(ic, ComponentKey, comp)
	Put(ic, InvocationIDKey, ulid.Make().String())
	return ic
}

// Context returns the Go context of the invocation.
func (c *Context) Context() context.Context { return c.ctx }

// SetContext replaces the Go context seen by later stages.
func (c *Context) SetContext(ctx context.Context) { c.ctx = ctx }

// Component returns the component being invoked.
func (c *Context) Component() *ejb.Component {
	comp, _ := Get(c, ComponentKey)
	return comp
}

// InvocationID returns the ID attached by NewContext.
func (c *Context) InvocationID() string {
	id, _ := Get(c, InvocationIDKey)
	return id
}

// Clone copies the invocation for hand-off to another goroutine.
// Attachments and arguments are copied shallowly.
func (c *Context) Clone() *Context {
	return &Context{
		ctx:      c.ctx,
		Created:  c.Created,
		Method:   c.Method,
		Args:     slices.Clone(c.Args),
		Instance: c.Instance,
		private:  maps.Clone(c.private),
	}
}

// Put attaches v under k.
func Put[T any](c *Context, k *Key[T], v T) {
	c.private[k] = v
}

// Get returns the value attached under k.
func Get[T any](c *Context, k *Key[T]) (T, bool) {
	v, ok := c.private[k].(T)
	return v, ok
}

// Delete removes the attachment under k.
func Delete[T any](c *Context, k *Key[T]) {
	delete(c.private, k)
}
