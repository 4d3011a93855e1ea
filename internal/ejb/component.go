package ejb

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ComponentKind is the session bean flavor.
type ComponentKind int

const (
	Stateless ComponentKind = iota
	Stateful
	Singleton
)

func (k ComponentKind) String() string {
	switch k {
	case Stateless:
		return "stateless"
	case Stateful:
		return "stateful"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// ResourceType is the management child type of the component.
func (k ComponentKind) ResourceType() string {
	return k.String() + "-session-bean"
}

// AsyncMode tells the dispatcher whether and how a method runs asynchronously.
type AsyncMode int

const (
	Sync AsyncMode = iota
	// AsyncVoid returns to the caller immediately with no result.
	AsyncVoid
	// AsyncFuture returns a Future the caller can wait on or cancel.
	AsyncFuture
)

func (m AsyncMode) String() string {
	switch m {
	case AsyncVoid:
		return "void"
	case AsyncFuture:
		return "future"
	default:
		return "none"
	}
}

// TxAttribute is the container-managed transaction attribute of a method.
type TxAttribute int

const (
	TxSupports TxAttribute = iota
	TxRequired
	TxRequiresNew
	TxMandatory
	TxNotSupported
	TxNever
)

func (t TxAttribute) String() string {
	switch t {
	case TxRequired:
		return "REQUIRED"
	case TxRequiresNew:
		return "REQUIRES_NEW"
	case TxMandatory:
		return "MANDATORY"
	case TxNotSupported:
		return "NOT_SUPPORTED"
	case TxNever:
		return "NEVER"
	default:
		return "SUPPORTS"
	}
}

// Permissions restricts who may call a method.
type Permissions struct {
	DenyAll bool
	// Roles lists the roles allowed. Empty with DenyAll unset permits all.
	Roles []string
}

// PermitAll allows every caller.
var PermitAll = Permissions{}

// DenyAll rejects every caller.
var DenyAll = Permissions{DenyAll: true}

// RolesAllowed permits callers holding any of roles.
func RolesAllowed(roles ...string) Permissions {
	return Permissions{Roles: roles}
}

// Allows reports whether id may call the method.
func (p Permissions) Allows(id Identity) bool {
	if p.DenyAll {
		return false
	}
	if len(p.Roles) == 0 {
		return true
	}
	for _, r := range p.Roles {
		if id.HasRole(r) {
			return true
		}
	}
	return false
}

// Instance is the bean instance a method runs against. Stateless and
// singleton beans receive nil; stateful beans receive their session state.
type Instance = map[string]any

// Invocation is what a business method sees.
type Invocation struct {
	Ctx      context.Context
	Args     []any
	Instance Instance
}

// MethodFunc implements a business method.
type MethodFunc func(inv *Invocation) (any, error)

// Method describes one business method.
type Method struct {
	Name        string
	Func        MethodFunc
	Async       AsyncMode
	Permissions Permissions
	Tx          TxAttribute
	// Remove ends the stateful session after a successful call.
	Remove bool
}

// Component is a deployed session bean.
type Component struct {
	Name       string
	Deployment string
	Kind       ComponentKind
	Methods    map[string]*Method

	// ApplicationErrors are errors the bean declares as business outcomes.
	// Matching uses errors.Is for values and errors.As for pointer types
	// given as typed nils, e.g. (*InsufficientFunds)(nil).
	ApplicationErrors []error
	// ApplicationErrorFunc classifies errors not covered by ApplicationErrors.
	ApplicationErrorFunc func(error) bool
	// Init builds the initial state of a stateful session.
	Init func() Instance
}

// Method looks up a method by name.
func (c *Component) Method(name string) (*Method, error) {
	m, ok := c.Methods[name]
	if !ok {
		return nil, NewError(KindEJB, "no method %s on %s", name, c.Name)
	}
	return m, nil
}

// MethodNames returns method names in sorted order.
func (c *Component) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for n := range c.Methods {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IsApplicationError reports whether err is a declared business outcome.
// Container errors never are.
func (c *Component) IsApplicationError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsError(err); ok {
		return false
	}
	for _, target := range c.ApplicationErrors {
		if errors.Is(err, target) || matchesType(err, target) {
			return true
		}
	}
	return c.ApplicationErrorFunc != nil && c.ApplicationErrorFunc(err)
}

func matchesType(err, target error) bool {
	tt := reflect.TypeOf(target)
	if tt == nil || tt.Kind() != reflect.Pointer || !reflect.ValueOf(target).IsNil() {
		return false
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if reflect.TypeOf(e) == tt {
			return true
		}
	}
	return false
}

// String renders deployment/name.
func (c *Component) String() string {
	return fmt.Sprintf("%s/%s", c.Deployment, c.Name)
}
