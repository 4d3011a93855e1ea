package ejb

import (
	"context"
	"slices"
)

// Identity is the authenticated caller.
type Identity struct {
	Name  string
	Roles []string
}

// Anonymous is the identity of unauthenticated callers.
var Anonymous = Identity{Name: "anonymous"}

// HasRole reports whether the identity holds role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

type identityKey struct{}

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, or Anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
