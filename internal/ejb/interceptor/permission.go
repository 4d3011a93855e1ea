package interceptor

import "github.com/wildfly/wildfly-sub133/internal/ejb"

// Permission checks the method permissions against the caller identity.
type Permission struct{}

// Intercept implements Interceptor.
func (Permission) Intercept(ic *Context, next Next) (any, error) {
	id := ejb.IdentityFromContext(ic.Context())
	if ic.Method != nil && !ic.Method.Permissions.Allows(id) {
		return nil, ejb.NewError(ejb.KindAccessDenied, "%s may not invoke %s", id.Name, describe(ic))
	}
	return next(ic)
}
