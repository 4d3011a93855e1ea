package interceptor

import "github.com/wildfly/wildfly-sub133/internal/ejb"

// ExceptionTransform rewrites container errors into the family of a 2.x
// view. Application errors and errors that did not come from the
// container pass through untouched.
type ExceptionTransform struct {
	Family ejb.Family
}

// Intercept implements Interceptor. The family is attached to ic so that
// errors completing a future on a worker are translated the same way.
func (t ExceptionTransform) Intercept(ic *Context, next Next) (any, error) {
	Put(ic, ExceptionFamilyKey, t.Family)
	res, err := next(ic)
	if err == nil {
		return res, nil
	}
	if ic.Component().IsApplicationError(err) {
		return res, err
	}
	return res, t.Transform(err)
}

// transformFor translates err with the family attached to ic, if any.
func transformFor(ic *Context, err error) error {
	family, ok := Get(ic, ExceptionFamilyKey)
	if !ok {
		return err
	}
	return ExceptionTransform{Family: family}.Transform(err)
}

// Transform translates one error.
func (t ExceptionTransform) Transform(err error) error {
	e, ok := ejb.AsError(err)
	if !ok || e.Family != ejb.FamilyContainer {
		return err
	}

	kind := e.Kind
	switch e.Kind {
	case ejb.KindNoSuchEJB:
		kind = ejb.KindNoSuchObject
	case ejb.KindTransactionRequired, ejb.KindTransactionRolledback:
	default:
		if t.Family == ejb.FamilyRemote {
			kind = ejb.KindRemote
		}
	}
	return &ejb.Error{Kind: kind, Family: t.Family, Message: e.Message, Cause: e.Cause}
}
