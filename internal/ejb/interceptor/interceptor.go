package interceptor

import "github.com/wildfly/wildfly-sub133/internal/ejb"

// Next continues the invocation with the rest of the chain.
type Next func(ic *Context) (any, error)

// Interceptor is one stage of the chain.
type Interceptor interface {
	Intercept(ic *Context, next Next) (any, error)
}

// Func adapts a function to Interceptor.
type Func func(ic *Context, next Next) (any, error)

// Intercept implements Interceptor.
func (f Func) Intercept(ic *Context, next Next) (any, error) { return f(ic, next) }

// Chain is an ordered list of interceptors, outermost first.
type Chain []Interceptor

// NewChain builds a chain, skipping nil entries.
func NewChain(interceptors ...Interceptor) Chain {
	c := make(Chain, 0, len(interceptors))
	for _, i := range interceptors {
		if i != nil {
			c = append(c, i)
		}
	}
	return c
}

// Then composes the chain around terminal. The result is built once and
// may be called concurrently.
func (c Chain) Then(terminal Next) Next {
	next := terminal
	for i := len(c) - 1; i >= 0; i-- {
		stage, inner := c[i], next
		next = func(ic *Context) (any, error) {
			return stage.Intercept(ic, inner)
		}
	}
	return next
}

// InvokeBean is the terminal stage: it runs the business method.
func InvokeBean(ic *Context) (any, error) {
	if ic.Method == nil || ic.Method.Func == nil {
		return nil, ejb.NewError(ejb.KindEJB, "no method to invoke on %s", ic.Component())
	}
	return ic.Method.Func(&ejb.Invocation{
		Ctx:      ic.Context(),
		Args:     ic.Args,
		Instance: ic.Instance,
	})
}
