package management

import (
	"context"
	"fmt"
	"strconv"
)

// Operation names understood by Model.Execute.
const (
	OpReadAttribute           = "read-attribute"
	OpReadResource            = "read-resource"
	OpReadChildrenNames       = "read-children-names"
	OpReadResourceDescription = "read-resource-description"
)

// Outcomes of an operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Operation is a management request.
type Operation struct {
	Name    string         `json:"operation"`
	Address Address        `json:"address"`
	Params  map[string]any `json:"params,omitempty"`
}

// Result is the outcome of an executed operation.
type Result struct {
	Outcome            string `json:"outcome"`
	Result             any    `json:"result,omitempty"`
	FailureDescription string `json:"failure-description,omitempty"`
}

// Failed reports whether the operation failed.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// OperationContext is handed to read handlers for one attribute read.
type OperationContext struct {
	ctx     context.Context
	address Address
	attr    string

	result  any
	failure error
}

func newOperationContext(ctx context.Context, addr Address, attr string) *OperationContext {
	return &OperationContext{ctx: ctx, address: addr, attr: attr}
}

// Context returns the caller's context. Handlers that block must honor it
// and report cancellation with Fail(Interrupted(ctx.Err())).
func (c *OperationContext) Context() context.Context { return c.ctx }

// Address returns the address of the resource being read.
func (c *OperationContext) Address() Address { return c.address }

// Attribute returns the name of the attribute being read.
func (c *OperationContext) Attribute() string { return c.attr }

// SetResult records the attribute value.
func (c *OperationContext) SetResult(v any) {
	c.result = v
	c.failure = nil
}

// Fail records a failure description. The step still completes normally.
func (c *OperationContext) Fail(err error) {
	c.failure = err
	c.result = nil
}

// Failure returns the failure recorded by the handler, if any.
func (c *OperationContext) Failure() error { return c.failure }

// Params helpers.

func (op Operation) stringParam(name string) (string, bool) {
	v, ok := op.Params[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (op Operation) boolParam(name string) (bool, error) {
	v, ok := op.Params[name]
	if !ok || v == nil {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, InvalidParameter(name, fmt.Sprintf("is not a boolean: %q", b))
		}
		return parsed, nil
	default:
		return false, InvalidParameter(name, fmt.Sprintf("is not a boolean: %v", v))
	}
}
