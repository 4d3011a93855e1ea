package container

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// SampleDeploymentName is the name of the built-in sample deployment.
const SampleDeploymentName = "kernel-sample.jar"

// ErrDivisionByZero is the Calculator's declared business error.
var ErrDivisionByZero = errors.New("division by zero")

// SampleDeployment returns a deployment with a stateless Calculator and a
// stateful Counter. It exercises every stage of the invocation chain.
func SampleDeployment() Deployment {
	return Deployment{
		Name:       SampleDeploymentName,
		Components: []*ejb.Component{calculator(), counter()},
	}
}

func calculator() *ejb.Component {
	binary := func(op func(a, b float64) (float64, error)) ejb.MethodFunc {
		return func(inv *ejb.Invocation) (any, error) {
			a, b, err := twoNumbers(inv.Args)
			if err != nil {
				return nil, err
			}
			return op(a, b)
		}
	}
	add := binary(func(a, b float64) (float64, error) { return a + b, nil })

	return &ejb.Component{
		Name:              "Calculator",
		Kind:              ejb.Stateless,
		ApplicationErrors: []error{ErrDivisionByZero},
		Methods: map[string]*ejb.Method{
			"add": {Func: add},
			"subtract": {Func: binary(func(a, b float64) (float64, error) {
				return a - b, nil
			})},
			"divide": {Func: binary(func(a, b float64) (float64, error) {
				if b == 0 {
					return 0, ErrDivisionByZero
				}
				return a / b, nil
			})},
			"sqrt": {Func: func(inv *ejb.Invocation) (any, error) {
				if len(inv.Args) != 1 {
					return nil, fmt.Errorf("sqrt takes 1 argument, got %d", len(inv.Args))
				}
				x, err := number(inv.Args[0])
				if err != nil {
					return nil, err
				}
				if x < 0 {
					return nil, fmt.Errorf("sqrt of negative number %v", x)
				}
				return math.Sqrt(x), nil
			}},
			"addAsync": {Func: add, Async: ejb.AsyncFuture},
			"sleep": {
				Async: ejb.AsyncFuture,
				Func: func(inv *ejb.Invocation) (any, error) {
					if len(inv.Args) != 1 {
						return nil, fmt.Errorf("sleep takes 1 argument, got %d", len(inv.Args))
					}
					ms, err := number(inv.Args[0])
					if err != nil {
						return nil, err
					}
					select {
					case <-time.After(time.Duration(ms) * time.Millisecond):
						return ms, nil
					case <-inv.Ctx.Done():
						return nil, inv.Ctx.Err()
					}
				},
			},
			"audit": {
				Async: ejb.AsyncVoid,
				Func: func(inv *ejb.Invocation) (any, error) {
					logger.L(inv.Ctx).Info("calculator audit", "args", inv.Args)
					return nil, nil
				},
			},
		},
	}
}

func counter() *ejb.Component {
	return &ejb.Component{
		Name: "Counter",
		Kind: ejb.Stateful,
		Init: func() ejb.Instance { return ejb.Instance{"count": 0} },
		Methods: map[string]*ejb.Method{
			"increment": {
				Tx: ejb.TxRequired,
				Func: func(inv *ejb.Invocation) (any, error) {
					step := 1.0
					if len(inv.Args) > 0 {
						var err error
						if step, err = number(inv.Args[0]); err != nil {
							return nil, err
						}
					}
					n, err := number(inv.Instance["count"])
					if err != nil {
						return nil, err
					}
					inv.Instance["count"] = n + step
					return n + step, nil
				},
			},
			"get": {Func: func(inv *ejb.Invocation) (any, error) {
				return number(inv.Instance["count"])
			}},
			"remove": {
				Remove:      true,
				Permissions: ejb.RolesAllowed("admin", "user"),
				Func: func(inv *ejb.Invocation) (any, error) {
					return number(inv.Instance["count"])
				},
			},
		},
	}
}

func twoNumbers(args []any) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	a, err := number(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := number(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// number accepts the numeric forms arguments arrive in: Go numbers, JSON
// numbers and numeric strings.
func number(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
