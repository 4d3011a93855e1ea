package interceptor

import (
	"context"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Executor runs tasks on worker goroutines.
type Executor interface {
	Submit(task func()) error
}

// Async dispatches asynchronous methods to an executor. Synchronous
// methods pass straight through.
type Async struct {
	Executor Executor
}

// Intercept implements Interceptor.
func (a *Async) Intercept(ic *Context, next Next) (any, error) {
	if ic.Method == nil || ic.Method.Async == ejb.Sync {
		return next(ic)
	}

	flag, ok := Get(ic, CancellationFlagKey)
	if !ok {
		flag = NewCancellationFlag()
	}

	worker := ic.Clone()
	Put(worker, CancellationFlagKey, flag)

	// The worker does not inherit the caller's cancellation or transaction.
	// Identity and the request ID travel explicitly; diagnostic fields are
	// restored by a later stage from the snapshot.
	caller := ic.Context()
	wctx := ejb.WithIdentity(context.Background(), ejb.IdentityFromContext(caller))
	wctx = logger.WithLogger(wctx, logger.FromContext(caller))
	if rid := logger.RequestIDFromContext(caller); rid != "" {
		wctx = logger.WithRequestID(wctx, rid)
	}
	wctx, interrupt := context.WithCancel(wctx)
	worker.SetContext(wctx)

	var fut *Future
	if ic.Method.Async == ejb.AsyncFuture {
		fut = newFuture(flag, interrupt)
	}

	task := func() {
		defer interrupt()
		if !flag.RunIfNotCancelled() {
			if fut != nil {
				fut.cancelled()
			}
			return
		}
		v, err := next(worker)
		if fut == nil {
			return
		}
		if err != nil {
			fut.fail(transformFor(worker, err))
			return
		}
		fut.complete(v)
	}

	if err := a.Executor.Submit(task); err != nil {
		interrupt()
		return nil, ejb.Wrap(ejb.KindEJB, err, "could not dispatch %s.%s", ic.Component(), ic.Method.Name)
	}

	if fut == nil {
		return nil, nil
	}
	return fut, nil
}
