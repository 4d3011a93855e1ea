package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

var errBusiness = errors.New("business rule violated")

func record(trace *[]string, name string) Interceptor {
	return Func(func(ic *Context, next Next) (any, error) {
		*trace = append(*trace, name+">")
		res, err := next(ic)
		*trace = append(*trace, "<"+name)
		return res, err
	})
}

func TestChain_Order(t *testing.T) {
	var trace []string
	invoke := NewChain(record(&trace, "a"), nil, record(&trace, "b")).Then(func(*Context) (any, error) {
		trace = append(trace, "bean")
		return 42, nil
	})

	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	res, err := invoke(newIC(context.Background(), comp, "m"))
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Equal(t, []string{"a>", "b>", "bean", "<b", "<a"}, trace)
}

func TestChain_ShortCircuit(t *testing.T) {
	called := false
	stop := Func(func(*Context, Next) (any, error) { return "cached", nil })
	invoke := NewChain(stop).Then(func(*Context) (any, error) {
		called = true
		return nil, nil
	})
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	res, err := invoke(newIC(context.Background(), comp, "m"))
	require.NoError(t, err)
	assert.Equal(t, "cached", res)
	assert.False(t, called)
}

func TestContext_PrivateData(t *testing.T) {
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	ic := newIC(context.Background(), comp, "m", 1, 2)

	assert.Same(t, comp, ic.Component())
	assert.NotEmpty(t, ic.InvocationID())

	Put(ic, SessionIDKey, "s1")
	clone := ic.Clone()
	Put(clone, SessionIDKey, "s2")
	clone.Args[0] = 9

	v, _ := Get(ic, SessionIDKey)
	assert.Equal(t, "s1", v)
	assert.Equal(t, 1, ic.Args[0])
	assert.Equal(t, ic.InvocationID(), clone.InvocationID())

	Delete(ic, SessionIDKey)
	_, ok := Get(ic, SessionIDKey)
	assert.False(t, ok)

	other := NewKey[string]("session-id")
	_, ok = Get(clone, other)
	assert.False(t, ok, "keys compare by identity")
}

func TestInvokeBean(t *testing.T) {
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "add", Func: func(inv *ejb.Invocation) (any, error) {
		return inv.Args[0].(int) + inv.Args[1].(int), nil
	}})
	res, err := InvokeBean(newIC(context.Background(), comp, "add", 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 5, res)

	_, err = InvokeBean(newIC(context.Background(), comp, "missing"))
	assert.ErrorIs(t, err, ejb.ErrEJB)
}

func TestExceptionTransform(t *testing.T) {
	tests := []struct {
		name   string
		family ejb.Family
		in     error
		kind   ejb.Kind
	}{
		{"no such ejb local", ejb.FamilyLocal, ejb.NewError(ejb.KindNoSuchEJB, "x"), ejb.KindNoSuchObject},
		{"no such ejb remote", ejb.FamilyRemote, ejb.NewError(ejb.KindNoSuchEJB, "x"), ejb.KindNoSuchObject},
		{"tx required remote", ejb.FamilyRemote, ejb.NewError(ejb.KindTransactionRequired, "x"), ejb.KindTransactionRequired},
		{"tx rolledback local", ejb.FamilyLocal, ejb.NewError(ejb.KindTransactionRolledback, "x"), ejb.KindTransactionRolledback},
		{"generic local", ejb.FamilyLocal, ejb.NewError(ejb.KindEJB, "x"), ejb.KindEJB},
		{"access denied local keeps kind", ejb.FamilyLocal, ejb.NewError(ejb.KindAccessDenied, "x"), ejb.KindAccessDenied},
		{"generic remote", ejb.FamilyRemote, ejb.NewError(ejb.KindComponentUnavailable, "x"), ejb.KindRemote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExceptionTransform{Family: tt.family}.Transform(tt.in)
			assert.ErrorIs(t, err, &ejb.Error{Kind: tt.kind, Family: tt.family})
			assert.False(t, ejb.IsContainerError(err))
		})
	}
}

func TestExceptionTransform_PassesApplicationAndForeignErrors(t *testing.T) {
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	foreign := errors.New("io")

	for _, in := range []error{errBusiness, foreign} {
		_, err := ExceptionTransform{Family: ejb.FamilyRemote}.Intercept(newIC(context.Background(), comp, "m"), func(*Context) (any, error) {
			return nil, in
		})
		assert.Same(t, in, err)
	}
}

func TestPermission(t *testing.T) {
	comp := testComponent(ejb.Stateless,
		&ejb.Method{Name: "admin", Permissions: ejb.RolesAllowed("admin"), Func: func(*ejb.Invocation) (any, error) { return "ok", nil }},
		&ejb.Method{Name: "closed", Permissions: ejb.DenyAll},
	)
	admin := ejb.WithIdentity(context.Background(), ejb.Identity{Name: "root", Roles: []string{"admin"}})

	res, err := Permission{}.Intercept(newIC(admin, comp, "admin"), InvokeBean)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	_, err = Permission{}.Intercept(newIC(context.Background(), comp, "admin"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrAccessDenied)

	_, err = Permission{}.Intercept(newIC(admin, comp, "closed"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrAccessDenied)
}

func captureLogger(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)
	return logger.WithLogger(context.Background(), l), &buf
}

func TestLogging_SystemErrorsLoggedOnce(t *testing.T) {
	ctx, buf := captureLogger(t)
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})

	_, err := Logging{}.Intercept(newIC(ctx, comp, "m"), func(*Context) (any, error) {
		return nil, errors.New("database down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "invocation failed"))
	assert.Contains(t, buf.String(), "database down")
	assert.Contains(t, buf.String(), `"component":"test.jar/Calculator"`)

	buf.Reset()
	_, err = Logging{}.Intercept(newIC(ctx, comp, "m"), func(*Context) (any, error) {
		return nil, errBusiness
	})
	assert.ErrorIs(t, err, errBusiness)
	assert.Empty(t, buf.String(), "application errors pass silently")
}

func TestLogging_RecoversPanic(t *testing.T) {
	ctx, buf := captureLogger(t)
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m", Func: func(*ejb.Invocation) (any, error) {
		panic("nil bean")
	}})

	res, err := Logging{}.Intercept(newIC(ctx, comp, "m"), InvokeBean)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ejb.ErrEJB)
	assert.True(t, ejb.IsContainerError(err))
	assert.Contains(t, buf.String(), "invocation panicked")
	assert.Contains(t, buf.String(), "nil bean")
}

func TestDiagnosticContext_SnapshotAndRestore(t *testing.T) {
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	caller := logger.WithField(context.Background(), "request", "r1")
	ic := newIC(caller, comp, "m")

	_, err := DiagnosticSnapshot{}.Intercept(ic, func(ic *Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	// Worker side: stale fields from a previous task must not leak.
	worker := ic.Clone()
	workerCtx := logger.WithField(context.Background(), "stale", "x")
	worker.SetContext(workerCtx)

	var seen logger.Fields
	_, err = DiagnosticRestore{}.Intercept(worker, func(ic *Context) (any, error) {
		seen = logger.FieldsFromContext(ic.Context())
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, logger.Fields{"request": "r1"}, seen)
	assert.Equal(t, logger.Fields{"stale": "x"}, logger.FieldsFromContext(worker.Context()))
}

func TestStats_RecordsInvocations(t *testing.T) {
	var s ejb.Stats
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	stage := Stats{Stats: &s}

	_, _ = stage.Intercept(newIC(context.Background(), comp, "m"), func(*Context) (any, error) {
		time.Sleep(time.Millisecond)
		return nil, nil
	})
	_, _ = stage.Intercept(newIC(context.Background(), comp, "m"), func(*Context) (any, error) {
		return nil, errors.New("boom")
	})
	_, _ = stage.Intercept(newIC(context.Background(), comp, "m"), func(*Context) (any, error) {
		return nil, errBusiness
	})

	assert.EqualValues(t, 3, s.Invocations())
	assert.EqualValues(t, 1, s.Failures())
	assert.GreaterOrEqual(t, s.ExecutionTime(), time.Millisecond)
	assert.EqualValues(t, 1, s.PeakConcurrentUsage())
}

func TestLogging_OutputIsJSON(t *testing.T) {
	ctx, buf := captureLogger(t)
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m"})
	_, _ = Logging{}.Intercept(newIC(ctx, comp, "m"), func(*Context) (any, error) {
		return nil, ejb.NewError(ejb.KindEJB, "x")
	})
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "m", entry["method"])
	assert.NotEmpty(t, entry["invocation_id"])
}
