package interceptor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

func txMethod(name string, attr ejb.TxAttribute, fn ejb.MethodFunc) *ejb.Method {
	return &ejb.Method{Name: name, Tx: attr, Func: fn}
}

func TestTransaction_Mandatory(t *testing.T) {
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxMandatory, func(*ejb.Invocation) (any, error) { return "ok", nil }))

	_, err := Transaction{}.Intercept(newIC(context.Background(), comp, "m"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrTransactionRequired)

	ctx := ejb.WithTransaction(context.Background(), ejb.NewTransaction())
	res, err := Transaction{}.Intercept(newIC(ctx, comp, "m"), InvokeBean)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

func TestTransaction_Never(t *testing.T) {
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxNever, func(*ejb.Invocation) (any, error) { return nil, nil }))
	ctx := ejb.WithTransaction(context.Background(), ejb.NewTransaction())

	_, err := Transaction{}.Intercept(newIC(ctx, comp, "m"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrEJB)

	_, err = Transaction{}.Intercept(newIC(context.Background(), comp, "m"), InvokeBean)
	assert.NoError(t, err)
}

func TestTransaction_RequiredStartsAndCommits(t *testing.T) {
	var tx *ejb.Transaction
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxRequired, func(inv *ejb.Invocation) (any, error) {
		tx, _ = ejb.TransactionFromContext(inv.Ctx)
		return nil, nil
	}))

	ic := newIC(context.Background(), comp, "m")
	_, err := Transaction{}.Intercept(ic, InvokeBean)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, ejb.TxStatusCommitted, tx.Status())
	_, inTx := ejb.TransactionFromContext(ic.Context())
	assert.False(t, inTx, "context restored after the call")
}

func TestTransaction_SystemErrorInCallerTxRollsBack(t *testing.T) {
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxRequired, func(*ejb.Invocation) (any, error) {
		return nil, errors.New("constraint violated")
	}))
	caller := ejb.NewTransaction()
	ctx := ejb.WithTransaction(context.Background(), caller)

	_, err := Transaction{}.Intercept(newIC(ctx, comp, "m"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrTransactionRolledback)
	assert.Equal(t, ejb.TxStatusMarkedRollback, caller.Status())
}

func TestTransaction_ApplicationErrorCommits(t *testing.T) {
	var tx *ejb.Transaction
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxRequiresNew, func(inv *ejb.Invocation) (any, error) {
		tx, _ = ejb.TransactionFromContext(inv.Ctx)
		return nil, errBusiness
	}))

	_, err := Transaction{}.Intercept(newIC(context.Background(), comp, "m"), InvokeBean)
	assert.ErrorIs(t, err, errBusiness)
	assert.Equal(t, ejb.TxStatusCommitted, tx.Status())
}

func TestTransaction_SystemErrorRollsBackNewTx(t *testing.T) {
	var tx *ejb.Transaction
	boom := errors.New("boom")
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxRequiresNew, func(inv *ejb.Invocation) (any, error) {
		tx, _ = ejb.TransactionFromContext(inv.Ctx)
		return nil, boom
	}))

	_, err := Transaction{}.Intercept(newIC(context.Background(), comp, "m"), InvokeBean)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ejb.TxStatusRolledBack, tx.Status())
}

func TestTransaction_NotSupportedSuspends(t *testing.T) {
	var inTx bool
	comp := testComponent(ejb.Stateless, txMethod("m", ejb.TxNotSupported, func(inv *ejb.Invocation) (any, error) {
		_, inTx = ejb.TransactionFromContext(inv.Ctx)
		return nil, nil
	}))
	ctx := ejb.WithTransaction(context.Background(), ejb.NewTransaction())

	_, err := Transaction{}.Intercept(newIC(ctx, comp, "m"), InvokeBean)
	require.NoError(t, err)
	assert.False(t, inTx)
}
