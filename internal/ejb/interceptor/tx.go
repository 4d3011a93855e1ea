package interceptor

import (
	"context"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Transaction applies container-managed transaction attributes.
type Transaction struct{}

// Intercept implements Interceptor.
func (Transaction) Intercept(ic *Context, next Next) (any, error) {
	attr := ejb.TxSupports
	if ic.Method != nil {
		attr = ic.Method.Tx
	}
	caller, inTx := ejb.TransactionFromContext(ic.Context())

	switch attr {
	case ejb.TxMandatory:
		if !inTx {
			return nil, ejb.NewError(ejb.KindTransactionRequired, "%s requires a transaction", describe(ic))
		}
		return invokeInCallerTx(ic, next, caller)
	case ejb.TxNever:
		if inTx {
			return nil, ejb.NewError(ejb.KindEJB, "%s must not be called in a transaction", describe(ic))
		}
		return next(ic)
	case ejb.TxNotSupported:
		return invokeSuspended(ic, next)
	case ejb.TxRequired:
		if inTx {
			return invokeInCallerTx(ic, next, caller)
		}
		return invokeInNewTx(ic, next)
	case ejb.TxRequiresNew:
		return invokeInNewTx(ic, next)
	default:
		if inTx {
			return invokeInCallerTx(ic, next, caller)
		}
		return next(ic)
	}
}

func invokeSuspended(ic *Context, next Next) (any, error) {
	outer := ic.Context()
	ic.SetContext(ejb.WithTransaction(outer, nil))
	defer ic.SetContext(outer)
	return next(ic)
}

// invokeInCallerTx marks the caller's transaction rollback-only when the
// bean fails with a system error and reports the rollback.
func invokeInCallerTx(ic *Context, next Next, tx *ejb.Transaction) (any, error) {
	defer func() {
		if r := recover(); r != nil {
			tx.SetRollbackOnly()
			panic(r)
		}
	}()

	res, err := next(ic)
	if err != nil && !ic.Component().IsApplicationError(err) {
		tx.SetRollbackOnly()
		return nil, ejb.Wrap(ejb.KindTransactionRolledback, err, "transaction %s marked for rollback", tx.ID)
	}
	return res, err
}

func invokeInNewTx(ic *Context, next Next) (any, error) {
	tx := ejb.NewTransaction()
	outer := ic.Context()
	ic.SetContext(ejb.WithTransaction(outer, tx))
	defer ic.SetContext(outer)
	defer func() {
		if r := recover(); r != nil {
			rollback(outer, tx)
			panic(r)
		}
	}()

	res, err := next(ic)
	if err != nil && !ic.Component().IsApplicationError(err) {
		rollback(outer, tx)
		return nil, err
	}
	if cerr := tx.Commit(); cerr != nil {
		return nil, ejb.Wrap(ejb.KindTransactionRolledback, cerr, "transaction %s did not commit", tx.ID)
	}
	return res, err
}

func rollback(ctx context.Context, tx *ejb.Transaction) {
	if err := tx.Rollback(); err != nil {
		logger.L(ctx).Warn("transaction rollback failed", "tx", tx.ID, "error", err)
	}
}
