package ejb

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
)

// TxStatus is the status of a transaction.
type TxStatus int

const (
	TxStatusActive TxStatus = iota
	TxStatusMarkedRollback
	TxStatusCommitted
	TxStatusRolledBack
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusActive:
		return "ACTIVE"
	case TxStatusMarkedRollback:
		return "MARKED_ROLLBACK"
	case TxStatusCommitted:
		return "COMMITTED"
	case TxStatusRolledBack:
		return "ROLLEDBACK"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrTxNotActive  = errors.New("ejb: transaction not active")
	ErrTxRolledBack = errors.New("ejb: transaction rolled back")
)

// Transaction is a container-managed unit of work. It only tracks status;
// resources enlisted in it are out of scope.
type Transaction struct {
	ID string

	mu     sync.Mutex
	status TxStatus
}

// NewTransaction begins a transaction.
func NewTransaction() *Transaction {
	return &Transaction{ID: ulid.Make().String()}
}

// Status returns the current status.
func (t *Transaction) Status() TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SetRollbackOnly marks an active transaction so that it can only roll back.
func (t *Transaction) SetRollbackOnly() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == TxStatusActive {
		t.status = TxStatusMarkedRollback
	}
}

// Commit completes the transaction. A transaction marked rollback-only is
// rolled back and ErrTxRolledBack returned.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status {
	case TxStatusActive:
		t.status = TxStatusCommitted
		return nil
	case TxStatusMarkedRollback:
		t.status = TxStatusRolledBack
		return ErrTxRolledBack
	default:
		return ErrTxNotActive
	}
}

// Rollback aborts the transaction.
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TxStatusActive && t.status != TxStatusMarkedRollback {
		return ErrTxNotActive
	}
	t.status = TxStatusRolledBack
	return nil
}

type txKey struct{}

// WithTransaction associates tx with ctx. A nil tx suspends any transaction
// inherited from ctx.
func WithTransaction(ctx context.Context, tx *Transaction) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TransactionFromContext returns the transaction associated with ctx.
func TransactionFromContext(ctx context.Context) (*Transaction, bool) {
	tx, _ := ctx.Value(txKey{}).(*Transaction)
	return tx, tx != nil
}
