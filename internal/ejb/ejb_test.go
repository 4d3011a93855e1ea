package ejb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insufficientFunds struct{ need int }

func (e *insufficientFunds) Error() string { return fmt.Sprintf("need %d", e.need) }

var errOverdrawn = errors.New("overdrawn")

func TestError_IsByKindAndFamily(t *testing.T) {
	err := fmt.Errorf("call: %w", &Error{Kind: KindNoSuchObject, Family: FamilyRemote, Message: "gone"})

	assert.ErrorIs(t, err, ErrNoSuchObject)
	assert.ErrorIs(t, err, &Error{Kind: KindNoSuchObject, Family: FamilyRemote})
	assert.NotErrorIs(t, err, &Error{Kind: KindNoSuchObject, Family: FamilyLocal})
	assert.NotErrorIs(t, err, ErrNoSuchEJB)
}

func TestError_MessageAndCause(t *testing.T) {
	cause := errors.New("disk")
	err := Wrap(KindEJB, cause, "store %s", "x")
	assert.Equal(t, "EJB (container): store x: disk", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsContainerError(err))
	assert.False(t, IsContainerError(cause))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("ACCESS_DENIED")
	assert.True(t, ok)
	assert.Equal(t, KindAccessDenied, k)
	_, ok = ParseKind("nope")
	assert.False(t, ok)
}

func TestComponent_IsApplicationError(t *testing.T) {
	c := &Component{
		Name:              "Account",
		ApplicationErrors: []error{errOverdrawn, (*insufficientFunds)(nil)},
		ApplicationErrorFunc: func(err error) bool {
			return err.Error() == "custom"
		},
	}

	assert.True(t, c.IsApplicationError(errOverdrawn))
	assert.True(t, c.IsApplicationError(fmt.Errorf("wrapped: %w", errOverdrawn)))
	assert.True(t, c.IsApplicationError(&insufficientFunds{need: 3}))
	assert.True(t, c.IsApplicationError(errors.New("custom")))
	assert.False(t, c.IsApplicationError(errors.New("other")))
	assert.False(t, c.IsApplicationError(nil))
	assert.False(t, c.IsApplicationError(NewError(KindEJB, "container")))
}

func TestComponent_Method(t *testing.T) {
	c := &Component{Name: "Calc", Methods: map[string]*Method{"b": {Name: "b"}, "a": {Name: "a"}}}
	m, err := c.Method("a")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name)

	_, err = c.Method("z")
	assert.ErrorIs(t, err, ErrEJB)
	assert.Equal(t, []string{"a", "b"}, c.MethodNames())
}

func TestPermissions(t *testing.T) {
	admin := Identity{Name: "admin", Roles: []string{"admin"}}

	assert.True(t, PermitAll.Allows(Anonymous))
	assert.False(t, DenyAll.Allows(admin))
	assert.True(t, RolesAllowed("user", "admin").Allows(admin))
	assert.False(t, RolesAllowed("user").Allows(admin))
}

func TestIdentityContext(t *testing.T) {
	assert.Equal(t, Anonymous, IdentityFromContext(context.Background()))
	id := Identity{Name: "alice", Roles: []string{"user"}}
	assert.Equal(t, id, IdentityFromContext(WithIdentity(context.Background(), id)))
}

func TestTransaction(t *testing.T) {
	tx := NewTransaction()
	assert.NotEmpty(t, tx.ID)
	require.NoError(t, tx.Commit())
	assert.Equal(t, TxStatusCommitted, tx.Status())
	assert.ErrorIs(t, tx.Commit(), ErrTxNotActive)

	tx = NewTransaction()
	tx.SetRollbackOnly()
	assert.ErrorIs(t, tx.Commit(), ErrTxRolledBack)
	assert.Equal(t, TxStatusRolledBack, tx.Status())

	ctx := WithTransaction(context.Background(), tx)
	got, ok := TransactionFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, tx, got)

	_, ok = TransactionFromContext(WithTransaction(ctx, nil))
	assert.False(t, ok)
}

func TestStats_PeakConcurrency(t *testing.T) {
	var s Stats
	var wg sync.WaitGroup
	start := make(chan struct{})
	release := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Enter(time.Millisecond)
			start <- struct{}{}
			<-release
			s.Exit(2*time.Millisecond, false)
		}()
	}
	for i := 0; i < 4; i++ {
		<-start
	}
	assert.EqualValues(t, 4, s.ConcurrentInvocations())
	close(release)
	wg.Wait()

	assert.EqualValues(t, 4, s.PeakConcurrentUsage())
	assert.EqualValues(t, 0, s.ConcurrentInvocations())
	assert.EqualValues(t, 4, s.Invocations())
	assert.Equal(t, 8*time.Millisecond, s.ExecutionTime())
	assert.Equal(t, 4*time.Millisecond, s.WaitTime())
}
