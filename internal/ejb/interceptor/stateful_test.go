package interceptor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

func counterComponent(block chan struct{}) *ejb.Component {
	comp := testComponent(ejb.Stateful,
		&ejb.Method{Name: "increment", Func: func(inv *ejb.Invocation) (any, error) {
			if block != nil {
				<-block
			}
			n, _ := inv.Instance["count"].(int)
			n++
			inv.Instance["count"] = n
			return n, nil
		}},
		&ejb.Method{Name: "remove", Remove: true, Func: func(*ejb.Invocation) (any, error) { return nil, nil }},
	)
	comp.Name = "Counter"
	return comp
}

func statefulIC(comp *ejb.Component, method, session string) *Context {
	ic := newIC(context.Background(), comp, method)
	if session != "" {
		Put(ic, SessionIDKey, session)
	}
	return ic
}

func TestStateful_LoadsAndSavesInstance(t *testing.T) {
	store := newMemoryStore()
	comp := counterComponent(nil)
	require.NoError(t, store.Save(context.Background(), comp.String(), "s1", ejb.Instance{}))
	stage := NewStateful(store)

	for want := 1; want <= 3; want++ {
		res, err := stage.Intercept(statefulIC(comp, "increment", "s1"), InvokeBean)
		require.NoError(t, err)
		assert.Equal(t, want, res)
	}
}

func TestStateful_UnknownOrMissingSession(t *testing.T) {
	stage := NewStateful(newMemoryStore())
	comp := counterComponent(nil)

	_, err := stage.Intercept(statefulIC(comp, "increment", "nope"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrNoSuchEJB)

	_, err = stage.Intercept(statefulIC(comp, "increment", ""), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrNoSuchEJB)
}

func TestStateful_RemoveEndsSession(t *testing.T) {
	store := newMemoryStore()
	comp := counterComponent(nil)
	require.NoError(t, store.Save(context.Background(), comp.String(), "s1", ejb.Instance{}))
	stage := NewStateful(store)

	_, err := stage.Intercept(statefulIC(comp, "remove", "s1"), InvokeBean)
	require.NoError(t, err)

	_, err = stage.Intercept(statefulIC(comp, "increment", "s1"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrNoSuchEJB)
}

func TestStateful_ConcurrentAccessTimeout(t *testing.T) {
	store := newMemoryStore()
	block := make(chan struct{})
	comp := counterComponent(block)
	require.NoError(t, store.Save(context.Background(), comp.String(), "s1", ejb.Instance{}))
	stage := NewStateful(store)
	stage.AccessTimeout = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := stage.Intercept(statefulIC(comp, "increment", "s1"), InvokeBean)
		done <- err
	}()

	require.Eventually(t, func() bool { return stage.held("s1") }, time.Second, time.Millisecond)
	_, err := stage.Intercept(statefulIC(comp, "increment", "s1"), InvokeBean)
	assert.ErrorIs(t, err, ejb.ErrConcurrentAccessTimeout)

	close(block)
	require.NoError(t, <-done)
}

func TestStateful_StatelessPassesThrough(t *testing.T) {
	stage := NewStateful(newMemoryStore())
	comp := testComponent(ejb.Stateless, &ejb.Method{Name: "m", Func: func(*ejb.Invocation) (any, error) { return 1, nil }})
	res, err := stage.Intercept(newIC(context.Background(), comp, "m"), InvokeBean)
	require.NoError(t, err)
	assert.Equal(t, 1, res)
}

func (s *Stateful) held(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	return ok && len(l.ch) == 1
}

func (s *Stateful) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func TestStateful_LocksDoNotOutliveCalls(t *testing.T) {
	store := newMemoryStore()
	comp := counterComponent(nil)
	require.NoError(t, store.Save(context.Background(), comp.String(), "kept", ejb.Instance{}))
	require.NoError(t, store.Save(context.Background(), comp.String(), "removed", ejb.Instance{}))
	stage := NewStateful(store)

	_, err := stage.Intercept(statefulIC(comp, "increment", "kept"), InvokeBean)
	require.NoError(t, err)
	_, err = stage.Intercept(statefulIC(comp, "remove", "removed"), InvokeBean)
	require.NoError(t, err)
	for i := range 5 {
		_, err = stage.Intercept(statefulIC(comp, "increment", fmt.Sprintf("gone-%d", i)), InvokeBean)
		assert.ErrorIs(t, err, ejb.ErrNoSuchEJB)
	}

	assert.Equal(t, 0, stage.lockCount())
}
