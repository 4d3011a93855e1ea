package interceptor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

// DefaultAccessTimeout bounds the wait for a busy stateful session.
const DefaultAccessTimeout = 5 * time.Second

// ErrSessionNotFound is returned by a SessionStore for an unknown session.
var ErrSessionNotFound = errors.New("interceptor: session not found")

// SessionStore persists stateful session instances.
type SessionStore interface {
	Load(ctx context.Context, component, id string) (ejb.Instance, error)
	Save(ctx context.Context, component, id string, inst ejb.Instance) error
	Remove(ctx context.Context, component, id string) error
}

// Stateful binds the session instance to the invocation. Calls on the same
// session are serialized; a call that cannot acquire the session within
// AccessTimeout fails with a concurrent access timeout.
type Stateful struct {
	Store         SessionStore
	AccessTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes calls on one session. It stays in the table only
// while a call holds or waits for it.
type sessionLock struct {
	ch   chan struct{}
	refs int
}

// NewStateful returns a stateful stage backed by store.
func NewStateful(store SessionStore) *Stateful {
	return &Stateful{
		Store:         store,
		AccessTimeout: DefaultAccessTimeout,
		locks:         make(map[string]*sessionLock),
	}
}

func (s *Stateful) acquire(id string) *sessionLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{ch: make(chan struct{}, 1)}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *Stateful) release(id string, l *sessionLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// Intercept implements Interceptor.
func (s *Stateful) Intercept(ic *Context, next Next) (any, error) {
	comp := ic.Component()
	if comp.Kind != ejb.Stateful {
		return next(ic)
	}

	id, _ := Get(ic, SessionIDKey)
	if id == "" {
		return nil, ejb.NewError(ejb.KindNoSuchEJB, "no session given for %s", comp)
	}

	l := s.acquire(id)
	defer s.release(id, l)
	timer := time.NewTimer(s.AccessTimeout)
	defer timer.Stop()
	select {
	case l.ch <- struct{}{}:
	case <-timer.C:
		return nil, ejb.NewError(ejb.KindConcurrentAccessTimeout, "session %s of %s is busy", id, comp)
	case <-ic.Context().Done():
		return nil, ejb.Wrap(ejb.KindEJB, ic.Context().Err(), "waiting for session %s", id)
	}
	defer func() { <-l.ch }()

	ctx := ic.Context()
	inst, err := s.Store.Load(ctx, comp.String(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ejb.NewError(ejb.KindNoSuchEJB, "session %s of %s does not exist", id, comp)
	}
	if err != nil {
		return nil, ejb.Wrap(ejb.KindEJB, err, "loading session %s", id)
	}
	ic.Instance = inst

	res, err := next(ic)
	if err != nil && !comp.IsApplicationError(err) {
		return res, err
	}

	if err == nil && ic.Method != nil && ic.Method.Remove {
		if rerr := s.Store.Remove(ctx, comp.String(), id); rerr != nil {
			return nil, ejb.Wrap(ejb.KindEJB, rerr, "removing session %s", id)
		}
		return res, nil
	}
	if serr := s.Store.Save(ctx, comp.String(), id, ic.Instance); serr != nil {
		return nil, ejb.Wrap(ejb.KindEJB, serr, "saving session %s", id)
	}
	return res, err
}
