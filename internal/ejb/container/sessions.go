package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wildfly/wildfly-sub133/internal/cache"
	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/ejb/interceptor"
	"github.com/wildfly/wildfly-sub133/internal/msc"
)

// CacheSessions keeps stateful session instances in a cache store as JSON.
// The cache service is required on every access, so it is started the
// first time a session is touched. Numbers come back as float64.
type CacheSessions struct {
	services *msc.Container
	service  string
}

// NewCacheSessions stores sessions in the cache installed as service.
func NewCacheSessions(services *msc.Container, service string) *CacheSessions {
	return &CacheSessions{services: services, service: service}
}

func sessionKey(component, id string) string {
	return "session/" + component + "/" + id
}

func (s *CacheSessions) store(ctx context.Context) (*cache.Store, error) {
	ctrl, err := s.services.Require(ctx, s.service)
	if err != nil {
		return nil, err
	}
	st, ok := ctrl.Service().(*cache.Store)
	if !ok {
		return nil, fmt.Errorf("service %s is %T, not a cache", s.service, ctrl.Service())
	}
	return st, nil
}

// Load implements interceptor.SessionStore.
func (s *CacheSessions) Load(ctx context.Context, component, id string) (ejb.Instance, error) {
	st, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	data, err := st.Get(ctx, sessionKey(component, id))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, interceptor.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	inst := ejb.Instance{}
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return inst, nil
}

// Save implements interceptor.SessionStore.
func (s *CacheSessions) Save(ctx context.Context, component, id string, inst ejb.Instance) error {
	st, err := s.store(ctx)
	if err != nil {
		return err
	}
	if inst == nil {
		inst = ejb.Instance{}
	}
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return st.Put(ctx, sessionKey(component, id), data)
}

// Remove implements interceptor.SessionStore.
func (s *CacheSessions) Remove(ctx context.Context, component, id string) error {
	st, err := s.store(ctx)
	if err != nil {
		return err
	}
	_, err = st.Delete(ctx, sessionKey(component, id))
	return err
}

// Count implements SessionCounter.
func (s *CacheSessions) Count(ctx context.Context, component string) (int, error) {
	st, err := s.store(ctx)
	if err != nil {
		return 0, err
	}
	return st.Len(ctx, "session/"+component+"/")
}
