package interceptor

import (
	"context"
	"sync"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

func testComponent(kind ejb.ComponentKind, methods ...*ejb.Method) *ejb.Component {
	c := &ejb.Component{
		Name:              "Calculator",
		Deployment:        "test.jar",
		Kind:              kind,
		Methods:           make(map[string]*ejb.Method),
		ApplicationErrors: []error{errBusiness},
	}
	for _, m := range methods {
		c.Methods[m.Name] = m
	}
	return c
}

func newIC(ctx context.Context, comp *ejb.Component, method string, args ...any) *Context {
	return NewContext(ctx, comp, comp.Methods[method], args)
}

type manualExecutor struct {
	mu    sync.Mutex
	tasks []func()
	err   error
}

func (e *manualExecutor) Submit(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, task)
	return nil
}

func (e *manualExecutor) runAll() {
	e.mu.Lock()
	tasks := e.tasks
	e.tasks = nil
	e.mu.Unlock()
	for _, t := range tasks {
		t()
	}
}

type goExecutor struct{}

func (goExecutor) Submit(task func()) error {
	go task()
	return nil
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]ejb.Instance
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]ejb.Instance)}
}

func (s *memoryStore) Load(_ context.Context, component, id string) (ejb.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.data[component+"/"+id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := make(ejb.Instance, len(inst))
	for k, v := range inst {
		out[k] = v
	}
	return out, nil
}

func (s *memoryStore) Save(_ context.Context, component, id string, inst ejb.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[component+"/"+id] = inst
	return nil
}

func (s *memoryStore) Remove(_ context.Context, component, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, component+"/"+id)
	return nil
}
