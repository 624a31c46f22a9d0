package container

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/google/uuid"
)

// Provider resolves services registered in a Collection.
// It owns singleton instances and a root scope; it is safe for concurrent use.
type Provider struct {
	descriptors []Descriptor
	index       map[reflect.Type][]int
	singletons  []*cell
	root        *Scope
}

// Compile-time checks that Provider and Scope implement Resolver.
var (
	_ Resolver = (*Provider)(nil)
	_ Resolver = (*Scope)(nil)
)

func newProvider(descriptors []Descriptor) *Provider {
	p := &Provider{
		descriptors: descriptors,
		index:       make(map[reflect.Type][]int),
		singletons:  make([]*cell, len(descriptors)),
	}
	for i, d := range descriptors {
		p.index[d.Service] = append(p.index[d.Service], i)
		p.singletons[i] = &cell{}
	}
	p.root = p.newScope(true)
	return p
}

// Resolve returns an instance of the last registration for service from the root scope.
func (p *Provider) Resolve(service reflect.Type) (any, error) {
	return p.root.Resolve(service)
}

// ResolveAll returns one instance per registration for service from the root scope.
func (p *Provider) ResolveAll(service reflect.Type) ([]any, error) {
	return p.root.ResolveAll(service)
}

// Contains reports whether at least one registration exists for service.
func (p *Provider) Contains(service reflect.Type) bool {
	return len(p.index[service]) > 0
}

// NewScope creates a child scope. Scoped services resolved from it live until Close.
func (p *Provider) NewScope() *Scope {
	return p.newScope(false)
}

// Close closes the root scope: every singleton and root-resolved transient that
// implements io.Closer is closed in reverse creation order.
func (p *Provider) Close() error {
	return p.root.Close()
}

func (p *Provider) newScope(root bool) *Scope {
	return &Scope{
		id:       uuid.New().String(),
		provider: p,
		root:     root,
		scoped:   make(map[int]*cell),
	}
}

func (p *Provider) singleton(i int) (any, error) {
	d := p.descriptors[i]
	if d.Instance != nil {
		return d.Instance, nil
	}
	return p.singletons[i].get(func() (any, error) {
		v, err := d.Factory(p.root)
		if err != nil {
			return nil, err
		}
		if err := p.root.track(v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// Scope is a resolution boundary for scoped services.
type Scope struct {
	id       string
	provider *Provider
	root     bool

	mu          sync.Mutex
	closed      bool
	scoped      map[int]*cell
	disposables []io.Closer
}

// ID returns the scope's unique identifier.
func (s *Scope) ID() string {
	return s.id
}

// Resolve returns an instance of the last registration for service.
// Returns dbcontext.ErrServiceNotRegistered if there is none.
func (s *Scope) Resolve(service reflect.Type) (any, error) {
	idx := s.provider.index[service]
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", dbcontext.ErrServiceNotRegistered, service)
	}
	return s.resolveAt(idx[len(idx)-1])
}

// ResolveAll returns one instance per registration for service, in registration order.
// The first failing factory aborts the resolution.
func (s *Scope) ResolveAll(service reflect.Type) ([]any, error) {
	idx := s.provider.index[service]
	instances := make([]any, 0, len(idx))
	for _, i := range idx {
		v, err := s.resolveAt(i)
		if err != nil {
			return nil, err
		}
		instances = append(instances, v)
	}
	return instances, nil
}

// Contains reports whether at least one registration exists for service.
func (s *Scope) Contains(service reflect.Type) bool {
	return s.provider.Contains(service)
}

// Close closes every scoped and transient instance this scope created that
// implements io.Closer, in reverse creation order. Closing twice is a no-op.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	disposables := s.disposables
	s.disposables = nil
	s.mu.Unlock()

	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		if err := disposables[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scope) resolveAt(i int) (any, error) {
	if s.isClosed() {
		return nil, dbcontext.ErrScopeClosed
	}

	d := s.provider.descriptors[i]
	switch d.Lifetime {
	case dbcontext.LifetimeSingleton:
		return s.provider.singleton(i)
	case dbcontext.LifetimeScoped:
		if s.root {
			return nil, fmt.Errorf("%w: %s", dbcontext.ErrScopedFromRoot, d.Service)
		}
		return s.scopedCell(i).get(func() (any, error) {
			return s.create(d)
		})
	default:
		return s.create(d)
	}
}

func (s *Scope) create(d Descriptor) (any, error) {
	v, err := d.Factory(s)
	if err != nil {
		return nil, err
	}
	if err := s.track(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Scope) scopedCell(i int) *cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.scoped[i]
	if !ok {
		c = &cell{}
		s.scoped[i] = c
	}
	return c
}

// track registers v for disposal. An instance created while the scope was being
// closed is closed at once and ErrScopeClosed is returned instead.
func (s *Scope) track(v any) error {
	s.mu.Lock()
	closed := s.closed
	if closer, ok := v.(io.Closer); ok && !closed {
		s.disposables = append(s.disposables, closer)
	}
	s.mu.Unlock()

	if !closed {
		return nil
	}
	if closer, ok := v.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Join(dbcontext.ErrScopeClosed, err)
		}
	}
	return dbcontext.ErrScopeClosed
}

func (s *Scope) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// cell holds a lazily created shared instance. Failed creations are not cached.
type cell struct {
	mu    sync.Mutex
	done  bool
	value any
}

func (c *cell) get(create func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return c.value, nil
	}
	v, err := create()
	if err != nil {
		return nil, err
	}
	c.value = v
	c.done = true
	return v, nil
}
