package health

import (
	"errors"
	"fmt"
	"sync"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/container"
)

// Registration describes one named health check.
type Registration struct {
	// Name identifies the check in reports and metrics (required, unique).
	Name string

	// Tags categorize the check, e.g. TagReadiness.
	Tags []string

	// Factory builds the checker from the scope the check runs in (required).
	Factory func(r container.Resolver) (Checker, error)
}

// Builder collects health check registrations in order.
type Builder struct {
	mu            sync.Mutex
	registrations []Registration
	names         map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		names: make(map[string]struct{}),
	}
}

// Add appends a registration.
// Returns dbcontext.ErrDuplicateHealthCheck if the name is already taken.
func (b *Builder) Add(reg Registration) error {
	if reg.Name == "" {
		return errors.New("health check name is required")
	}
	if reg.Factory == nil {
		return fmt.Errorf("health check %q: factory is required", reg.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.names[reg.Name]; ok {
		return fmt.Errorf("health check %q: %w", reg.Name, dbcontext.ErrDuplicateHealthCheck)
	}
	reg.Tags = append([]string(nil), reg.Tags...)
	b.names[reg.Name] = struct{}{}
	b.registrations = append(b.registrations, reg)
	return nil
}

// AddCheck registers a fixed checker under name.
func (b *Builder) AddCheck(name string, checker Checker, tags ...string) error {
	if checker == nil {
		return fmt.Errorf("health check %q: checker is required", name)
	}
	return b.Add(Registration{
		Name: name,
		Tags: tags,
		Factory: func(container.Resolver) (Checker, error) {
			return checker, nil
		},
	})
}

// Registrations returns a copy of the registrations in the order they were added.
func (b *Builder) Registrations() []Registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Registration(nil), b.registrations...)
}

// Len returns the number of registrations.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.registrations)
}
