package container

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/getpup/pupsourcing-dbcontext"
)

// Collection is an ordered list of registrations.
// It is not safe for concurrent use; populate it during startup, then Build it.
type Collection struct {
	descriptors []Descriptor
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a registration.
// Registering the same service more than once is allowed: Resolve returns the last
// registration and ResolveAll returns all of them.
func (c *Collection) Add(d Descriptor) error {
	if d.Service == nil {
		return fmt.Errorf("service type is required")
	}
	if !d.Lifetime.IsValid() {
		return fmt.Errorf("%w: %q for %s", dbcontext.ErrInvalidLifetime, d.Lifetime, d.Service)
	}
	if d.Instance != nil {
		if d.Lifetime != dbcontext.LifetimeSingleton {
			return fmt.Errorf("%w: instance registration for %s must be singleton", dbcontext.ErrInvalidLifetime, d.Service)
		}
	} else if d.Factory == nil {
		return fmt.Errorf("factory is required for %s", d.Service)
	}
	if d.Implementation == nil {
		d.Implementation = d.Service
	}

	c.descriptors = append(c.descriptors, d)
	return nil
}

// Descriptors returns a copy of the registrations in order.
func (c *Collection) Descriptors() []Descriptor {
	return slices.Clone(c.descriptors)
}

// Len returns the number of registrations.
func (c *Collection) Len() int {
	return len(c.descriptors)
}

// Contains reports whether at least one registration exists for service.
func (c *Collection) Contains(service reflect.Type) bool {
	for _, d := range c.descriptors {
		if d.Service == service {
			return true
		}
	}
	return false
}

// Build creates a provider from a snapshot of the current registrations.
// Later changes to the collection do not affect the provider.
func (c *Collection) Build() *Provider {
	return newProvider(slices.Clone(c.descriptors))
}

// Add registers S with the given lifetime and a typed factory.
func Add[S any](c *Collection, lifetime dbcontext.Lifetime, factory func(r Resolver) (S, error)) error {
	if factory == nil {
		return fmt.Errorf("factory is required for %s", KeyOf[S]())
	}
	return c.Add(Descriptor{
		Service:        KeyOf[S](),
		Implementation: KeyOf[S](),
		Lifetime:       lifetime,
		Factory: func(r Resolver) (any, error) {
			return factory(r)
		},
	})
}

// AddInstance registers an existing value as the singleton for S.
// The provider never closes it.
func AddInstance[S any](c *Collection, instance S) error {
	impl := reflect.TypeOf(any(instance))
	if impl == nil {
		return fmt.Errorf("instance for %s is nil", KeyOf[S]())
	}
	return c.Add(Descriptor{
		Service:        KeyOf[S](),
		Implementation: impl,
		Lifetime:       dbcontext.LifetimeSingleton,
		Instance:       instance,
	})
}
