// Package persistence registers SQL persistence contexts into a service collection,
// attaches their readiness checks and migrates them at startup.
//
// Example usage:
//
//	services := container.NewCollection()
//	err := persistence.AddContext(services,
//		func(opts *sqlcontext.Options) (*CatalogContext, error) { return NewCatalogContext(opts) },
//		func(b *sqlcontext.OptionsBuilder) {
//			b.UsePostgres(dsn).WithMigrations(migrationsFS, "migrations")
//		},
//		persistence.As[ProductReader](),
//		persistence.As[ProductWriter](),
//	)
//
//	checks := health.NewBuilder()
//	err = persistence.AddContextCheck[*CatalogContext](checks)
//
//	provider := services.Build()
//	err = persistence.MigrateContexts(ctx, provider)
package persistence

import (
	"fmt"
	"reflect"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
)

// ContextFactory creates a context from its options.
type ContextFactory[T dbcontext.Context] func(opts *sqlcontext.Options) (T, error)

var contextKey = reflect.TypeFor[dbcontext.Context]()

// AddContext registers context type T.
//
// The following entries are added, in order:
//   - *ContextOptions[T], built by running configure on a fresh sqlcontext.OptionsBuilder
//     (options lifetime, singleton by default)
//   - T itself (context lifetime, transient by default)
//   - dbcontext.Context, transient
//   - one transient entry per capability declared with As
//
// The context entries all use T as their implementation and create T through factory.
// Capabilities are validated before anything is added; an invalid one fails with
// dbcontext.ErrCapabilityMismatch and leaves services unchanged.
func AddContext[T dbcontext.Context](services *container.Collection, factory ContextFactory[T], configure func(*sqlcontext.OptionsBuilder), opts ...Option) error {
	impl := reflect.TypeFor[T]()
	if services == nil {
		return fmt.Errorf("service collection is required")
	}
	if factory == nil {
		return fmt.Errorf("context factory is required for %s", impl)
	}

	reg := defaultRegistration()
	for _, opt := range opts {
		opt(reg)
	}
	if !reg.contextLifetime.IsValid() {
		return fmt.Errorf("%w: context lifetime %q for %s", dbcontext.ErrInvalidLifetime, reg.contextLifetime, impl)
	}
	if !reg.optionsLifetime.IsValid() {
		return fmt.Errorf("%w: options lifetime %q for %s", dbcontext.ErrInvalidLifetime, reg.optionsLifetime, impl)
	}

	capabilities, err := capabilitiesOf(impl, reg.capabilities)
	if err != nil {
		return err
	}

	optionsKey := container.KeyOf[*ContextOptions[T]]()
	create := func(r container.Resolver) (any, error) {
		v, err := r.Resolve(optionsKey)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve options for %s: %w", impl, err)
		}
		options, _ := v.(*ContextOptions[T])
		if options == nil {
			return nil, fmt.Errorf("options for %s are nil", impl)
		}
		c, err := factory(options.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", impl, err)
		}
		return c, nil
	}

	descriptors := make([]container.Descriptor, 0, len(capabilities)+3)
	descriptors = append(descriptors,
		container.Descriptor{
			Service:  optionsKey,
			Lifetime: reg.optionsLifetime,
			Factory: func(container.Resolver) (any, error) {
				b := sqlcontext.NewOptionsBuilder()
				if configure != nil {
					configure(b)
				}
				built, err := b.Build()
				if err != nil {
					return nil, fmt.Errorf("failed to build options for %s: %w", impl, err)
				}
				return &ContextOptions[T]{Options: built}, nil
			},
		},
		container.Descriptor{
			Service:        impl,
			Implementation: impl,
			Lifetime:       reg.contextLifetime,
			Factory:        create,
		},
		container.Descriptor{
			Service:        contextKey,
			Implementation: impl,
			Lifetime:       dbcontext.LifetimeTransient,
			Factory:        create,
		},
	)
	for _, capability := range capabilities {
		descriptors = append(descriptors, container.Descriptor{
			Service:        capability,
			Implementation: impl,
			Lifetime:       dbcontext.LifetimeTransient,
			Factory:        create,
		})
	}

	for _, d := range descriptors {
		if err := services.Add(d); err != nil {
			return fmt.Errorf("failed to register %s: %w", impl, err)
		}
	}
	return nil
}

// capabilitiesOf validates declared capabilities against impl, dropping the base capability.
func capabilitiesOf(impl reflect.Type, declared []reflect.Type) ([]reflect.Type, error) {
	capabilities := make([]reflect.Type, 0, len(declared))
	for _, capability := range declared {
		if capability == contextKey {
			continue
		}
		switch {
		case capability.Kind() != reflect.Interface:
			return nil, fmt.Errorf("%w: %s is not an interface", dbcontext.ErrCapabilityMismatch, capability)
		case !capability.Implements(contextKey):
			return nil, fmt.Errorf("%w: %s does not extend %s", dbcontext.ErrCapabilityMismatch, capability, contextKey)
		case !impl.Implements(capability):
			return nil, fmt.Errorf("%w: %s does not implement %s", dbcontext.ErrCapabilityMismatch, impl, capability)
		}
		capabilities = append(capabilities, capability)
	}
	return capabilities, nil
}
