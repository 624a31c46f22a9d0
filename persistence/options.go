package persistence

import (
	"reflect"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/sqlcontext"
)

// ContextOptions is the options registration for context type T.
// Each context type gets its own options entry, so two contexts never share
// a connection pool by accident.
type ContextOptions[T dbcontext.Context] struct {
	*sqlcontext.Options
}

// Option configures AddContext.
type Option func(*registration)

type registration struct {
	contextLifetime dbcontext.Lifetime
	optionsLifetime dbcontext.Lifetime
	capabilities    []reflect.Type
}

func defaultRegistration() *registration {
	return &registration{
		contextLifetime: dbcontext.LifetimeTransient,
		optionsLifetime: dbcontext.LifetimeSingleton,
	}
}

// WithContextLifetime sets the lifetime of the native context registration.
// Default: transient.
func WithContextLifetime(lifetime dbcontext.Lifetime) Option {
	return func(r *registration) {
		r.contextLifetime = lifetime
	}
}

// WithOptionsLifetime sets the lifetime of the options registration.
// Default: singleton.
func WithOptionsLifetime(lifetime dbcontext.Lifetime) Option {
	return func(r *registration) {
		r.optionsLifetime = lifetime
	}
}

// As declares I as an additional capability of the context.
// I must be an interface that extends dbcontext.Context and is implemented by the
// context type. Declaring dbcontext.Context itself is a no-op.
func As[I dbcontext.Context]() Option {
	return func(r *registration) {
		r.capabilities = append(r.capabilities, reflect.TypeFor[I]())
	}
}
