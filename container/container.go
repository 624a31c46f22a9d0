// Package container provides the service collection and provider that persistence
// contexts, their options and their health checks are registered into.
//
// Registrations are explicit: a Descriptor names the service type it answers for,
// the implementation type behind it, a lifetime and a factory. Nothing is discovered
// at runtime and there is no global container; a Collection is built into a Provider
// and passed to whatever needs to resolve services.
package container

import (
	"reflect"

	"github.com/getpup/pupsourcing-dbcontext"
)

// Factory builds a service instance.
// The resolver is the scope the instance is being resolved from,
// so factories can resolve their own dependencies through it.
type Factory func(r Resolver) (any, error)

// Descriptor describes one registration.
type Descriptor struct {
	// Service is the type the registration is resolvable as (required).
	Service reflect.Type

	// Implementation is the concrete type produced by Factory.
	// Defaults to Service when nil.
	Implementation reflect.Type

	// Lifetime controls instance reuse (required).
	Lifetime dbcontext.Lifetime

	// Factory builds the instance. Required unless Instance is set.
	Factory Factory

	// Instance, when set, is returned as a singleton and is never closed by the provider.
	Instance any
}

// Resolver resolves services from a provider or scope.
type Resolver interface {
	// Resolve returns an instance of the last registration for service.
	// Returns dbcontext.ErrServiceNotRegistered if there is none.
	Resolve(service reflect.Type) (any, error)

	// ResolveAll returns one instance per registration for service, in registration order.
	// Returns an empty slice if there are none.
	ResolveAll(service reflect.Type) ([]any, error)

	// Contains reports whether at least one registration exists for service.
	Contains(service reflect.Type) bool
}

// KeyOf returns the service key for T.
func KeyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
