package dbcontext

import "errors"

var (
	// ErrServiceNotRegistered indicates no registration exists for the requested service type.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrScopedFromRoot indicates a scoped service was resolved outside of a scope.
	ErrScopedFromRoot = errors.New("scoped service resolved from root provider")

	// ErrScopeClosed indicates a resolution was attempted on a closed scope or provider.
	ErrScopeClosed = errors.New("scope closed")

	// ErrInvalidLifetime indicates a registration used an unknown lifetime.
	ErrInvalidLifetime = errors.New("invalid lifetime")

	// ErrCapabilityMismatch indicates a declared capability cannot be served by the context type.
	// The capability must be an interface extending Context that the context type implements.
	ErrCapabilityMismatch = errors.New("capability mismatch")

	// ErrDuplicateHealthCheck indicates a health check with the same name is already registered.
	ErrDuplicateHealthCheck = errors.New("duplicate health check")
)
