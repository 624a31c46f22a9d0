// Package dbcontext wires SQL persistence contexts into an application's service
// container: contexts are registered under their own type and under the capability
// interfaces they declare, each gets a readiness health check, and all of them are
// migrated at startup.
//
// The building blocks live in sub-packages:
//   - container: the service collection and provider (lifetimes, scopes, disposal)
//   - sqlcontext: the embeddable SQL context with its options and migration engine
//   - persistence: AddContext, AddContextCheck and MigrateContexts
//   - health: readiness and liveness checks with HTTP and gRPC surfaces
//   - host: startup orchestration (migrate, serve, shut down)
package dbcontext

import "context"

// Context is a unit of work bound to a persistent schema.
// It is the base capability every registered context is resolvable as.
type Context interface {
	// Migrate brings the context's schema up to date.
	// It must be safe to call on an already migrated schema.
	Migrate(ctx context.Context) error
}

// Connectable is implemented by contexts that can report whether their database is reachable.
type Connectable interface {
	// CanConnect returns nil when the database accepts connections.
	CanConnect(ctx context.Context) error
}
