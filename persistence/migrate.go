package persistence

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/getpup/pupsourcing/es"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/metrics"
)

// scoper is implemented by *container.Provider.
type scoper interface {
	NewScope() *container.Scope
}

// MigrateContexts resolves every dbcontext.Context registration and migrates each
// one in registration order.
//
// A debug message is logged before and after each migration, keyed by the context's
// runtime type name, when an es.Logger is registered. When a *metrics.Collector is
// registered, outcomes and durations are recorded.
//
// The first failure stops the run and is returned wrapped; contexts after it are not
// migrated. Nothing is retried or rolled back.
func MigrateContexts(ctx context.Context, r container.Resolver) error {
	if r == nil {
		return fmt.Errorf("resolver is required")
	}
	if p, ok := r.(scoper); ok {
		scope := p.NewScope()
		defer func() {
			_ = scope.Close()
		}()
		r = scope
	}

	logger, _, err := container.TryResolve[es.Logger](r)
	if err != nil {
		return fmt.Errorf("failed to resolve logger: %w", err)
	}
	collector, _, err := container.TryResolve[*metrics.Collector](r)
	if err != nil {
		return fmt.Errorf("failed to resolve metrics collector: %w", err)
	}

	contexts, err := container.ResolveAll[dbcontext.Context](r)
	if err != nil {
		return fmt.Errorf("failed to resolve contexts: %w", err)
	}
	if collector != nil {
		collector.SetMigratedContexts(len(contexts))
	}

	for _, c := range contexts {
		name := dbcontext.TypeName(reflect.TypeOf(c))

		if logger != nil {
			logger.Debug(ctx, "migrating context", "context", name)
		}

		start := time.Now()
		err := c.Migrate(ctx)
		if collector != nil {
			collector.IncMigrations(name, err == nil)
			collector.ObserveMigrationDuration(name, time.Since(start).Seconds())
		}
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}

		if logger != nil {
			logger.Debug(ctx, "migrated context", "context", name)
		}
	}
	return nil
}
