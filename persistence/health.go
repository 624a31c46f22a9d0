package persistence

import (
	"fmt"
	"reflect"

	"github.com/getpup/pupsourcing-dbcontext"
	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/health"
)

// AddContextCheck adds a readiness check named after T's simple name.
// Each run resolves T from the check's scope and calls CanConnect.
func AddContextCheck[T dbcontext.Connectable](checks *health.Builder) error {
	if checks == nil {
		return fmt.Errorf("health check builder is required")
	}
	key := reflect.TypeFor[T]()
	return checks.Add(health.Registration{
		Name: dbcontext.TypeName(key),
		Tags: []string{health.TagReadiness},
		Factory: func(r container.Resolver) (health.Checker, error) {
			c, err := container.Resolve[T](r)
			if err != nil {
				return nil, err
			}
			return ContextCheck(c), nil
		},
	})
}

// ContextCheck adapts a context to a health.Checker that calls CanConnect.
// Use it with health.Builder.AddCheck for a context the application already holds.
func ContextCheck(c dbcontext.Connectable) health.Checker {
	return health.CheckerFunc(c.CanConnect)
}
