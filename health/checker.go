// Package health runs named, tagged health checks against services resolved from a
// container, and reports the aggregate status over HTTP, Prometheus and gRPC.
//
// Example usage:
//
//	checks := health.NewBuilder()
//	_ = checks.AddCheck("self", health.CheckerFunc(func(ctx context.Context) error { return nil }), health.TagLiveness)
//
//	svc := health.NewService(checks, provider, health.WithCollector(metrics.NewCollector("app")))
//	http.Handle("/health/ready", health.Handler(svc, health.WithTag(health.TagReadiness)))
//
// Each check runs in its own container scope, so scoped and transient services a
// check resolves are released as soon as the check finishes.
package health

import (
	"context"
	"slices"
)

const (
	// TagReadiness marks checks that gate whether the application may serve traffic.
	TagReadiness = "readiness"

	// TagLiveness marks checks that only verify the process is running.
	TagLiveness = "liveness"
)

// Checker verifies one component.
// Returns nil if the component is healthy, or an error describing the problem.
// The context carries the check timeout, which the implementation must respect.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// Predicate selects which registrations a run includes.
type Predicate func(reg Registration) bool

// All selects every registration.
func All(Registration) bool {
	return true
}

// WithTag selects registrations carrying tag.
func WithTag(tag string) Predicate {
	return func(reg Registration) bool {
		return slices.Contains(reg.Tags, tag)
	}
}
