package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getpup/pupsourcing/es"

	"github.com/getpup/pupsourcing-dbcontext/container"
	"github.com/getpup/pupsourcing-dbcontext/metrics"
)

// DefaultTimeout bounds a single check when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Status is the outcome of a check or of a whole run.
type Status string

const (
	// StatusHealthy means the check passed.
	StatusHealthy Status = "healthy"

	// StatusUnhealthy means the check failed, timed out or could not be built.
	StatusUnhealthy Status = "unhealthy"
)

// Entry is the result of one check.
type Entry struct {
	Status   Status
	Duration time.Duration
	Error    error
	Tags     []string
}

// Report is the result of one run.
// Status is unhealthy if any entry is unhealthy; an empty run is healthy.
type Report struct {
	Status        Status
	Entries       map[string]Entry
	TotalDuration time.Duration
}

// Healthy reports whether every selected check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each check. Values <= 0 keep DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithCollector records check results as Prometheus metrics.
func WithCollector(collector *metrics.Collector) Option {
	return func(s *Service) {
		s.collector = collector
	}
}

// WithLogger logs failed checks.
func WithLogger(logger es.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service runs the checks collected by a Builder.
type Service struct {
	registrations []Registration
	provider      *container.Provider
	timeout       time.Duration
	collector     *metrics.Collector
	logger        es.Logger
}

// NewService snapshots the builder's registrations.
// Checks resolve their dependencies from scopes of provider; a nil provider
// behaves like one with no registrations.
func NewService(b *Builder, provider *container.Provider, opts ...Option) *Service {
	if provider == nil {
		provider = container.NewCollection().Build()
	}
	s := &Service{
		provider: provider,
		timeout:  DefaultTimeout,
	}
	if b != nil {
		s.registrations = b.Registrations()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registrations returns the checks the service runs.
func (s *Service) Registrations() []Registration {
	return append([]Registration(nil), s.registrations...)
}

// Check runs every registration matched by predicate concurrently and waits for all of them.
// A nil predicate selects all checks.
func (s *Service) Check(ctx context.Context, predicate Predicate) Report {
	if predicate == nil {
		predicate = All
	}

	start := time.Now()
	entries := make(map[string]Entry)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, reg := range s.registrations {
		if !predicate(reg) {
			continue
		}
		wg.Add(1)
		go func(reg Registration) {
			defer wg.Done()
			entry := s.run(ctx, reg)

			mu.Lock()
			entries[reg.Name] = entry
			mu.Unlock()
		}(reg)
	}
	wg.Wait()

	status := StatusHealthy
	for _, entry := range entries {
		if entry.Status != StatusHealthy {
			status = StatusUnhealthy
			break
		}
	}

	return Report{
		Status:        status,
		Entries:       entries,
		TotalDuration: time.Since(start),
	}
}

func (s *Service) run(ctx context.Context, reg Registration) Entry {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.execute(ctx, reg)
	elapsed := time.Since(start)

	entry := Entry{
		Status:   StatusHealthy,
		Duration: elapsed,
		Tags:     reg.Tags,
	}
	if err != nil {
		entry.Status = StatusUnhealthy
		entry.Error = err
		if s.logger != nil {
			s.logger.Error(ctx, "health check failed", "check", reg.Name, "error", err)
		}
	}

	if s.collector != nil {
		s.collector.RecordHealthCheck(reg.Name, err == nil, elapsed.Seconds())
	}
	return entry
}

func (s *Service) execute(ctx context.Context, reg Registration) (err error) {
	scope := s.provider.NewScope()
	defer func() {
		if closeErr := scope.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to release check scope: %w", closeErr)
		}
	}()

	checker, err := reg.Factory(scope)
	if err != nil {
		return fmt.Errorf("failed to build health check: %w", err)
	}

	return checker.Check(ctx)
}
