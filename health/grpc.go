package health

import (
	"context"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SyncGRPC runs the checks matched by predicate once and publishes the result for
// service on server as SERVING or NOT_SERVING. The empty service name is the
// server-wide status.
func SyncGRPC(ctx context.Context, svc *Service, server *grpchealth.Server, service string, predicate Predicate) Report {
	report := svc.Check(ctx, predicate)

	status := healthpb.HealthCheckResponse_SERVING
	if !report.Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	server.SetServingStatus(service, status)
	return report
}

// DefaultWatchInterval is used by WatchGRPC when the interval is not positive.
const DefaultWatchInterval = 10 * time.Second

// WatchGRPC calls SyncGRPC immediately and then every interval until ctx is done.
func WatchGRPC(ctx context.Context, svc *Service, server *grpchealth.Server, service string, predicate Predicate, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	SyncGRPC(ctx, svc, server, service, predicate)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SyncGRPC(ctx, svc, server, service, predicate)
		}
	}
}
