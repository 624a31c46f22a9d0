package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerOption configures a Server.
type ServerOption func(*http.ServeMux)

// WithHandler mounts an extra handler, such as a health endpoint, next to /metrics.
func WithHandler(pattern string, handler http.Handler) ServerOption {
	return func(mux *http.ServeMux) {
		mux.Handle(pattern, handler)
	}
}

// Server provides an optional HTTP server for metrics and health endpoints.
// Use this only if your application does not already expose them.
type Server struct {
	server  *http.Server
	errChan chan error
}

// NewServer creates a server on the specified address.
// Example address: ":9090" or "localhost:9090"
func NewServer(addr string, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	for _, opt := range opts {
		opt(mux)
	}

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		errChan: make(chan error, 1),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the server in a goroutine.
// Returns immediately. Check Err() to detect startup failures.
// Use Shutdown to stop the server.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()
}

// Err returns any error that occurred during server startup or operation.
// This is non-blocking and returns nil if no error has occurred.
func (s *Server) Err() error {
	select {
	case err := <-s.errChan:
		return err
	default:
		return nil
	}
}

// Done returns a channel that receives the first server error.
func (s *Server) Done() <-chan error {
	return s.errChan
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
