package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubHandler(code int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	})
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func shutdown(t *testing.T, s *Server) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.Shutdown(ctx)
}

func TestNewServer_KeepsAddress(t *testing.T) {
	server := NewServer("localhost:9090")

	require.NotNil(t, server)
	assert.Equal(t, "localhost:9090", server.Addr())
}

func TestNewServer_MountsHealthRoutesNextToMetrics(t *testing.T) {
	server := NewServer(":0",
		WithHandler("/health/ready", stubHandler(http.StatusServiceUnavailable, "catalog down")),
		WithHandler("/health/live", stubHandler(http.StatusOK, "alive")),
	)

	tests := []struct {
		path string
		code int
		body string
	}{
		{path: "/health/ready", code: http.StatusServiceUnavailable, body: "catalog down"},
		{path: "/health/live", code: http.StatusOK, body: "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(t, server, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusOK, serve(t, server, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, server, "/health/startup").Code)
}

func TestNewServer_ExposesMigrationMetrics(t *testing.T) {
	collector := NewCollector("server-test-app")
	collector.IncMigrations("CatalogContext", true)
	collector.ObserveMigrationDuration("CatalogContext", 0.02)
	collector.SetMigratedContexts(1)

	rec := serve(t, NewServer(":0"), "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	body := rec.Body.String()
	assert.Contains(t, body, `pupsourcing_dbcontext_migrations_total{app="server-test-app",context="CatalogContext",result="success"} 1`)
	assert.Contains(t, body, `pupsourcing_dbcontext_migrated_contexts{app="server-test-app"} 1`)
}

func TestServer_ServesUntilShutdown(t *testing.T) {
	server := NewServer(":9998", WithHandler("/health/live", stubHandler(http.StatusOK, "alive")))
	server.Start()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, server.Err())

	for _, path := range []string{"/metrics", "/health/live"} {
		resp, err := http.Get("http://localhost:9998" + path)
		require.NoError(t, err, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	time.Sleep(100 * time.Millisecond)
	_, err := http.Get("http://localhost:9998/health/live")
	assert.Error(t, err, "server must stop accepting connections")
}

func TestServer_ShutdownWithCancelledContextReturns(t *testing.T) {
	server := NewServer(":9996")
	server.Start()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		_ = server.Shutdown(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown blocked on a cancelled context")
	}
}

func TestServer_DoubleStartIsHarmless(t *testing.T) {
	server := NewServer(":9995")
	defer shutdown(t, server)

	server.Start()
	server.Start()
}

func TestServer_PortConflictIsReported(t *testing.T) {
	first := NewServer(":9994")
	first.Start()
	defer shutdown(t, first)
	time.Sleep(100 * time.Millisecond)

	second := NewServer(":9994")
	second.Start()

	select {
	case err := <-second.Done():
		assert.ErrorContains(t, err, "address already in use")
	case <-time.After(time.Second):
		t.Fatalf("no error reported for %s", second.Addr())
	}
	assert.NoError(t, second.Err(), "the error is delivered once")
}
