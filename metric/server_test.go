package metric

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/pkg/security"
)

func TestServerDefaults(t *testing.T) {
	s := NewServer(0, "", NewMetricsRegistry(), security.Config{})
	assert.Equal(t, "http://localhost:9090/metrics", s.Address())

	s = NewServer(9191, "/prom", NewMetricsRegistry(), security.Config{})
	assert.Equal(t, "http://localhost:9191/prom", s.Address())
}

func TestServeScrapeEndpoint(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordServiceStatus("reason", 2)

	inferred := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reason_inferred_triples_total",
		Help: "Inferred triples",
	})
	require.NoError(t, registry.RegisterCounter("reason", "inferred", inferred))
	inferred.Add(42)

	srv := NewServer(0, "/metrics", registry, security.Config{})
	ts := httptest.NewServer(srv.buildMux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `semreason_service_status{service="reason"} 2`)
	assert.Contains(t, string(body), "reason_inferred_triples_total 42")
}

func TestServeHealthAndIndex(t *testing.T) {
	srv := NewServer(0, "/metrics", NewMetricsRegistry(), security.Config{})
	ts := httptest.NewServer(srv.buildMux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), `href="/metrics"`)
}

func TestServerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("binds a TCP port")
	}

	srv := NewServer(freePort(t), "/metrics", NewMetricsRegistry(), security.Config{})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	waitReachable(t, srv.Address())

	// a second Start on the same instance is rejected
	err := srv.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, srv.Stop())
	select {
	case err := <-errCh:
		// Close surfaces as a fatal-wrapped ErrServerClosed
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}

	// stopped servers restart cleanly
	go func() { errCh <- srv.Start() }()
	waitReachable(t, srv.Address())
	require.NoError(t, srv.Stop())
	<-errCh
}

func TestStopWithoutStart(t *testing.T) {
	srv := NewServer(0, "", NewMetricsRegistry(), security.Config{})
	assert.NoError(t, srv.Stop())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func waitReachable(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s never became reachable", url)
}
