package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/web"
	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
)

func statusOf(lifecycle string, err error) web.StatusFunc {
	return func(context.Context) (dtos.StatusDTO, error) {
		return dtos.StatusDTO{Lifecycle: lifecycle, Workers: 3}, err
	}
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		status     web.StatusFunc
		wantCode   int
		wantStatus string
	}{
		{"no status source", nil, http.StatusOK, "healthy"},
		{"running", statusOf("RUNNING", nil), http.StatusOK, "healthy"},
		{"stopped", statusOf("STOPPED", nil), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := web.NewRouter(web.RouterOptions{Status: tt.status})

			rec, body := get(t, r, "/healthz")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestRouter_HealthWhenLoopUnavailable(t *testing.T) {
	r := web.NewRouter(web.RouterOptions{Status: statusOf("", errors.New("loop stopped"))})

	rec, body := get(t, r, "/healthz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "simulation unavailable", body["error"])
}

func TestRouter_Status(t *testing.T) {
	r := web.NewRouter(web.RouterOptions{Status: statusOf("RUNNING", nil)})

	rec, body := get(t, r, "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, body["workers"])
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec, _ = get(t, web.NewRouter(web.RouterOptions{}), "/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "colony_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(2)
	r := web.NewRouter(web.RouterOptions{Registry: reg, MetricsPath: "/m"})

	// Act
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/m", nil))

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "colony_test_total 2")

	rec, _ = get(t, web.NewRouter(web.RouterOptions{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EventsMounted(t *testing.T) {
	events := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r := web.NewRouter(web.RouterOptions{Events: events})

	rec, _ := get(t, r, "/events")

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	// Arrange
	srv, err := web.Listen("127.0.0.1:0", web.NewRouter(web.RouterOptions{}))
	require.NoError(t, err)
	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	// Act
	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
	assert.NoError(t, <-served)
}
