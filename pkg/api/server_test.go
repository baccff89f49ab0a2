package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/embedis/pkg/medium"
	"github.com/ssargent/embedis/pkg/settings"
	"github.com/ssargent/embedis/pkg/store"
)

func newTestRouter(t *testing.T) (http.Handler, *settings.Settings) {
	t.Helper()

	kv, err := store.New(medium.NewMemory(256), 0, 256)
	require.NoError(t, err)
	s := settings.New(kv)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	server := NewServer(Dependencies{Settings: s}, ServerConfig{APIKey: "secret"}, metrics)
	return NewRouter(server, metrics, reg), s
}

func doRequest(router http.Handler, method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Authentication(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "GET", "/api/v1/health", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "GET", "/api/v1/health", "", "wrong").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "/api/v1/health", "", "secret").Code)
}

func TestRouter_SettingsFlow(t *testing.T) {
	router, s := newTestRouter(t)

	w := doRequest(router, "PUT", "/api/v1/settings/hostname", "kitchen", "secret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "kitchen", s.GetString("hostname", ""))

	w = doRequest(router, "GET", "/api/v1/settings/hostname", "", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":"kitchen"`)

	// backup metadata names cannot be stored
	w = doRequest(router, "PUT", "/api/v1/settings/app", "x", "secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "GET", "/api/v1/stats", "", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"keys":1`)

	w = doRequest(router, "DELETE", "/api/v1/settings/hostname", "", "secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/v1/settings/hostname", "", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// no archive configured
	w = doRequest(router, "GET", "/api/v1/snapshots", "", "secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(router, "PUT", "/api/v1/settings/hostname", "kitchen", "secret")
	doRequest(router, "GET", "/api/v1/health", "", "wrong")

	// metrics are not behind the API key
	w := doRequest(router, "GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `embedis_store_operations_total{operation="set",status="success"} 1`)
	assert.Contains(t, body, `embedis_auth_requests_total{status="error"} 1`)
	assert.Contains(t, body, "embedis_store_keys 1")
	assert.Contains(t, body, `embedis_http_requests_total{endpoint="/api/v1/settings/{key}",method="PUT",status_code="200"} 1`)
}

func TestStartServer_Shutdown(t *testing.T) {
	kv, err := store.New(medium.NewMemory(64), 0, 64)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, Dependencies{Settings: settings.New(kv)}, ServerConfig{
			Bind:   "127.0.0.1",
			Port:   0,
			APIKey: "secret",
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
