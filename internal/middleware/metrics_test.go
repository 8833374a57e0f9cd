package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsStatus(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	require.Contains(t, body, `braincast_http_requests_total{method="GET",status="200"} 1`)
	require.Contains(t, body, `braincast_http_requests_total{method="GET",status="404"} 1`)
	require.Contains(t, body, `braincast_http_requests_total{method="POST",status="200"} 1`)
	require.Contains(t, body, `braincast_http_request_duration_seconds_count{method="GET"} 2`)
}
