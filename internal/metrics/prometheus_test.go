package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		204: "2xx",
		301: "3xx",
		404: "4xx",
		409: "4xx",
		500: "5xx",
		99:  "unknown",
	}

	for code, want := range tests {
		assert.Equal(t, want, classifyStatus(code), "status %d", code)
	}
}

func TestRecordRequest(t *testing.T) {
	m := NewHTTPMetrics()

	m.RecordRequest(http.MethodGet, "/products/{productId}", 200, 10*time.Millisecond)
	m.RecordRequest(http.MethodGet, "/products/{productId}", 200, 20*time.Millisecond)
	m.RecordRequest(http.MethodDelete, "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/products/{productId}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodDelete, "unmatched", "404")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := NewHTTPMetrics()
	m.RecordRequest(http.MethodPost, "/products", 201, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="POST",route="/products",status="201"} 1`)
	assert.Contains(t, rr.Body.String(), "http_request_duration_seconds_bucket")
}
