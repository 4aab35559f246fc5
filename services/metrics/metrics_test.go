package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New("ums")
	m.ObserveRequest(http.MethodGet, "/api/students", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/students", http.StatusOK, 10*time.Millisecond)
	m.ObserveLogin("failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/students", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("failure")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ums_http_requests_total{method="GET",route="/api/students",status="200"} 2`)
	assert.Contains(t, rec.Body.String(), `ums_logins_total{outcome="failure"} 1`)
}
