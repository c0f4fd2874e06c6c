package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/reports/sales/sort")

	req := httptest.NewRequest(http.MethodPost, "/reports/sales/sort", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `salesboard_http_requests_total{code="418",route="/reports/sales/sort"} 1`)
	assert.Contains(t, body, `salesboard_http_request_duration_seconds_bucket{route="/reports/sales/sort"`)
}

func TestObserveFetchAndBoards(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveFetch("success", 120*time.Millisecond)
	metrics.ObserveFetch("failure", time.Second)
	metrics.ObserveFetch("success", 80*time.Millisecond)
	metrics.SetActiveBoards(3)

	body := scrape(t, metrics)
	assert.Contains(t, body, `salesboard_report_fetch_total{outcome="success"} 2`)
	assert.Contains(t, body, `salesboard_report_fetch_total{outcome="failure"} 1`)
	assert.Contains(t, body, `salesboard_report_fetch_duration_seconds_count 3`)
	assert.Contains(t, body, `salesboard_active_boards 3`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveFetch("success", time.Second)
	metrics.SetActiveBoards(1)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, metrics.Middleware(next))
}
