package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lzjever/mbos-wrt/internal/observability"
)

func TestRequestID_KeepsIncoming(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen != "req-1" {
		t.Errorf("expected request id req-1, got %q", seen)
	}
	if w.Header().Get(RequestIDHeader) != "req-1" {
		t.Errorf("expected response header req-1, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_Generates(t *testing.T) {
	w := httptest.NewRecorder()
	RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("expected a uuid request id, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/v1/workspace", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	matched := observability.HTTPRequestsTotal.WithLabelValues("/v1/workspace", "GET", "200")
	unmatched := observability.HTTPRequestsTotal.WithLabelValues(unmatchedRoute, "GET", "404")
	probe := observability.HTTPRequestsTotal.WithLabelValues("/healthz", "GET", "200")
	beforeMatched, beforeUnmatched, beforeProbe := testutil.ToFloat64(matched), testutil.ToFloat64(unmatched), testutil.ToFloat64(probe)

	for _, path := range []string{"/v1/workspace", "/no/such/path", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	if got := testutil.ToFloat64(matched) - beforeMatched; got != 1 {
		t.Errorf("expected 1 matched request, got %v", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeUnmatched; got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(probe) - beforeProbe; got != 0 {
		t.Errorf("expected probes to be skipped, got %v", got)
	}
}
