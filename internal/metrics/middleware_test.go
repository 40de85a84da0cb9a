package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"A", "B"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/documents/"+id, http.NoBody))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/documents/{id}", "404"))
	if got < 2 {
		t.Errorf("requests_total = %f, want >= 2 under the route pattern", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/search", http.NoBody))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/v1/search", "200")); got < 1 {
		t.Errorf("requests_total = %f, want >= 1", got)
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unknown" {
		t.Errorf("normalizePath(\"\") = %q", got)
	}
	if got := normalizePath("/health"); got != "/health" {
		t.Errorf("normalizePath(/health) = %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	errMissing := errors.New("missing")
	errBad := errors.New("bad")
	outcomes := []Outcome{{Err: errMissing, Label: "not_found"}, {Err: errBad, Label: "invalid"}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "success"},
		{name: "unknown", err: errors.New("x"), want: "error"},
		{name: "sentinel", err: errMissing, want: "not_found"},
		{name: "wrapped sentinel", err: fmt.Errorf("lookup: %w", errBad), want: "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusLabel(tt.err, outcomes...); got != tt.want {
				t.Errorf("StatusLabel(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
	if got := StatusLabel(errMissing); got != "error" {
		t.Errorf("without outcomes = %q, want error", got)
	}
}
