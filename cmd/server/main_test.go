package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eugenenazirov/knapsack-solver/internal/application"
)

func TestBuildRootHandler(t *testing.T) {
	apiInvoked := false
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path passed to API handler: %s", r.URL.Path)
		}
		apiInvoked = true
		w.WriteHeader(http.StatusNoContent)
	})
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics\n"))
	})

	handler := application.BuildRootHandler(apiHandler, metricsHandler)

	t.Run("serves metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != "# metrics\n" {
			t.Fatalf("unexpected metrics body %q", rec.Body.String())
		}
	})

	t.Run("returns not found for unknown paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("forwards api traffic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if !apiInvoked {
			t.Fatalf("expected API handler to be invoked")
		}
	})
}

func TestParseFlagsSolveTimeout(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSet bool
		want    time.Duration
	}{
		{name: "unset", args: nil},
		{name: "zero disables", args: []string{"--solve-timeout=0s"}, wantSet: true, want: 0},
		{name: "explicit", args: []string{"--solve-timeout=250ms"}, wantSet: true, want: 250 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			overrides, err := parseFlags(tc.args)
			if err != nil {
				t.Fatalf("parseFlags returned error: %v", err)
			}
			if !tc.wantSet {
				if overrides.SolveTimeout != nil {
					t.Fatalf("expected no solve timeout override, got %s", *overrides.SolveTimeout)
				}
				return
			}
			if overrides.SolveTimeout == nil || *overrides.SolveTimeout != tc.want {
				t.Fatalf("expected solve timeout %s, got %v", tc.want, overrides.SolveTimeout)
			}
		})
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	overrides, err := parseFlags([]string{"--port=9090", "--workers=4", "--instance=a.txt", "--instance=b.txt"})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if overrides.Port == nil || *overrides.Port != "9090" {
		t.Fatalf("unexpected port override %v", overrides.Port)
	}
	if overrides.SolverWorkers == nil || *overrides.SolverWorkers != 4 {
		t.Fatalf("unexpected workers override %v", overrides.SolverWorkers)
	}
	if overrides.MaxItems != nil || overrides.RateLimitRPS != nil {
		t.Fatalf("unset flags must not override config: %+v", overrides)
	}
	if len(overrides.InstanceFiles) != 2 {
		t.Fatalf("unexpected instance files %v", overrides.InstanceFiles)
	}
}

func TestParseFlagsRejectsBadDuration(t *testing.T) {
	if _, err := parseFlags([]string{"--solve-timeout=soon"}); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}
