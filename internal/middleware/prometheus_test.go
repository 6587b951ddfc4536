// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/marquee/internal/logging"
)

type recordedRequest struct {
	method, endpoint, status string
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	active   int
	maxSeen  int
}

func (f *fakeRecorder) RecordAPIRequest(method, endpoint, statusCode string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, endpoint, statusCode})
}

func (f *fakeRecorder) TrackActiveRequest(inc bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inc {
		f.active++
		if f.active > f.maxSeen {
			f.maxSeen = f.active
		}
		return
	}
	f.active--
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		method       string
		path         string
		wantEndpoint string
		wantStatus   string
	}{
		{"matched route uses pattern", "GET", "/api/v1/recommendations/p1", "/api/v1/recommendations/{profileId}", "200"},
		{"error status captured", "POST", "/api/v1/fail", "/api/v1/fail", "500"},
		{"unknown path collapsed", "GET", "/random/12345", "unmatched", "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &fakeRecorder{}
			r := chi.NewRouter()
			r.Use(PrometheusMetrics(rec))
			r.Get("/api/v1/recommendations/{profileId}", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			})
			r.Post("/api/v1/fail", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if len(rec.requests) != 1 {
				t.Fatalf("expected 1 recorded request, got %d", len(rec.requests))
			}
			got := rec.requests[0]
			if got.endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %q, want %q", got.endpoint, tt.wantEndpoint)
			}
			if got.status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.status, tt.wantStatus)
			}
			if rec.active != 0 || rec.maxSeen != 1 {
				t.Errorf("active tracking: active=%d max=%d", rec.active, rec.maxSeen)
			}
		})
	}
}

func TestRequestIDWithLogging(t *testing.T) {
	t.Parallel()

	t.Run("generates id", func(t *testing.T) {
		t.Parallel()
		var seen string
		h := RequestIDWithLogging()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = logging.RequestIDFromContext(r.Context())
		}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		if seen == "" {
			t.Fatal("expected request id in context")
		}
		if w.Header().Get(chimiddleware.RequestIDHeader) != seen {
			t.Errorf("response header = %q, want %q", w.Header().Get(chimiddleware.RequestIDHeader), seen)
		}
	})

	t.Run("keeps inbound id", func(t *testing.T) {
		t.Parallel()
		var seen string
		h := RequestIDWithLogging()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = logging.RequestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(chimiddleware.RequestIDHeader, "abc-123")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != "abc-123" {
			t.Errorf("request id = %q, want abc-123", seen)
		}
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logging.ContextWithLogger(req.Context(), logging.NewTestLogger(&buf))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(AccessLog())
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/boom", nil))

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("expected error level for 502: %s", out)
	}
	if !strings.Contains(out, `"status":502`) {
		t.Errorf("expected status field: %s", out)
	}
	if !strings.Contains(out, `"route":"/boom"`) {
		t.Errorf("expected route field: %s", out)
	}
}
