// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mlclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: zerolog.Nop()}
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg)
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestScore_Success(t *testing.T) {
	t.Parallel()

	var got ScoreRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		respond(`{"recommendations":["c3","c1"],"source":"collaborative","confidence":0.8}`)(w, r)
	})

	ids, err := client.Score(context.Background(), ScoreRequest{
		UserID:    "u1",
		ProfileID: "p1",
		Preferences: Preferences{
			WatchHistory: []WatchedItem{{ContentID: "c9", Completed: true}},
		},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("Score error = %v", err)
	}
	if !slices.Equal(ids, []string{"c3", "c1"}) {
		t.Errorf("ids = %v, want [c3 c1]", ids)
	}
	if got.UserID != "u1" || got.ProfileID != "p1" || got.Limit != 5 {
		t.Errorf("request = %+v", got)
	}
	if got.Preferences.Genres == nil {
		t.Error("empty genres should be sent as [] not null")
	}
	if len(got.Preferences.WatchHistory) != 1 || !got.Preferences.WatchHistory[0].Completed {
		t.Errorf("watch history = %+v", got.Preferences.WatchHistory)
	}
}

func TestScore_FailuresMapToUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantReason string
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, ReasonStatus},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, ReasonStatus},
		{"malformed json", respond(`{"recommendations":`), ReasonInvalidResponse},
		{"missing field", respond(`{"source":"x"}`), ReasonInvalidResponse},
		{"wrong item type", respond(`{"recommendations":[1,2]}`), ReasonInvalidResponse},
		{"not an object", respond(`["c1"]`), ReasonInvalidResponse},
		{"null list", respond(`{"recommendations":null}`), ReasonInvalidResponse},
		{"empty list", respond(`{"recommendations":[]}`), ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tt.handler)

			ids, err := client.Score(context.Background(), ScoreRequest{Limit: 3})
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Score error = %v, want ErrUnavailable", err)
			}
			if ids != nil {
				t.Errorf("ids = %v, want nil", ids)
			}
			if got := Reason(err); got != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestScore_TimeoutReturnsWithoutWaiting(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(c *Config) { c.Timeout = 50 * time.Millisecond })

	start := time.Now()
	_, err := client.Score(context.Background(), ScoreRequest{Limit: 1})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrUnavailable) || Reason(err) != ReasonTimeout {
		t.Fatalf("Score error = %v, want timeout", err)
	}
	if elapsed > time.Second {
		t.Errorf("Score took %v after a 50ms timeout", elapsed)
	}
}

func TestScore_CallerCancellation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := client.Score(ctx, ScoreRequest{Limit: 1}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Score error = %v, want ErrUnavailable", err)
	}
}

func TestScore_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(respond(`{}`))
	addr := srv.URL
	srv.Close()

	client := New(Config{BaseURL: addr, Timeout: time.Second, Logger: zerolog.Nop()})
	_, err := client.Score(context.Background(), ScoreRequest{Limit: 1})
	if !errors.Is(err, ErrUnavailable) || Reason(err) != ReasonTransport {
		t.Errorf("Score error = %v, want transport failure", err)
	}
}

func TestScore_BreakerOpensAndRejects(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(c *Config) {
		c.Breaker = BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			OpenTimeout:  time.Minute,
			MinRequests:  2,
			FailureRatio: 0.5,
		}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Score(ctx, ScoreRequest{Limit: 1}); Reason(err) != ReasonStatus {
			t.Fatalf("call %d error = %v, want status failure", i, err)
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("BreakerState = %q, want open", client.BreakerState())
	}

	_, err := client.Score(ctx, ScoreRequest{Limit: 1})
	if !errors.Is(err, ErrUnavailable) || Reason(err) != ReasonBreakerOpen {
		t.Errorf("Score error = %v, want breaker_open", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 (open breaker must not call out)", hits.Load())
	}
}

func tightBreaker(c *Config) {
	c.Breaker = BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  time.Minute,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// waitForCounts polls until the breaker has settled the abandoned calls,
// which finish on their own goroutines after Score returns.
func waitForCounts(t *testing.T, client *Client, done func(requests, failures uint32) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		counts := client.breaker.Counts()
		if done(counts.TotalSuccesses+counts.TotalFailures, counts.TotalFailures) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("breaker counts did not settle: %+v", client.breaker.Counts())
}

func TestScore_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
			respond(`{"recommendations":["c1"]}`)(w, r)
		case <-r.Context().Done():
		}
	}, tightBreaker)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Score(ctx, ScoreRequest{Limit: 1})
		cancel()
		if Reason(err) != ReasonCanceled {
			t.Fatalf("call %d error = %v, want canceled", i, err)
		}
	}
	waitForCounts(t, client, func(settled, _ uint32) bool { return settled == 3 })

	if got := client.breaker.Counts().TotalFailures; got != 0 {
		t.Errorf("failures = %d, want 0 after caller cancellations", got)
	}
	if client.BreakerState() != "closed" {
		t.Fatalf("BreakerState = %q, want closed", client.BreakerState())
	}

	ids, err := client.Score(context.Background(), ScoreRequest{Limit: 1})
	if err != nil || !slices.Equal(ids, []string{"c1"}) {
		t.Errorf("Score after cancellations = %v, %v", ids, err)
	}
}

func TestScore_TimeoutsStillTripBreaker(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, tightBreaker, func(c *Config) { c.Timeout = 20 * time.Millisecond })

	for i := 0; i < 3; i++ {
		if _, err := client.Score(context.Background(), ScoreRequest{Limit: 1}); Reason(err) != ReasonTimeout {
			t.Fatalf("call %d error = %v, want timeout", i, err)
		}
	}
	deadline := time.Now().Add(5 * time.Second)
	for client.BreakerState() != "open" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if client.BreakerState() != "open" {
		t.Fatalf("BreakerState = %q, want open after timeouts; counts %+v", client.BreakerState(), client.breaker.Counts())
	}
}

func TestBreakerSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", unavailable(ReasonCanceled, context.Canceled), true},
		{"bare context canceled", context.Canceled, true},
		{"timeout", unavailable(ReasonTimeout, errScoreTimeout), false},
		{"status", unavailable(ReasonStatus, errors.New("503")), false},
		{"transport", unavailable(ReasonTransport, errors.New("refused")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := breakerSuccess(tt.err); got != tt.want {
				t.Errorf("breakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestScore_RateLimited(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(`{"recommendations":["c1"]}`), func(c *Config) {
		c.RateLimit = 0.001
		c.RateBurst = 1
	})

	ctx := context.Background()
	if _, err := client.Score(ctx, ScoreRequest{Limit: 1}); err != nil {
		t.Fatalf("first Score error = %v", err)
	}
	_, err := client.Score(ctx, ScoreRequest{Limit: 1})
	if !errors.Is(err, ErrUnavailable) || Reason(err) != ReasonRateLimited {
		t.Errorf("second Score error = %v, want rate_limited", err)
	}
}

func TestReason_Default(t *testing.T) {
	t.Parallel()

	if got := Reason(errors.New("plain")); got != "unavailable" {
		t.Errorf("Reason(plain) = %q", got)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respond(`{"status":"healthy","service":"ml-service","model_loaded":true}`)(w, r)
	})

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health error = %v", err)
	}
	if !status.Healthy() || !status.ModelLoaded {
		t.Errorf("status = %+v", status)
	}
}

func TestSendFeedback(t *testing.T) {
	t.Parallel()

	var query atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/feedback" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		query.Store(r.URL.Query())
		respond(`{"status":"success"}`)(w, r)
	})

	err := client.SendFeedback(context.Background(), Feedback{UserID: "u1", ContentID: "c1", Rating: 7.5})
	if err != nil {
		t.Fatalf("SendFeedback error = %v", err)
	}
	q := query.Load().(url.Values)
	if q.Get("user_id") != "u1" || q.Get("content_id") != "c1" || q.Get("rating") != "7.5" {
		t.Errorf("query = %v", q)
	}
}

func TestSendFeedback_ServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if err := client.SendFeedback(context.Background(), Feedback{UserID: "u"}); err == nil {
		t.Error("SendFeedback should fail on 500")
	}
}

func TestTrain(t *testing.T) {
	t.Parallel()

	var body map[string]bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		respond(`{"status":"success","message":"Model trained successfully","metrics":{"rmse":0.9}}`)(w, r)
	})

	result, err := client.Train(context.Background(), true)
	if err != nil {
		t.Fatalf("Train error = %v", err)
	}
	if !body["force_retrain"] {
		t.Errorf("request body = %v, want force_retrain true", body)
	}
	if result.Status != "success" || result.Metrics["rmse"] != 0.9 {
		t.Errorf("result = %+v", result)
	}
}

func TestModelInfo(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(`{"model_type":"hybrid","n_users":12}`))
	info, err := client.ModelInfo(context.Background())
	if err != nil {
		t.Fatalf("ModelInfo error = %v", err)
	}
	if info["model_type"] != "hybrid" {
		t.Errorf("info = %v", info)
	}
}
