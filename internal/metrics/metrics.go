// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package init. Callers record through the Record* helpers so label sets stay
// consistent.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation responses by provenance",
		},
		[]string{"source"}, // "ml-model", "rule-based"
	)

	RecommendationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Rule-based fallbacks by cause",
		},
		[]string{"reason"}, // "timeout", "unavailable", "breaker_open", "rate_limited"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// ML Service Metrics
	MLRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ml_request_duration_seconds",
			Help:    "Duration of calls to the ML scoring service",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "outcome"},
	)

	MLServiceUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_service_up",
			Help: "1 if the last ML health probe succeeded, 0 otherwise",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Feedback Event Metrics
	FeedbackEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_published_total",
			Help: "Feedback events published by kind and result",
		},
		[]string{"kind", "result"},
	)

	FeedbackEventsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_forwarded_total",
			Help: "Feedback events delivered to the ML service",
		},
		[]string{"result"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Authorization Metrics
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by role and outcome",
		},
		[]string{"role", "decision"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one served recommendation list.
func RecordRecommendation(source string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(source).Inc()
	RecommendationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFallback records why the rule-based path was taken.
func RecordFallback(reason string) {
	RecommendationFallbacks.WithLabelValues(reason).Inc()
}

// RecordMLRequest records one ML service call.
func RecordMLRequest(endpoint, outcome string, duration time.Duration) {
	MLRequestDuration.WithLabelValues(endpoint, outcome).Observe(duration.Seconds())
}

// SetMLServiceUp updates the ML health gauge.
func SetMLServiceUp(up bool) {
	if up {
		MLServiceUp.Set(1)
		return
	}
	MLServiceUp.Set(0)
}

// RecordFeedbackPublished records a publish attempt for a feedback event.
func RecordFeedbackPublished(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	FeedbackEventsPublished.WithLabelValues(kind, result).Inc()
}

// RecordFeedbackForwarded records a delivery attempt to the ML service.
func RecordFeedbackForwarded(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	FeedbackEventsForwarded.WithLabelValues(result).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordAuthzDecision records an authorization decision.
func RecordAuthzDecision(role string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisions.WithLabelValues(role, decision).Inc()
}

// APIRecorder adapts the package-level API collectors to the HTTP
// middleware's recorder interface.
type APIRecorder struct{}

// RecordAPIRequest records an API request metric.
func (APIRecorder) RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	RecordAPIRequest(method, endpoint, statusCode, duration)
}

// TrackActiveRequest tracks in-flight API requests.
func (APIRecorder) TrackActiveRequest(inc bool) {
	TrackActiveRequest(inc)
}
