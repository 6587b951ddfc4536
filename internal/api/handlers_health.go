// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Uptime    float64           `json:"uptime_seconds"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Liveness handles GET /api/v1/health/live. It only proves the process
// serves requests.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).Seconds(),
		Timestamp: time.Now().UTC(),
	})
}

// Readiness handles GET /api/v1/health/ready. A failing store makes the
// instance unready (503); the ML service is reported but never blocks
// readiness because recommendations degrade to the rule-based path.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	status := HealthStatus{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).Seconds(),
		Checks:    map[string]string{},
		Timestamp: time.Now().UTC(),
	}

	storeOK := true
	if h.deps.Store != nil {
		if err := h.deps.Store.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness: store ping failed")
			storeOK = false
		}
	}
	status.Checks["store"] = upDown(storeOK)

	switch {
	case h.deps.ML == nil:
		status.Checks["ml"] = "disabled"
	default:
		health, err := h.deps.ML.Health(ctx)
		status.Checks["ml"] = upDown(err == nil && health.Healthy())
	}

	if !storeOK {
		status.Status = "unavailable"
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", status)
		return
	}
	NewResponseWriter(w, r).Success(status)
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
