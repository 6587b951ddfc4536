// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/mlclient"
	"github.com/tomtom215/marquee/internal/profiles"
	"github.com/tomtom215/marquee/internal/recommend"
)

// MLService is the part of the ML client the admin and health endpoints use.
// *mlclient.Client implements it.
type MLService interface {
	Health(ctx context.Context) (*mlclient.HealthStatus, error)
	Train(ctx context.Context, force bool) (*mlclient.TrainResult, error)
	ModelInfo(ctx context.Context) (map[string]interface{}, error)
}

// PolicyReloader reloads authorization policy from its backing file.
// *authz.Enforcer implements it.
type PolicyReloader interface {
	LoadPolicy() error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the handlers delegate to.
type Dependencies struct {
	Auth        *auth.Service
	Catalog     *catalog.Service
	Profiles    *profiles.Service
	Recommender *recommend.Engine

	// ML may be nil; admin ML routes then answer 503.
	ML    MLService
	Store Pinger

	// Policy may be nil; the reload route then answers 503.
	Policy PolicyReloader

	// MaxPageSize clamps the limit query parameter of recommendation routes.
	MaxPageSize int

	// ReadyTimeout bounds the dependency checks of /health/ready.
	ReadyTimeout time.Duration
}

// Handler holds the HTTP handlers.
type Handler struct {
	deps      Dependencies
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(deps Dependencies) *Handler {
	if deps.MaxPageSize <= 0 {
		deps.MaxPageSize = 100
	}
	if deps.ReadyTimeout <= 0 {
		deps.ReadyTimeout = 2 * time.Second
	}
	return &Handler{deps: deps, startTime: time.Now()}
}

// subjectID returns the authenticated user id, writing a 401 when the
// request carries no subject.
func subjectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil || subject.ID == "" {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
		return "", false
	}
	return subject.ID, true
}

func (h *Handler) clampLimit(limit int) int {
	if limit > h.deps.MaxPageSize {
		return h.deps.MaxPageSize
	}
	return limit
}
