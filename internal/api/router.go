// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler  *Handler
	auth     *auth.Middleware
	authz    *authz.Middleware
	chi      *ChiMiddleware
	recorder middleware.Recorder
}

// NewRouter creates a router. recorder may be nil to skip HTTP metrics.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware, recorder middleware.Recorder) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:  handler,
		auth:     authMW,
		authz:    authzMW,
		chi:      chiMW,
		recorder: recorder,
	}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chi.CORS())
	r.Use(middleware.AccessLog())
	if router.recorder != nil {
		r.Use(middleware.PrometheusMetrics(router.recorder))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chi.RateLimitHealth())
		r.Get("/live", h.Liveness)
		r.Get("/ready", h.Readiness)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.With(router.chi.RateLimitAuth()).Post("/register", h.Register)
		r.With(router.chi.RateLimitLogin()).Post("/login", h.Login)
		r.With(router.chi.RateLimit(), router.auth.Authenticate).Get("/me", h.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chi.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(router.auth.Authenticate)
		r.Use(router.authz.AuthorizeRequest)

		r.Route("/api/v1/content", func(r chi.Router) {
			r.Get("/", h.ListContent)
			r.Get("/genres", h.Genres)
			r.Get("/{id}", h.GetContent)
			r.Post("/{id}/view", h.ViewContent)
			r.Post("/{id}/rate", h.RateContent)
		})

		r.Route("/api/v1/streaming", func(r chi.Router) {
			r.Get("/episode/{contentId}/{season}/{episode}", h.EpisodeStream)
			r.Get("/{contentId}", h.Stream)
		})

		r.Route("/api/v1/profiles", func(r chi.Router) {
			r.Post("/", h.CreateProfile)
			r.Route("/{profileId}", func(r chi.Router) {
				r.Put("/watch-history", h.RecordWatch)
				r.Get("/watch-history", h.WatchHistory)
				r.Post("/my-list", h.AddToMyList)
				r.Get("/my-list", h.MyList)
				r.Delete("/my-list/{contentId}", h.RemoveFromMyList)
				r.Put("/preferences", h.UpdatePreferences)
			})
		})

		r.Route("/api/v1/recommendations", func(r chi.Router) {
			r.Get("/{profileId}", h.Recommendations)
			r.Get("/{profileId}/similar/{contentId}", h.SimilarContent)
		})

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(router.chi.RateLimitAdmin())
			r.Post("/content", h.CreateContent)
			r.Post("/ml/train", h.TrainModel)
			r.Get("/ml/info", h.ModelInfo)
			r.Post("/policy/reload", h.ReloadPolicy)
		})
	})

	return r
}
