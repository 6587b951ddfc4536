// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/catalog"
)

// ListContent handles GET /api/v1/content.
//
// Query parameters:
//   - type: movie or series
//   - genre: exact genre name
//   - featured, trending, newRelease: true or false
//   - search: case-insensitive substring of title, description or tags
//   - limit (default 20), page (default 1)
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.ListQuery{
		Type:   q.Get("type"),
		Genre:  q.Get("genre"),
		Search: q.Get("search"),
	}

	var err error
	if query.Featured, err = queryBool(q, "featured"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if query.Trending, err = queryBool(q, "trending"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if query.NewRelease, err = queryBool(q, "newRelease"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if query.Limit, err = queryInt(q, "limit"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if query.Page, err = queryInt(q, "page"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	listing, err := h.deps.Catalog.List(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(listing.Items, listing.Count, listing.Total, listing.Page, listing.Pages)
}

// Genres handles GET /api/v1/content/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.deps.Catalog.Genres(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(genres)
}

// GetContent handles GET /api/v1/content/{id}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	item, err := h.deps.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(item)
}

// ViewContent handles POST /api/v1/content/{id}/view.
func (h *Handler) ViewContent(w http.ResponseWriter, r *http.Request) {
	item, err := h.deps.Catalog.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(item)
}

// RateContent handles POST /api/v1/content/{id}/rate.
func (h *Handler) RateContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	var in catalog.RateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.UserID = userID
	in.ContentID = chi.URLParam(r, "id")

	item, err := h.deps.Catalog.Rate(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(item)
}

// Stream handles GET /api/v1/streaming/{contentId}.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	stream, err := h.deps.Catalog.Stream(r.Context(), chi.URLParam(r, "contentId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stream)
}

// EpisodeStream handles GET /api/v1/streaming/episode/{contentId}/{season}/{episode}.
func (h *Handler) EpisodeStream(w http.ResponseWriter, r *http.Request) {
	season, err := pathInt(chi.URLParam(r, "season"), "season")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	episode, err := pathInt(chi.URLParam(r, "episode"), "episode")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stream, err := h.deps.Catalog.EpisodeStream(r.Context(), chi.URLParam(r, "contentId"), season, episode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stream)
}
