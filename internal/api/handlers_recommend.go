// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/models"
)

// Recommendations handles GET /api/v1/recommendations/{profileId}?limit=.
// The source field tells whether the ML model or the genre fallback
// produced the list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.deps.Recommender.Recommend(r.Context(), userID, chi.URLParam(r, "profileId"), h.clampLimit(limit))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Recommendations(nonNilItems(result.Items), string(result.Source))
}

// SimilarContent handles GET /api/v1/recommendations/{profileId}/similar/{contentId}.
// The profile must belong to the caller even though similarity ignores it.
func (h *Handler) SimilarContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r.URL.Query(), "limit")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err := h.deps.Profiles.Get(r.Context(), userID, chi.URLParam(r, "profileId")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	items, err := h.deps.Recommender.Similar(r.Context(), chi.URLParam(r, "contentId"), h.clampLimit(limit))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(nonNilItems(items))
}

// nonNilItems keeps empty lists encoding as [] rather than null.
func nonNilItems(items []models.ContentItem) []models.ContentItem {
	if items == nil {
		return []models.ContentItem{}
	}
	return items
}
