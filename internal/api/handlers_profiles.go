// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/profiles"
)

// CreateProfile handles POST /api/v1/profiles and returns every profile of
// the account.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	var in profiles.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	all, err := h.deps.Profiles.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(all)
}

// RecordWatch handles PUT /api/v1/profiles/{profileId}/watch-history.
func (h *Handler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	var in profiles.WatchInput
	if !decodeJSON(w, r, &in) {
		return
	}

	history, err := h.deps.Profiles.RecordWatch(r.Context(), userID, chi.URLParam(r, "profileId"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(history)
}

// WatchHistory handles GET /api/v1/profiles/{profileId}/watch-history.
func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	history, err := h.deps.Profiles.WatchHistory(r.Context(), userID, chi.URLParam(r, "profileId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(history)
}

// AddToMyList handles POST /api/v1/profiles/{profileId}/my-list.
func (h *Handler) AddToMyList(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	var in profiles.MyListInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ids, err := h.deps.Profiles.AddToMyList(r.Context(), userID, chi.URLParam(r, "profileId"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(ids)
}

// RemoveFromMyList handles DELETE /api/v1/profiles/{profileId}/my-list/{contentId}.
func (h *Handler) RemoveFromMyList(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	ids, err := h.deps.Profiles.RemoveFromMyList(r.Context(), userID, chi.URLParam(r, "profileId"), chi.URLParam(r, "contentId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(ids)
}

// MyList handles GET /api/v1/profiles/{profileId}/my-list.
func (h *Handler) MyList(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	items, err := h.deps.Profiles.MyList(r.Context(), userID, chi.URLParam(r, "profileId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(items)
}

// UpdatePreferences handles PUT /api/v1/profiles/{profileId}/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectID(w, r)
	if !ok {
		return
	}

	var in profiles.PreferencesInput
	if !decodeJSON(w, r, &in) {
		return
	}

	profile, err := h.deps.Profiles.UpdatePreferences(r.Context(), userID, chi.URLParam(r, "profileId"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(profile)
}
