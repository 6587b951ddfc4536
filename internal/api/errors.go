// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

// errorMapping pairs a sentinel with its HTTP rendering.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{store.ErrProfileNotFound, http.StatusNotFound, ErrCodeProfileNotFound, "Profile not found"},
	{recommend.ErrProfileNotFound, http.StatusNotFound, ErrCodeProfileNotFound, "Profile not found"},
	{store.ErrContentNotFound, http.StatusNotFound, ErrCodeContentNotFound, "Content not found"},
	{recommend.ErrContentNotFound, http.StatusNotFound, ErrCodeContentNotFound, "Content not found"},
	{store.ErrUserNotFound, http.StatusNotFound, ErrCodeUserNotFound, "User not found"},
	{store.ErrProfileLimit, http.StatusBadRequest, ErrCodeProfileLimit, "Maximum 5 profiles allowed"},
	{catalog.ErrNotSeries, http.StatusBadRequest, ErrCodeNotSeries, "Content is not a series"},
	{catalog.ErrSeasonNotFound, http.StatusNotFound, ErrCodeSeasonNotFound, "Season not found"},
	{catalog.ErrEpisodeNotFound, http.StatusNotFound, ErrCodeEpisodeNotFound, "Episode not found"},
	{auth.ErrEmailTaken, http.StatusConflict, ErrCodeEmailTaken, "User already exists"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials"},
}

// writeServiceError renders err from a service call. Unmapped errors are
// logged and reported as 500 without their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		if len(apiErr.Details) == 0 {
			rw.Error(http.StatusBadRequest, ErrCodeValidationError, apiErr.Message)
			return
		}
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationError, apiErr.Message, apiErr.Details)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			rw.Error(m.status, m.code, m.message)
			return
		}
	}

	logging.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", logging.SanitizeValue(r.URL.Path)).
		Msg("Unhandled service error")
	rw.InternalError("Server error")
}
