// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

const mlServiceName = "ml-service"

// CreateContent handles POST /api/v1/admin/content. Identity, counters and
// the rating aggregate are server-owned and ignored in the body.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var item models.ContentItem
	if !decodeJSON(w, r, &item) {
		return
	}
	item.ID = ""
	item.Rating = models.Rating{}
	item.ViewCount = 0
	item.CreatedAt = time.Time{}
	item.UpdatedAt = time.Time{}

	created, err := h.deps.Catalog.Insert(r.Context(), &item)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(created)
}

// trainRequest is the optional body of POST /admin/ml/train.
type trainRequest struct {
	Force bool `json:"force"`
}

// TrainModel handles POST /api/v1/admin/ml/train. An empty body trains
// without force.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	if h.deps.ML == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "ML service not configured")
		return
	}

	var in trainRequest
	if r.ContentLength != 0 && r.Body != http.NoBody {
		if !decodeJSON(w, r, &in) {
			return
		}
	}

	result, err := h.deps.ML.Train(r.Context(), in.Force)
	if err != nil {
		NewResponseWriter(w, r).ExternalServiceError(mlServiceName, err)
		return
	}
	logging.Ctx(r.Context()).Info().Bool("force", in.Force).Str("status", result.Status).Msg("Model training requested")
	NewResponseWriter(w, r).Success(result)
}

// ModelInfo handles GET /api/v1/admin/ml/info.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	if h.deps.ML == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "ML service not configured")
		return
	}

	info, err := h.deps.ML.ModelInfo(r.Context())
	if err != nil {
		NewResponseWriter(w, r).ExternalServiceError(mlServiceName, err)
		return
	}
	NewResponseWriter(w, r).Success(info)
}

// ReloadPolicy handles POST /api/v1/admin/policy/reload. Only a file-backed
// policy (security.casbin_policy_path) can be reloaded.
func (h *Handler) ReloadPolicy(w http.ResponseWriter, r *http.Request) {
	if h.deps.Policy == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Authorization policy not configured")
		return
	}

	if err := h.deps.Policy.LoadPolicy(); err != nil {
		if errors.Is(err, authz.ErrNoAdapter) {
			NewResponseWriter(w, r).Error(http.StatusConflict, ErrCodeConflict, "Policy is embedded; set security.casbin_policy_path to enable reload")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Policy reload failed")
		NewResponseWriter(w, r).InternalError("Policy reload failed")
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Authorization policy reloaded")
	NewResponseWriter(w, r).Success(map[string]bool{"reloaded": true})
}
