// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mlclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const (
	healthTimeout   = 3 * time.Second
	feedbackTimeout = 5 * time.Second
	trainTimeout    = 5 * time.Minute
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Timestamp   string `json:"timestamp"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Healthy reports whether the service declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	err := c.timed(ctx, "health", healthTimeout, func(ctx context.Context) error {
		body, err := c.doJSON(ctx, http.MethodGet, "/health", nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &status)
	})
	if err != nil {
		return nil, fmt.Errorf("ml health check: %w", err)
	}
	return &status, nil
}

// Feedback is one explicit rating forwarded to the model.
type Feedback struct {
	UserID    string
	ContentID string
	Rating    float64
}

// SendFeedback posts a rating to POST /feedback. The service takes its
// arguments as query parameters.
func (c *Client) SendFeedback(ctx context.Context, fb Feedback) error {
	q := url.Values{}
	q.Set("user_id", fb.UserID)
	q.Set("content_id", fb.ContentID)
	q.Set("rating", strconv.FormatFloat(fb.Rating, 'f', -1, 64))

	err := c.timed(ctx, "feedback", feedbackTimeout, func(ctx context.Context) error {
		_, err := c.doJSON(ctx, http.MethodPost, "/feedback?"+q.Encode(), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("send ml feedback: %w", err)
	}
	return nil
}

// TrainResult is the body of POST /train.
type TrainResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Train asks the service to (re)train its model. Training is synchronous on
// the service side, so the deadline is generous.
func (c *Client) Train(ctx context.Context, force bool) (*TrainResult, error) {
	var result TrainResult
	err := c.timed(ctx, "train", trainTimeout, func(ctx context.Context) error {
		body, err := c.doJSON(ctx, http.MethodPost, "/train", map[string]bool{"force_retrain": force})
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("train ml model: %w", err)
	}
	return &result, nil
}

// ModelInfo returns GET /model/info verbatim.
func (c *Client) ModelInfo(ctx context.Context) (map[string]interface{}, error) {
	var info map[string]interface{}
	err := c.timed(ctx, "model_info", healthTimeout, func(ctx context.Context) error {
		body, err := c.doJSON(ctx, http.MethodGet, "/model/info", nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &info)
	})
	if err != nil {
		return nil, fmt.Errorf("get ml model info: %w", err)
	}
	return info, nil
}
