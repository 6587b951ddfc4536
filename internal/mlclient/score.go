// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mlclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/tomtom215/marquee/internal/metrics"
)

// WatchedItem is the per-entry watch history snapshot sent to the model.
type WatchedItem struct {
	ContentID string `json:"contentId"`
	Completed bool   `json:"completed"`
}

// Preferences is the taste snapshot sent to the model.
type Preferences struct {
	Genres       []string      `json:"genres"`
	WatchHistory []WatchedItem `json:"watchHistory"`
}

// ScoreRequest is the body of POST /recommend.
type ScoreRequest struct {
	UserID      string      `json:"userId"`
	ProfileID   string      `json:"profileId"`
	Preferences Preferences `json:"preferences"`
	Limit       int         `json:"limit"`
}

type scoreResponse struct {
	Recommendations []string `json:"recommendations"`
}

// scoreResponseSchema accepts any object whose recommendations field is a
// non-empty array of strings. Extra fields (source, confidence) pass.
var scoreResponseSchema = mustSchema(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"recommendations"},
	"properties": map[string]interface{}{
		"recommendations": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string"},
		},
	},
})

func mustSchema(schema map[string]interface{}) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("mlclient: invalid response schema: %v", err))
	}
	return s
}

// validateScoreResponse checks body against the response schema before it
// is decoded into Go types.
func validateScoreResponse(body []byte) error {
	result, err := scoreResponseSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("response failed schema: %s", strings.Join(errs, "; "))
	}
	return nil
}

// errScoreTimeout is the cancellation cause of a request abandoned by the
// client's own timer, so it is not mistaken for a caller cancellation.
var errScoreTimeout = errors.New("ml scoring timeout")

type scoreResult struct {
	ids []string
	err error
}

// Score asks the model for up to req.Limit content ids, best first.
//
// The HTTP exchange runs on its own goroutine. When the timeout fires first,
// Score returns ErrUnavailable without waiting; the abandoned request is
// cancelled so its connection is released, and its result is discarded.
func (c *Client) Score(ctx context.Context, req ScoreRequest) ([]string, error) {
	start := time.Now()
	ids, err := c.score(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = Reason(err)
	}
	metrics.RecordMLRequest("recommend", outcome, time.Since(start))
	return ids, err
}

func (c *Client) score(ctx context.Context, req ScoreRequest) ([]string, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, unavailable(ReasonRateLimited, nil)
	}
	if req.Preferences.Genres == nil {
		req.Preferences.Genres = []string{}
	}
	if req.Preferences.WatchHistory == nil {
		req.Preferences.WatchHistory = []WatchedItem{}
	}

	callCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan scoreResult, 1)
	go func() {
		ids, err := c.execute(func() ([]string, error) {
			return c.post(callCtx, req)
		})
		done <- scoreResult{ids: ids, err: err}
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.ids, r.err
	case <-timer.C:
		cancel(errScoreTimeout)
		c.logger.Warn().
			Str("profile_id", req.ProfileID).
			Dur("timeout", c.timeout).
			Msg("ml scoring timed out")
		return nil, unavailable(ReasonTimeout, context.DeadlineExceeded)
	case <-ctx.Done():
		return nil, unavailable(ReasonCanceled, ctx.Err())
	}
}

func (c *Client) post(ctx context.Context, req ScoreRequest) ([]string, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/recommend", req)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, unavailable(ReasonStatus, err)
		}
		if ctx.Err() != nil {
			if errors.Is(context.Cause(ctx), errScoreTimeout) {
				return nil, unavailable(ReasonTimeout, errScoreTimeout)
			}
			return nil, unavailable(ReasonCanceled, err)
		}
		return nil, unavailable(ReasonTransport, err)
	}

	if err := validateScoreResponse(body); err != nil {
		reason := ReasonInvalidResponse
		if isEmptyList(body) {
			reason = ReasonEmpty
		}
		return nil, unavailable(reason, err)
	}

	var resp scoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, unavailable(ReasonInvalidResponse, err)
	}
	return resp.Recommendations, nil
}

// isEmptyList reports whether body is an object carrying an empty
// recommendations array, which the schema rejects.
func isEmptyList(body []byte) bool {
	var resp struct {
		Recommendations *[]json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Recommendations != nil && len(*resp.Recommendations) == 0
}
