// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/mlclient"
)

// FeedbackSender delivers a rating to the model. *mlclient.Client
// satisfies it.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, fb mlclient.Feedback) error
}

// RouterConfig holds configuration for the feedback router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// RetryMaxRetries bounds forwarding attempts per message after the first.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// ForwardFeedback disables the rating handler when false.
	ForwardFeedback bool

	Topics Topics
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		ForwardFeedback:      true,
		Topics: Topics{
			Feedback: "marquee-feedback-rating",
			Watch:    "marquee-feedback-watch",
		},
	}
}

// Router consumes feedback events and forwards ratings to the ML service.
type Router struct {
	router *message.Router
	sender FeedbackSender
	logger zerolog.Logger
}

// NewRouter wires the Watermill router with its middleware chain:
//
//  1. dropExhausted - acknowledge messages whose retries ran out
//  2. Recoverer - convert handler panics into errors
//  3. Retry - exponential backoff for transient failures
func NewRouter(cfg RouterConfig, sub message.Subscriber, sender FeedbackSender, logger zerolog.Logger) (*Router, error) {
	logger = logger.With().Str("component", "events-router").Logger()
	adapter := NewZerologAdapter(logger)

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{router: wmRouter, sender: sender, logger: logger}

	wmRouter.AddMiddleware(r.dropExhausted)
	wmRouter.AddMiddleware(middleware.Recoverer)
	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      2,
			Logger:          adapter,
		}
		wmRouter.AddMiddleware(retry.Middleware)
	}

	if cfg.ForwardFeedback && sender != nil {
		wmRouter.AddConsumerHandler("feedback-forwarder", cfg.Topics.Feedback, sub, r.forwardRating)
	}
	wmRouter.AddConsumerHandler("watch-completed", cfg.Topics.Watch, sub, r.recordWatch)

	return r, nil
}

func (r *Router) forwardRating(msg *message.Message) error {
	ev, err := DecodeRating(msg)
	if err != nil {
		r.discard(msg, err)
		return nil
	}

	ctx := logging.ContextWithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))
	err = r.sender.SendFeedback(ctx, mlclient.Feedback{
		UserID:    ev.UserID,
		ContentID: ev.ContentID,
		Rating:    ev.Rating,
	})
	metrics.RecordFeedbackForwarded(err)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("event_id", ev.EventID).Str("content_id", ev.ContentID).Msg("Forwarded rating to ML service")
	return nil
}

// recordWatch logs completions. The ML service learns from ratings only,
// so completions stay observable without being forwarded.
func (r *Router) recordWatch(msg *message.Message) error {
	ev, err := DecodeWatch(msg)
	if err != nil {
		r.discard(msg, err)
		return nil
	}
	r.logger.Debug().
		Str("event_id", ev.EventID).
		Str("profile_id", ev.ProfileID).
		Str("content_id", ev.ContentID).
		Msg("Watch completed")
	return nil
}

// discard acknowledges a message that no retry can fix.
func (r *Router) discard(msg *message.Message, err error) {
	r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Discarding malformed feedback event")
}

func (r *Router) dropExhausted(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("message_uuid", msg.UUID).
				Str("kind", msg.Metadata.Get(metadataKind)).
				Msg("Dropping feedback event after retries")
			return nil, nil
		}
		return out, nil
	}
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}

// Close gracefully stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
