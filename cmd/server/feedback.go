// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
)

// feedbackComponents holds the event pipeline. All fields are nil when
// events are disabled; a nil *events.Publisher drops everything.
type feedbackComponents struct {
	Transport *events.Transport
	Publisher *events.Publisher
	Router    *events.Router
}

// newFeedback builds the transport, publisher and router from config.
func newFeedback(cfg *config.Config, sender events.FeedbackSender, logger zerolog.Logger) (*feedbackComponents, error) {
	fc := &feedbackComponents{}
	if !cfg.Events.Enabled {
		logging.Info().Msg("Feedback events disabled")
		return fc, nil
	}

	tcfg := events.DefaultTransportConfig()
	tcfg.NATSURL = cfg.Events.NATSURL
	if cfg.Events.QueueGroup != "" {
		tcfg.QueueGroup = cfg.Events.QueueGroup
	}
	if cfg.Events.DurableName != "" {
		tcfg.DurableName = cfg.Events.DurableName
	}
	if cfg.Events.Subscribers > 0 {
		tcfg.SubscribersCount = cfg.Events.Subscribers
	}
	if cfg.Events.CloseTimeout > 0 {
		tcfg.CloseTimeout = cfg.Events.CloseTimeout
	}

	transport, err := events.NewTransport(tcfg, events.NewZerologAdapter(logging.WithComponent("watermill")))
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}
	fc.Transport = transport

	rcfg := events.DefaultRouterConfig()
	if cfg.Events.FeedbackTopic != "" {
		rcfg.Topics.Feedback = cfg.Events.FeedbackTopic
	}
	if cfg.Events.WatchTopic != "" {
		rcfg.Topics.Watch = cfg.Events.WatchTopic
	}
	rcfg.CloseTimeout = tcfg.CloseTimeout
	rcfg.ForwardFeedback = cfg.ML.FeedbackForwarding
	if cfg.ML.FeedbackRetryCount >= 0 {
		rcfg.RetryMaxRetries = cfg.ML.FeedbackRetryCount
	}
	if cfg.ML.FeedbackRetryBackoff > 0 {
		rcfg.RetryInitialInterval = cfg.ML.FeedbackRetryBackoff
	}

	router, err := events.NewRouter(rcfg, transport.Subscriber, sender, logger)
	if err != nil {
		fc.Close()
		return nil, fmt.Errorf("create event router: %w", err)
	}
	fc.Router = router
	fc.Publisher = events.NewPublisher(transport.Publisher, rcfg.Topics, logger)

	logging.Info().
		Str("transport", transport.Kind).
		Str("feedback_topic", rcfg.Topics.Feedback).
		Bool("forwarding", rcfg.ForwardFeedback).
		Msg("Feedback events enabled")
	return fc, nil
}

// Close releases the transport. The router is closed by its supervisor
// service.
func (fc *feedbackComponents) Close() {
	if fc == nil || fc.Transport == nil {
		return
	}
	if err := fc.Transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event transport")
	}
}
