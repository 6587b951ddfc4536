// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Topics names the subjects events are published to.
type Topics struct {
	Feedback string
	Watch    string
}

// Publisher emits feedback events. A nil *Publisher is valid and drops
// everything, which is how disabled events are represented.
type Publisher struct {
	publisher message.Publisher
	topics    Topics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPublisher creates a Publisher on top of a Watermill publisher.
func NewPublisher(pub message.Publisher, topics Topics, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		topics:    topics,
		logger:    logger.With().Str("component", "events").Logger(),
		now:       time.Now,
	}
}

// PublishRating emits a content.rated event. Failures are logged and
// counted, never returned.
func (p *Publisher) PublishRating(ctx context.Context, ev RatingEvent) {
	if p == nil {
		return
	}
	if ev.EventID == "" {
		ev.EventID = newEventID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	p.publish(ctx, KindContentRated, p.topics.Feedback, ev.EventID, ev)
}

// PublishWatchCompleted emits a watch.completed event.
func (p *Publisher) PublishWatchCompleted(ctx context.Context, ev WatchEvent) {
	if p == nil {
		return
	}
	if ev.EventID == "" {
		ev.EventID = newEventID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	p.publish(ctx, KindWatchCompleted, p.topics.Watch, ev.EventID, ev)
}

func (p *Publisher) publish(ctx context.Context, kind, topic, eventID string, payload interface{}) {
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.RequestIDFromContext(ctx)
	}

	msg, err := newMessage(kind, eventID, correlationID, payload)
	if err == nil {
		err = p.publisher.Publish(topic, msg)
	}
	metrics.RecordFeedbackPublished(kind, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("kind", kind).
			Str("topic", topic).
			Str("event_id", eventID).
			Msg("Failed to publish feedback event")
		return
	}
	p.logger.Debug().Str("kind", kind).Str("event_id", eventID).Msg("Published feedback event")
}
