// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event kinds, also used as the "kind" metadata key on messages.
const (
	KindContentRated   = "content.rated"
	KindWatchCompleted = "watch.completed"
)

const metadataKind = "kind"

// ErrWrongKind is returned when a message is decoded as the wrong event type.
var ErrWrongKind = errors.New("unexpected event kind")

// RatingEvent is published after a rating has been stored.
type RatingEvent struct {
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	ProfileID  string    `json:"profileId,omitempty"`
	ContentID  string    `json:"contentId"`
	Rating     float64   `json:"rating"`
	OccurredAt time.Time `json:"occurredAt"`
}

// WatchEvent is published when a watch-history entry is marked completed.
type WatchEvent struct {
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	ProfileID  string    `json:"profileId"`
	ContentID  string    `json:"contentId"`
	Progress   float64   `json:"progress"`
	OccurredAt time.Time `json:"occurredAt"`
}

// newMessage marshals payload into a Watermill message whose UUID doubles
// as the event id (and the JetStream Nats-Msg-Id).
func newMessage(kind, eventID, correlationID string, payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", kind, err)
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(metadataKind, kind)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	return msg, nil
}

func newEventID() string {
	return uuid.New().String()
}

// DecodeRating unmarshals a content.rated message.
func DecodeRating(msg *message.Message) (RatingEvent, error) {
	var ev RatingEvent
	if err := decode(msg, KindContentRated, &ev); err != nil {
		return RatingEvent{}, err
	}
	return ev, nil
}

// DecodeWatch unmarshals a watch.completed message.
func DecodeWatch(msg *message.Message) (WatchEvent, error) {
	var ev WatchEvent
	if err := decode(msg, KindWatchCompleted, &ev); err != nil {
		return WatchEvent{}, err
	}
	return ev, nil
}

func decode(msg *message.Message, kind string, v interface{}) error {
	if got := msg.Metadata.Get(metadataKind); got != "" && got != kind {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongKind, got, kind)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("unmarshal %s event: %w", kind, err)
	}
	return nil
}
