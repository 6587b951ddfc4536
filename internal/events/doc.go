// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package events carries viewer feedback from the request path to the ML
// service through Watermill.
//
// Two event kinds exist:
//
//   - content.rated: a viewer submitted a rating for a content item
//   - watch.completed: a profile finished watching a content item
//
// # Transport
//
// By default events travel over an in-process gochannel pub/sub. When
// events.nats_url is set they are published to NATS JetStream through
// watermill-nats, and any instance in the queue group may consume them.
//
//	catalog.Rate ──► Publisher ──► [gochannel | JetStream] ──► Router ──► mlclient.SendFeedback
//
// # Delivery
//
// Publishing never fails the user request: errors are logged and counted.
// The router retries forwarding with exponential backoff and then drops the
// message, so an unavailable ML service cannot wedge the consumer.
package events
