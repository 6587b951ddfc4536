// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

const (
	// DefaultNATSImage is the NATS image used by integration tests.
	DefaultNATSImage = "nats:2.10-alpine"

	// DefaultNATSPort is the NATS client port.
	DefaultNATSPort = "4222"
)

// NATSContainer is a running NATS server with JetStream enabled.
type NATSContainer struct {
	testcontainers.Container
	URL string
}

// NewNATSContainer starts NATS with JetStream.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	container, endpoint, err := startContainer(ctx, DefaultNATSImage, DefaultNATSPort,
		nil, []string{"-js"}, 30*time.Second)
	if err != nil {
		return nil, err
	}
	return &NATSContainer{Container: container, URL: "nats://" + endpoint}, nil
}
