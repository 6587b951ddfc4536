// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/mlclient"
)

// MLHealthChecker is satisfied by *mlclient.Client.
type MLHealthChecker interface {
	Health(ctx context.Context) (*mlclient.HealthStatus, error)
}

// MLProbeService polls the ML service and keeps the ml_service_up gauge
// current. Transitions are logged once, not on every tick.
type MLProbeService struct {
	checker  MLHealthChecker
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	name     string

	// setUp is metrics.SetMLServiceUp outside tests.
	setUp func(bool)
}

// NewMLProbeService creates the probe. Non-positive intervals mean 30s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMLProbeService(checker MLHealthChecker, interval time.Duration, logger zerolog.Logger) *MLProbeService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &MLProbeService{
		checker:  checker,
		interval: interval,
		timeout:  min(interval, 5*time.Second),
		logger:   logger.With().Str("service", "ml-probe").Logger(),
		name:     "ml-probe",
		setUp:    metrics.SetMLServiceUp,
	}
}

// Serve probes immediately and then on every tick until ctx is canceled.
func (s *MLProbeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var last *bool
	for {
		up := s.probe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if last == nil || *last != up {
			if up {
				s.logger.Info().Msg("ML service is up")
			} else {
				s.logger.Warn().Msg("ML service is down; recommendations use the rule-based fallback")
			}
			last = &up
		}
		s.setUp(up)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *MLProbeService) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, err := s.checker.Health(probeCtx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("ML health probe failed")
		return false
	}
	return status.Healthy()
}

// String implements fmt.Stringer.
func (s *MLProbeService) String() string {
	return s.name
}
