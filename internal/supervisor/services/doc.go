// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services adapts Marquee's long-running components to suture.Service.

  - HTTPServerService: ListenAndServe plus graceful Shutdown on cancel
  - EventRouterService: runs the Watermill feedback router
  - MLProbeService: polls the ML service health endpoint and publishes the
    ml_service_up gauge

Each wrapper translates its component's lifecycle (blocking call, Start and
Stop pairs, tickers) into Serve(ctx) and implements fmt.Stringer so suture
events name the service.
*/
package services
