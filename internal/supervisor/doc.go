// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor provides process supervision for Marquee using suture v4.

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── EventRouterService (feedback consumer)
	├── IntegrationSupervisor ("integration-layer")
	│   └── MLProbeService (ml_service_up gauge)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a consumer that cannot reach
NATS backs off while the API keeps serving.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewEventRouterService(router))
	tree.AddIntegrationService(services.NewMLProbeService(ml, 30*time.Second, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Service Contract

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil or suture.ErrDoNotRestart stops the service for good; any
other error restarts it under the layer's backoff policy. Services must
return promptly once ctx is canceled.

Supervisor events (start, failure, backoff) are logged through sutureslog
into the zerolog pipeline.

The store, caches and the ML client are libraries without their own
goroutines and are not supervised.
*/
package supervisor
