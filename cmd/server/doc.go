// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee serves a video catalog, per-account viewing profiles and
personalized recommendations. Recommendations come from an external ML
scoring service when it answers in time and from a genre-based fallback
otherwise.

# Application Architecture

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── Event router (rating feedback -> ML /feedback)
	├── IntegrationSupervisor ("integration-layer")
	│   └── ML health probe (ml_service_up)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Storage: memory, BadgerDB or MongoDB; optional demo catalog seed
 4. Cache: Redis when enabled, in-process otherwise
 5. ML client: circuit breaker and outbound rate limit
 6. Events: Watermill over gochannel or NATS JetStream
 7. Services: auth, catalog, profiles, recommendation engine
 8. Authorization: Casbin RBAC
 9. Supervisor tree and HTTP server

# Configuration

Every key can be set in config.yaml or through the environment, for example:

	STORAGE_BACKEND=mongo MONGO_URI=mongodb://mongo:27017 \
	ML_URL=http://ml-service:8000 JWT_SECRET=$(openssl rand -base64 48) \
	./marquee

AUTH_MODE=none disables authentication for local development; every
request then acts as a built-in admin account. It is rejected when
ENVIRONMENT=production.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for SERVER_SHUTDOWN_TIMEOUT, the event router closes,
and the store and cache connections are released.
*/
package main
