// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP surface of Marquee.

Every route lives under /api/v1 and speaks JSON. Successful responses use the
envelope {"success": true, "data": ...}; catalog listings add count, total,
page and pages, and recommendation lists add source ("ml-model" or
"rule-based"). Failures use

	{"success": false, "error": {"code": "...", "message": "...", "request_id": "..."}}

# Route Groups

  - /api/v1/health: liveness and readiness, unauthenticated
  - /api/v1/auth: register and login (strictly rate limited), me
  - /api/v1/content, /streaming, /profiles, /recommendations: bearer JWT
  - /api/v1/admin: bearer JWT plus the admin role
  - /metrics: Prometheus exposition

# Middleware Chain

	RequestIDWithLogging -> RealIP -> Recoverer -> CORS -> AccessLog -> PrometheusMetrics
	  -> [RateLimit -> APISecurityHeaders -> Authenticate -> AuthorizeRequest] -> Handler

Handlers are thin: they decode and bind the request, call one service, and
map sentinel errors to status codes through errorMappings.
*/
package api
