// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package authz provides role-based authorization using Casbin.
//
// Two roles exist: viewer and admin. admin inherits every viewer permission
// and additionally owns /api/v1/admin/*.
//
//	Request -> auth.Middleware -> authz.Middleware -> Handler
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// Both the model and the policy are embedded. security.casbin_model_path and
// security.casbin_policy_path replace them with files when set.
//
// # Usage Example
//
//	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
//	if err != nil {
//	    return err
//	}
//	defer enforcer.Close()
//
//	mw := authz.NewMiddleware(enforcer, writeError)
//	r.With(mw.AuthorizeRequest).Post("/api/v1/admin/content", h.CreateContent)
//
// Decisions are cached for EnforcerConfig.CacheTTL. A file-backed policy is
// reloaded with Enforcer.LoadPolicy (POST /api/v1/admin/policy/reload), which
// invalidates the cache.
package authz
