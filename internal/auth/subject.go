// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package auth handles account registration, login and bearer-token
// authentication.
//
// Passwords are hashed with bcrypt. Sessions are stateless HS256 JWTs
// carrying the user id (sub), email and role. The middleware places an
// AuthSubject in the request context; handlers read it with GetAuthSubject.
//
// AuthModeNone skips token checks and injects a fixed development subject.
// Configuration validation refuses that mode in production.
package auth

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/models"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication
	AuthModeNone AuthMode = "none"

	// AuthModeJWT uses JWT Bearer tokens
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "jwt", "":
		return AuthModeJWT, nil
	case "none":
		return AuthModeNone, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the email or password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a malformed, tampered or expired token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmailTaken indicates registration with an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// AuthSubject is the authenticated caller.
type AuthSubject struct {
	// ID is the user id (JWT sub claim).
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`

	// AuthMethod indicates how the subject was authenticated.
	AuthMethod AuthMode `json:"auth_method"`
}

// IsAdmin reports whether the subject carries the admin role.
func (s *AuthSubject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// DevSubjectID is the user id injected when authentication is disabled.
const DevSubjectID = "dev-user"

// devSubject is the fixed identity used by AuthModeNone.
func devSubject() *AuthSubject {
	return &AuthSubject{
		ID:         DevSubjectID,
		Email:      "dev@localhost",
		Role:       models.RoleAdmin,
		AuthMethod: AuthModeNone,
	}
}

type contextKey string

// AuthSubjectContextKey is the context key for AuthSubject.
const AuthSubjectContextKey contextKey = "auth_subject"

// WithAuthSubject returns ctx carrying subject.
func WithAuthSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, AuthSubjectContextKey, subject)
}

// GetAuthSubject returns the subject stored by the middleware, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, ok := ctx.Value(AuthSubjectContextKey).(*AuthSubject)
	if !ok {
		return nil
	}
	return subject
}
