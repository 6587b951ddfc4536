// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"net/http"
	"strings"

	"github.com/tomtom215/marquee/internal/logging"
)

// ErrorWriter renders an authentication failure. The API layer supplies one
// that writes its JSON error envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware enforces bearer-token authentication.
type Middleware struct {
	jwtManager *JWTManager
	authMode   AuthMode
	writeError ErrorWriter
}

// NewMiddleware creates the authentication middleware. jwtManager may be nil
// only in AuthModeNone.
func NewMiddleware(jwtManager *JWTManager, authMode AuthMode, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		jwtManager: jwtManager,
		authMode:   authMode,
		writeError: writeError,
	}
}

// Authenticate rejects requests without a valid bearer token with 401 and
// stores the AuthSubject in the context otherwise.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == AuthModeNone {
			next.ServeHTTP(w, r.WithContext(WithAuthSubject(r.Context(), devSubject())))
			return
		}

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, no token")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized, token failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuthSubject(r.Context(), SubjectFromClaims(claims))))
	})
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoCredentials
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}
