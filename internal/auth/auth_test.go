// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

const testSecret = "a-test-secret-that-is-long-enough-for-hs256"

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager error = %v", err)
	}
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	m, err := NewJWTManager(testSecret, 0)
	if err != nil {
		t.Fatalf("NewJWTManager error = %v", err)
	}
	if m.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want default", m.ttl)
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestJWT(t)
	token, expires, err := m.GenerateToken("u1", "a@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expires = %v is not in the future", expires)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error = %v", err)
	}
	subject := SubjectFromClaims(claims)
	if subject.ID != "u1" || subject.Email != "a@example.com" || !subject.IsAdmin() {
		t.Errorf("subject = %+v", subject)
	}
}

func TestJWT_Rejections(t *testing.T) {
	t.Parallel()

	m := newTestJWT(t)
	other, err := NewJWTManager("another-secret-that-is-also-long-enough", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	foreign, _, err := other.GenerateToken("u1", "", models.RoleViewer)
	if err != nil {
		t.Fatal(err)
	}

	expired := newTestJWT(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.GenerateToken("u1", "", models.RoleViewer)
	if err != nil {
		t.Fatal(err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword error = %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("CheckPassword accepted a wrong password")
	}
	if CheckPassword(dummyHash, "") {
		t.Error("dummy hash matched empty password")
	}
}

func TestParseAuthMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]AuthMode{"": AuthModeJWT, "jwt": AuthModeJWT, "none": AuthModeNone} {
		got, err := ParseAuthMode(in)
		if err != nil || got != want {
			t.Errorf("ParseAuthMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAuthMode("oidc"); err == nil {
		t.Error("ParseAuthMode(oidc) should fail")
	}
}

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewService(mem, newTestJWT(t), 4, zerolog.Nop()), mem
}

func TestService_RegisterLoginMe(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: " Viewer@Example.com ", Password: "secret1", Username: "viewer"})
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if session.Token == "" || session.User.Email != "viewer@example.com" || session.User.Role != models.RoleViewer {
		t.Errorf("session = %+v", session.User)
	}
	if len(session.User.Profiles) != 1 || session.User.Profiles[0].Name != "viewer" {
		t.Fatalf("profiles = %+v", session.User.Profiles)
	}
	if session.User.Profiles[0].Avatar != models.DefaultAvatar(1) {
		t.Errorf("avatar = %q", session.User.Profiles[0].Avatar)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "viewer@example.com", Password: "secret2", Username: "x"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register error = %v, want ErrEmailTaken", err)
	}

	login, err := svc.Login(ctx, LoginInput{Email: "VIEWER@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login error = %v", err)
	}
	if login.User.LastLogin == nil {
		t.Error("LastLogin not set")
	}

	me, err := svc.Me(ctx, login.User.ID)
	if err != nil {
		t.Fatalf("Me error = %v", err)
	}
	if me.LastLogin == nil || me.ID != session.User.ID {
		t.Errorf("Me = %+v", me)
	}
}

func TestService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Username: "a"}); err != nil {
		t.Fatal(err)
	}

	for _, in := range []LoginInput{
		{Email: "a@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		if _, err := svc.Login(ctx, in); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", in.Email, err)
		}
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := newTestJWT(t)
	valid, _, err := m.GenerateToken("u1", "a@example.com", models.RoleViewer)
	if err != nil {
		t.Fatal(err)
	}

	var seen *AuthSubject
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		mode       AuthMode
		header     string
		wantStatus int
		wantID     string
	}{
		{"valid bearer", AuthModeJWT, "Bearer " + valid, http.StatusNoContent, "u1"},
		{"lowercase scheme", AuthModeJWT, "bearer " + valid, http.StatusNoContent, "u1"},
		{"missing header", AuthModeJWT, "", http.StatusUnauthorized, ""},
		{"basic scheme", AuthModeJWT, "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", AuthModeJWT, "Bearer nope", http.StatusUnauthorized, ""},
		{"auth disabled", AuthModeNone, "", http.StatusNoContent, DevSubjectID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			var code string
			mw := NewMiddleware(m, tt.mode, func(w http.ResponseWriter, _ *http.Request, status int, c, _ string) {
				code = c
				w.WriteHeader(status)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if code != "UNAUTHORIZED" || seen != nil {
					t.Errorf("code = %q, subject = %+v", code, seen)
				}
				return
			}
			if seen == nil || seen.ID != tt.wantID {
				t.Errorf("subject = %+v, want id %s", seen, tt.wantID)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	if tok, err := bearerToken("Bearer   abc "); err != nil || tok != "abc" {
		t.Errorf("bearerToken = %q, %v", tok, err)
	}
	if _, err := bearerToken("Bearer "); err == nil {
		t.Error("empty bearer should fail")
	}
	if _, err := bearerToken(strings.Repeat("x", 10)); err == nil {
		t.Error("no scheme should fail")
	}
}

func TestEnsureDevAccount(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	ctx := context.Background()

	user, err := EnsureDevAccount(ctx, mem)
	if err != nil {
		t.Fatalf("EnsureDevAccount error = %v", err)
	}
	if user.ID != DevSubjectID || user.Role != models.RoleAdmin || len(user.Profiles) != 1 {
		t.Errorf("dev account = %+v", user)
	}
	if _, err := mem.GetProfile(ctx, DevSubjectID, DevSubjectID); err != nil {
		t.Errorf("dev profile missing: %v", err)
	}

	again, err := EnsureDevAccount(ctx, mem)
	if err != nil || len(again.Profiles) != 1 {
		t.Errorf("second EnsureDevAccount = %+v, %v", again, err)
	}
}
