// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// AccountStore is the persistence the account service needs.
type AccountStore interface {
	store.UserStore
	CreateProfile(ctx context.Context, userID string, profile *models.Profile) (*models.Profile, error)
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a freshly issued token with its owner.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Service registers and authenticates accounts.
type Service struct {
	accounts   AccountStore
	tokens     *JWTManager
	bcryptCost int
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService creates the account service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(accounts AccountStore, tokens *JWTManager, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a viewer account with one default profile named after the
// username and signs a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.CreateUser(ctx, &models.User{
		Email:        store.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Username:     strings.TrimSpace(in.Username),
		Subscription: models.SubscriptionBasic,
		Role:         models.RoleViewer,
		Profiles:     []models.Profile{},
		CreatedAt:    s.now(),
	})
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile := models.NewProfile(user.Username, "", 1)
	created, err := s.accounts.CreateProfile(ctx, user.ID, &profile)
	if err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	user.Profiles = append(user.Profiles, *created)

	s.logger.Info().Str("user_id", user.ID).Msg("account registered")
	return s.issue(user)
}

// Login verifies credentials, records the login time and signs a session.
// Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.accounts.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		// Burn comparable time so response latency does not reveal whether
		// the account exists.
		CheckPassword(dummyHash, in.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		s.logger.Warn().Str("user_id", user.ID).Msg("failed login")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.accounts.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLogin = &now
	return s.issue(user)
}

// Me returns the account for userID.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.accounts.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// dummyHash is a valid bcrypt hash of a random string.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZVlyH1WkFTdDrw7UaNo5dC"

// DevAccountEmail is the address of the account backing DevSubjectID.
const DevAccountEmail = "dev@marquee.local"

// EnsureDevAccount creates the account used when authentication is disabled
// so the development subject owns a profile. It is a no-op when the account
// already exists.
func EnsureDevAccount(ctx context.Context, accounts AccountStore) (*models.User, error) {
	if user, err := accounts.FindUserByID(ctx, DevSubjectID); err == nil {
		return user, nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("find dev account: %w", err)
	}

	user, err := accounts.CreateUser(ctx, &models.User{
		ID:           DevSubjectID,
		Email:        DevAccountEmail,
		Username:     "developer",
		Subscription: models.SubscriptionPremium,
		Role:         models.RoleAdmin,
		Profiles:     []models.Profile{},
	})
	if err != nil {
		return nil, fmt.Errorf("create dev account: %w", err)
	}

	profile := models.NewProfile("Developer", "", 1)
	profile.ID = DevSubjectID
	created, err := accounts.CreateProfile(ctx, user.ID, &profile)
	if err != nil {
		return nil, fmt.Errorf("create dev profile: %w", err)
	}
	user.Profiles = append(user.Profiles, *created)
	return user, nil
}
