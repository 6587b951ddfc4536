// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package profiles manages the viewing profiles of an account: creation,
// watch history, the "my list" bookmarks and genre preferences.
//
// Every operation is scoped by the authenticated user id, so a profile id
// belonging to another account resolves to store.ErrProfileNotFound.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

// Accounts is the slice of the store the service writes to.
type Accounts interface {
	store.UserStore
	store.ProfileStore
}

// WatchPublisher emits an event when a title is finished.
// *events.Publisher satisfies it.
type WatchPublisher interface {
	PublishWatchCompleted(ctx context.Context, ev events.WatchEvent)
}

// Service implements the profile operations.
type Service struct {
	accounts  Accounts
	catalog   store.CatalogStore
	publisher WatchPublisher
	logger    zerolog.Logger
}

// NewService creates a profile service. publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(accounts Accounts, catalog store.CatalogStore, publisher WatchPublisher, logger zerolog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger.With().Str("component", "profiles").Logger(),
	}
}

// CreateInput is the body of POST /profiles.
type CreateInput struct {
	Name   string `json:"name" validate:"required,min=1,max=40"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// Create adds a profile to the account and returns every profile it now
// holds. The sixth profile fails with store.ErrProfileLimit.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) ([]models.Profile, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}

	user, err := s.accounts.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if len(user.Profiles) >= models.MaxProfilesPerUser {
		return nil, store.ErrProfileLimit
	}

	profile := models.NewProfile(in.Name, in.Avatar, len(user.Profiles)+1)
	created, err := s.accounts.CreateProfile(ctx, userID, &profile)
	if err != nil {
		if errors.Is(err, store.ErrProfileLimit) {
			return nil, err
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("profile_id", created.ID).Msg("Profile created")

	user, err = s.accounts.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload account: %w", err)
	}
	return user.Profiles, nil
}

// PreferencesInput is the body of PUT /profiles/{id}/preferences.
type PreferencesInput struct {
	Genres        []string `json:"genres" validate:"max=20,dive,required,max=40"`
	MaturityLevel string   `json:"maturityLevel" validate:"omitempty,oneof=all teen mature"`
}

// UpdatePreferences replaces the genre list. An empty maturity level keeps
// the current one.
func (s *Service) UpdatePreferences(ctx context.Context, userID, profileID string, in PreferencesInput) (*models.Profile, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}

	current, err := s.accounts.GetProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	prefs := models.Preferences{Genres: in.Genres, MaturityLevel: in.MaturityLevel}
	if prefs.Genres == nil {
		prefs.Genres = []string{}
	}
	if prefs.MaturityLevel == "" {
		prefs.MaturityLevel = current.Preferences.MaturityLevel
	}
	return s.accounts.UpdatePreferences(ctx, userID, profileID, prefs)
}

// Get returns one profile of the account.
func (s *Service) Get(ctx context.Context, userID, profileID string) (*models.Profile, error) {
	return s.accounts.GetProfile(ctx, userID, profileID)
}
