// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package store defines the persistence contracts for the catalog, user
// accounts and viewing profiles, plus the in-memory backend.
//
// Backends:
//
//   - Memory: process-local maps, used in development and tests
//   - badgerstore: embedded BadgerDB, single-node persistence
//   - mongostore: MongoDB, the production document store
//
// Every backend makes UpsertWatchHistory, ApplyRating and IncrementViews
// atomic with respect to concurrent callers on the same profile or item.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Sentinel errors returned by all backends. Callers match with errors.Is.
var (
	ErrContentNotFound = errors.New("content not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProfileLimit    = errors.New("maximum profiles reached")
)

// CatalogStore reads and updates catalog items.
type CatalogStore interface {
	// FindByID returns ErrContentNotFound when id is unknown.
	FindByID(ctx context.Context, id string) (*models.ContentItem, error)

	// FindByIDs returns the items that exist, in no guaranteed order.
	// Unknown ids are skipped silently.
	FindByIDs(ctx context.Context, ids []string) ([]models.ContentItem, error)

	// FindByGenreExcluding returns items sharing at least one genre with
	// genres whose id is not in excludeIDs, in stable store order.
	FindByGenreExcluding(ctx context.Context, genres, excludeIDs []string) ([]models.ContentItem, error)

	// List returns one page of items matching filter, ordered by popularity
	// descending then createdAt descending.
	List(ctx context.Context, filter models.ContentFilter) (*models.ContentPage, error)

	// Genres returns the distinct genre names, sorted.
	Genres(ctx context.Context) ([]string, error)

	// IncrementViews adds one to viewCount and returns the updated item.
	IncrementViews(ctx context.Context, id string) (*models.ContentItem, error)

	// ApplyRating folds value into the rating average and returns the
	// updated item. value must already be validated.
	ApplyRating(ctx context.Context, id string, value float64) (*models.ContentItem, error)

	// Insert stores a new item, assigning ID and timestamps when empty.
	Insert(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error)
}

// UserStore manages accounts.
type UserStore interface {
	// CreateUser returns ErrEmailTaken when the lower-cased email exists.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// ProfileStore manages the profiles embedded in a user account.
type ProfileStore interface {
	// GetProfile returns ErrProfileNotFound when the user or profile is unknown.
	GetProfile(ctx context.Context, userID, profileID string) (*models.Profile, error)

	// CreateProfile appends a profile, returning ErrProfileLimit when the
	// account already has models.MaxProfilesPerUser profiles.
	CreateProfile(ctx context.Context, userID string, profile *models.Profile) (*models.Profile, error)

	UpdatePreferences(ctx context.Context, userID, profileID string, prefs models.Preferences) (*models.Profile, error)

	// UpsertWatchHistory overwrites the entry for entry.ContentID in place
	// or appends it, atomically per profile.
	UpsertWatchHistory(ctx context.Context, userID, profileID string, entry models.WatchEntry) (*models.Profile, error)

	AddToMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error)
	RemoveFromMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error)
}

// Store is the full persistence surface a backend provides.
type Store interface {
	CatalogStore
	UserStore
	ProfileStore

	Ping(ctx context.Context) error
	Close() error
}
