// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

func userKey(id string) string {
	return userKeyPrefix + id
}

func userEmailKey(email string) string {
	return userEmailKeyPrefix + store.NormalizeEmail(email)
}

// errProfileMissing marks a missing user inside a profile transaction so
// the caller can map it to store.ErrProfileNotFound.
var errProfileMissing = errors.New("profile missing")

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	u := user.Clone()
	u.Email = store.NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}

	err := s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(userEmailKey(u.Email)))
		if err == nil {
			return store.ErrEmailTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set([]byte(userEmailKey(u.Email)), []byte(u.ID)); err != nil {
			return err
		}
		return setJSON(txn, userKey(u.ID), &u)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailKey(email)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKey(string(id)), &u)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &u)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKey(id), &u); err != nil {
			return err
		}
		u.LastLogin = &at
		return setJSON(txn, userKey(id), &u)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrUserNotFound
	}
	return err
}

func (s *Store) GetProfile(ctx context.Context, userID, profileID string) (*models.Profile, error) {
	u, err := s.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p, ok := u.Profile(profileID)
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return p, nil
}

func (s *Store) CreateProfile(ctx context.Context, userID string, profile *models.Profile) (*models.Profile, error) {
	p := profile.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	err := s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKey(userID), &u); err != nil {
			return err
		}
		if len(u.Profiles) >= models.MaxProfilesPerUser {
			return store.ErrProfileLimit
		}
		u.Profiles = append(u.Profiles, p)
		return setJSON(txn, userKey(userID), &u)
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, store.ErrUserNotFound
	case errors.Is(err, store.ErrProfileLimit):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdatePreferences(ctx context.Context, userID, profileID string, prefs models.Preferences) (*models.Profile, error) {
	return s.mutateProfile(ctx, userID, profileID, func(p *models.Profile) {
		p.Preferences = models.Preferences{
			Genres:        slices.Clone(prefs.Genres),
			MaturityLevel: prefs.MaturityLevel,
		}
	})
}

func (s *Store) UpsertWatchHistory(ctx context.Context, userID, profileID string, entry models.WatchEntry) (*models.Profile, error) {
	return s.mutateProfile(ctx, userID, profileID, func(p *models.Profile) {
		p.UpsertWatch(entry, s.now())
	})
}

func (s *Store) AddToMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return s.mutateProfile(ctx, userID, profileID, func(p *models.Profile) {
		p.AddToMyList(contentID)
	})
}

func (s *Store) RemoveFromMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return s.mutateProfile(ctx, userID, profileID, func(p *models.Profile) {
		p.RemoveFromMyList(contentID)
	})
}

// mutateProfile applies fn to one profile inside a conflict-checked
// transaction. Two writers on the same account serialize through the retry
// loop, so an upsert never observes a stale watch history.
func (s *Store) mutateProfile(ctx context.Context, userID, profileID string, fn func(*models.Profile)) (*models.Profile, error) {
	var out models.Profile
	err := s.update(ctx, func(txn *badger.Txn) error {
		var u models.User
		if err := getJSON(txn, userKey(userID), &u); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errProfileMissing
			}
			return err
		}
		p, ok := u.Profile(profileID)
		if !ok {
			return errProfileMissing
		}
		fn(p)
		out = p.Clone()
		return setJSON(txn, userKey(userID), &u)
	})
	if errors.Is(err, errProfileMissing) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", profileID, err)
	}
	return &out, nil
}
