// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// normalizeProfile replaces nil slices with empty arrays. $push, $addToSet
// and $pull fail on a null field.
func normalizeProfile(p *models.Profile) {
	if p.WatchHistory == nil {
		p.WatchHistory = []models.WatchEntry{}
	}
	if p.MyList == nil {
		p.MyList = []string{}
	}
	if p.Preferences.Genres == nil {
		p.Preferences.Genres = []string{}
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	u := user.Clone()
	u.Email = store.NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if u.Profiles == nil {
		u.Profiles = []models.Profile{}
	}
	for i := range u.Profiles {
		normalizeProfile(&u.Profiles[i])
	}

	if _, err := s.users.InsertOne(ctx, &u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": store.NormalizeEmail(email)})
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
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

// CreateProfile pushes only while the account is under the limit. The
// "profiles.N" existence check and the push are one atomic update.
func (s *Store) CreateProfile(ctx context.Context, userID string, profile *models.Profile) (*models.Profile, error) {
	p := profile.Clone()
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	normalizeProfile(&p)

	limitKey := fmt.Sprintf("profiles.%d", models.MaxProfilesPerUser-1)
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, limitKey: bson.M{"$exists": false}},
		bson.M{"$push": bson.M{"profiles": p}})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.FindUserByID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, store.ErrProfileLimit
	}
	return &p, nil
}

func (s *Store) UpdatePreferences(ctx context.Context, userID, profileID string, prefs models.Preferences) (*models.Profile, error) {
	genres := slices.Clone(prefs.Genres)
	if genres == nil {
		genres = []string{}
	}
	return s.updateProfile(ctx, userID, profileID, bson.M{}, bson.M{
		"$set": bson.M{"profiles.$.preferences": models.Preferences{Genres: genres, MaturityLevel: prefs.MaturityLevel}},
	})
}

// UpsertWatchHistory appends the entry only if the profile has none for the
// content id, otherwise it overwrites the existing one in place. Each step
// is a single guarded update, so concurrent callers can never produce a
// duplicate entry.
func (s *Store) UpsertWatchHistory(ctx context.Context, userID, profileID string, entry models.WatchEntry) (*models.Profile, error) {
	now := s.now()
	entry.WatchedAt = now

	p, err := s.updateProfile(ctx, userID, profileID,
		bson.M{"watchHistory.contentId": bson.M{"$ne": entry.ContentID}},
		bson.M{"$push": bson.M{"profiles.$.watchHistory": entry}})
	if !errors.Is(err, store.ErrProfileNotFound) {
		return p, err
	}

	var u models.User
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "profiles": bson.M{"$elemMatch": bson.M{
			"id":                     profileID,
			"watchHistory.contentId": entry.ContentID,
		}}},
		bson.M{"$set": bson.M{
			"profiles.$[p].watchHistory.$[w].progress":  entry.Progress,
			"profiles.$[p].watchHistory.$[w].completed": entry.Completed,
			"profiles.$[p].watchHistory.$[w].watchedAt": now,
		}},
		options.FindOneAndUpdate().
			SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
				bson.M{"p.id": profileID},
				bson.M{"w.contentId": entry.ContentID},
			}}).
			SetReturnDocument(options.After),
	).Decode(&u)
	return profileFrom(&u, profileID, err)
}

func (s *Store) AddToMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return s.updateProfile(ctx, userID, profileID, bson.M{},
		bson.M{"$addToSet": bson.M{"profiles.$.myList": contentID}})
}

func (s *Store) RemoveFromMyList(ctx context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return s.updateProfile(ctx, userID, profileID, bson.M{},
		bson.M{"$pull": bson.M{"profiles.$.myList": contentID}})
}

// updateProfile applies update to the profile matched by the positional
// operator. guard adds conditions on the profile element itself.
func (s *Store) updateProfile(ctx context.Context, userID, profileID string, guard, update bson.M) (*models.Profile, error) {
	elem := bson.M{"id": profileID}
	for k, v := range guard {
		elem[k] = v
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "profiles": bson.M{"$elemMatch": elem}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	return profileFrom(&u, profileID, err)
}

func profileFrom(u *models.User, profileID string, err error) (*models.Profile, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", profileID, err)
	}
	p, ok := u.Profile(profileID)
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return p, nil
}
