// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package mongostore implements store.Store on MongoDB.
//
// Collections:
//
//	content  one document per catalog item, _id is an ObjectID hex string
//	users    one document per account, profiles embedded
//
// Counter and profile mutations are single-document updates, so MongoDB's
// document-level atomicity is what keeps concurrent writers consistent. No
// read-modify-write happens in process.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/marquee/internal/store"
)

const (
	collectionContent = "content"
	collectionUsers   = "users"
)

// Options configures the connection.
type Options struct {
	URI      string
	Database string
	// Timeout bounds connect, ping and index creation.
	Timeout time.Duration
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	content *mongo.Collection
	users   *mongo.Collection
	logger  zerolog.Logger
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects, pings the primary and ensures indexes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (*Store, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Timeout).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := New(client.Database(opts.Database), logger)
	s.client = client
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.logger.Info().Str("database", opts.Database).Msg("connected to mongodb")
	return s, nil
}

// New wraps an existing database handle. Close is a no-op for stores built
// this way since the caller owns the client.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(db *mongo.Database, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		content: db.Collection(collectionContent),
		users:   db.Collection(collectionUsers),
		logger:  logger.With().Str("component", "mongostore").Logger(),
		now:     time.Now,
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = s.content.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "genres", Value: 1}}, Options: options.Index().SetName("genres")},
		{Keys: bson.D{{Key: "type", Value: 1}}, Options: options.Index().SetName("type")},
		{
			Keys: bson.D{
				{Key: "popularity", Value: -1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("popularity_created_compound"),
		},
	})
	if err != nil {
		return fmt.Errorf("create content indexes: %w", err)
	}
	return nil
}

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client opened by Open.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
