// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// listingSort mirrors store.SortForListing.
var listingSort = bson.D{
	{Key: "popularity", Value: -1},
	{Key: "createdAt", Value: -1},
	{Key: "_id", Value: 1},
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.content.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find content %s: %w", id, err)
	}
	return &item, nil
}

func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return []models.ContentItem{}, nil
	}
	return s.findAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (s *Store) FindByGenreExcluding(ctx context.Context, genres, excludeIDs []string) ([]models.ContentItem, error) {
	filter := bson.M{"genres": bson.M{"$in": genres}}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludeIDs}
	}
	// ObjectID hex ids sort by creation, which is the stable store order.
	return s.findAll(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *Store) findAll(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.ContentItem, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.content.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	out := []models.ContentItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return out, nil
}

// listFilter translates a ContentFilter into a query document with the
// same semantics as store.MatchesFilter.
//
//nolint:gocritic // hugeParam
func listFilter(f models.ContentFilter) bson.M {
	q := bson.M{}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Genre != "" {
		q["genres"] = f.Genre
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}
	if f.Trending != nil {
		q["trending"] = *f.Trending
	}
	if f.NewRelease != nil {
		q["newRelease"] = *f.NewRelease
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}
	return q
}

//nolint:gocritic // hugeParam: matches the store.CatalogStore signature
func (s *Store) List(ctx context.Context, filter models.ContentFilter) (*models.ContentPage, error) {
	q := listFilter(filter)

	total, err := s.content.CountDocuments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count content: %w", err)
	}

	opts := options.Find().SetSort(listingSort)
	if offset := filter.Offset(); offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	items, err := s.findAll(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	return &models.ContentPage{Items: items, Total: total}, nil
}

func (s *Store) Genres(ctx context.Context) ([]string, error) {
	raw, err := s.content.Distinct(ctx, "genres", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct genres: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if g, ok := v.(string); ok {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.updateItem(ctx, id, bson.M{"$inc": bson.M{"viewCount": 1}})
}

// ApplyRating folds value into the average with an aggregation-pipeline
// update so the read of the old average and the write happen in one step.
func (s *Store) ApplyRating(ctx context.Context, id string, value float64) (*models.ContentItem, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "rating.average", Value: bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{
					bson.M{"$multiply": bson.A{"$rating.average", "$rating.count"}},
					value,
				}},
				bson.M{"$add": bson.A{"$rating.count", 1}},
			}}},
			{Key: "rating.count", Value: bson.M{"$add": bson.A{"$rating.count", 1}}},
			{Key: "updatedAt", Value: s.now()},
		}}},
	}
	return s.updateItem(ctx, id, update)
}

func (s *Store) updateItem(ctx context.Context, id string, update interface{}) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.content.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update content %s: %w", id, err)
	}
	return &item, nil
}

func (s *Store) Insert(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	c := item.Clone()
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Genres == nil {
		c.Genres = []string{}
	}

	if _, err := s.content.InsertOne(ctx, &c); err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return &c, nil
}
