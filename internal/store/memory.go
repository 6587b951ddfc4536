// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/models"
)

// Memory is an in-process Store. Catalog and account data are guarded by
// separate locks; every mutation holds the write lock across its
// read-modify-write so per-profile and per-item updates are atomic.
type Memory struct {
	catalogMu sync.RWMutex
	items     map[string]*models.ContentItem
	order     []string // insertion order, the stable store order

	usersMu sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string

	now func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:   make(map[string]*models.ContentItem),
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// --- catalog ---

func (m *Memory) FindByID(_ context.Context, id string) (*models.ContentItem, error) {
	m.catalogMu.RLock()
	defer m.catalogMu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrContentNotFound
	}
	c := item.Clone()
	return &c, nil
}

func (m *Memory) FindByIDs(_ context.Context, ids []string) ([]models.ContentItem, error) {
	m.catalogMu.RLock()
	defer m.catalogMu.RUnlock()

	out := make([]models.ContentItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (m *Memory) FindByGenreExcluding(_ context.Context, genres, excludeIDs []string) ([]models.ContentItem, error) {
	m.catalogMu.RLock()
	defer m.catalogMu.RUnlock()

	var out []models.ContentItem
	for _, id := range m.order {
		item := m.items[id]
		if slices.Contains(excludeIDs, id) || !item.HasAnyGenre(genres) {
			continue
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

func (m *Memory) List(_ context.Context, filter models.ContentFilter) (*models.ContentPage, error) {
	m.catalogMu.RLock()
	matched := make([]models.ContentItem, 0, len(m.order))
	for _, id := range m.order {
		if item := m.items[id]; MatchesFilter(item, filter) {
			matched = append(matched, item.Clone())
		}
	}
	m.catalogMu.RUnlock()

	SortForListing(matched)
	return Paginate(matched, filter), nil
}

func (m *Memory) Genres(context.Context) ([]string, error) {
	m.catalogMu.RLock()
	defer m.catalogMu.RUnlock()

	items := make([]models.ContentItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, *item)
	}
	return DistinctGenres(items), nil
}

func (m *Memory) IncrementViews(_ context.Context, id string) (*models.ContentItem, error) {
	return m.mutateItem(id, func(item *models.ContentItem) {
		item.ViewCount++
	})
}

func (m *Memory) ApplyRating(_ context.Context, id string, value float64) (*models.ContentItem, error) {
	return m.mutateItem(id, func(item *models.ContentItem) {
		item.Rating = item.Rating.ApplyRating(value)
		item.UpdatedAt = m.now()
	})
}

func (m *Memory) mutateItem(id string, fn func(*models.ContentItem)) (*models.ContentItem, error) {
	m.catalogMu.Lock()
	defer m.catalogMu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrContentNotFound
	}
	fn(item)
	c := item.Clone()
	return &c, nil
}

func (m *Memory) Insert(_ context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	c := item.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := m.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	m.catalogMu.Lock()
	defer m.catalogMu.Unlock()

	if _, exists := m.items[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.items[c.ID] = &c
	out := c.Clone()
	return &out, nil
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	u := user.Clone()
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}

	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return nil, ErrEmailTaken
	}
	m.users[u.ID] = &u
	m.byEmail[u.Email] = u.ID
	out := u.Clone()
	return &out, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()

	id, ok := m.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.users[id].Clone()
	return &u, nil
}

func (m *Memory) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := user.Clone()
	return &u, nil
}

func (m *Memory) TouchLogin(_ context.Context, id string, at time.Time) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.LastLogin = &at
	return nil
}

// --- profiles ---

func (m *Memory) GetProfile(_ context.Context, userID, profileID string) (*models.Profile, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p, ok := user.Profile(profileID)
	if !ok {
		return nil, ErrProfileNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (m *Memory) CreateProfile(_ context.Context, userID string, profile *models.Profile) (*models.Profile, error) {
	p := profile.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}

	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if len(user.Profiles) >= models.MaxProfilesPerUser {
		return nil, ErrProfileLimit
	}
	user.Profiles = append(user.Profiles, p)
	out := p.Clone()
	return &out, nil
}

func (m *Memory) UpdatePreferences(_ context.Context, userID, profileID string, prefs models.Preferences) (*models.Profile, error) {
	return m.mutateProfile(userID, profileID, func(p *models.Profile) {
		p.Preferences = models.Preferences{
			Genres:        slices.Clone(prefs.Genres),
			MaturityLevel: prefs.MaturityLevel,
		}
	})
}

func (m *Memory) UpsertWatchHistory(_ context.Context, userID, profileID string, entry models.WatchEntry) (*models.Profile, error) {
	return m.mutateProfile(userID, profileID, func(p *models.Profile) {
		p.UpsertWatch(entry, m.now())
	})
}

func (m *Memory) AddToMyList(_ context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return m.mutateProfile(userID, profileID, func(p *models.Profile) {
		p.AddToMyList(contentID)
	})
}

func (m *Memory) RemoveFromMyList(_ context.Context, userID, profileID, contentID string) (*models.Profile, error) {
	return m.mutateProfile(userID, profileID, func(p *models.Profile) {
		p.RemoveFromMyList(contentID)
	})
}

func (m *Memory) mutateProfile(userID, profileID string, fn func(*models.Profile)) (*models.Profile, error) {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p, ok := user.Profile(profileID)
	if !ok {
		return nil, ErrProfileNotFound
	}
	fn(p)
	out := p.Clone()
	return &out, nil
}
