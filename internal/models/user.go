// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"fmt"
	"slices"
	"time"
)

// MaxProfilesPerUser caps the number of viewing profiles on one account.
const MaxProfilesPerUser = 5

// Subscription tiers.
const (
	SubscriptionBasic    = "basic"
	SubscriptionStandard = "standard"
	SubscriptionPremium  = "premium"
)

// Account roles used for authorization.
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// Maturity levels a profile may be restricted to.
const (
	MaturityAll    = "all"
	MaturityTeen   = "teen"
	MaturityMature = "mature"
)

// Preferences are the per-profile taste settings.
type Preferences struct {
	Genres        []string `json:"genres" bson:"genres"`
	MaturityLevel string   `json:"maturityLevel" bson:"maturityLevel"`
}

// WatchEntry records a profile's progress on one content item.
type WatchEntry struct {
	ContentID string    `json:"contentId" bson:"contentId"`
	WatchedAt time.Time `json:"watchedAt" bson:"watchedAt"`
	Progress  float64   `json:"progress" bson:"progress"` // fraction in [0,1]
	Completed bool      `json:"completed" bson:"completed"`
}

// DefaultAvatar returns the placeholder avatar for the n-th profile of an
// account (1-based).
func DefaultAvatar(n int) string {
	return fmt.Sprintf("https://i.pravatar.cc/150?img=%d", n)
}

// NewProfile returns a profile with empty history and list and the default
// preferences. An empty avatar selects DefaultAvatar(position).
func NewProfile(name, avatar string, position int) Profile {
	if avatar == "" {
		avatar = DefaultAvatar(position)
	}
	return Profile{
		Name:         name,
		Avatar:       avatar,
		Preferences:  Preferences{Genres: []string{}, MaturityLevel: MaturityAll},
		WatchHistory: []WatchEntry{},
		MyList:       []string{},
	}
}

// Profile is one viewing identity under a user account.
type Profile struct {
	ID           string       `json:"id" bson:"id"`
	Name         string       `json:"name" bson:"name"`
	Avatar       string       `json:"avatar" bson:"avatar"`
	Preferences  Preferences  `json:"preferences" bson:"preferences"`
	WatchHistory []WatchEntry `json:"watchHistory" bson:"watchHistory"`
	MyList       []string     `json:"myList" bson:"myList"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() Profile {
	out := *p
	out.Preferences.Genres = slices.Clone(p.Preferences.Genres)
	out.WatchHistory = slices.Clone(p.WatchHistory)
	out.MyList = slices.Clone(p.MyList)
	return out
}

// UpsertWatch overwrites the entry for entry.ContentID in place, or appends
// it with watchedAt set to now. It reports whether a new entry was added.
func (p *Profile) UpsertWatch(entry WatchEntry, now time.Time) bool {
	for i := range p.WatchHistory {
		if p.WatchHistory[i].ContentID == entry.ContentID {
			p.WatchHistory[i].Progress = entry.Progress
			p.WatchHistory[i].Completed = entry.Completed
			p.WatchHistory[i].WatchedAt = now
			return false
		}
	}
	entry.WatchedAt = now
	p.WatchHistory = append(p.WatchHistory, entry)
	return true
}

// AddToMyList appends contentID unless already present.
func (p *Profile) AddToMyList(contentID string) bool {
	if slices.Contains(p.MyList, contentID) {
		return false
	}
	p.MyList = append(p.MyList, contentID)
	return true
}

// RemoveFromMyList removes contentID and reports whether it was present.
func (p *Profile) RemoveFromMyList(contentID string) bool {
	idx := slices.Index(p.MyList, contentID)
	if idx < 0 {
		return false
	}
	p.MyList = slices.Delete(p.MyList, idx, idx+1)
	return true
}

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"passwordHash"`
	Username     string     `json:"username" bson:"username"`
	Subscription string     `json:"subscription" bson:"subscription"`
	Role         string     `json:"role" bson:"role"`
	Profiles     []Profile  `json:"profiles" bson:"profiles"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
}

// Profile returns the profile with the given id.
func (u *User) Profile(profileID string) (*Profile, bool) {
	for i := range u.Profiles {
		if u.Profiles[i].ID == profileID {
			return &u.Profiles[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the user.
func (u *User) Clone() User {
	out := *u
	if u.Profiles != nil {
		out.Profiles = make([]Profile, len(u.Profiles))
		for i := range u.Profiles {
			out.Profiles[i] = u.Profiles[i].Clone()
		}
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	return out
}
