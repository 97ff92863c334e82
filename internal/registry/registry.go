// Package registry maintains the cross-session wrong-answer book and
// favorites list. Both are idempotent upsert maps keyed by question id,
// persisted through an injected KV and independent of any one session's
// lifetime.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quizbook/quizbook/internal/session"
)

const (
	keyWrongBook = "wrongbook"
	keyFavorites = "favorites"
)

// WrongBookEntry tracks a question answered incorrectly at least once since
// the wrong book was last cleared.
type WrongBookEntry struct {
	QuestionID   string    `json:"question_id"`
	LastMissedAt time.Time `json:"last_missed_at"`
	MissCount    int       `json:"miss_count"`
}

// FavoriteEntry is a user-flagged question, independent of correctness.
type FavoriteEntry struct {
	QuestionID  string    `json:"question_id"`
	FavoritedAt time.Time `json:"favorited_at"`
}

// Registry merges session outcomes and user actions into the persistent
// wrong-book and favorites maps. Safe for use from handler goroutines.
type Registry struct {
	mu  sync.Mutex
	kv  KV
	now func() time.Time
}

// New builds a registry over the given KV.
func New(kv KV) *Registry {
	return &Registry{kv: kv, now: time.Now}
}

// RecordOutcome upserts a wrong-book entry for every incorrect result in a
// completed session's summary. Correct results never remove an entry: one
// correct repetition is not mastery, so removal is only ever the explicit
// ClearWrongEntry.
func (r *Registry) RecordOutcome(sum session.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, err := r.loadWrongBook()
	if err != nil {
		return err
	}
	now := r.now()
	changed := false
	for _, res := range sum.Results {
		if res.Correct {
			continue
		}
		e := book[res.QuestionID]
		e.QuestionID = res.QuestionID
		e.MissCount++
		e.LastMissedAt = now
		book[res.QuestionID] = e
		changed = true
	}
	if !changed {
		return nil
	}
	return r.saveWrongBook(book)
}

// ClearWrongEntry removes one question from the wrong book. Removing an
// absent id is a no-op.
func (r *Registry) ClearWrongEntry(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, err := r.loadWrongBook()
	if err != nil {
		return err
	}
	if _, ok := book[id]; !ok {
		return nil
	}
	delete(book, id)
	return r.saveWrongBook(book)
}

// ClearWrongBook wipes the whole wrong book. Explicit user action only.
func (r *Registry) ClearWrongBook() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveWrongBook(map[string]WrongBookEntry{})
}

// WrongEntries lists the wrong book, most recently missed first.
func (r *Registry) WrongEntries() ([]WrongBookEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, err := r.loadWrongBook()
	if err != nil {
		return nil, err
	}
	out := make([]WrongBookEntry, 0, len(book))
	for _, e := range book {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMissedAt.Equal(out[j].LastMissedAt) {
			return out[i].LastMissedAt.After(out[j].LastMissedAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out, nil
}

// ToggleFavorite flips favorite membership for a question and reports the
// new state. Flipping twice restores the original state.
func (r *Registry) ToggleFavorite(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	favs, err := r.loadFavorites()
	if err != nil {
		return false, err
	}
	if _, ok := favs[id]; ok {
		delete(favs, id)
		return false, r.saveFavorites(favs)
	}
	favs[id] = FavoriteEntry{QuestionID: id, FavoritedAt: r.now()}
	return true, r.saveFavorites(favs)
}

// IsFavorite reports favorite membership.
func (r *Registry) IsFavorite(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	favs, err := r.loadFavorites()
	if err != nil {
		return false, err
	}
	_, ok := favs[id]
	return ok, nil
}

// Favorites lists favorites, most recently flagged first.
func (r *Registry) Favorites() ([]FavoriteEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	favs, err := r.loadFavorites()
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteEntry, 0, len(favs))
	for _, e := range favs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FavoritedAt.Equal(out[j].FavoritedAt) {
			return out[i].FavoritedAt.After(out[j].FavoritedAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out, nil
}

func (r *Registry) loadWrongBook() (map[string]WrongBookEntry, error) {
	m := map[string]WrongBookEntry{}
	if err := r.loadKey(keyWrongBook, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Registry) saveWrongBook(m map[string]WrongBookEntry) error {
	return r.saveKey(keyWrongBook, m)
}

func (r *Registry) loadFavorites() (map[string]FavoriteEntry, error) {
	m := map[string]FavoriteEntry{}
	if err := r.loadKey(keyFavorites, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Registry) saveFavorites(m map[string]FavoriteEntry) error {
	return r.saveKey(keyFavorites, m)
}

func (r *Registry) loadKey(key string, into any) error {
	data, err := r.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("registry: load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("registry: decode %s: %w", key, err)
	}
	return nil
}

func (r *Registry) saveKey(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("registry: encode %s: %w", key, err)
	}
	if err := r.kv.Set(key, data); err != nil {
		return fmt.Errorf("registry: save %s: %w", key, err)
	}
	return nil
}
