// Package news ingests RSS headlines and serves them newest first. Items
// are deduplicated by URL, so re-ingesting a feed is idempotent.
package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investopaper/internal/models"
)

// Store persists news items.
type Store interface {
	// InsertItems stores the given items, skipping any whose URL is already
	// present, and returns the ones actually inserted.
	InsertItems(ctx context.Context, items []models.NewsItem) ([]models.NewsItem, error)
	List(ctx context.Context, limit int) ([]models.NewsItem, error)
}

// MemoryStore keeps items in process memory, newest first.
type MemoryStore struct {
	mu     sync.RWMutex
	items  []models.NewsItem
	seen   map[string]struct{}
	nextID uint
}

// NewMemoryStore creates an empty in-memory news store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{}), nextID: 1}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) InsertItems(_ context.Context, items []models.NewsItem) ([]models.NewsItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted []models.NewsItem
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		if _, dup := s.seen[item.URL]; dup {
			continue
		}
		item.ID = s.nextID
		s.nextID++
		if item.PublishedAt == nil {
			now := time.Now().UTC()
			item.PublishedAt = &now
		}
		s.seen[item.URL] = struct{}{}
		s.items = append([]models.NewsItem{item}, s.items...)
		inserted = append(inserted, item)
	}
	return inserted, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.items) {
		limit = len(s.items)
	}
	out := make([]models.NewsItem, limit)
	copy(out, s.items[:limit])
	return out, nil
}

// GormStore persists items in the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed news store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) InsertItems(ctx context.Context, items []models.NewsItem) ([]models.NewsItem, error) {
	var inserted []models.NewsItem
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
			Create(&item)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to insert news item: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			inserted = append(inserted, item)
		}
	}
	return inserted, nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := s.db.WithContext(ctx).
		Order("published_at IS NULL, published_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list news items: %w", err)
	}
	return items, nil
}
