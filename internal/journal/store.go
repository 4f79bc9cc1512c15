// Package journal is the append-only trading journal: typed notes with a
// JSON payload, listed newest first.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"investopaper/internal/models"
)

// Store persists journal entries. Entries are never updated or deleted.
type Store interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	List(ctx context.Context, limit int) ([]models.JournalEntry, error)
	// LatestByType returns the newest entry of the given type, or nil when
	// none exists.
	LatestByType(ctx context.Context, entryType string) (*models.JournalEntry, error)
}

// MemoryStore keeps entries in process memory, newest first.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.JournalEntry
	nextID  uint
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Create(_ context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	entry.CreatedAt = time.Now().UTC()
	s.entries = append([]models.JournalEntry{*entry}, s.entries...)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]models.JournalEntry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

func (s *MemoryStore) LatestByType(_ context.Context, entryType string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.Type == entryType {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

// GormStore persists entries in the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed journal store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Create(ctx context.Context, entry *models.JournalEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

func (s *GormStore) LatestByType(ctx context.Context, entryType string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.db.WithContext(ctx).
		Where("type = ?", entryType).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest journal entry: %w", err)
	}
	return &entry, nil
}
