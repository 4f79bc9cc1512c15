package journal

import (
	"context"

	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Entry types accepted by the journal.
const (
	TypeSignal      = "signal"
	TypeNews        = "news"
	TypeManualTrade = "manual_trade"
	TypeNote        = "note"
)

var allowedTypes = map[string]struct{}{
	TypeSignal:      {},
	TypeNews:        {},
	TypeManualTrade: {},
	TypeNote:        {},
}

// Service validates and serves journal operations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a journal service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create appends one entry. Payload may be nil, which stores an empty
// object.
func (s *Service) Create(ctx context.Context, entryType string, payload map[string]any) (*models.JournalEntry, error) {
	if _, ok := allowedTypes[entryType]; !ok {
		return nil, apperr.Validation(`type must be one of "signal", "news", "manual_trade", or "note"`)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	entry := &models.JournalEntry{Type: entryType, Payload: payload}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Debug("Journal entry created", zap.String("type", entryType), zap.Uint("id", entry.ID))
	return entry, nil
}

// List returns up to limit entries, newest first. A limit of 0 selects the
// default of 100; the cap is 500.
func (s *Service) List(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 {
		return nil, apperr.Validation("limit must be a positive number")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

// LatestByType returns the newest entry of the given type, or nil when none
// exists.
func (s *Service) LatestByType(ctx context.Context, entryType string) (*models.JournalEntry, error) {
	if _, ok := allowedTypes[entryType]; !ok {
		return nil, apperr.Validation(`type must be one of "signal", "news", "manual_trade", or "note"`)
	}
	return s.store.LatestByType(ctx, entryType)
}
