package news

import (
	"context"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"investopaper/internal/models"
)

const (
	defaultListLimit = 30
	maxListLimit     = 200
)

// Service fetches RSS feeds and serves the stored headlines.
type Service struct {
	store  Store
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewService creates a news service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// IngestFromRSS fetches every feed URL, normalizes its items, and stores
// the ones not seen before. A feed that fails to parse is logged and
// skipped; the remaining feeds still go through.
func (s *Service) IngestFromRSS(ctx context.Context, urls []string) ([]models.NewsItem, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	var items []models.NewsItem
	for _, url := range urls {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			s.logger.Warn("Failed to parse RSS feed", zap.String("url", url), zap.Error(err))
			continue
		}

		source := feed.Title
		if source == "" {
			source = url
		}
		for _, item := range feed.Items {
			if normalized, ok := normalizeItem(item, source); ok {
				items = append(items, normalized)
			}
		}
	}

	return s.store.InsertItems(ctx, items)
}

// List returns up to limit items, newest first. Non-positive limits fall
// back to the default of 30; the cap is 200.
func (s *Service) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, nil
}

// normalizeItem maps one feed item to a news record. Items without a link
// and title are dropped.
func normalizeItem(item *gofeed.Item, source string) (models.NewsItem, bool) {
	if item == nil {
		return models.NewsItem{}, false
	}

	url := item.Link
	if url == "" {
		url = item.GUID
	}
	if url == "" || item.Title == "" {
		return models.NewsItem{}, false
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	return models.NewsItem{
		Source:      source,
		Title:       item.Title,
		URL:         url,
		PublishedAt: item.PublishedParsed,
		Summary:     summary,
	}, true
}
