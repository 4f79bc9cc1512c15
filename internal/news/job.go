package news

import (
	"context"
	"time"

	"go.uber.org/zap"

	"investopaper/internal/metrics"
)

const defaultIngestInterval = 15 * time.Minute

// Job periodically ingests the configured RSS feeds.
type Job struct {
	service  *Service
	urls     []string
	interval time.Duration
	logger   *zap.Logger
}

// NewJob creates an ingestion job. It does nothing when no URLs are
// configured. A non-positive interval falls back to the default.
func NewJob(service *Service, urls []string, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		logger.Warn("Invalid news ingest interval, using default",
			zap.Duration("configured", interval),
			zap.Duration("default", defaultIngestInterval),
		)
		interval = defaultIngestInterval
	}
	return &Job{
		service:  service,
		urls:     urls,
		interval: interval,
		logger:   logger,
	}
}

// Run ingests once immediately and then on every tick until the context is
// cancelled.
func (j *Job) Run(ctx context.Context) {
	if len(j.urls) == 0 {
		j.logger.Info("No RSS feeds configured, news ingestion disabled")
		return
	}

	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Stopping news ingestion")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *Job) runOnce(ctx context.Context) {
	inserted, err := j.service.IngestFromRSS(ctx, j.urls)
	if err != nil {
		j.logger.Error("News ingestion failed", zap.Error(err))
		return
	}
	if len(inserted) > 0 {
		metrics.NewsItemsIngested.Add(float64(len(inserted)))
		j.logger.Info("News ingestion added items", zap.Int("count", len(inserted)))
	}
}
