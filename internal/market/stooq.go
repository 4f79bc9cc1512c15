package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"investopaper/internal/apperr"
	"investopaper/internal/config"
)

const stooqBaseURL = "https://stooq.com"

// StooqProvider fetches daily and hourly candles from the free Stooq CSV
// endpoint.
type StooqProvider struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Provider = (*StooqProvider)(nil)

// NewStooqProvider creates a Stooq client with outbound rate limiting.
func NewStooqProvider(cfg *config.Market, logger *zap.Logger) *StooqProvider {
	client := resty.New().SetBaseURL(stooqBaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &StooqProvider{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

func (p *StooqProvider) GetCandles(ctx context.Context, symbol, interval string, limit int) (*Candles, error) {
	intervalParam, ok := stooqInterval(interval)
	if !ok {
		return nil, apperr.Validation(`stooq provider supports only "1d" and "1h" intervals`)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s": stooqSymbol(symbol),
			"i": intervalParam,
		}).
		Get("/q/d/l/")
	if err != nil {
		return nil, fmt.Errorf("stooq request failed: %w", err)
	}
	if resp.IsError() {
		return nil, apperr.Upstream("failed to fetch data from stooq (%d)", resp.StatusCode())
	}

	candles := parseStooqCSV(resp.String())
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	p.logger.Debug("Fetched candles from stooq",
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Int("count", len(candles)),
	)

	return &Candles{Symbol: symbol, Interval: interval, Candles: candles}, nil
}

// stooqSymbol maps a plain ticker to stooq's market-suffixed form; symbols
// that already carry a suffix pass through.
func stooqSymbol(symbol string) string {
	normalized := strings.ToLower(strings.TrimSpace(symbol))
	if normalized == "" || strings.Contains(normalized, ".") {
		return normalized
	}
	return normalized + ".us"
}

func stooqInterval(interval string) (string, bool) {
	switch interval {
	case "1d":
		return "d", true
	case "1h":
		return "60", true
	default:
		return "", false
	}
}

// parseStooqCSV reads the Date,Open,High,Low,Close,Volume rows, skipping the
// header and anything malformed.
func parseStooqCSV(csv string) []Candle {
	lines := strings.Split(csv, "\n")
	if len(lines) <= 1 {
		return nil
	}

	var candles []Candle
	for _, line := range lines[1:] {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if len(parts) < 6 {
			continue
		}

		ts, ok := parseStooqTime(parts[0])
		if !ok {
			continue
		}

		values := make([]float64, 5)
		valid := true
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				valid = false
				break
			}
			values[i] = v
		}
		if !valid {
			continue
		}

		candles = append(candles, Candle{
			Time:   ts,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return candles
}

func parseStooqTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
