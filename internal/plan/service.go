// Package plan builds the daily trade plan for a symbol: a rule-based
// signal with risk levels, key support/resistance, a checklist, and the
// latest news bullets from the journal.
package plan

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/journal"
	"investopaper/internal/market"
	"investopaper/internal/models"
	"investopaper/internal/strategy"
)

const planCandleLimit = 200

// CandleSource provides the daily candles the plan is built from.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) (*market.Candles, error)
}

// KeyLevels are the recent support and resistance prices. Nil when there is
// no candle data.
type KeyLevels struct {
	Support    *float64 `json:"support"`
	Resistance *float64 `json:"resistance"`
}

// Details is the actionable part of a daily plan.
type Details struct {
	Signal    string        `json:"signal"`
	Risk      strategy.Risk `json:"risk"`
	Checklist []string      `json:"checklist"`
	KeyLevels KeyLevels     `json:"keyLevels"`
}

// News carries the headline bullets attached to the plan.
type News struct {
	Bullets []string `json:"bullets"`
}

// DailyPlan is the full plan response for one symbol.
type DailyPlan struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Plan   Details `json:"plan"`
	News   News    `json:"news"`
}

// Service assembles daily plans.
type Service struct {
	candles CandleSource
	journal *journal.Service
	logger  *zap.Logger
}

// NewService creates a plan service.
func NewService(candles CandleSource, journalSvc *journal.Service, logger *zap.Logger) *Service {
	return &Service{candles: candles, journal: journalSvc, logger: logger}
}

// GetDailyPlan builds today's plan for the symbol from 200 daily candles.
func (s *Service) GetDailyPlan(ctx context.Context, symbol string) (*DailyPlan, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return nil, apperr.Validation("symbol is required")
	}

	payload, err := s.candles.GetCandles(ctx, normalized, "1d", planCandleLimit)
	if err != nil {
		return nil, err
	}

	var candles []market.Candle
	if payload != nil {
		candles = payload.Candles
	}

	signal := strategy.GenerateV1Signal(normalized, candles)
	levels := buildKeyLevels(candles)

	newsEntry, err := s.journal.LatestByType(ctx, journal.TypeNews)
	if err != nil {
		return nil, err
	}

	return &DailyPlan{
		Date:   time.Now().UTC().Format("2006-01-02"),
		Symbol: normalized,
		Plan: Details{
			Signal:    signal.Signal,
			Risk:      signal.Risk,
			Checklist: buildChecklist(signal.Signal),
			KeyLevels: levels,
		},
		News: News{Bullets: buildNewsBullets(newsEntry)},
	}, nil
}

// buildKeyLevels takes the lowest low and highest high of the last 20
// candles.
func buildKeyLevels(candles []market.Candle) KeyLevels {
	if len(candles) == 0 {
		return KeyLevels{}
	}

	window := candles
	if len(window) > 20 {
		window = window[len(window)-20:]
	}

	support := window[0].Low
	resistance := window[0].High
	for _, candle := range window[1:] {
		if candle.Low < support {
			support = candle.Low
		}
		if candle.High > resistance {
			resistance = candle.High
		}
	}
	return KeyLevels{Support: &support, Resistance: &resistance}
}

func buildChecklist(signal string) []string {
	checklist := []string{
		"Confirm liquidity and spread are acceptable.",
		"Validate key support/resistance levels.",
		"Check upcoming economic events and earnings.",
		"Confirm risk fits within position sizing rules.",
	}

	switch signal {
	case strategy.SignalBuy:
		checklist = append([]string{"Confirm trend remains in uptrend on higher timeframes."}, checklist...)
	case strategy.SignalSell:
		checklist = append([]string{"Confirm trend remains in downtrend on higher timeframes."}, checklist...)
	}
	return checklist
}

// buildNewsBullets pulls bullets from the latest news journal entry,
// falling back to its summary line.
func buildNewsBullets(entry *models.JournalEntry) []string {
	if entry == nil {
		return []string{}
	}

	if raw, ok := entry.Payload["bullets"].([]any); ok {
		bullets := make([]string, 0, len(raw))
		for _, b := range raw {
			if text, ok := b.(string); ok {
				bullets = append(bullets, text)
			}
		}
		return bullets
	}
	if summary, ok := entry.Payload["summary"].(string); ok {
		return []string{summary}
	}
	return []string{}
}
