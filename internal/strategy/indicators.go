// Package strategy computes technical indicators and the rule-based signal
// used to build daily trade plans.
package strategy

import (
	"math"

	"investopaper/internal/market"
)

// SimpleMovingAverage returns the mean of the last period closes, or false
// when there is not enough data.
func SimpleMovingAverage(candles []market.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close
	}
	return sum / float64(period), true
}

// RSI returns the relative strength index over the last period candles, or
// false when there is not enough data.
func RSI(candles []market.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	var gains, losses float64
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	averageGain := gains / float64(period)
	averageLoss := losses / float64(period)

	switch {
	case averageLoss == 0 && averageGain == 0:
		return 50, true
	case averageLoss == 0:
		return 100, true
	case averageGain == 0:
		return 0, true
	}

	rs := averageGain / averageLoss
	return 100 - 100/(1+rs), true
}

// ATR returns the average true range over the last period candles, or false
// when there is not enough data.
func ATR(candles []market.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	sum := 0.0
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		current, previous := candles[i], candles[i-1]
		trueRange := math.Max(current.High-current.Low,
			math.Max(math.Abs(current.High-previous.Close), math.Abs(current.Low-previous.Close)))
		sum += trueRange
	}
	return sum / float64(period), true
}

func clamp(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}
