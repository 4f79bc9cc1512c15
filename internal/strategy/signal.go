package strategy

import (
	"fmt"
	"math"

	"investopaper/internal/market"
)

const (
	oversold             = 30.0
	overbought           = 70.0
	stopLossMultiplier   = 1.5
	takeProfitMultiplier = 2.0
	positionSizePct      = 0.02
)

// Signal values produced by the rule set.
const (
	SignalBuy  = "buy"
	SignalSell = "sell"
	SignalHold = "hold"
)

// Risk carries the suggested entry and exit levels for a signal. Stop and
// take-profit are nil on hold signals.
type Risk struct {
	Entry           *float64 `json:"entry"`
	StopLoss        *float64 `json:"stopLoss"`
	TakeProfit      *float64 `json:"takeProfit"`
	PositionSizePct float64  `json:"positionSizePct"`
}

// Signal is the output of the rule set for one symbol. The paper-trading
// core treats it as an opaque value.
type Signal struct {
	Symbol     string   `json:"symbol"`
	Signal     string   `json:"signal"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
	Risk       Risk     `json:"risk"`
}

// GenerateV1Signal runs the v1 rule set: a SMA20/SMA50 trend filter with
// RSI(14) entry triggers and ATR(14) based stops.
func GenerateV1Signal(symbol string, candles []market.Candle) Signal {
	var entry *float64
	if len(candles) > 0 {
		close := candles[len(candles)-1].Close
		entry = &close
	}

	sma20, ok20 := SimpleMovingAverage(candles, 20)
	sma50, ok50 := SimpleMovingAverage(candles, 50)
	latestRSI, okRSI := RSI(candles, 14)
	latestATR, okATR := ATR(candles, 14)

	if !ok20 || !ok50 || !okRSI || !okATR {
		return holdSignal(symbol, entry, []string{"Not enough candle data to compute indicators."})
	}

	trend := "flat"
	if sma20 > sma50 {
		trend = "uptrend"
	} else if sma20 < sma50 {
		trend = "downtrend"
	}

	reasoning := []string{
		fmt.Sprintf("Trend filter: SMA20 %.2f vs SMA50 %.2f (%s).", sma20, sma50, trend),
		fmt.Sprintf("RSI(14) is %.2f.", latestRSI),
		fmt.Sprintf("ATR(14) is %.2f.", latestATR),
	}

	signal := SignalHold
	if trend == "uptrend" && latestRSI <= oversold {
		signal = SignalBuy
	} else if trend == "downtrend" && latestRSI >= overbought {
		signal = SignalSell
	}

	if signal == SignalHold {
		reasoning = append(reasoning, "Entry conditions not met; holding position.")
		return holdSignal(symbol, entry, reasoning)
	}

	riskDistance := latestATR * stopLossMultiplier
	var stopLoss, takeProfit float64
	if signal == SignalBuy {
		stopLoss = *entry - riskDistance
		takeProfit = *entry + riskDistance*takeProfitMultiplier
	} else {
		stopLoss = *entry + riskDistance
		takeProfit = *entry - riskDistance*takeProfitMultiplier
	}

	var rsiStrength float64
	if signal == SignalBuy {
		rsiStrength = clamp((oversold-latestRSI)/oversold, 0, 1)
	} else {
		rsiStrength = clamp((latestRSI-overbought)/(100-overbought), 0, 1)
	}
	trendStrength := clamp(math.Abs((sma20-sma50)/sma50), 0, 1)
	confidence := clamp((rsiStrength+trendStrength)/2, 0, 1)

	reasoning = append(reasoning, fmt.Sprintf(
		"Signal generated: %s with stop loss %.1fx ATR and take profit %.0fx risk.",
		signal, stopLossMultiplier, takeProfitMultiplier))

	return Signal{
		Symbol:     symbol,
		Signal:     signal,
		Confidence: confidence,
		Reasoning:  reasoning,
		Risk: Risk{
			Entry:           entry,
			StopLoss:        &stopLoss,
			TakeProfit:      &takeProfit,
			PositionSizePct: positionSizePct,
		},
	}
}

func holdSignal(symbol string, entry *float64, reasoning []string) Signal {
	return Signal{
		Symbol:    symbol,
		Signal:    SignalHold,
		Reasoning: reasoning,
		Risk: Risk{
			Entry:           entry,
			PositionSizePct: positionSizePct,
		},
	}
}
