package backtest

import (
	"sort"

	"github.com/0xanrelins/strategy-demystify/Internal/strategy/indicators"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

const (
	initialCapital = 10000.0

	// Fraction of capital at risk per trade. Binary payouts are bounded so
	// the binary path uses the smaller fraction.
	riskFraction        = 0.10
	binaryStakeFraction = 0.05

	warmupBars = 20

	fastMAPeriod    = 20
	slowMAPeriod    = 50
	breakoutHighLen = 20
	breakoutLowLen  = 10
)

// Result is one complete simulation run: the trade log, the derived
// metrics and every warning accumulated along the way, in order.
type Result struct {
	Trades   []types.Trade        `json:"trades"`
	Metrics  types.BacktestResult `json:"metrics"`
	Warnings []string             `json:"warnings"`
}

// UseBinaryPath reports whether the binary-market simulation applies: the
// binary flag is set and both a time-window and a price-threshold condition
// were parsed. Anything less falls through to the traditional paths.
func UseBinaryPath(params parser.StrategyParams) bool {
	return params.IsBinaryMarket &&
		params.HasEntryCondition(parser.CondTimeWindow) &&
		params.HasEntryCondition(parser.CondPriceThreshold)
}

type strategyPath int

const (
	pathRSI strategyPath = iota
	pathMACross
	pathBreakout
	pathGeneric
)

// selectPath picks the single traditional strategy machine for this run.
// First match wins; the order is fixed.
func selectPath(params parser.StrategyParams) strategyPath {
	switch {
	case params.HasIndicator(parser.IndicatorRSI):
		return pathRSI
	case params.HasIndicator(parser.IndicatorMA):
		return pathMACross
	case params.HasEntryCondition(parser.CondBreakout):
		return pathBreakout
	}
	return pathGeneric
}

// Run simulates a traditional (non-binary) strategy over an OHLCV series.
// The series is sorted ascending by timestamp before simulation; fewer than
// two bars is a valid, reportable outcome with zero trades, not an error.
func Run(bars []types.Bar, params parser.StrategyParams) Result {
	warnings := collectParseWarnings(params)

	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	bars = sorted

	if len(bars) < 2 {
		warnings = append(warnings, "Insufficient historical data: backtest produced no trades")
		return Result{Trades: []types.Trade{}, Metrics: emptyMetrics(), Warnings: warnings}
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	path := selectPath(params)

	rsiEntry := params.EntryValue(parser.CondRSIThreshold, 30)
	rsiExit := params.ExitValue(parser.CondRSIThreshold, 70)
	if path == pathGeneric {
		rsiEntry, rsiExit = 35, 65
	}

	capital := initialCapital
	peak := initialCapital
	maxDrawdown := 0.0
	var trades []types.Trade

	inTrade := false
	entryPrice := 0.0
	entryTime := int64(0)

	closeTrade := func(bar types.Bar, reason string) {
		pnlFrac := (bar.Close - entryPrice) / entryPrice
		tradePnL := pnlFrac * capital * riskFraction
		capital += tradePnL

		trades = append(trades, types.Trade{
			EntryTime:  entryTime,
			ExitTime:   bar.Timestamp,
			EntryPrice: entryPrice,
			ExitPrice:  bar.Close,
			Side:       types.SideLong,
			ExitReason: reason,
			PnL:        tradePnL,
			ReturnFrac: pnlFrac,
			Win:        tradePnL > 0,
		})

		if capital > peak {
			peak = capital
		}
		if dd := (peak - capital) / peak * 100; dd > maxDrawdown {
			maxDrawdown = dd
		}
		inTrade = false
	}

	for i := warmupBars; i < len(bars)-1; i++ {
		bar := bars[i]

		shouldEnter := false
		shouldExit := false

		switch path {
		case pathRSI, pathGeneric:
			rsi := indicators.RSIAt(closes, i, 14)
			shouldEnter = !inTrade && rsi < rsiEntry
			shouldExit = inTrade && rsi > rsiExit
		case pathMACross:
			fast := indicators.MovingAverageAt(closes, i, fastMAPeriod)
			slow := indicators.MovingAverageAt(closes, i, slowMAPeriod)
			prevFast := indicators.MovingAverageAt(closes, i-1, fastMAPeriod)
			prevSlow := indicators.MovingAverageAt(closes, i-1, slowMAPeriod)
			shouldEnter = !inTrade && prevFast <= prevSlow && fast > slow
			shouldExit = inTrade && prevFast >= prevSlow && fast < slow
		case pathBreakout:
			shouldEnter = !inTrade && bar.Close > rollingHigh(bars, i, breakoutHighLen)
			shouldExit = inTrade && bar.Close < rollingLow(bars, i, breakoutLowLen)
		}

		if !inTrade && shouldEnter {
			inTrade = true
			entryPrice = bar.Close
			entryTime = bar.Timestamp
			continue
		}

		if inTrade {
			pnlFrac := (bar.Close - entryPrice) / entryPrice
			stopLossHit := params.StopLoss != nil && pnlFrac < -*params.StopLoss/100
			takeProfitHit := params.TakeProfit != nil && pnlFrac > *params.TakeProfit/100

			switch {
			case shouldExit:
				closeTrade(bar, "signal")
			case stopLossHit:
				closeTrade(bar, "stop_loss")
			case takeProfitHit:
				closeTrade(bar, "take_profit")
			}
		}
	}

	// No strategy leaves an unresolved position in a finite backtest.
	if inTrade {
		closeTrade(bars[len(bars)-1], "end_of_data")
		warnings = append(warnings, "Open position closed at end of backtest period")
	}

	elapsedDays := float64(len(bars))
	metrics := deriveMetrics(trades, initialCapital, capital, maxDrawdown, elapsedDays,
		bars[0].Timestamp, bars[len(bars)-1].Timestamp)

	return Result{Trades: trades, Metrics: metrics, Warnings: warnings}
}

// rollingHigh is the highest high of the len bars preceding index i.
func rollingHigh(bars []types.Bar, i, length int) float64 {
	start := i - length
	if start < 0 {
		start = 0
	}
	high := bars[start].High
	for _, b := range bars[start:i] {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

func rollingLow(bars []types.Bar, i, length int) float64 {
	start := i - length
	if start < 0 {
		start = 0
	}
	low := bars[start].Low
	for _, b := range bars[start:i] {
		if b.Low < low {
			low = b.Low
		}
	}
	return low
}

// collectParseWarnings turns parse-time findings into the run's leading
// warnings: unsupported strategy classes and the generic fallback notice.
func collectParseWarnings(params parser.StrategyParams) []string {
	warnings := []string{}

	for _, u := range params.Unrecognized {
		warnings = append(warnings, u.Pattern+": "+u.Reason)
	}

	if len(params.RecognizedPatterns) == 0 && len(params.Indicators) == 0 {
		warnings = append(warnings,
			"No recognizable strategy patterns found. Using generic mean-reversion simulation.",
			"Supported patterns: RSI, MA, MACD, Bollinger Bands, Breakout, Stop Loss, Take Profit")
	}

	for _, u := range params.Unrecognized {
		if u.Pattern == "Order_Flow_Scalping" {
			warnings = append(warnings,
				"Order flow/scalping strategies require real-time order book data not available in historical OHLCV",
				"This backtest uses OHLCV approximation and may not reflect real strategy performance")
			break
		}
	}

	return warnings
}
