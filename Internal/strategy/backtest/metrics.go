package backtest

import (
	"math"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
	"github.com/0xanrelins/strategy-demystify/Internal/utils"
)

// profitFactorSentinel stands in for "no losing trades at all"; display
// clamping caps it at profitFactorCap before it leaves the simulator.
const (
	profitFactorSentinel = 999.0
	profitFactorCap      = 5.0
	sharpeCap            = 3.0
	cagrFloor            = -100.0
	cagrCap              = 500.0
)

// deriveMetrics computes the aggregate metrics shared by the traditional
// and binary paths. Degenerate cases (zero trades, zero losses, zero
// variance) resolve to documented sentinels rather than dividing by zero.
func deriveMetrics(trades []types.Trade, initial, final, maxDrawdown, elapsedDays float64, start, end int64) types.BacktestResult {
	wins := 0
	losses := 0
	grossProfit := 0.0
	grossLoss := 0.0
	pnls := make([]float64, len(trades))

	for i, t := range trades {
		pnls[i] = t.PnL
		if t.PnL > 0 {
			wins++
			grossProfit += t.PnL
		} else {
			losses++
			grossLoss += utils.Abs(t.PnL)
		}
	}

	profitFactor := 0.0
	if grossLoss > 0 {
		profitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		profitFactor = profitFactorSentinel
	}

	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades)) * 100
	}

	sharpe := 0.0
	if stdDev := utils.StdDev(pnls); len(trades) > 0 && stdDev > 0 {
		sharpe = utils.Average(pnls) / stdDev
	}

	totalReturn := (final - initial) / initial * 100

	cagr := 0.0
	if elapsedDays > 0 && len(trades) > 0 {
		cagr = (math.Pow(1+totalReturn/100, 365/elapsedDays) - 1) * 100
	}

	return types.BacktestResult{
		TotalTrades:    len(trades),
		WinningTrades:  wins,
		LosingTrades:   losses,
		ProfitFactor:   math.Min(profitFactorCap, profitFactor),
		MaxDrawdown:    math.Min(100, maxDrawdown),
		SharpeRatio:    math.Min(sharpeCap, sharpe),
		CAGR:           utils.Clamp(cagr, cagrFloor, cagrCap),
		WinRate:        math.Min(100, winRate),
		InitialCapital: initial,
		FinalCapital:   final,
		TotalReturn:    totalReturn,
		StartDate:      start,
		EndDate:        end,
	}
}

func emptyMetrics() types.BacktestResult {
	return types.BacktestResult{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
	}
}
