package analyzer

import (
	"fmt"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
	"github.com/0xanrelins/strategy-demystify/Internal/utils"
)

// TradeStats summarizes a trade log beyond the headline backtest metrics:
// streaks, per-trade averages and how positions ended.
type TradeStats struct {
	AvgReturnPct      float64        `json:"avg_return_pct"`
	AvgWinPct         float64        `json:"avg_win_pct"`
	AvgLossPct        float64        `json:"avg_loss_pct"`
	BestTradePct      float64        `json:"best_trade_pct"`
	WorstTradePct     float64        `json:"worst_trade_pct"`
	LongestWinStreak  int            `json:"longest_win_streak"`
	LongestLossStreak int            `json:"longest_loss_streak"`
	AvgHoldSeconds    float64        `json:"avg_hold_seconds"`
	ExitReasons       map[string]int `json:"exit_reasons"`
}

// AnalyzeTrades walks the trade log once and derives the secondary
// statistics. An empty log is valid and yields zeroed stats.
func AnalyzeTrades(trades []types.Trade) TradeStats {
	stats := TradeStats{ExitReasons: map[string]int{}}
	if len(trades) == 0 {
		return stats
	}

	returns := make([]float64, len(trades))
	var winReturns, lossReturns []float64
	var holdTotal float64

	winStreak := 0
	lossStreak := 0
	best := trades[0].ReturnFrac
	worst := trades[0].ReturnFrac

	for i, t := range trades {
		returns[i] = t.ReturnFrac
		holdTotal += float64(t.ExitTime - t.EntryTime)
		stats.ExitReasons[t.ExitReason]++

		if t.ReturnFrac > best {
			best = t.ReturnFrac
		}
		if t.ReturnFrac < worst {
			worst = t.ReturnFrac
		}

		if t.Win {
			winReturns = append(winReturns, t.ReturnFrac)
			winStreak++
			lossStreak = 0
		} else {
			lossReturns = append(lossReturns, t.ReturnFrac)
			lossStreak++
			winStreak = 0
		}
		if winStreak > stats.LongestWinStreak {
			stats.LongestWinStreak = winStreak
		}
		if lossStreak > stats.LongestLossStreak {
			stats.LongestLossStreak = lossStreak
		}
	}

	stats.AvgReturnPct = utils.Average(returns) * 100
	if len(winReturns) > 0 {
		stats.AvgWinPct = utils.Average(winReturns) * 100
	}
	if len(lossReturns) > 0 {
		stats.AvgLossPct = utils.Average(lossReturns) * 100
	}
	stats.BestTradePct = best * 100
	stats.WorstTradePct = worst * 100
	stats.AvgHoldSeconds = holdTotal / float64(len(trades))

	return stats
}

// ConsistencyLabel condenses the streak picture into one display string.
func ConsistencyLabel(stats TradeStats) string {
	switch {
	case stats.LongestWinStreak == 0 && stats.LongestLossStreak == 0:
		return "N/A"
	case stats.LongestWinStreak >= 2*stats.LongestLossStreak && stats.LongestWinStreak >= 3:
		return fmt.Sprintf("Consistent (best run: %d wins)", stats.LongestWinStreak)
	case stats.LongestLossStreak >= 2*stats.LongestWinStreak && stats.LongestLossStreak >= 3:
		return fmt.Sprintf("Streaky losses (worst run: %d)", stats.LongestLossStreak)
	}
	return fmt.Sprintf("Mixed (%d win / %d loss runs)", stats.LongestWinStreak, stats.LongestLossStreak)
}

// Summary formats the stats for API responses.
func Summary(stats TradeStats) map[string]interface{} {
	return map[string]interface{}{
		"avg_return_pct":      stats.AvgReturnPct,
		"avg_win_pct":         stats.AvgWinPct,
		"avg_loss_pct":        stats.AvgLossPct,
		"best_trade_pct":      stats.BestTradePct,
		"worst_trade_pct":     stats.WorstTradePct,
		"longest_win_streak":  stats.LongestWinStreak,
		"longest_loss_streak": stats.LongestLossStreak,
		"avg_hold_seconds":    stats.AvgHoldSeconds,
		"exit_reasons":        stats.ExitReasons,
		"consistency":         ConsistencyLabel(stats),
	}
}
