package analyzer

import (
	"math"
	"testing"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

func trade(entry, exit int64, ret float64, reason string) types.Trade {
	return types.Trade{
		EntryTime:  entry,
		ExitTime:   exit,
		ReturnFrac: ret,
		ExitReason: reason,
		Win:        ret > 0,
	}
}

func TestAnalyzeTrades_EmptyLog(t *testing.T) {
	stats := AnalyzeTrades(nil)
	if stats.LongestWinStreak != 0 || stats.LongestLossStreak != 0 || stats.AvgReturnPct != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if len(stats.ExitReasons) != 0 {
		t.Errorf("expected empty exit reasons, got %v", stats.ExitReasons)
	}
}

func TestAnalyzeTrades_StreaksAndReasons(t *testing.T) {
	trades := []types.Trade{
		trade(0, 100, 0.02, "signal"),
		trade(200, 300, 0.01, "signal"),
		trade(400, 500, 0.03, "take_profit"),
		trade(600, 700, -0.02, "stop_loss"),
		trade(800, 900, 0.04, "signal"),
	}

	stats := AnalyzeTrades(trades)

	if stats.LongestWinStreak != 3 {
		t.Errorf("LongestWinStreak = %d, want 3", stats.LongestWinStreak)
	}
	if stats.LongestLossStreak != 1 {
		t.Errorf("LongestLossStreak = %d, want 1", stats.LongestLossStreak)
	}
	if stats.ExitReasons["signal"] != 3 || stats.ExitReasons["stop_loss"] != 1 || stats.ExitReasons["take_profit"] != 1 {
		t.Errorf("unexpected exit reasons %v", stats.ExitReasons)
	}
	if math.Abs(stats.BestTradePct-4) > 1e-9 {
		t.Errorf("BestTradePct = %v, want 4", stats.BestTradePct)
	}
	if math.Abs(stats.WorstTradePct-(-2)) > 1e-9 {
		t.Errorf("WorstTradePct = %v, want -2", stats.WorstTradePct)
	}
	if math.Abs(stats.AvgHoldSeconds-100) > 1e-9 {
		t.Errorf("AvgHoldSeconds = %v, want 100", stats.AvgHoldSeconds)
	}
	if math.Abs(stats.AvgReturnPct-1.6) > 1e-9 {
		t.Errorf("AvgReturnPct = %v, want 1.6", stats.AvgReturnPct)
	}
}

func TestConsistencyLabel(t *testing.T) {
	tests := []struct {
		name  string
		stats TradeStats
		want  string
	}{
		{"no trades", TradeStats{}, "N/A"},
		{"consistent", TradeStats{LongestWinStreak: 6, LongestLossStreak: 2}, "Consistent (best run: 6 wins)"},
		{"streaky", TradeStats{LongestWinStreak: 1, LongestLossStreak: 4}, "Streaky losses (worst run: 4)"},
		{"mixed", TradeStats{LongestWinStreak: 2, LongestLossStreak: 2}, "Mixed (2 win / 2 loss runs)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsistencyLabel(tt.stats); got != tt.want {
				t.Errorf("ConsistencyLabel = %q, want %q", got, tt.want)
			}
		})
	}
}
