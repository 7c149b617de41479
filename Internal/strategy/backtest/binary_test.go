package backtest

import (
	"math"
	"reflect"
	"testing"

	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

// makeInstance builds one market instance: count snapshots spaced 60s apart
// starting at start, with the given yes prices and underlying prices.
func makeInstance(start int64, yes, underlying []float64) []types.MarketSnapshot {
	snaps := make([]types.MarketSnapshot, len(yes))
	for i := range yes {
		snaps[i] = types.MarketSnapshot{
			Timestamp:       start + int64(i)*60,
			YesPrice:        yes[i],
			NoPrice:         1 - yes[i],
			UnderlyingPrice: underlying[i],
			MarketID:        "mkt",
		}
	}
	return snaps
}

func binaryFixture() []types.MarketSnapshot {
	// Instance A: yes price crosses the threshold inside the final window
	// and the underlying resolves up.
	up := makeInstance(testBaseTime,
		[]float64{0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.97, 0.98, 0.99},
		[]float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109})

	// Instance B: same price shape, 10000s later, underlying resolves down.
	down := makeInstance(testBaseTime+10000,
		[]float64{0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.97, 0.98, 0.99},
		[]float64{200, 199, 198, 197, 196, 195, 194, 193, 192, 191})

	return append(up, down...)
}

func TestRunBinary_WinAndLoss(t *testing.T) {
	params := parser.ParseStrategy("polymarket whichever side above 97c last 120 seconds")
	result := RunBinary(binaryFixture(), params)

	if len(result.Trades) != 2 {
		t.Fatalf("expected two trades, got %d: %+v", len(result.Trades), result.Trades)
	}

	win := result.Trades[0]
	if !win.Win || win.Side != types.SideYes || win.ExitReason != "market_resolved" {
		t.Errorf("first trade should be a resolved yes win, got %+v", win)
	}
	if win.EntryPrice != 0.97 || win.ExitPrice != 1 {
		t.Errorf("win prices = %v -> %v, want 0.97 -> 1", win.EntryPrice, win.ExitPrice)
	}
	wantWinPnL := 10000 * 0.05 * (1 - 0.97) / 0.97
	if math.Abs(win.PnL-wantWinPnL) > 1e-6 {
		t.Errorf("win PnL = %v, want %v", win.PnL, wantWinPnL)
	}

	loss := result.Trades[1]
	if loss.Win || loss.ExitPrice != 0 || loss.ReturnFrac != -1 {
		t.Errorf("second trade should be a full loss, got %+v", loss)
	}

	m := result.Metrics
	if m.TotalTrades != 2 || m.WinningTrades != 1 || m.LosingTrades != 1 {
		t.Errorf("trade counts wrong: %+v", m)
	}
	if m.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", m.WinRate)
	}
}

func TestRunBinary_DownSideTradesNoContract(t *testing.T) {
	params := parser.ParseStrategy("polymarket down side only above 97c last 120 seconds")

	// Underlying resolves down, so the no contract wins.
	snaps := makeInstance(testBaseTime,
		[]float64{0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.97, 0.98, 0.99},
		[]float64{200, 199, 198, 197, 196, 195, 194, 193, 192, 191})

	result := RunBinary(snaps, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one trade, got %d", len(result.Trades))
	}
	trade := result.Trades[0]
	if trade.Side != types.SideNo {
		t.Errorf("Side = %v, want no", trade.Side)
	}
	if !trade.Win {
		t.Error("no contract must win when the underlying resolves down")
	}
	if math.Abs(trade.EntryPrice-0.03) > 1e-9 {
		t.Errorf("EntryPrice = %v, want the no price 0.03", trade.EntryPrice)
	}
}

func TestRunBinary_SkipsUnqualifiedInstances(t *testing.T) {
	params := parser.ParseStrategy("polymarket whichever side above 97c last 120 seconds")

	// Never reaches the threshold.
	flat := makeInstance(testBaseTime,
		[]float64{0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50, 0.50},
		[]float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109})

	// Qualifies on timestamp but the entry price is not tradable.
	pinned := makeInstance(testBaseTime+10000,
		[]float64{0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 0.90, 1.0, 1.0, 1.0},
		[]float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109})

	result := RunBinary(append(flat, pinned...), params)

	if len(result.Trades) != 0 {
		t.Errorf("expected no trades, got %+v", result.Trades)
	}
	if result.Metrics.FinalCapital != 10000 {
		t.Errorf("FinalCapital = %v, want untouched 10000", result.Metrics.FinalCapital)
	}
}

func TestRunBinary_RequiresBinaryConditions(t *testing.T) {
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat")
	result := RunBinary(binaryFixture(), params)

	if len(result.Trades) != 0 {
		t.Errorf("expected no trades, got %d", len(result.Trades))
	}
	if !hasWarning(result.Warnings, "Binary market flag set without time-window and price-threshold conditions; no binary simulation possible") {
		t.Errorf("missing precondition warning, got %v", result.Warnings)
	}
}

func TestRunBinary_InsufficientSnapshots(t *testing.T) {
	params := parser.ParseStrategy("polymarket whichever side above 97c last 120 seconds")
	result := RunBinary(nil, params)

	if len(result.Trades) != 0 {
		t.Errorf("expected no trades, got %d", len(result.Trades))
	}
	if !hasWarning(result.Warnings, "Insufficient market snapshots: backtest produced no trades") {
		t.Errorf("missing insufficient-data warning, got %v", result.Warnings)
	}
}

func TestRunBinary_Deterministic(t *testing.T) {
	params := parser.ParseStrategy("polymarket whichever side above 97c last 120 seconds")

	first := RunBinary(binaryFixture(), params)
	second := RunBinary(binaryFixture(), params)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must reproduce identical results")
	}
}
