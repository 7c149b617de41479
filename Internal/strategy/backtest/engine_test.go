package backtest

import (
	"math"
	"reflect"
	"testing"

	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

const testBaseTime int64 = 1700000000

func makeBars(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Timestamp: testBaseTime + int64(i)*3600,
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

// flat, then a steady decline to drive RSI to oversold, then a recovery
// strong enough to push RSI back above 70.
func rsiRoundTripCloses() []float64 {
	var closes []float64
	for i := 0; i < 25; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 1; i <= 15; i++ {
		closes = append(closes, 90+float64(i))
	}
	return closes
}

func hasWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}

func TestRun_InsufficientData(t *testing.T) {
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat")

	for _, bars := range [][]types.Bar{nil, makeBars([]float64{100})} {
		result := Run(bars, params)
		if len(result.Trades) != 0 {
			t.Errorf("expected no trades, got %d", len(result.Trades))
		}
		if !hasWarning(result.Warnings, "Insufficient historical data: backtest produced no trades") {
			t.Errorf("missing insufficient-data warning, got %v", result.Warnings)
		}
		if result.Metrics.InitialCapital != 10000 || result.Metrics.FinalCapital != 10000 {
			t.Errorf("expected untouched capital, got %+v", result.Metrics)
		}
	}
}

func TestRun_RSIRoundTrip(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected exactly one trade, got %d: %+v", len(result.Trades), result.Trades)
	}
	trade := result.Trades[0]
	if trade.EntryPrice != 99 {
		t.Errorf("EntryPrice = %v, want 99", trade.EntryPrice)
	}
	if trade.ExitPrice != 100 {
		t.Errorf("ExitPrice = %v, want 100", trade.ExitPrice)
	}
	if trade.ExitReason != "signal" {
		t.Errorf("ExitReason = %q, want signal", trade.ExitReason)
	}
	if !trade.Win {
		t.Error("expected a winning trade")
	}

	m := result.Metrics
	if m.TotalTrades != 1 || m.WinningTrades != 1 || m.LosingTrades != 0 {
		t.Errorf("trade counts wrong: %+v", m)
	}
	if m.WinRate != 100 {
		t.Errorf("WinRate = %v, want 100", m.WinRate)
	}
	// No losing trades caps the profit factor at the display ceiling.
	if m.ProfitFactor != 5 {
		t.Errorf("ProfitFactor = %v, want capped 5", m.ProfitFactor)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %v, want 0", m.MaxDrawdown)
	}
	wantFinal := 10000 + (1.0/99)*10000*0.10
	if math.Abs(m.FinalCapital-wantFinal) > 1e-9 {
		t.Errorf("FinalCapital = %v, want %v", m.FinalCapital, wantFinal)
	}
	if hasWarning(result.Warnings, "Open position closed at end of backtest period") {
		t.Error("unexpected forced-close warning")
	}
}

// the simulation trades the levels the user asked for, not fixed 30/70:
// with a 60 exit the same series closes one bar earlier at 99 instead of
// the 70-exit close at 100.
func TestRun_RSICustomThresholds(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	params := parser.ParseStrategy("RSI 20'de al, 60'ta sat")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one trade, got %d: %+v", len(result.Trades), result.Trades)
	}
	trade := result.Trades[0]
	if trade.EntryPrice != 99 {
		t.Errorf("EntryPrice = %v, want 99", trade.EntryPrice)
	}
	if trade.ExitPrice != 99 {
		t.Errorf("ExitPrice = %v, want 99 (60 exit fires a bar before the 70 exit)", trade.ExitPrice)
	}
	if trade.ExitReason != "signal" {
		t.Errorf("ExitReason = %q, want signal", trade.ExitReason)
	}
}

func TestRun_StopLoss(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat, 2% stop loss")

	result := Run(bars, params)

	if len(result.Trades) == 0 {
		t.Fatal("expected trades")
	}
	first := result.Trades[0]
	if first.ExitReason != "stop_loss" {
		t.Errorf("first ExitReason = %q, want stop_loss", first.ExitReason)
	}
	if first.EntryPrice != 99 || first.ExitPrice != 97 {
		t.Errorf("first trade prices = %v -> %v, want 99 -> 97", first.EntryPrice, first.ExitPrice)
	}
	if first.Win {
		t.Error("stopped-out trade must not be a win")
	}
}

func TestRun_TakeProfit(t *testing.T) {
	// oversold entry at 99, then a gap to 104 that clears the 5% target
	// while RSI is still below the exit threshold
	var closes []float64
	for i := 0; i < 25; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 100-float64(i))
	}
	closes = append(closes, 104, 104, 104, 104, 104, 104)
	bars := makeBars(closes)
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat, 5% take profit")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one trade, got %d: %+v", len(result.Trades), result.Trades)
	}
	trade := result.Trades[0]
	if trade.ExitReason != "take_profit" {
		t.Errorf("ExitReason = %q, want take_profit", trade.ExitReason)
	}
	if trade.EntryPrice != 99 || trade.ExitPrice != 104 {
		t.Errorf("trade prices = %v -> %v, want 99 -> 104", trade.EntryPrice, trade.ExitPrice)
	}
	if !trade.Win {
		t.Error("take-profit exit must be a win")
	}
}

// golden cross entry, death cross exit, previous-bar confirmation on both.
func TestRun_MACrossRoundTrip(t *testing.T) {
	var closes []float64
	for i := 0; i < 60; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 20; i++ {
		closes = append(closes, 100+float64(i))
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 80)
	}
	bars := makeBars(closes)
	params := parser.ParseStrategy("trade the 20 day moving average crossover")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one round trip, got %d: %+v", len(result.Trades), result.Trades)
	}
	trade := result.Trades[0]
	// the fast MA first exceeds the slow MA on the first rising bar
	if trade.EntryPrice != 101 {
		t.Errorf("EntryPrice = %v, want 101", trade.EntryPrice)
	}
	if trade.EntryTime != testBaseTime+60*3600 {
		t.Errorf("EntryTime = %v, want bar 60", trade.EntryTime)
	}
	// the death cross lands seven bars into the drop, where the 20-bar
	// average first dips below the 50-bar average
	if trade.ExitPrice != 80 {
		t.Errorf("ExitPrice = %v, want 80", trade.ExitPrice)
	}
	if trade.ExitTime != testBaseTime+87*3600 {
		t.Errorf("ExitTime = %v, want bar 87", trade.ExitTime)
	}
	if trade.ExitReason != "signal" {
		t.Errorf("ExitReason = %q, want signal", trade.ExitReason)
	}
	if trade.Win {
		t.Error("riding the collapse must book a loss")
	}
	if hasWarning(result.Warnings, "Open position closed at end of backtest period") {
		t.Error("death cross should close the position before end of data")
	}
}

func TestRun_ForcedCloseAtEnd(t *testing.T) {
	var closes []float64
	for i := 0; i < 25; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 15; i++ {
		closes = append(closes, 100-float64(i)*0.1)
	}
	bars := makeBars(closes)
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one forced trade, got %d", len(result.Trades))
	}
	if result.Trades[0].ExitReason != "end_of_data" {
		t.Errorf("ExitReason = %q, want end_of_data", result.Trades[0].ExitReason)
	}
	if result.Trades[0].Win {
		t.Error("declining exit must be a loss")
	}
	if !hasWarning(result.Warnings, "Open position closed at end of backtest period") {
		t.Errorf("missing forced-close warning, got %v", result.Warnings)
	}
	if result.Metrics.ProfitFactor != 0 {
		t.Errorf("ProfitFactor = %v, want 0 with no winners", result.Metrics.ProfitFactor)
	}
}

func TestRun_BreakoutPath(t *testing.T) {
	var closes []float64
	for i := 0; i < 25; i++ {
		closes = append(closes, 100)
	}
	closes = append(closes, 102, 102, 102, 102, 102) // clears the 20-bar high
	closes = append(closes, 98)                      // breaks the 10-bar low
	closes = append(closes, 98, 98, 98, 98)
	bars := makeBars(closes)
	params := parser.ParseStrategy("buy the breakout")

	result := Run(bars, params)

	if len(result.Trades) != 1 {
		t.Fatalf("expected one trade, got %d: %+v", len(result.Trades), result.Trades)
	}
	trade := result.Trades[0]
	if trade.EntryPrice != 102 || trade.ExitPrice != 98 {
		t.Errorf("trade prices = %v -> %v, want 102 -> 98", trade.EntryPrice, trade.ExitPrice)
	}
	if trade.ExitReason != "signal" {
		t.Errorf("ExitReason = %q, want signal", trade.ExitReason)
	}
}

func TestRun_GenericFallbackWarns(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	params := parser.ParseStrategy("just vibes and hope")

	result := Run(bars, params)

	if !hasWarning(result.Warnings, "No recognizable strategy patterns found. Using generic mean-reversion simulation.") {
		t.Errorf("missing generic fallback warning, got %v", result.Warnings)
	}
	if len(result.Trades) == 0 {
		t.Error("generic path should still trade the oversold dip")
	}
}

func TestRun_Deterministic(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat, 2% stop loss")

	first := Run(bars, params)
	second := Run(bars, params)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must reproduce identical results")
	}
}

func TestRun_UnsortedInputIsSorted(t *testing.T) {
	bars := makeBars(rsiRoundTripCloses())
	shuffled := make([]types.Bar, len(bars))
	copy(shuffled, bars)
	for i := 0; i < len(shuffled)-1; i += 2 {
		shuffled[i], shuffled[i+1] = shuffled[i+1], shuffled[i]
	}
	params := parser.ParseStrategy("RSI 30'da al, 70'te sat")

	sortedRun := Run(bars, params)
	shuffledRun := Run(shuffled, params)

	if !reflect.DeepEqual(sortedRun, shuffledRun) {
		t.Error("bar order on input must not affect the result")
	}
}
