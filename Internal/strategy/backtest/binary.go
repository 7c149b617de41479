package backtest

import (
	"sort"

	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

const (
	// A gap beyond this between consecutive snapshots starts a new market
	// instance.
	marketGapSeconds int64 = 20 * 60

	// Assumed 15-minute instances when extrapolating annualized return.
	instancesPerDay = 96.0
)

// RunBinary simulates a binary-market (yes/no contract) strategy over a
// snapshot series. Snapshots are segmented into discrete market instances
// by timestamp gap; each instance yields at most one trade. The outcome is
// derived purely from the underlying reference price, never randomized, so
// identical inputs always reproduce the same trade log.
func RunBinary(snapshots []types.MarketSnapshot, params parser.StrategyParams) Result {
	warnings := collectParseWarnings(params)

	if !UseBinaryPath(params) {
		warnings = append(warnings, "Binary market flag set without time-window and price-threshold conditions; no binary simulation possible")
		return Result{Trades: []types.Trade{}, Metrics: emptyMetrics(), Warnings: warnings}
	}

	sorted := make([]types.MarketSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	snapshots = sorted

	if len(snapshots) < 2 {
		warnings = append(warnings, "Insufficient market snapshots: backtest produced no trades")
		return Result{Trades: []types.Trade{}, Metrics: emptyMetrics(), Warnings: warnings}
	}

	binary := params.Binary
	windowSeconds := int64(binary.TimeWindowSeconds)
	threshold := binary.PriceThreshold

	side := types.SideYes
	if binary.Side == parser.SideDownOnly {
		side = types.SideNo
	}

	instances := segmentInstances(snapshots)

	capital := initialCapital
	peak := initialCapital
	maxDrawdown := 0.0
	var trades []types.Trade

	for _, inst := range instances {
		if len(inst) < 2 {
			continue
		}
		last := inst[len(inst)-1]
		windowStart := last.Timestamp - windowSeconds

		// First qualifying snapshot wins: earliest in window, not best price.
		var entry *types.MarketSnapshot
		for i := range inst {
			s := inst[i]
			if s.Timestamp >= windowStart && s.YesPrice >= threshold {
				entry = &s
				break
			}
		}
		if entry == nil {
			continue
		}

		entryPrice := entry.YesPrice
		if side == types.SideNo {
			entryPrice = entry.NoPrice
		}
		if entryPrice <= 0 || entryPrice >= 1 {
			continue
		}

		resolvedUp := last.UnderlyingPrice > entry.UnderlyingPrice
		win := (side == types.SideYes && resolvedUp) || (side == types.SideNo && !resolvedUp)

		stake := capital * binaryStakeFraction
		var pnl, returnFrac float64
		if win {
			// $1 settlement per contract purchased at entryPrice.
			returnFrac = (1 - entryPrice) / entryPrice
			pnl = stake * returnFrac
		} else {
			returnFrac = -1
			pnl = -stake
		}
		capital += pnl

		trades = append(trades, types.Trade{
			EntryTime:  entry.Timestamp,
			ExitTime:   last.Timestamp,
			EntryPrice: entryPrice,
			ExitPrice:  settlementPrice(win),
			Side:       side,
			ExitReason: "market_resolved",
			PnL:        pnl,
			ReturnFrac: returnFrac,
			Win:        win,
		})

		if capital > peak {
			peak = capital
		}
		if dd := (peak - capital) / peak * 100; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	elapsedDays := float64(len(instances)) / instancesPerDay
	metrics := deriveMetrics(trades, initialCapital, capital, maxDrawdown, elapsedDays,
		snapshots[0].Timestamp, snapshots[len(snapshots)-1].Timestamp)

	return Result{Trades: trades, Metrics: metrics, Warnings: warnings}
}

// segmentInstances splits an ascending snapshot series into discrete market
// instances wherever the gap between consecutive snapshots exceeds the
// instance threshold.
func segmentInstances(snapshots []types.MarketSnapshot) [][]types.MarketSnapshot {
	var instances [][]types.MarketSnapshot
	start := 0
	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].Timestamp-snapshots[i-1].Timestamp > marketGapSeconds {
			instances = append(instances, snapshots[start:i])
			start = i
		}
	}
	instances = append(instances, snapshots[start:])
	return instances
}

func settlementPrice(win bool) float64 {
	if win {
		return 1
	}
	return 0
}
