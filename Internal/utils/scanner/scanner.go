package scanner

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/0xanrelins/strategy-demystify/Internal/marketdata"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/backtest"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/scoring"
)

// MarketScore is one market's backtest outcome for a shared strategy
// description.
type MarketScore struct {
	Market   string               `json:"market"`
	Score    float64              `json:"score"`
	Category scoring.ScoreRating  `json:"category"`
	Metrics  types.BacktestResult `json:"metrics"`
	Warnings []string             `json:"warnings"`
}

// Scanner evaluates one strategy description across many markets and ranks
// them by total score.
type Scanner struct {
	Candles *marketdata.CandleClient
}

func NewScanner(candles *marketdata.CandleClient) *Scanner {
	return &Scanner{Candles: candles}
}

// ScanMarkets runs the same backtest on each market. Markets that fail to
// fetch or that produce no data are logged and skipped rather than failing
// the whole scan; results come back sorted best score first.
func (s *Scanner) ScanMarkets(ctx context.Context, markets []string, description, timeframe string, periodDays int) ([]MarketScore, error) {
	if s.Candles == nil {
		return nil, fmt.Errorf("no market data client configured")
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("no markets to scan")
	}

	params := parser.ParseStrategy(description)
	if backtest.UseBinaryPath(params) {
		return nil, fmt.Errorf("binary-market strategies cannot be scanned across candle markets")
	}

	var results []MarketScore
	for _, market := range markets {
		bars, err := s.Candles.FetchCryptoBars(ctx, market, timeframe, periodDays)
		if err != nil {
			log.Printf("Error scanning %s: %v", market, err)
			continue
		}
		if len(bars) < 2 {
			log.Printf("Skipping %s: no data available", market)
			continue
		}

		run := backtest.Run(bars, params)
		score := scoring.CalculateTotalScore(run.Metrics.Metrics(), run.Metrics.TotalTrades)

		results = append(results, MarketScore{
			Market:   market,
			Score:    score.Breakdown.Total,
			Category: score.Rating,
			Metrics:  run.Metrics,
			Warnings: run.Warnings,
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("scan produced no results for %d markets", len(markets))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
